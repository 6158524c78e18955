package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/aviationcerts/internal/cert"
	"github.com/yourorg/aviationcerts/internal/notice"
)

// DefaultDelay is the pause between two certificate requests.
const DefaultDelay = 300 * time.Millisecond

var ErrEmptyBatch = errors.New("batch needs at least one certificate id")

// Source is the remote API as seen by the fetcher.
type Source interface {
	GetCertificate(ctx context.Context, id string) (cert.Certificate, error)
	ToggleState(ctx context.Context) (bool, error)
}

// Fetcher retrieves the certificates of a batch one request at a time.
type Fetcher struct {
	source     Source
	delay      time.Duration
	notifier   notice.Notifier
	logger     *slog.Logger
	onProgress func(Progress)
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Fetcher)

func WithDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		if d >= 0 {
			f.delay = d
		}
	}
}

func WithNotifier(n notice.Notifier) Option {
	return func(f *Fetcher) { f.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithProgress registers a callback invoked after every state transition.
func WithProgress(fn func(Progress)) Option {
	return func(f *Fetcher) { f.onProgress = fn }
}

func NewFetcher(source Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		source: source,
		delay:  DefaultDelay,
		logger: slog.Default(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start launches the fetch loop for ids and returns immediately. The loop is
// not cancellable: it keeps running when ctx is canceled, but still carries
// ctx's values (session, correlation id).
func (f *Fetcher) Start(ctx context.Context, ids []string) (*Job, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyBatch
	}
	job := newJob(ids)
	go f.run(context.WithoutCancel(ctx), job)
	return job, nil
}

// Run is Start followed by Wait.
func (f *Fetcher) Run(ctx context.Context, ids []string) (Result, error) {
	job, err := f.Start(ctx, ids)
	if err != nil {
		return Result{}, err
	}
	return job.Wait(ctx)
}

func (f *Fetcher) run(ctx context.Context, job *Job) {
	total := len(job.ids)
	log := f.logger.With("batch_size", total)

	job.begin(f.toggle(ctx, log))
	f.publish(job)

	for i, id := range job.ids {
		rec, err := f.source.GetCertificate(ctx, id)
		if err != nil {
			log.Warn("certificate fetch failed", "id", id, "error", err)
			job.fail(id, err.Error())
			n := notice.Error(fmt.Sprintf("Could not load certificate %s", id))
			job.notices.Notify(ctx, n)
			if f.notifier != nil {
				f.notifier.Notify(ctx, n)
			}
		} else {
			job.succeed(rec)
		}
		f.publish(job)

		if i < total-1 && f.delay > 0 {
			_ = f.sleep(ctx, f.delay)
		}
	}

	res := job.Result()
	log.Info("batch fetched",
		"succeeded", len(res.Succeeded),
		"failed", len(res.Failed),
		"elapsed_ms", job.Elapsed().Milliseconds(),
	)
	job.release()
}

// toggle fetches the display flag. Failures are only logged and the flag
// defaults to disabled.
func (f *Fetcher) toggle(ctx context.Context, log *slog.Logger) bool {
	enabled, err := f.source.ToggleState(ctx)
	if err != nil {
		log.Warn("toggle state unavailable, using default", "error", err)
		return false
	}
	return enabled
}

func (f *Fetcher) publish(job *Job) {
	if f.onProgress != nil {
		f.onProgress(job.Progress())
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
