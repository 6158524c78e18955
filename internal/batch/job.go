package batch

import (
	"context"
	"sync"
	"time"

	"github.com/yourorg/aviationcerts/internal/cert"
	"github.com/yourorg/aviationcerts/internal/notice"
)

type Phase string

const (
	Idle     Phase = "idle"
	Fetching Phase = "fetching"
	Done     Phase = "done"
)

// Progress is a snapshot of a job's counters.
type Progress struct {
	Phase     Phase `json:"phase"`
	Completed int   `json:"completed"`
	Total     int   `json:"total"`
}

// Failure records one id that could not be fetched.
type Failure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Result is the outcome of a finished job. Succeeded keeps the relative input
// order but is not index-aligned with the input ids.
type Result struct {
	Succeeded []cert.Certificate `json:"succeeded"`
	Failed    []Failure          `json:"failed"`
	Flag      bool               `json:"flag"`
}

// Job is the handle of one batch fetch. Only the fetch loop mutates it;
// the lock lets observers read from other goroutines.
type Job struct {
	mu         sync.RWMutex
	ids        []string
	phase      Phase
	completed  int
	flag       bool
	succeeded  []cert.Certificate
	failed     []Failure
	notices    *notice.Recorder
	startedAt  time.Time
	finishedAt time.Time
	done       chan struct{}
}

func newJob(ids []string) *Job {
	return &Job{
		ids:     append([]string(nil), ids...),
		phase:   Idle,
		notices: notice.NewRecorder(),
		done:    make(chan struct{}),
	}
}

func (j *Job) Progress() Progress {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Progress{Phase: j.phase, Completed: j.completed, Total: len(j.ids)}
}

// Notices returns the user-facing notices raised so far.
func (j *Job) Notices() []notice.Notice {
	return j.notices.Notices()
}

// Done is closed once every id has been attempted and reported.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Result returns the accumulated state; it is final once Done is closed.
func (j *Job) Result() Result {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Result{
		Succeeded: append([]cert.Certificate(nil), j.succeeded...),
		Failed:    append([]Failure(nil), j.failed...),
		Flag:      j.flag,
	}
}

// Wait blocks until the job is done or ctx ends. Giving up on ctx does not
// stop the job.
func (j *Job) Wait(ctx context.Context) (Result, error) {
	select {
	case <-j.done:
		return j.Result(), nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (j *Job) Elapsed() time.Duration {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.startedAt.IsZero() {
		return 0
	}
	if j.finishedAt.IsZero() {
		return time.Since(j.startedAt)
	}
	return j.finishedAt.Sub(j.startedAt)
}

func (j *Job) begin(flag bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.phase = Fetching
	j.flag = flag
	j.startedAt = time.Now()
}

func (j *Job) succeed(rec cert.Certificate) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.succeeded = append(j.succeeded, rec)
	j.advanceLocked()
}

func (j *Job) fail(id, reason string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.failed = append(j.failed, Failure{ID: id, Reason: reason})
	j.advanceLocked()
}

// advanceLocked counts one attempted id; the job is Done exactly when
// completed reaches total.
func (j *Job) advanceLocked() {
	if j.completed >= len(j.ids) {
		return
	}
	j.completed++
	if j.completed == len(j.ids) {
		j.phase = Done
		j.finishedAt = time.Now()
	}
}

// release wakes waiters once the loop has published its last transition.
func (j *Job) release() {
	close(j.done)
}
