package batch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yourorg/aviationcerts/internal/cert"
	"github.com/yourorg/aviationcerts/internal/notice"
)

type fakeSource struct {
	mu       sync.Mutex
	calls    []string
	inFlight int32
	overlap  bool
	missing  map[string]bool
	toggle   func(ctx context.Context) (bool, error)
}

func (s *fakeSource) GetCertificate(ctx context.Context, id string) (cert.Certificate, error) {
	if atomic.AddInt32(&s.inFlight, 1) > 1 {
		s.mu.Lock()
		s.overlap = true
		s.mu.Unlock()
	}
	defer atomic.AddInt32(&s.inFlight, -1)
	time.Sleep(time.Millisecond)

	s.mu.Lock()
	s.calls = append(s.calls, id)
	s.mu.Unlock()

	if s.missing[id] {
		return cert.Certificate{}, fmt.Errorf("GET /api/certificates/%s: status 404", id)
	}
	return cert.Certificate{ID: cert.ID(id), FormNumber: "F-" + id}, nil
}

func (s *fakeSource) ToggleState(ctx context.Context) (bool, error) {
	if s.toggle != nil {
		return s.toggle(ctx)
	}
	return true, nil
}

type sleepRecorder struct {
	mu    sync.Mutex
	count int
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count++
	return nil
}

func newTestFetcher(src Source, opts ...Option) (*Fetcher, *sleepRecorder) {
	rec := &sleepRecorder{}
	f := NewFetcher(src, opts...)
	f.sleep = rec.sleep
	return f, rec
}

func TestRun_SequentialInOrder(t *testing.T) {
	src := &fakeSource{}
	f, sleeps := newTestFetcher(src)

	res, err := f.Run(context.Background(), []string{"A", "B", "C", "D"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := []string{"A", "B", "C", "D"}; !reflect.DeepEqual(src.calls, want) {
		t.Fatalf("calls = %v, want %v", src.calls, want)
	}
	if src.overlap {
		t.Fatalf("two requests were in flight at the same time")
	}
	if sleeps.count != 3 {
		t.Fatalf("expected a delay between requests only (3), got %d", sleeps.count)
	}
	if len(res.Succeeded) != 4 || !res.Flag {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRun_PartialFailure(t *testing.T) {
	src := &fakeSource{missing: map[string]bool{"B": true}}
	notes := notice.NewRecorder()
	var mu sync.Mutex
	var seen []Progress
	f, sleeps := newTestFetcher(src, WithNotifier(notes), WithProgress(func(p Progress) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	}))

	job, err := f.Start(context.Background(), []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	res, err := job.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	if len(res.Succeeded) != 2 || res.Succeeded[0].ID != "A" || res.Succeeded[1].ID != "C" {
		t.Fatalf("succeeded = %+v, want [A C]", res.Succeeded)
	}
	if len(res.Failed) != 1 || res.Failed[0].ID != "B" || res.Failed[0].Reason == "" {
		t.Fatalf("failed = %+v", res.Failed)
	}
	if p := job.Progress(); p.Completed != 3 || p.Total != 3 || p.Phase != Done {
		t.Fatalf("progress = %+v", p)
	}
	if got := notes.Notices(); len(got) != 1 || got[0].Message != "Could not load certificate B" {
		t.Fatalf("notifier notices = %+v", got)
	}
	if got := job.Notices(); len(got) != 1 {
		t.Fatalf("job notices = %+v", got)
	}
	if sleeps.count != 2 {
		t.Fatalf("failures must not skip the delay, got %d sleeps", sleeps.count)
	}

	mu.Lock()
	defer mu.Unlock()
	last := -1
	for _, p := range seen {
		if p.Completed < last {
			t.Fatalf("completed went backwards: %+v", seen)
		}
		if p.Total != 3 {
			t.Fatalf("total changed: %+v", p)
		}
		if (p.Phase == Done) != (p.Completed == p.Total) {
			t.Fatalf("phase out of sync with counters: %+v", p)
		}
		last = p.Completed
	}
	if last != 3 {
		t.Fatalf("final observed completed = %d", last)
	}
}

func TestRun_ToggleFailureDefaultsToFalse(t *testing.T) {
	src := &fakeSource{toggle: func(context.Context) (bool, error) {
		return false, errors.New("dial tcp: connection refused")
	}}
	notes := notice.NewRecorder()
	f, _ := newTestFetcher(src, WithNotifier(notes))

	res, err := f.Run(context.Background(), []string{"A", "B"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Flag {
		t.Fatalf("flag should default to false")
	}
	if len(src.calls) != 2 || len(res.Succeeded) != 2 {
		t.Fatalf("all ids should still be fetched, calls=%v", src.calls)
	}
	if len(notes.Notices()) != 0 {
		t.Fatalf("toggle failure must not raise a notice: %+v", notes.Notices())
	}
}

func TestRun_AllFail(t *testing.T) {
	src := &fakeSource{missing: map[string]bool{"A": true, "B": true}}
	f, _ := newTestFetcher(src)
	res, err := f.Run(context.Background(), []string{"A", "B"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(res.Succeeded) != 0 || len(res.Failed) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestStart_EmptyBatch(t *testing.T) {
	src := &fakeSource{}
	f, _ := newTestFetcher(src)
	if _, err := f.Start(context.Background(), nil); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("expected ErrEmptyBatch, got %v", err)
	}
	if len(src.calls) != 0 {
		t.Fatalf("no request expected, got %v", src.calls)
	}
}

func TestStart_IgnoresCallerCancellation(t *testing.T) {
	src := &fakeSource{}
	f, _ := newTestFetcher(src)
	ctx, cancel := context.WithCancel(context.Background())
	job, err := f.Start(ctx, []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("job did not finish")
	}
	if res := job.Result(); len(res.Succeeded) != 3 {
		t.Fatalf("job should run to completion, got %+v", res)
	}
}

func TestWait_ContextExpires(t *testing.T) {
	block := make(chan struct{})
	src := &fakeSource{toggle: func(context.Context) (bool, error) {
		<-block
		return true, nil
	}}
	defer close(block)
	f, _ := newTestFetcher(src)
	job, err := f.Start(context.Background(), []string{"A"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := job.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if p := job.Progress(); p.Completed != 0 || p.Total != 1 {
		t.Fatalf("progress = %+v", p)
	}
}
