package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourorg/aviationcerts/internal/selection"
)

var ErrJobNotFound = errors.New("batch job not found")

type registryEntry struct {
	job    *Job
	owner  string
	target string
}

// Registry keeps the jobs started through the preview server so their
// progress can be polled. Finished jobs are dropped after the retention period.
type Registry struct {
	mu        sync.RWMutex
	jobs      map[string]*registryEntry
	fetcher   *Fetcher
	retention time.Duration
}

func NewRegistry(fetcher *Fetcher, retention time.Duration) *Registry {
	return &Registry{
		jobs:      map[string]*registryEntry{},
		fetcher:   fetcher,
		retention: retention,
	}
}

// Start runs a batch for sel on behalf of owner and returns its id.
func (r *Registry) Start(ctx context.Context, owner string, sel selection.Selection) (string, *Job, error) {
	job, err := r.fetcher.Start(ctx, sel.IDs())
	if err != nil {
		return "", nil, err
	}
	jobID := uuid.NewString()

	r.mu.Lock()
	r.jobs[jobID] = &registryEntry{job: job, owner: owner, target: sel.Target()}
	r.mu.Unlock()

	if r.retention > 0 {
		go r.expire(jobID, job)
	}
	return jobID, job, nil
}

// Get returns the job if it exists and belongs to owner.
func (r *Registry) Get(jobID, owner string) (*Job, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.jobs[jobID]
	if !ok || entry.owner != owner {
		return nil, "", ErrJobNotFound
	}
	return entry.job, entry.target, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

func (r *Registry) expire(jobID string, job *Job) {
	<-job.Done()
	timer := time.NewTimer(r.retention)
	defer timer.Stop()
	<-timer.C
	r.mu.Lock()
	delete(r.jobs, jobID)
	r.mu.Unlock()
}
