package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/job"
)

// JobStore is an in-memory job.Store.
type JobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*job.Job

	// SaveErr, when set, is returned by Save before any state change.
	SaveErr error
}

// NewJobStore creates an empty in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[uuid.UUID]*job.Job),
	}
}

// Save implements job.Store.
func (s *JobStore) Save(_ context.Context, j *job.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}

	copied := *j
	s.jobs[j.ID] = &copied
	return nil
}

// MarkStatus implements job.Store. Unknown IDs are a no-op, matching the
// postgres implementation.
func (s *JobStore) MarkStatus(_ context.Context, id uuid.UUID, status job.Status, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil
	}
	j.Status = status
	j.ErrorMessage = errorMsg
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// ClaimPending implements job.Store.
func (s *JobStore) ClaimPending(_ context.Context, limit int) ([]*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*job.Job
	for _, j := range s.jobs {
		if j.Status == job.StatusPending {
			pending = append(pending, j)
		}
	}
	sort.Slice(pending, func(i, k int) bool {
		return pending[i].CreatedAt.Before(pending[k].CreatedAt)
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}

	out := make([]*job.Job, 0, len(pending))
	for _, j := range pending {
		j.Status = job.StatusProcessing
		j.UpdatedAt = time.Now().UTC()
		copied := *j
		out = append(out, &copied)
	}
	return out, nil
}

// ResetStuck implements job.Store.
func (s *JobStore) ResetStuck(_ context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	var reset int64
	for _, j := range s.jobs {
		if j.Status == job.StatusProcessing && j.UpdatedAt.Before(cutoff) {
			j.Status = job.StatusPending
			j.UpdatedAt = time.Now().UTC()
			reset++
		}
	}
	return reset, nil
}

// Get returns a snapshot of the job with the given ID for assertions.
func (s *JobStore) Get(id uuid.UUID) (*job.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	copied := *j
	return &copied, true
}

// All returns a snapshot of every stored job for assertions.
func (s *JobStore) All() []*job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*job.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		copied := *j
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, k int) bool {
		return out[i].CreatedAt.Before(out[k].CreatedAt)
	})
	return out
}
