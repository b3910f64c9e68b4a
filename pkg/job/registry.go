// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package job

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	// ErrDuplicateID is returned when a job is started with an id that is still outstanding.
	ErrDuplicateID = errors.New("job id already outstanding")

	// ErrNotFound is returned for ids with no outstanding job.
	ErrNotFound = errors.New("job not found")

	// ErrInvalidTransition is returned when a status change is not allowed.
	ErrInvalidTransition = errors.New("invalid job status transition")
)

// Registry holds the outstanding jobs. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	now  func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

// Begin registers a pending job for id.
func (r *Registry) Begin(id string, kind Kind) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[id]; exists {
		return Job{}, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	ts := r.now()
	j := &Job{
		ID:        id,
		Kind:      kind,
		Status:    StatusPending,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	r.jobs[id] = j
	return *j, nil
}

// Transition moves the job to status. Terminal statuses remove the job from
// the registry; the returned snapshot carries the final state.
func (r *Registry) Transition(id string, status Status) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !allowed(j.Status, status) {
		return *j, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, status)
	}

	j.Status = status
	j.UpdatedAt = r.now()
	if status.Terminal() {
		delete(r.jobs, id)
	}
	return *j, nil
}

// RequestCancel flags the job as having a pending cancellation request.
// It returns false when id has no outstanding job.
func (r *Registry) RequestCancel(id string) (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	j.CancelRequested = true
	j.UpdatedAt = r.now()
	return *j, true
}

// Get returns a snapshot of the job with the given id.
func (r *Registry) Get(id string) (Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// List returns snapshots of all outstanding jobs, oldest first.
func (r *Registry) List() []Job {
	r.mu.RLock()
	out := make([]Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		out = append(out, *j)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, k int) bool {
		if out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].ID < out[k].ID
		}
		return out[i].CreatedAt.Before(out[k].CreatedAt)
	})
	return out
}

// Len returns the number of outstanding jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

func allowed(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusRunning || to.Terminal()
	case StatusRunning:
		return to.Terminal()
	default:
		return false
	}
}
