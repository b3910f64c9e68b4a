// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package hook provides a lightweight job lifecycle extension mechanism.
// Hooks are registered per job status and triggered by the compressor on
// every transition.
package hook

import (
	"context"
	"sync"

	"github.com/mediabridge/mediabridge/pkg/job"
)

// Stage names a lifecycle point. Job statuses are used as stages, plus
// OnShutdown for the application lifecycle.
type Stage string

const (
	OnPending   = Stage(job.StatusPending)
	OnRunning   = Stage(job.StatusRunning)
	OnCompleted = Stage(job.StatusCompleted)
	OnFailed    = Stage(job.StatusFailed)
	OnCancelled = Stage(job.StatusCancelled)
	OnShutdown  Stage = "shutdown"
)

// HookFunc represents a function that can be triggered by a hook stage.
type HookFunc func(ctx context.Context, j job.Job)

// Manager stores and manages hooks for different stages.
type Manager struct {
	mu        sync.RWMutex
	hooks     map[Stage][]HookFunc
	triggered map[Stage]int
	wg        sync.WaitGroup
}

// NewManager creates and returns a new hook manager.
func NewManager() *Manager {
	return &Manager{
		hooks:     make(map[Stage][]HookFunc),
		triggered: make(map[Stage]int),
	}
}

// Register adds a hook function to a stage.
func (m *Manager) Register(stage Stage, fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[stage] = append(m.hooks[stage], fn)
}

// Trigger calls all hooks registered to a stage. Hooks run asynchronously;
// Wait blocks until every triggered hook has returned.
func (m *Manager) Trigger(ctx context.Context, stage Stage, j job.Job) {
	m.mu.Lock()
	m.triggered[stage]++
	fns := append([]HookFunc(nil), m.hooks[stage]...)
	m.mu.Unlock()

	for _, fn := range fns {
		m.wg.Add(1)
		go func(fn HookFunc) {
			defer m.wg.Done()
			fn(ctx, j)
		}(fn)
	}
}

// TriggerStatus triggers the stage matching the job's current status.
func (m *Manager) TriggerStatus(ctx context.Context, j job.Job) {
	m.Trigger(ctx, Stage(j.Status), j)
}

// Triggered returns how many times a stage has been triggered.
func (m *Manager) Triggered(stage Stage) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.triggered[stage]
}

// IsTriggered checks if a specific stage has been triggered.
func (m *Manager) IsTriggered(stage Stage) bool {
	return m.Triggered(stage) > 0
}

// Wait blocks until all hooks started so far have returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}
