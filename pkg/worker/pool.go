// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package worker bounds how many engine processes run at the same time.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrStopped is returned when work is submitted to a pool that is not running.
var ErrStopped = errors.New("worker pool stopped")

// Task is a unit of work executed by a pool worker.
type Task func(ctx context.Context) error

type request struct {
	ctx  context.Context
	task Task
	done chan error
}

// Pool is an in-memory worker pool with a fixed number of workers.
type Pool struct {
	name        string
	concurrency int
	queue       chan request
	wg          sync.WaitGroup
	cancelFunc  context.CancelFunc
	mu          sync.RWMutex
	started     bool
}

// NewPool creates a pool. If concurrency <= 0, defaults to 2.
func NewPool(name string, concurrency int) *Pool {
	if concurrency <= 0 {
		concurrency = 2
	}

	return &Pool{
		name:        name,
		concurrency: concurrency,
		queue:       make(chan request),
	}
}

// Concurrency returns the number of workers.
func (p *Pool) Concurrency() int { return p.concurrency }

// Start spawns the workers. They run until Stop is called or ctx is done.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("worker pool %s already started", p.name)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancelFunc = cancel

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.worker(workerCtx, i)
	}

	p.started = true
	log.Debug().
		Str("component", "worker").
		Str("pool", p.name).
		Int("workers", p.concurrency).
		Msg("Worker pool started")

	return nil
}

// Stop signals the workers to exit and waits for in-flight tasks, bounded by ctx.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return nil
	}
	if p.cancelFunc != nil {
		p.cancelFunc()
	}
	p.started = false
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Debug().
			Str("component", "worker").
			Str("pool", p.name).
			Msg("Worker pool stopped")
		return nil
	case <-ctx.Done():
		log.Warn().
			Str("component", "worker").
			Str("pool", p.name).
			Msg("Worker pool shutdown timed out")
		return ctx.Err()
	}
}

// Do runs task on a free worker and returns its error. It blocks until a
// worker picks the task up and finishes it, or ctx is done first.
func (p *Pool) Do(ctx context.Context, task Task) error {
	p.mu.RLock()
	started := p.started
	p.mu.RUnlock()
	if !started {
		return ErrStopped
	}

	req := request{ctx: ctx, task: task, done: make(chan error, 1)}
	select {
	case p.queue <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	return <-req.done
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-p.queue:
			log.Trace().
				Str("component", "worker").
				Str("pool", p.name).
				Int("worker_id", id).
				Msg("Running task")
			req.done <- req.task(req.ctx)
		}
	}
}
