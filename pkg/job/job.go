// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package job tracks the lifecycle of compression, upload and background-task
// jobs keyed by their correlation id.
package job

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies which engine operation a job represents.
type Kind string

const (
	KindCompress       Kind = "compress"
	KindUpload         Kind = "upload"
	KindBackgroundTask Kind = "backgroundTask"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Job is a snapshot of one outstanding operation.
type Job struct {
	ID              string    `json:"id"`
	Kind            Kind      `json:"kind"`
	Status          Status    `json:"status"`
	CancelRequested bool      `json:"cancel_requested,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GenerateID returns a new random correlation id.
func GenerateID() string {
	return uuid.NewString()
}
