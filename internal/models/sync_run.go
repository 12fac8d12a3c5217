package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncMode represents how the fetch window of a run was chosen
type SyncMode string

const (
	SyncModeFull        SyncMode = "full"
	SyncModeIncremental SyncMode = "incremental"
)

// SyncRunStatus represents the status of a pipeline run
type SyncRunStatus string

const (
	SyncRunStatusInProgress SyncRunStatus = "in-progress"
	SyncRunStatusCompleted  SyncRunStatus = "completed"
	SyncRunStatusFailed     SyncRunStatus = "failed"
)

// SyncRun is one entry in the pipeline run ledger
type SyncRun struct {
	ID           string        `json:"id"`
	Mode         SyncMode      `json:"mode"`
	WindowStart  time.Time     `json:"window_start"`
	WindowEnd    time.Time     `json:"window_end"`
	Events       int           `json:"events"`
	Contributors int           `json:"contributors"`
	Status       SyncRunStatus `json:"status"`
	ErrorMessage *string       `json:"error_message"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at"`
}

// NewSyncRun creates a new SyncRun with a generated UUID
func NewSyncRun(mode SyncMode, windowStart, windowEnd time.Time) *SyncRun {
	return &SyncRun{
		ID:          uuid.New().String(),
		Mode:        mode,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Status:      SyncRunStatusInProgress,
		StartedAt:   time.Now(),
	}
}

// MarkCompleted marks the run as completed
func (r *SyncRun) MarkCompleted(events, contributors int) {
	now := time.Now()
	r.Status = SyncRunStatusCompleted
	r.Events = events
	r.Contributors = contributors
	r.FinishedAt = &now
}

// MarkFailed marks the run as failed
func (r *SyncRun) MarkFailed(message string) {
	now := time.Now()
	r.Status = SyncRunStatusFailed
	r.ErrorMessage = &message
	r.FinishedAt = &now
}
