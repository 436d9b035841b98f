package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sync run kinds
const (
	SyncRunKindWebhook = "webhook"
	SyncRunKindFull    = "full"
)

// Sync run statuses
const (
	SyncRunStatusCompleted = "completed"
	SyncRunStatusFailed    = "failed"
)

// SyncRun is one journal row per sync invocation: a webhook delivery or a
// full catalog import.
type SyncRun struct {
	ID           uuid.UUID `json:"id"`
	Kind         string    `json:"kind"`
	Action       string    `json:"action"`
	Products     int       `json:"products"`
	Created      int       `json:"created"`
	Updated      int       `json:"updated"`
	Errors       int       `json:"errors"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	Status       string    `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// FullSyncResult is what the bulk catalog importer returns.
type FullSyncResult struct {
	Created      int      `json:"created"`
	Updated      int      `json:"updated"`
	Errors       int      `json:"errors"`
	ErrorDetails []string `json:"errorDetails,omitempty"`
}
