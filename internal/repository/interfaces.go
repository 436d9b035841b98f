package repository

import (
	"context"

	"github.com/apnchris/semaine/internal/domain"
)

// SyncRunRepository journals sync invocations. Implementations must never
// make journal failures fatal to the sync itself.
type SyncRunRepository interface {
	Record(ctx context.Context, run *domain.SyncRun) error
	ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error)
}

// Repositories is the set of repositories handed to handlers and services.
type Repositories struct {
	SyncRun SyncRunRepository
}
