package repository

import (
	"context"

	"github.com/apnchris/semaine/internal/domain"
)

type nopSyncRunRepository struct{}

// NewNopRepositories returns repositories that discard everything, used when
// no journal database is configured.
func NewNopRepositories() *Repositories {
	return &Repositories{SyncRun: nopSyncRunRepository{}}
}

func (nopSyncRunRepository) Record(ctx context.Context, run *domain.SyncRun) error {
	return nil
}

func (nopSyncRunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	return nil, nil
}
