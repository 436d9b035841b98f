package postgres

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/apnchris/semaine/internal/domain"
	"github.com/apnchris/semaine/internal/repository"
)

type syncRunRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		SyncRun: &syncRunRepository{db: db, logger: logger},
	}
}

func (r *syncRunRepository) Record(ctx context.Context, run *domain.SyncRun) error {
	query := `
		INSERT INTO sync_runs (id, kind, action, products, created, updated, errors, error_message, status, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Kind,
		run.Action,
		run.Products,
		run.Created,
		run.Updated,
		run.Errors,
		run.ErrorMessage,
		run.Status,
		run.StartedAt,
		run.FinishedAt,
	)

	if err != nil {
		r.logger.Error("Failed to record sync run", zap.Error(err))
		return err
	}

	return nil
}

func (r *syncRunRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, kind, action, products, created, updated, errors, error_message, status, started_at, finished_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list sync runs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.SyncRun
	for rows.Next() {
		var run domain.SyncRun
		if err := rows.Scan(
			&run.ID,
			&run.Kind,
			&run.Action,
			&run.Products,
			&run.Created,
			&run.Updated,
			&run.Errors,
			&run.ErrorMessage,
			&run.Status,
			&run.StartedAt,
			&run.FinishedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}
