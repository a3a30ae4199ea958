package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpattn/contentql/internal/domain"
)

type resolutionLogRepository struct {
	pool *pgxpool.Pool
}

// NewResolutionLogRepository wires a repository backed by pgxpool.
func NewResolutionLogRepository(pool *pgxpool.Pool) ResolutionLogRepository {
	return &resolutionLogRepository{pool: pool}
}

func (r *resolutionLogRepository) Record(ctx context.Context, entry domain.ResolutionLogEntry) error {
	if r.pool == nil {
		return fmt.Errorf("resolution log repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO resolution_logs (root_key, collection, total, item_count, duration_ms, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.RootKey,
		entry.Collection,
		entry.Total,
		entry.ItemCount,
		entry.Duration.Milliseconds(),
		entry.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to record resolution log: %w", err)
	}

	return nil
}

func (r *resolutionLogRepository) List(ctx context.Context, collection string, limit int, offset int) ([]domain.ResolutionLogEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("resolution log repository not initialized")
	}

	limit, offset = normalizePage(limit, offset)

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, root_key, collection, total, item_count, duration_ms, error_message, created_at
		 FROM resolution_logs
		 WHERE ($1 = '' OR collection = $1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		collection,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resolution logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.ResolutionLogEntry{}
	for rows.Next() {
		var (
			entry      domain.ResolutionLogEntry
			durationMS int64
			createdAt  pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.RootKey,
			&entry.Collection,
			&entry.Total,
			&entry.ItemCount,
			&durationMS,
			&entry.ErrorMessage,
			&createdAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan resolution log: %w", scanErr)
		}

		entry.Duration = millis(durationMS)
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}

		logs = append(logs, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate resolution logs: %w", rowsErr)
	}

	return logs, nil
}
