package repository

import (
	"context"
	"time"

	"github.com/rpattn/contentql/internal/domain"
)

// ResolutionLogRepository persists and lists root resolution outcomes.
type ResolutionLogRepository interface {
	Record(ctx context.Context, entry domain.ResolutionLogEntry) error
	List(ctx context.Context, collection string, limit int, offset int) ([]domain.ResolutionLogEntry, error)
}

const (
	defaultListLimit = 200
	maxListLimit     = 1000
)

// normalizePage clamps list paging arguments to sane bounds.
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
