package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/render-bench/internal/model"
)

// Listing limits.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Store persists benchmark reports.
type Store interface {
	// Save stores r, assigning ID and CreatedAt when they are zero.
	Save(ctx context.Context, r *model.Report) error

	// List returns matching reports, newest first.
	List(ctx context.Context, f model.ReportFilter) ([]model.Report, error)

	// Ping reports whether the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close()
}

// ClampLimit applies the default and maximum list sizes.
func ClampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultListLimit
	case n > MaxListLimit:
		return MaxListLimit
	default:
		return n
	}
}

func stamp(r *model.Report, now time.Time) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now.UTC()
	}
}

func matches(r model.Report, f model.ReportFilter) bool {
	if f.Framework != "" && r.Framework != f.Framework {
		return false
	}
	if f.Mode != "" && r.Mode != f.Mode {
		return false
	}
	return true
}
