package report

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/render-bench/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS benchmark_reports (
	id                 UUID PRIMARY KEY,
	framework          TEXT NOT NULL,
	mode               TEXT NOT NULL,
	payload_size       INTEGER NOT NULL DEFAULT 0,
	complexity         TEXT NOT NULL DEFAULT '',
	network_time_ms    DOUBLE PRECISION NOT NULL DEFAULT 0,
	render_time_ms     DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_time_ms      DOUBLE PRECISION NOT NULL DEFAULT 0,
	fps                DOUBLE PRECISION NOT NULL DEFAULT 0,
	average_latency_ms DOUBLE PRECISION NOT NULL DEFAULT 0,
	events_received    BIGINT NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS benchmark_reports_created_at_idx
	ON benchmark_reports (created_at DESC);
`

const reportColumns = `id, framework, mode, payload_size, complexity,
	network_time_ms, render_time_ms, total_time_ms, fps, average_latency_ms,
	events_received, created_at`

// PostgresStore persists reports in the benchmark_reports table.
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore ensures the schema exists and returns the store. The store
// takes ownership of db.
func NewPostgresStore(ctx context.Context, db *pgxpool.Pool, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	logger.Info("results store ready", "driver", "postgres")
	return &PostgresStore{db: db, logger: logger}, nil
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, r *model.Report) error {
	stamp(r, time.Now())

	_, err := s.db.Exec(ctx, `
		INSERT INTO benchmark_reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		r.ID.String(), r.Framework, string(r.Mode), r.PayloadSize, string(r.Complexity),
		r.NetworkTimeMs, r.RenderTimeMs, r.TotalTimeMs, r.FPS, r.AverageLatencyMs,
		r.EventsReceived, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, f model.ReportFilter) ([]model.Report, error) {
	query, args := buildListQuery(f)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	reports, err := pgx.CollectRows(rows, scanReport)
	if err != nil {
		return nil, fmt.Errorf("scan reports: %w", err)
	}
	return reports, nil
}

// Ping implements Store.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close implements Store.
func (s *PostgresStore) Close() {
	s.db.Close()
}

// buildListQuery returns the SELECT for f with positional arguments.
func buildListQuery(f model.ReportFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Framework != "" {
		args = append(args, f.Framework)
		where = append(where, "framework = $"+strconv.Itoa(len(args)))
	}
	if f.Mode != "" {
		args = append(args, string(f.Mode))
		where = append(where, "mode = $"+strconv.Itoa(len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + reportColumns + " FROM benchmark_reports")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	args = append(args, ClampLimit(f.Limit))
	b.WriteString(" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args)))

	return b.String(), args
}

func scanReport(row pgx.CollectableRow) (model.Report, error) {
	var (
		r                model.Report
		mode, complexity string
	)
	err := row.Scan(
		&r.ID, &r.Framework, &mode, &r.PayloadSize, &complexity,
		&r.NetworkTimeMs, &r.RenderTimeMs, &r.TotalTimeMs, &r.FPS, &r.AverageLatencyMs,
		&r.EventsReceived, &r.CreatedAt,
	)
	r.Mode = model.ReportMode(mode)
	r.Complexity = model.Complexity(complexity)
	r.CreatedAt = r.CreatedAt.UTC()
	return r, err
}
