package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
)

// DB is the subset of *sql.DB the recorder uses.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const (
	createUnitResultsQuery = `CREATE TABLE IF NOT EXISTS pipeline_unit_results (
		result_id UUID PRIMARY KEY,
		run_id TEXT NOT NULL,
		stage TEXT NOT NULL,
		unit_name TEXT NOT NULL,
		input_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		status TEXT NOT NULL,
		error_message TEXT,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		depth INTEGER,
		mc INTEGER,
		iterations INTEGER NOT NULL DEFAULT 0,
		stop_reason TEXT,
		UNIQUE (run_id, stage, unit_name)
	)`

	insertUnitResultQuery = `INSERT INTO pipeline_unit_results (
		result_id,
		run_id,
		stage,
		unit_name,
		input_path,
		output_path,
		status,
		error_message,
		started_at,
		finished_at,
		depth,
		mc,
		iterations,
		stop_reason
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	ON CONFLICT (run_id, stage, unit_name) DO NOTHING`
)

type PostgresRecorder struct {
	db DB
}

func NewPostgresRecorder(db DB) *PostgresRecorder {
	if db == nil {
		return nil
	}
	return &PostgresRecorder{db: db}
}

// EnsureSchema creates the results table if it does not exist.
func (r *PostgresRecorder) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("postgres recorder not initialized")
	}
	if _, err := r.db.ExecContext(ctx, createUnitResultsQuery); err != nil {
		return fmt.Errorf("create pipeline_unit_results: %w", err)
	}
	return nil
}

// Record inserts every unit result of report. Re-recording the same run is a
// no-op per unit.
func (r *PostgresRecorder) Record(ctx context.Context, report domain.BatchReport) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("postgres recorder not initialized")
	}
	if strings.TrimSpace(report.RunID) == "" {
		return fmt.Errorf("run id is required")
	}
	for _, e := range Entries(report) {
		_, err := r.db.ExecContext(
			ctx,
			insertUnitResultQuery,
			uuid.NewString(),
			e.RunID,
			e.Stage,
			e.Unit,
			e.Input,
			e.Output,
			e.Status,
			nullIfEmpty(e.Error),
			e.StartedAt,
			e.FinishedAt,
			nullInt(e.Depth),
			nullInt(e.MC),
			e.Iterations,
			nullIfEmpty(e.StopReason),
		)
		if err != nil {
			return fmt.Errorf("insert unit result %s: %w", e.Unit, err)
		}
	}
	return nil
}

func nullIfEmpty(value string) sql.NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
