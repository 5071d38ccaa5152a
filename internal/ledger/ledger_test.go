package ledger

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
)

func sampleReport() domain.BatchReport {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.BatchReport{
		RunID: "run-1",
		Stage: domain.StageOptimize,
		Results: []domain.UnitResult{
			{
				Unit:       domain.BenchmarkUnit{InputPath: "out/a.seqn", OutputPath: "out/opt/a.eqn"},
				Stage:      domain.StageOptimize,
				Status:     domain.StatusSucceeded,
				StartedAt:  at,
				FinishedAt: at.Add(time.Second),
				Detail: domain.UnitDetail{
					Cost:       &domain.CostRecord{Depth: 4, MultiplicativeComplexity: 10},
					Iterations: 3,
					StopReason: "plateau",
				},
			},
			{
				Unit:       domain.BenchmarkUnit{InputPath: "out/b.seqn", OutputPath: "out/opt/b.eqn"},
				Stage:      domain.StageOptimize,
				Status:     domain.StatusFailed,
				Error:      "opt exited with status 1",
				StartedAt:  at,
				FinishedAt: at,
			},
		},
	}
}

func TestEntries(t *testing.T) {
	entries := Entries(sampleReport())
	if len(entries) != 2 {
		t.Fatalf("entries=%d", len(entries))
	}
	a := entries[0]
	if a.RunID != "run-1" || a.Unit != "a" || a.Stage != "optimize" || a.Depth == nil || *a.Depth != 4 || *a.MC != 10 {
		t.Fatalf("entry a=%+v", a)
	}
	if b := entries[1]; b.Depth != nil || b.Status != domain.StatusFailed || b.Error == "" {
		t.Fatalf("entry b=%+v", b)
	}
}

func TestNDJSONRecorder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewNDJSONRecorder(&buf).Record(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Record() err=%v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines=%q", lines)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["unit"] != "a" || got["depth"] != float64(4) || got["stop_reason"] != "plateau" {
		t.Fatalf("line0=%v", got)
	}
	if strings.Contains(lines[1], `"depth"`) {
		t.Fatalf("failed unit should omit depth: %s", lines[1])
	}
}

type execCall struct {
	query string
	args  []any
}

type fakeDB struct {
	calls []execCall
	err   error
}

func (f *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.calls = append(f.calls, execCall{query: query, args: args})
	return nil, f.err
}

func TestUnitResultQueries(t *testing.T) {
	if !strings.Contains(insertUnitResultQuery, "ON CONFLICT (run_id, stage, unit_name) DO NOTHING") {
		t.Fatalf("expected idempotency conflict clause in insert query")
	}
	if !strings.Contains(createUnitResultsQuery, "CREATE TABLE IF NOT EXISTS pipeline_unit_results") {
		t.Fatalf("expected create-if-absent table query")
	}
	if !strings.Contains(createUnitResultsQuery, "UNIQUE (run_id, stage, unit_name)") {
		t.Fatalf("expected unique key backing the conflict clause")
	}
}

func TestPostgresRecorder(t *testing.T) {
	db := &fakeDB{}
	rec := NewPostgresRecorder(db)
	if err := rec.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() err=%v", err)
	}
	if err := rec.Record(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Record() err=%v", err)
	}
	if len(db.calls) != 3 {
		t.Fatalf("calls=%d, want 3", len(db.calls))
	}
	insert := db.calls[1]
	if insert.query != insertUnitResultQuery || len(insert.args) != 14 {
		t.Fatalf("insert=%+v", insert)
	}
	if insert.args[1] != "run-1" || insert.args[3] != "a" {
		t.Fatalf("insert args=%v", insert.args)
	}
	if v := db.calls[2].args[10].(sql.NullInt64); v.Valid {
		t.Fatalf("failed unit depth should be NULL, got %v", v)
	}

	if err := rec.Record(context.Background(), domain.BatchReport{}); err == nil {
		t.Fatalf("Record() expected error for missing run id")
	}

	db.err = errors.New("connection reset")
	if err := rec.Record(context.Background(), sampleReport()); err == nil {
		t.Fatalf("Record() expected error")
	}
}

func TestOpenNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger", "results.ndjson")
	rec, closeFn, err := Open(context.Background(), Config{Kind: KindNDJSON, Path: path})
	if err != nil {
		t.Fatalf("Open() err=%v", err)
	}
	if err := rec.Record(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Record() err=%v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close err=%v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || strings.Count(string(data), "\n") != 2 {
		t.Fatalf("ledger=%q err=%v", data, err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PIPELINE_LEDGER", "")
	cfg, err := ConfigFromEnv()
	if err != nil || cfg.Kind != KindNone {
		t.Fatalf("cfg=%+v err=%v", cfg, err)
	}
	t.Setenv("PIPELINE_LEDGER", "NDJSON")
	if cfg, err := ConfigFromEnv(); err != nil || cfg.Kind != KindNDJSON {
		t.Fatalf("cfg=%+v err=%v", cfg, err)
	}
	t.Setenv("PIPELINE_LEDGER", "sqlite")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatalf("ConfigFromEnv() expected error")
	}
}
