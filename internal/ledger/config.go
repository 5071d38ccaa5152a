package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/animus-labs/eqsat-pipeline/internal/platform/env"
	"github.com/animus-labs/eqsat-pipeline/internal/platform/postgres"
)

const (
	KindNone     = "none"
	KindNDJSON   = "ndjson"
	KindPostgres = "postgres"
)

type Config struct {
	Kind string
	// Path is the NDJSON file; it is appended to across runs.
	Path string
}

func ConfigFromEnv() (Config, error) {
	kind, err := env.Choice("PIPELINE_LEDGER", KindNone, KindNone, KindNDJSON, KindPostgres)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Kind: kind,
		Path: env.String("PIPELINE_LEDGER_PATH", "results.ndjson"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Kind == KindNDJSON && c.Path == "" {
		return errors.New("PIPELINE_LEDGER_PATH is required for the ndjson ledger")
	}
	return nil
}

// Open returns the configured recorder and a function releasing its
// resources.
func Open(ctx context.Context, cfg Config) (Recorder, func() error, error) {
	noClose := func() error { return nil }
	switch cfg.Kind {
	case "", KindNone:
		return Nop{}, noClose, nil
	case KindNDJSON:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("ledger dir: %w", err)
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open ledger: %w", err)
		}
		return NewNDJSONRecorder(f), f.Close, nil
	case KindPostgres:
		dbCfg, err := postgres.ConfigFromEnv()
		if err != nil {
			return nil, nil, err
		}
		db, err := postgres.Open(ctx, dbCfg)
		if err != nil {
			return nil, nil, err
		}
		rec := NewPostgresRecorder(db)
		if err := rec.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return rec, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported ledger: %q", cfg.Kind)
	}
}
