package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/animus-labs/eqsat-pipeline/internal/platform/env"
)

type Config struct {
	Format string
	Debug  bool
}

func ConfigFromEnv() (Config, error) {
	format, err := env.Choice("PIPELINE_LOG_FORMAT", "json", "json", "text")
	if err != nil {
		return Config{}, err
	}
	debug, err := env.Bool("PIPELINE_DEBUG", false)
	if err != nil {
		return Config{}, err
	}
	return Config{Format: format, Debug: debug}, nil
}

// New builds the diagnostics logger. Debug lowers the level so that echoed
// command lines are emitted.
func New(w io.Writer, cfg Config) (*slog.Logger, error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}
}
