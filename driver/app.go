package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/animus-labs/eqsat-pipeline/internal/artifacts"
	"github.com/animus-labs/eqsat-pipeline/internal/benchset"
	"github.com/animus-labs/eqsat-pipeline/internal/domain"
	"github.com/animus-labs/eqsat-pipeline/internal/ledger"
	"github.com/animus-labs/eqsat-pipeline/internal/platform/env"
	"github.com/animus-labs/eqsat-pipeline/internal/platform/logging"
	"github.com/animus-labs/eqsat-pipeline/internal/platform/objectstore"
	"github.com/animus-labs/eqsat-pipeline/internal/procexec"
	"github.com/animus-labs/eqsat-pipeline/internal/tools"
)

// app holds what every subcommand needs, built from flags and environment.
type app struct {
	logger    *slog.Logger
	echo      bool
	layout    benchset.Layout
	paths     tools.Paths
	recorder  ledger.Recorder
	publisher *artifacts.Publisher
	closers   []func() error
}

func newApp(ctx context.Context) (*app, error) {
	logCfg, err := logging.ConfigFromEnv()
	if err != nil {
		return nil, configError{err: err}
	}
	if debug {
		logCfg.Debug = true
	}
	logger, err := logging.New(os.Stderr, logCfg)
	if err != nil {
		return nil, configError{err: err}
	}

	driverDir := env.String("PIPELINE_DRIVER_DIR", ".")
	paths, err := tools.PathsFromEnv(driverDir)
	if err != nil {
		return nil, configError{err: err}
	}

	a := &app{
		logger:   logger,
		echo:     logCfg.Debug,
		layout:   benchset.Layout{Root: driverDir},
		paths:    paths,
		recorder: ledger.Nop{},
	}

	ledgerCfg, err := ledger.ConfigFromEnv()
	if err != nil {
		return nil, configError{err: err}
	}
	rec, closeLedger, err := ledger.Open(ctx, ledgerCfg)
	if err != nil {
		logger.Warn("ledger unavailable, results will not be recorded", "ledger", ledgerCfg.Kind, "error", err)
	} else {
		a.recorder = rec
		a.closers = append(a.closers, closeLedger)
	}

	publish, err := env.Bool("PIPELINE_PUBLISH", false)
	if err != nil {
		return nil, configError{err: err}
	}
	if publish {
		storeCfg, err := objectstore.ConfigFromEnv()
		if err != nil {
			return nil, configError{err: err}
		}
		store, err := artifacts.NewMinioStore(ctx, storeCfg)
		if err != nil {
			logger.Warn("object store unavailable, outputs will not be published", "endpoint", storeCfg.Endpoint, "error", err)
		} else {
			a.publisher = artifacts.NewPublisher(store, storeCfg.Bucket, logger)
		}
	}
	return a, nil
}

// executor builds a process runner; a nil sink inherits stdout and stderr.
func (a *app) executor(sink io.Writer) tools.Executor {
	opts := []procexec.Option{procexec.WithLogger(a.logger), procexec.WithEcho(a.echo)}
	if sink != nil {
		opts = append(opts, procexec.WithSharedSink(sink))
	}
	return procexec.New(opts...)
}

func (a *app) toolchain(sink io.Writer) *tools.Toolchain {
	return tools.New(a.paths, a.executor(sink))
}

// finish records each report, logs its summary and publishes optimized
// outputs. None of this affects the exit status.
func (a *app) finish(ctx context.Context, reports ...domain.BatchReport) {
	for _, rep := range reports {
		if err := a.recorder.Record(ctx, rep); err != nil {
			a.logger.Warn("ledger record failed", "stage", string(rep.Stage), "error", err)
		}
		a.logger.Info(rep.Summary(), "stage", string(rep.Stage), "run_id", rep.RunID)
		if a.publisher != nil && rep.Stage == domain.StageOptimize {
			if err := a.publisher.PublishReport(ctx, rep.RunID, rep); err != nil {
				a.logger.Warn("publish outputs failed", "run_id", rep.RunID, "error", err)
			}
		}
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}
