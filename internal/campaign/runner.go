package campaign

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/animus-labs/eqsat-pipeline/internal/artifacts"
	"github.com/animus-labs/eqsat-pipeline/internal/benchset"
	"github.com/animus-labs/eqsat-pipeline/internal/domain"
	"github.com/animus-labs/eqsat-pipeline/internal/ledger"
	"github.com/animus-labs/eqsat-pipeline/internal/outroot"
	"github.com/animus-labs/eqsat-pipeline/internal/pipeline"
	"github.com/animus-labs/eqsat-pipeline/internal/procexec"
	"github.com/animus-labs/eqsat-pipeline/internal/refine"
	"github.com/animus-labs/eqsat-pipeline/internal/tools"
)

// ExecutorFactory builds the process executor for one mode; sink is the
// mode's campaign log.
type ExecutorFactory func(sink io.Writer) tools.Executor

type Runner struct {
	Config      Config
	Layout      benchset.Layout
	Paths       tools.Paths
	NewExecutor ExecutorFactory
	Logger      *slog.Logger
	Recorder    ledger.Recorder
	// Publisher is optional; nil disables publishing.
	Publisher *artifacts.Publisher
}

// Result summarizes one mode run.
type Result struct {
	RunID   string
	Mode    string
	LogPath string
	Reports []domain.BatchReport
}

func (r Result) Failed() int {
	n := 0
	for _, rep := range r.Reports {
		n += len(rep.Failures())
	}
	return n
}

// Run executes one mode of spec. Configuration problems are returned before
// any tool runs; unit failures only show up in the reports.
func (r *Runner) Run(ctx context.Context, spec Spec, modeName string) (Result, error) {
	mode, err := spec.Mode(modeName)
	if err != nil {
		return Result{}, err
	}
	p, err := spec.Params.Build()
	if err != nil {
		return Result{}, err
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	outBase := r.Config.OutBase
	if outBase == "" {
		outBase = "./"
	}

	if err := outroot.Ensure(outBase); err != nil {
		return Result{}, err
	}
	lock, err := outroot.Acquire(outBase)
	if err != nil {
		return Result{}, err
	}
	defer lock.Release()

	logPath := filepath.Join(outBase, mode.Name+".log")
	logFile, err := os.Create(logPath)
	if err != nil {
		return Result{}, fmt.Errorf("create campaign log: %w", err)
	}
	sink := procexec.Synchronized(logFile)

	newExec := r.NewExecutor
	if newExec == nil {
		newExec = func(sink io.Writer) tools.Executor {
			return procexec.New(procexec.WithSharedSink(sink), procexec.WithLogger(logger))
		}
	}
	toolchain := tools.New(r.Paths, newExec(sink))

	res := Result{RunID: uuid.NewString(), Mode: mode.Name, LogPath: logPath}
	logger = logger.With("campaign", spec.Name, "mode", mode.Name, "run_id", res.RunID)
	logger.Info("campaign mode started", "kind", mode.Kind, "jobs", r.Config.Jobs(mode))

	cfg := pipeline.Config{
		Tools:  toolchain,
		Params: p,
		Jobs:   r.Config.Jobs(mode),
		Logger: logger,
		Stdout: sink,
	}
	expand := strings.NewReplacer("{driver}", r.Layout.Root, "{out}", outBase).Replace

	runErr := r.runMode(ctx, spec, mode, cfg, expand, &res)
	if err := logFile.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close campaign log: %w", err)
	}

	for _, rep := range res.Reports {
		if r.Recorder != nil {
			if err := r.Recorder.Record(ctx, rep); err != nil {
				logger.Warn("ledger record failed", "stage", string(rep.Stage), "error", err)
			}
		}
		if r.Publisher != nil && rep.Stage == domain.StageOptimize {
			if err := r.Publisher.PublishReport(ctx, res.RunID, rep); err != nil {
				logger.Warn("publish outputs failed", "stage", string(rep.Stage), "error", err)
			}
		}
	}
	if r.Publisher != nil {
		if err := r.Publisher.PublishFile(ctx, res.RunID, logPath); err != nil {
			logger.Warn("publish campaign log failed", "error", err)
		}
	}

	logger.Info("campaign mode finished", "failed", res.Failed())
	return res, runErr
}

func (r *Runner) runMode(ctx context.Context, spec Spec, mode Mode, cfg pipeline.Config, expand func(string) string, res *Result) error {
	if spec.RequireTraceCollector {
		if err := cfg.Tools.RequireTraceCollector(); err != nil {
			return err
		}
	}

	switch mode.Kind {
	case KindOptimize:
		return r.optimize(ctx, mode, cfg, expand, res)
	case KindEvaluate:
		units, err := r.Layout.CandidateUnits(mode.ReferenceSet, expand(mode.Candidates))
		if err != nil {
			return err
		}
		cfg.Units = units
		d := pipeline.New(cfg)
		res.Reports = append(res.Reports, d.VerifyAll(ctx), d.EvaluateAll(ctx))
		return nil
	case KindTrace:
		output := expand(mode.Output)
		d, err := pipeline.FromBenchmarkSet(ctx, cfg, pipeline.BenchmarkSet{
			Layout:     r.Layout,
			Set:        mode.BenchSet,
			All:        true,
			OutputRoot: output,
		})
		if err != nil {
			return err
		}
		if conv, ok := d.Conversion(); ok {
			res.Reports = append(res.Reports, conv)
		}
		rep, err := d.CollectTraces(ctx, filepath.Join(output, outroot.BaselineDir), filepath.Join(output, outroot.TraceDir))
		if err != nil {
			return err
		}
		res.Reports = append(res.Reports, rep)
		return nil
	default:
		return fmt.Errorf("mode %s: unsupported kind %q", mode.Name, mode.Kind)
	}
}

func (r *Runner) optimize(ctx context.Context, mode Mode, cfg pipeline.Config, expand func(string) string, res *Result) error {
	dom, err := benchset.ParseDomain(mode.Domain)
	if err != nil {
		return err
	}
	d, err := pipeline.FromBenchmarkSet(ctx, cfg, pipeline.BenchmarkSet{
		Layout:     r.Layout,
		Set:        mode.BenchSet,
		All:        true,
		RuleSet:    mode.RuleSet,
		OutputRoot: expand(mode.Output),
	})
	if err != nil {
		return err
	}
	if conv, ok := d.Conversion(); ok {
		res.Reports = append(res.Reports, conv)
	}
	d.UseDomainRules(r.Layout, dom)
	if mode.TraceDir != "" {
		traceDir := expand(mode.TraceDir)
		d.SetTraceNamer(func(stem string) string {
			return filepath.Join(traceDir, stem+".trace")
		})
	}

	var override pipeline.UnitOptimizer
	switch {
	case mode.Refine:
		override = refine.New(nil).UnitOptimizer()
	case mode.LogDir != "":
		override = pipeline.SplitLogs(expand(mode.LogDir))
	}
	rep, err := d.OptimizeAll(ctx, override)
	if err != nil {
		return err
	}
	res.Reports = append(res.Reports, rep)
	return nil
}
