package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/animus-labs/eqsat-pipeline/internal/benchset"
	"github.com/animus-labs/eqsat-pipeline/internal/domain"
	"github.com/animus-labs/eqsat-pipeline/internal/outroot"
	"github.com/animus-labs/eqsat-pipeline/internal/procexec"
)

type optimizeConfig struct {
	timeLimit string
	sink      io.Writer
}

type OptimizeOption func(*optimizeConfig)

// WithTimeLimit overrides the optimizer's time budget for one invocation.
func WithTimeLimit(limit string) OptimizeOption {
	return func(c *optimizeConfig) {
		c.timeLimit = limit
	}
}

// WithSink captures one invocation's output in w instead of the shared sink.
func WithSink(w io.Writer) OptimizeOption {
	return func(c *optimizeConfig) {
		c.sink = w
	}
}

// OptimizeArgs builds the optimizer command line for unit writing to out.
// Shared rules precede unit rules. The trace pair is an optimizer-level flag
// and is placed with the other global flags, before the mode keyword.
func (d *Driver) OptimizeArgs(unit domain.BenchmarkUnit, out string, timeLimit string) ([]string, error) {
	args := []string{unit.InputPath, out}
	for _, rule := range d.cfg.SharedRules {
		args = append(args, "--rules", rule)
	}
	for _, rule := range unit.RulePaths {
		args = append(args, "--rules", rule)
	}
	if d.cfg.TraceNamer != nil {
		args = append(args, "--trace", d.cfg.TraceNamer(domain.Stem(unit.InputPath)))
	}

	p := d.cfg.Params.Clone()
	if timeLimit != "" {
		p = p.WithTimeLimit(timeLimit)
	}
	rendered, err := p.Render()
	if err != nil {
		return nil, err
	}
	return append(args, rendered...), nil
}

// OptimizeOne runs the optimizer once for unit and writes the result to out.
func (d *Driver) OptimizeOne(ctx context.Context, unit domain.BenchmarkUnit, out string, opts ...OptimizeOption) error {
	var cfg optimizeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	args, err := d.OptimizeArgs(unit, out, cfg.timeLimit)
	if err != nil {
		return err
	}
	var callOpts []procexec.CallOption
	if cfg.sink != nil {
		callOpts = append(callOpts, procexec.Override(cfg.sink))
	}
	return d.cfg.Tools.Optimize(ctx, args, callOpts...)
}

// UnitOptimizer replaces the default per-unit optimize step.
type UnitOptimizer func(ctx context.Context, d *Driver, unit domain.BenchmarkUnit) (domain.UnitDetail, error)

// OptimizeAll optimizes every unit into its output path. The mode must be set;
// this is checked once, before any unit runs.
func (d *Driver) OptimizeAll(ctx context.Context, override UnitOptimizer) (domain.BatchReport, error) {
	if !d.cfg.Params.HasMode() {
		return domain.BatchReport{}, fmt.Errorf("driver does not have a mode set: %w", domain.ErrModeMissing)
	}
	task := func(ctx context.Context, unit domain.BenchmarkUnit) (domain.UnitDetail, error) {
		if override != nil {
			return override(ctx, d, unit)
		}
		return domain.UnitDetail{}, d.OptimizeOne(ctx, unit, unit.OutputPath)
	}
	return d.RunAll(ctx, domain.StageOptimize, task), nil
}

// SplitLogs returns a unit optimizer that captures each unit's optimizer
// output in <dir>/<stem>.log.
func SplitLogs(dir string) UnitOptimizer {
	return func(ctx context.Context, d *Driver, unit domain.BenchmarkUnit) (domain.UnitDetail, error) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.UnitDetail{}, err
		}
		f, err := os.Create(filepath.Join(dir, domain.Stem(unit.InputPath)+".log"))
		if err != nil {
			return domain.UnitDetail{}, fmt.Errorf("create unit log: %w", err)
		}
		defer f.Close()
		return domain.UnitDetail{}, d.OptimizeOne(ctx, unit, unit.OutputPath, WithSink(f))
	}
}

// VerifyAll writes one "<input>,<stats>,<equivalence>" record per unit. It
// always runs serially: every record goes to the same stream and concurrent
// units would interleave partial records.
func (d *Driver) VerifyAll(ctx context.Context) domain.BatchReport {
	w := d.Records()
	task := func(ctx context.Context, unit domain.BenchmarkUnit) (domain.UnitDetail, error) {
		fmt.Fprintf(w, "%s,", unit.InputPath)
		statsErr := d.cfg.Tools.StatsTo(ctx, unit.OutputPath)
		fmt.Fprint(w, ",")
		checkErr := d.cfg.Tools.CheckEquivalence(ctx, unit.InputPath, unit.OutputPath)
		return domain.UnitDetail{}, errors.Join(statsErr, checkErr)
	}
	return d.runAll(ctx, domain.StageVerify, 1, task)
}

// EvaluateAll runs the cost evaluator on every unit's output.
func (d *Driver) EvaluateAll(ctx context.Context) domain.BatchReport {
	task := func(ctx context.Context, unit domain.BenchmarkUnit) (domain.UnitDetail, error) {
		return domain.UnitDetail{}, d.cfg.Tools.Evaluate(ctx, unit.OutputPath)
	}
	return d.RunAll(ctx, domain.StageEvaluate, task)
}

// CollectTraces runs the trace collector on every unit, writing
// <baselineDir>/<stem>.eqn and <traceDir>/<stem>.trace.
func (d *Driver) CollectTraces(ctx context.Context, baselineDir, traceDir string) (domain.BatchReport, error) {
	if err := d.cfg.Tools.RequireTraceCollector(); err != nil {
		return domain.BatchReport{}, err
	}
	if err := outroot.Ensure(baselineDir); err != nil {
		return domain.BatchReport{}, err
	}
	if err := outroot.Ensure(traceDir); err != nil {
		return domain.BatchReport{}, err
	}
	task := func(ctx context.Context, unit domain.BenchmarkUnit) (domain.UnitDetail, error) {
		stem := domain.Stem(unit.InputPath)
		baseline := filepath.Join(baselineDir, stem+benchset.OutputExt)
		trace := filepath.Join(traceDir, stem+".trace")
		return domain.UnitDetail{}, d.cfg.Tools.CollectTrace(ctx, unit.InputPath, baseline, trace)
	}
	return d.RunAll(ctx, domain.StageTrace, task), nil
}
