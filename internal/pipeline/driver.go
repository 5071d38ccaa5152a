package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/animus-labs/eqsat-pipeline/internal/benchset"
	"github.com/animus-labs/eqsat-pipeline/internal/domain"
	"github.com/animus-labs/eqsat-pipeline/internal/outroot"
	"github.com/animus-labs/eqsat-pipeline/internal/params"
	"github.com/animus-labs/eqsat-pipeline/internal/tools"
)

// TraceNamer maps a benchmark stem to the optimizer's trace file.
type TraceNamer func(stem string) string

type Config struct {
	Tools       *tools.Toolchain
	Units       []domain.BenchmarkUnit
	SharedRules []string
	Params      params.Parameters
	Jobs        int
	TraceNamer  TraceNamer
	Logger      *slog.Logger
	// Stdout receives verify records when the toolchain has no shared sink.
	Stdout io.Writer
}

type Driver struct {
	cfg        Config
	conversion *domain.BatchReport
}

func New(cfg Config) *Driver {
	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	cfg.Units = append([]domain.BenchmarkUnit(nil), cfg.Units...)
	cfg.SharedRules = append([]string(nil), cfg.SharedRules...)
	cfg.Params = cfg.Params.Clone()
	return &Driver{cfg: cfg}
}

// BenchmarkSet selects the benchmarks a driver is built from.
type BenchmarkSet struct {
	Layout     benchset.Layout
	Set        string
	Names      []string
	All        bool
	RuleSet    string
	OutputRoot string
}

// FromBenchmarkSet resolves the set, converts every benchmark into the output
// root, and returns a driver with one unit per benchmark. Conversion runs
// serially before any unit exists. An unknown benchmark fails the whole
// construction.
func FromBenchmarkSet(ctx context.Context, cfg Config, req BenchmarkSet) (*Driver, error) {
	if cfg.Tools == nil {
		return nil, errors.New("toolchain is required")
	}
	if req.OutputRoot == "" {
		req.OutputRoot = "out"
	}
	if req.RuleSet != "" && !req.Layout.IsRuleSet(req.RuleSet) {
		return nil, fmt.Errorf("rule set %q not found under %s", req.RuleSet, req.Layout.RulesDir())
	}
	if err := outroot.Ensure(req.OutputRoot, outroot.OptDir); err != nil {
		return nil, err
	}
	names, err := req.Layout.Resolve(req.Set, req.Names, req.All)
	if err != nil {
		return nil, err
	}

	units := make([]domain.BenchmarkUnit, 0, len(names))
	for _, name := range names {
		unit := domain.BenchmarkUnit{
			InputPath:  filepath.Join(req.OutputRoot, name+benchset.IntermediateExt),
			OutputPath: filepath.Join(req.OutputRoot, outroot.OptDir, name+benchset.OutputExt),
		}
		if req.RuleSet != "" {
			unit.RulePaths = []string{req.Layout.UnitRules(req.RuleSet, name)}
		}
		units = append(units, unit)
	}

	d := New(cfg)
	report := domain.BatchReport{RunID: newRunID(), Stage: domain.StageConvert, StartedAt: time.Now().UTC()}
	for i, name := range names {
		src := req.Layout.BenchPath(req.Set, name)
		unit := units[i]
		result := d.runUnit(ctx, domain.StageConvert, unit, func(ctx context.Context, u domain.BenchmarkUnit) (domain.UnitDetail, error) {
			return domain.UnitDetail{}, d.cfg.Tools.Convert(ctx, src, u.InputPath)
		})
		report.Results = append(report.Results, result)
	}
	report.FinishedAt = time.Now().UTC()

	d.cfg.Units = units
	d.conversion = &report
	return d, nil
}

// Conversion returns the report of the conversion performed at construction,
// if any.
func (d *Driver) Conversion() (domain.BatchReport, bool) {
	if d.conversion == nil {
		return domain.BatchReport{}, false
	}
	return *d.conversion, true
}

func (d *Driver) Units() []domain.BenchmarkUnit {
	return append([]domain.BenchmarkUnit(nil), d.cfg.Units...)
}

func (d *Driver) SharedRules() []string {
	return append([]string(nil), d.cfg.SharedRules...)
}

func (d *Driver) Jobs() int {
	return d.cfg.Jobs
}

func (d *Driver) SetJobs(jobs int) {
	if jobs < 1 {
		jobs = 1
	}
	d.cfg.Jobs = jobs
}

func (d *Driver) Tools() *tools.Toolchain {
	return d.cfg.Tools
}

func (d *Driver) Logger() *slog.Logger {
	return d.cfg.Logger
}

// Params exposes the driver's optimizer parameters for configuration.
func (d *Driver) Params() *params.Parameters {
	return &d.cfg.Params
}

func (d *Driver) SetParams(p params.Parameters) {
	d.cfg.Params = p.Clone()
}

func (d *Driver) SetTraceNamer(namer TraceNamer) {
	d.cfg.TraceNamer = namer
}

// AddSharedRules appends rule files applied to every unit, ahead of unit rules.
func (d *Driver) AddSharedRules(paths ...string) {
	d.cfg.SharedRules = append(d.cfg.SharedRules, paths...)
}

// UseDomainRules appends the shared rules of the given domain.
func (d *Driver) UseDomainRules(layout benchset.Layout, dom benchset.Domain) {
	d.AddSharedRules(layout.DomainRules(dom)...)
}

// DisableCommMatching turns off the optimizer's built-in commutative matching
// and supplies the explicit commutativity rules instead.
func (d *Driver) DisableCommMatching(layout benchset.Layout) {
	d.cfg.Params.Global.SetFlag("--no-comm-matching")
	d.AddSharedRules(layout.CommRules())
}

// Sink is where stage records and failure lines are written: the toolchain's
// shared sink when configured, otherwise nil.
func (d *Driver) Sink() io.Writer {
	if d.cfg.Tools == nil {
		return nil
	}
	return d.cfg.Tools.Sink()
}

// Records is where stage records and progress lines are written: the shared
// sink, or Config.Stdout when output is inherited.
func (d *Driver) Records() io.Writer {
	if sink := d.Sink(); sink != nil {
		return sink
	}
	return d.cfg.Stdout
}
