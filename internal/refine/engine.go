package refine

import (
	"context"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
	"github.com/animus-labs/eqsat-pipeline/internal/pipeline"
)

type driverEngine struct {
	d *pipeline.Driver
}

// DriverEngine runs refinement steps through a pipeline driver, so the
// optimizer sees the driver's rules, parameters and trace namer.
func DriverEngine(d *pipeline.Driver) Engine {
	return driverEngine{d: d}
}

func (e driverEngine) Optimize(ctx context.Context, unit domain.BenchmarkUnit, out string, timeLimit string) error {
	var opts []pipeline.OptimizeOption
	if timeLimit != "" {
		opts = append(opts, pipeline.WithTimeLimit(timeLimit))
	}
	return e.d.OptimizeOne(ctx, unit, out, opts...)
}

func (e driverEngine) Convert(ctx context.Context, in, out string) error {
	return e.d.Tools().Convert(ctx, in, out)
}

func (e driverEngine) ApplyRewrite(ctx context.Context, in, out string) error {
	return e.d.Tools().ApplyRewrite(ctx, in, out)
}

func (e driverEngine) Stats(ctx context.Context, circuit string) (domain.CostRecord, error) {
	return e.d.Tools().Stats(ctx, circuit)
}

// UnitOptimizer adapts the refiner to the driver's optimize stage. Progress
// lines go to the refiner's Log, or to the driver's record stream when Log is
// nil.
func (r *Refiner) UnitOptimizer() pipeline.UnitOptimizer {
	return func(ctx context.Context, d *pipeline.Driver, unit domain.BenchmarkUnit) (domain.UnitDetail, error) {
		refiner := *r
		if refiner.Log == nil {
			refiner.Log = d.Records()
		}
		outcome, err := refiner.Refine(ctx, DriverEngine(d), unit)
		d.Logger().Info("refinement finished",
			"unit", unit.Name(),
			"iterations", outcome.Iterations,
			"stop", string(outcome.Stop),
			"md", outcome.Best.Depth,
			"mc", outcome.Best.MultiplicativeComplexity,
		)
		return outcome.Detail(), err
	}
}
