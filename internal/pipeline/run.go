package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
)

// Task is the per-unit work of a stage.
type Task func(ctx context.Context, unit domain.BenchmarkUnit) (domain.UnitDetail, error)

// RunAll runs task for every unit under the driver's parallelism.
func (d *Driver) RunAll(ctx context.Context, stage domain.Stage, task Task) domain.BatchReport {
	return d.runAll(ctx, stage, d.cfg.Jobs, task)
}

func (d *Driver) runAll(ctx context.Context, stage domain.Stage, jobs int, task Task) domain.BatchReport {
	report := domain.BatchReport{
		RunID:     newRunID(),
		Stage:     stage,
		StartedAt: time.Now().UTC(),
		Results:   make([]domain.UnitResult, len(d.cfg.Units)),
	}

	if jobs <= 1 {
		for i, unit := range d.cfg.Units {
			report.Results[i] = d.runUnit(ctx, stage, unit, task)
		}
	} else {
		// Tasks never return an error, so one unit cannot cancel the others.
		var g errgroup.Group
		g.SetLimit(jobs)
		for i, unit := range d.cfg.Units {
			g.Go(func() error {
				report.Results[i] = d.runUnit(ctx, stage, unit, task)
				return nil
			})
		}
		_ = g.Wait()
	}

	report.FinishedAt = time.Now().UTC()
	d.cfg.Logger.Info("stage finished",
		"stage", string(stage),
		"run_id", report.RunID,
		"units", len(report.Results),
		"failed", len(report.Failures()),
		"duration", report.FinishedAt.Sub(report.StartedAt).String(),
	)
	return report
}

func (d *Driver) runUnit(ctx context.Context, stage domain.Stage, unit domain.BenchmarkUnit, task Task) (result domain.UnitResult) {
	result = domain.UnitResult{
		Unit:      unit,
		Stage:     stage,
		Status:    domain.StatusSucceeded,
		StartedAt: time.Now().UTC(),
	}
	defer func() {
		if r := recover(); r != nil {
			result.Status = domain.StatusFailed
			result.Error = fmt.Sprintf("panic: %v", r)
		}
		result.FinishedAt = time.Now().UTC()
		if !result.Succeeded() {
			d.reportFailure(result)
		}
	}()

	detail, err := task(ctx, unit)
	result.Detail = detail
	if err != nil {
		result.Status = domain.StatusFailed
		result.Error = err.Error()
	}
	return result
}

func (d *Driver) reportFailure(result domain.UnitResult) {
	if sink := d.Sink(); sink != nil {
		fmt.Fprintf(sink, "(%s) %s: %s\n", result.Stage, result.Unit.Name(), result.Error)
	}
	d.cfg.Logger.Warn("unit failed",
		"stage", string(result.Stage),
		"unit", result.Unit.Name(),
		"error", result.Error,
	)
}

func newRunID() string {
	return uuid.NewString()
}
