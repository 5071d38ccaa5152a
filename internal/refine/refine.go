// Package refine alternates equality saturation with an ESOP rewrite pass on
// one benchmark until the circuit stops improving.
//
// Even iterations run the optimizer (unbounded on the first pass, with a
// reduced time budget afterwards); odd iterations round-trip the current best
// circuit through the rewrite tool. After each iteration the candidate's
// (depth, mc) is compared with the best accepted pair:
//
//   - once a pair has been accepted, a candidate whose depth² × mc is larger
//     is a regression and ends refinement without touching the output;
//   - a candidate equal to the best pair extends the plateau streak, and a
//     streak of two ends refinement;
//   - anything else is accepted and becomes the unit's output.
//
// Refinement also ends after MaxIterations. The unit's output always holds
// the best accepted circuit.
package refine

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
)

const (
	DefaultMaxIterations   = 10
	DefaultRefineTimeLimit = "60"
	plateauLength          = 2
)

type StopReason string

const (
	StopRegression StopReason = "regression"
	StopPlateau    StopReason = "plateau"
	StopLimit      StopReason = "limit"
	StopError      StopReason = "error"
)

// Verdict is the outcome of comparing one candidate with the best pair.
type Verdict int

const (
	Accept Verdict = iota
	Regression
	Plateau
)

// Decide applies the acceptance rule to candidate given the best accepted
// pair and the current plateau streak, returning the verdict and new streak.
func Decide(best, candidate domain.CostRecord, streak int) (Verdict, int) {
	if best.Depth != 0 && best.MultiplicativeComplexity != 0 && candidate.Weighted() > best.Weighted() {
		return Regression, streak
	}
	if candidate == best {
		streak++
		if streak == plateauLength {
			return Plateau, streak
		}
		return Accept, streak
	}
	return Accept, 0
}

// Engine is what one refinement needs from the pipeline.
type Engine interface {
	Optimize(ctx context.Context, unit domain.BenchmarkUnit, out string, timeLimit string) error
	Convert(ctx context.Context, in, out string) error
	ApplyRewrite(ctx context.Context, in, out string) error
	Stats(ctx context.Context, circuit string) (domain.CostRecord, error)
}

type Refiner struct {
	MaxIterations   int
	RefineTimeLimit string
	// Log receives progress lines; nil discards them.
	Log io.Writer

	now func() time.Time
}

func New(log io.Writer) *Refiner {
	return &Refiner{
		MaxIterations:   DefaultMaxIterations,
		RefineTimeLimit: DefaultRefineTimeLimit,
		Log:             log,
		now:             time.Now,
	}
}

type Outcome struct {
	Iterations int
	Best       domain.CostRecord
	Streak     int
	Stop       StopReason
	Elapsed    time.Duration
}

func (o Outcome) Detail() domain.UnitDetail {
	best := o.Best
	return domain.UnitDetail{Cost: &best, Iterations: o.Iterations, StopReason: string(o.Stop)}
}

// TempPath is the scratch output used while refining a unit.
func TempPath(unit domain.BenchmarkUnit) string {
	return unit.OutputPath + "_tmp.eqn"
}

// Refine runs the convergence loop for unit. The scratch file is removed on
// every exit path.
func (r *Refiner) Refine(ctx context.Context, eng Engine, unit domain.BenchmarkUnit) (out Outcome, err error) {
	maxIters := r.MaxIterations
	if maxIters <= 0 {
		maxIters = DefaultMaxIterations
	}
	limit := r.RefineTimeLimit
	if limit == "" {
		limit = DefaultRefineTimeLimit
	}
	now := r.now
	if now == nil {
		now = time.Now
	}
	log := r.Log
	if log == nil {
		log = io.Discard
	}

	tmp := TempPath(unit)
	start := now()
	out = Outcome{Stop: StopLimit}
	defer func() {
		_ = os.Remove(tmp)
		out.Elapsed = now().Sub(start)
		fmt.Fprintf(log, "%s:%s\n", unit.InputPath, strconv.FormatFloat(out.Elapsed.Seconds(), 'f', -1, 64))
	}()

	for iter := 0; iter < maxIters; iter++ {
		out.Iterations = iter + 1
		if iter%2 == 0 {
			fmt.Fprintf(log, "(bench %s) Iter %d: eqsat (%s)\n", unit.InputPath, iter, out.Best)
			timeLimit := ""
			if iter > 0 {
				timeLimit = limit
			}
			if err := eng.Optimize(ctx, unit, tmp, timeLimit); err != nil {
				fmt.Fprintf(log, "(bench %s) failed to run eqsat: %v\n", unit.InputPath, err)
			}
		} else {
			fmt.Fprintf(log, "(bench %s) Iter %d: esop (%s)\n", unit.InputPath, iter, out.Best)
			err1 := eng.Convert(ctx, unit.OutputPath, unit.InputPath)
			err2 := eng.ApplyRewrite(ctx, unit.InputPath, tmp)
			err3 := eng.Convert(ctx, tmp, unit.InputPath)
			if err1 != nil || err2 != nil || err3 != nil {
				fmt.Fprintf(log, "(bench %s) failed to run esop_apply\n", unit.InputPath)
			}
		}

		cost, err := eng.Stats(ctx, tmp)
		if err != nil {
			out.Stop = StopError
			return out, fmt.Errorf("iteration %d stats: %w", iter, err)
		}

		verdict, streak := Decide(out.Best, cost, out.Streak)
		out.Streak = streak
		switch verdict {
		case Regression:
			out.Stop = StopRegression
			return out, nil
		case Plateau:
			out.Stop = StopPlateau
			return out, nil
		}
		if err := copyFile(tmp, unit.OutputPath); err != nil {
			out.Stop = StopError
			return out, fmt.Errorf("accept iteration %d: %w", iter, err)
		}
		out.Best = cost
	}
	return out, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, in); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
