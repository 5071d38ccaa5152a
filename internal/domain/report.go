package domain

import (
	"fmt"
	"strings"
	"time"
)

type Stage string

const (
	StageConvert  Stage = "convert"
	StageOptimize Stage = "optimize"
	StageVerify   Stage = "verify"
	StageEvaluate Stage = "evaluate"
	StageTrace    Stage = "trace"
)

const (
	StatusSucceeded = "Succeeded"
	StatusFailed    = "Failed"
)

// UnitDetail carries optional stage-specific results back from a unit task.
type UnitDetail struct {
	Cost       *CostRecord
	Iterations int
	StopReason string
}

// UnitResult is the typed outcome of one unit in one stage invocation.
type UnitResult struct {
	Unit       BenchmarkUnit
	Stage      Stage
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
	Detail     UnitDetail
}

func (r UnitResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// BatchReport collects every unit's result for one stage invocation, in unit order.
type BatchReport struct {
	RunID      string
	Stage      Stage
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []UnitResult
}

func (b BatchReport) Failures() []UnitResult {
	out := make([]UnitResult, 0)
	for _, r := range b.Results {
		if !r.Succeeded() {
			out = append(out, r)
		}
	}
	return out
}

func (b BatchReport) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.Succeeded() {
			n++
		}
	}
	return n
}

// Summary is a one-line human readable digest of the batch.
func (b BatchReport) Summary() string {
	failures := b.Failures()
	if len(failures) == 0 {
		return fmt.Sprintf("%s: %d/%d units succeeded", b.Stage, len(b.Results), len(b.Results))
	}
	names := make([]string, 0, len(failures))
	for _, f := range failures {
		names = append(names, f.Unit.Name())
	}
	return fmt.Sprintf("%s: %d/%d units succeeded (failed: %s)", b.Stage, b.Succeeded(), len(b.Results), strings.Join(names, ", "))
}
