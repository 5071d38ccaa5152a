// Package ledger persists batch reports so results can be compared across
// runs. A ledger is optional; the CLI treats every ledger error as non-fatal.
package ledger

import (
	"context"
	"time"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
)

type Recorder interface {
	Record(ctx context.Context, report domain.BatchReport) error
}

// Nop discards every report.
type Nop struct{}

func (Nop) Record(context.Context, domain.BatchReport) error { return nil }

// Entry is one unit result as stored in a ledger.
type Entry struct {
	RunID      string    `json:"run_id"`
	Stage      string    `json:"stage"`
	Unit       string    `json:"unit"`
	Input      string    `json:"input"`
	Output     string    `json:"output"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Depth      *int      `json:"depth,omitempty"`
	MC         *int      `json:"mc,omitempty"`
	Iterations int       `json:"iterations,omitempty"`
	StopReason string    `json:"stop_reason,omitempty"`
}

func Entries(report domain.BatchReport) []Entry {
	out := make([]Entry, 0, len(report.Results))
	for _, res := range report.Results {
		e := Entry{
			RunID:      report.RunID,
			Stage:      string(res.Stage),
			Unit:       res.Unit.Name(),
			Input:      res.Unit.InputPath,
			Output:     res.Unit.OutputPath,
			Status:     res.Status,
			Error:      res.Error,
			StartedAt:  res.StartedAt.UTC(),
			FinishedAt: res.FinishedAt.UTC(),
			Iterations: res.Detail.Iterations,
			StopReason: res.Detail.StopReason,
		}
		if e.Stage == "" {
			e.Stage = string(report.Stage)
		}
		if c := res.Detail.Cost; c != nil {
			depth, mc := c.Depth, c.MultiplicativeComplexity
			e.Depth, e.MC = &depth, &mc
		}
		out = append(out, e)
	}
	return out
}
