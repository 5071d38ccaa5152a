// Package tools invokes the external circuit tools: the format converter and
// its stats query, the equality-saturation optimizer, the equivalence checker,
// the homomorphic-encryption evaluator, the ESOP rewrite tool and the trace
// collector. Every tool is a black box; only exit status and the stats output
// are interpreted.
package tools

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
	"github.com/animus-labs/eqsat-pipeline/internal/procexec"
)

// Executor is the process-launching surface the toolchain needs.
// *procexec.Runner implements it.
type Executor interface {
	Run(ctx context.Context, name string, args []string, opts ...procexec.CallOption) procexec.Result
	Output(ctx context.Context, name string, args []string, opts ...procexec.CallOption) ([]byte, procexec.Result)
	Sink() io.Writer
}

type Toolchain struct {
	paths Paths
	exec  Executor
}

func New(paths Paths, executor Executor) *Toolchain {
	return &Toolchain{paths: paths, exec: executor}
}

// Sink is the executor's shared output sink, or nil.
func (t *Toolchain) Sink() io.Writer {
	return t.exec.Sink()
}

// Convert translates an eqn circuit into the optimizer's seqn form.
func (t *Toolchain) Convert(ctx context.Context, in, out string, opts ...procexec.CallOption) error {
	return t.exec.Run(ctx, t.paths.Converter, []string{"eqn2seqn", in, out}, opts...).AsError()
}

// Stats queries depth and multiplicative complexity of circuit.
func (t *Toolchain) Stats(ctx context.Context, circuit string) (domain.CostRecord, error) {
	out, res := t.exec.Output(ctx, t.paths.Converter, []string{"stats", circuit})
	if err := res.AsError(); err != nil {
		return domain.CostRecord{}, err
	}
	return ParseStats(string(out))
}

// StatsTo runs the stats query with its output forwarded to the resolved sink
// rather than parsed.
func (t *Toolchain) StatsTo(ctx context.Context, circuit string, opts ...procexec.CallOption) error {
	return t.exec.Run(ctx, t.paths.Converter, []string{"stats", circuit}, opts...).AsError()
}

// Optimize runs the optimizer with a fully built argument list.
func (t *Toolchain) Optimize(ctx context.Context, args []string, opts ...procexec.CallOption) error {
	return t.exec.Run(ctx, t.paths.Optimizer, args, opts...).AsError()
}

func (t *Toolchain) CheckEquivalence(ctx context.Context, reference, candidate string, opts ...procexec.CallOption) error {
	return t.exec.Run(ctx, t.paths.EquivChecker, []string{reference, candidate}, opts...).AsError()
}

func (t *Toolchain) Evaluate(ctx context.Context, circuit string, opts ...procexec.CallOption) error {
	return t.exec.Run(ctx, t.paths.Evaluator, []string{"-q", circuit}, opts...).AsError()
}

// ApplyRewrite runs the ESOP rewrite tool. Its stdout is discarded.
func (t *Toolchain) ApplyRewrite(ctx context.Context, in, out string, opts ...procexec.CallOption) error {
	opts = append(opts, procexec.DiscardStdout())
	return t.exec.Run(ctx, t.paths.RewriteApply, []string{in, out}, opts...).AsError()
}

// CollectTrace produces a baseline circuit and a rewrite trace for in.
func (t *Toolchain) CollectTrace(ctx context.Context, in, baseline, trace string, opts ...procexec.CallOption) error {
	return t.exec.Run(ctx, t.paths.TraceCollector, []string{in, baseline, trace}, opts...).AsError()
}

// RequireTraceCollector checks that the trace collector can be resolved.
func (t *Toolchain) RequireTraceCollector() error {
	if _, err := exec.LookPath(t.paths.TraceCollector); err != nil {
		return fmt.Errorf("%w: %s is not in PATH", domain.ErrToolNotFound, t.paths.TraceCollector)
	}
	return nil
}

// ParseStats parses the converter's "depth,mc" stats line.
func ParseStats(raw string) (domain.CostRecord, error) {
	fields := strings.Split(strings.TrimSpace(raw), ",")
	if len(fields) < 2 {
		return domain.CostRecord{}, fmt.Errorf("parse stats %q: expected depth,mc", raw)
	}
	depth, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return domain.CostRecord{}, fmt.Errorf("parse stats depth: %w", err)
	}
	mc, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return domain.CostRecord{}, fmt.Errorf("parse stats mc: %w", err)
	}
	if depth < 0 || mc < 0 {
		return domain.CostRecord{}, fmt.Errorf("parse stats %q: negative cost", raw)
	}
	return domain.CostRecord{Depth: depth, MultiplicativeComplexity: mc}, nil
}
