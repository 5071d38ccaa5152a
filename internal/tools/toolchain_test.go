package tools

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
	"github.com/animus-labs/eqsat-pipeline/internal/procexec"
)

type recordingExec struct {
	calls  [][]string
	output string
	code   int
}

func (r *recordingExec) Run(ctx context.Context, name string, args []string, opts ...procexec.CallOption) procexec.Result {
	cmd := append([]string{name}, args...)
	r.calls = append(r.calls, cmd)
	return procexec.Result{Command: cmd, ExitCode: r.code}
}

func (r *recordingExec) Output(ctx context.Context, name string, args []string, opts ...procexec.CallOption) ([]byte, procexec.Result) {
	res := r.Run(ctx, name, args, opts...)
	return []byte(r.output), res
}

func (r *recordingExec) Sink() io.Writer { return nil }

func TestParseStats(t *testing.T) {
	got, err := ParseStats("4,10\n")
	if err != nil {
		t.Fatalf("ParseStats() err=%v", err)
	}
	if want := (domain.CostRecord{Depth: 4, MultiplicativeComplexity: 10}); got != want {
		t.Fatalf("ParseStats()=%v, want %v", got, want)
	}

	for _, bad := range []string{"", "4", "x,1", "1,y", "-1,2"} {
		if _, err := ParseStats(bad); err == nil {
			t.Fatalf("ParseStats(%q) expected error", bad)
		}
	}
}

func TestToolchainCommandLines(t *testing.T) {
	rec := &recordingExec{output: "3,7"}
	paths := DefaultPaths("/drv")
	tc := New(paths, rec)
	ctx := context.Background()

	if err := tc.Convert(ctx, "a.eqn", "a.seqn"); err != nil {
		t.Fatalf("Convert() err=%v", err)
	}
	cost, err := tc.Stats(ctx, "a.eqn")
	if err != nil {
		t.Fatalf("Stats() err=%v", err)
	}
	if cost.Depth != 3 || cost.MultiplicativeComplexity != 7 {
		t.Fatalf("Stats()=%v", cost)
	}
	_ = tc.Evaluate(ctx, "opt/a.eqn")
	_ = tc.CheckEquivalence(ctx, "ref.eqn", "opt/a.eqn")
	_ = tc.ApplyRewrite(ctx, "a.seqn", "tmp.eqn")

	want := [][]string{
		{"/drv/ckt-convert/target/release/ckt-convert", "eqn2seqn", "a.eqn", "a.seqn"},
		{"/drv/ckt-convert/target/release/ckt-convert", "stats", "a.eqn"},
		{"/drv/he-eval/build/he-eval", "-q", "opt/a.eqn"},
		{"/drv/scripts/run_abc.sh", "ref.eqn", "opt/a.eqn"},
		{"esop_apply", "a.seqn", "tmp.eqn"},
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Fatalf("calls=%v, want %v", rec.calls, want)
	}
}

func TestToolchainReportsExitStatus(t *testing.T) {
	rec := &recordingExec{code: 2}
	tc := New(DefaultPaths("/drv"), rec)
	err := tc.Evaluate(context.Background(), "x.eqn")
	var exitErr *procexec.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Fatalf("Evaluate() err=%v, want exit status 2", err)
	}
}

func TestRequireTraceCollector(t *testing.T) {
	paths := DefaultPaths("/drv")
	paths.TraceCollector = "definitely-not-a-real-trace-collector"
	tc := New(paths, &recordingExec{})
	if err := tc.RequireTraceCollector(); !errors.Is(err, domain.ErrToolNotFound) {
		t.Fatalf("RequireTraceCollector() err=%v, want ErrToolNotFound", err)
	}
}

func TestPathsFromEnvOverride(t *testing.T) {
	t.Setenv("PIPELINE_EQSAT_OPT", "/opt/bin/eqsat-opt")
	p, err := PathsFromEnv("/drv")
	if err != nil {
		t.Fatalf("PathsFromEnv() err=%v", err)
	}
	if p.Optimizer != "/opt/bin/eqsat-opt" {
		t.Fatalf("Optimizer=%q", p.Optimizer)
	}
	if p.Converter != "/drv/ckt-convert/target/release/ckt-convert" {
		t.Fatalf("Converter=%q", p.Converter)
	}
}
