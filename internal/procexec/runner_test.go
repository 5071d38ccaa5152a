package procexec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestRunNonZeroExitIsData(t *testing.T) {
	var sink bytes.Buffer
	r := New(WithSharedSink(&sink))

	res := r.Run(context.Background(), "sh", []string{"-c", "echo out; echo err 1>&2; exit 3"})
	if res.Err != nil {
		t.Fatalf("Run() err=%v", res.Err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("ExitCode=%d, want 3", res.ExitCode)
	}
	if !res.Failed() {
		t.Fatalf("expected Failed()")
	}
	var exitErr *ExitError
	if !errors.As(res.AsError(), &exitErr) || exitErr.Code != 3 {
		t.Fatalf("AsError()=%v, want ExitError code 3", res.AsError())
	}
	if got := sink.String(); !strings.Contains(got, "out\n") || !strings.Contains(got, "err\n") {
		t.Fatalf("sink=%q, want combined output", got)
	}
}

func TestResolvePriority(t *testing.T) {
	var stdout, stderr, shared, override bytes.Buffer

	inherit := New(WithInherited(&stdout, &stderr))
	if target, _, _ := inherit.Resolve(nil); target != TargetInherit {
		t.Fatalf("target=%s, want inherit", target)
	}

	withShared := New(WithInherited(&stdout, &stderr), WithSharedSink(&shared))
	if target, _, _ := withShared.Resolve(nil); target != TargetShared {
		t.Fatalf("target=%s, want shared", target)
	}
	if target, _, _ := withShared.Resolve(&override); target != TargetOverride {
		t.Fatalf("target=%s, want override", target)
	}

	res := withShared.Run(context.Background(), "sh", []string{"-c", "echo routed"}, Override(&override))
	if res.Failed() {
		t.Fatalf("Run() failed: %v", res.AsError())
	}
	if override.String() != "routed\n" {
		t.Fatalf("override=%q, want routed", override.String())
	}
	if shared.Len() != 0 || stdout.Len() != 0 {
		t.Fatalf("expected no output outside override sink")
	}
}

func TestOutputCapturesStdout(t *testing.T) {
	var sink bytes.Buffer
	r := New(WithSharedSink(&sink))
	out, res := r.Output(context.Background(), "sh", []string{"-c", "printf '4,10'; echo warn 1>&2"})
	if res.Failed() {
		t.Fatalf("Output() failed: %v", res.AsError())
	}
	if string(out) != "4,10" {
		t.Fatalf("Output()=%q, want 4,10", out)
	}
	if sink.String() != "warn\n" {
		t.Fatalf("sink=%q, want stderr only", sink.String())
	}
}

func TestDiscardStdout(t *testing.T) {
	var sink bytes.Buffer
	r := New(WithSharedSink(&sink))
	res := r.Run(context.Background(), "sh", []string{"-c", "echo noisy; echo kept 1>&2"}, DiscardStdout())
	if res.Failed() {
		t.Fatalf("Run() failed: %v", res.AsError())
	}
	if sink.String() != "kept\n" {
		t.Fatalf("sink=%q, want kept", sink.String())
	}
}

func TestRunMissingBinary(t *testing.T) {
	r := New(WithInherited(&bytes.Buffer{}, &bytes.Buffer{}))
	res := r.Run(context.Background(), "/nonexistent/eqsat-opt", nil)
	if res.Err == nil {
		t.Fatalf("expected start error")
	}
	if !res.Failed() || res.AsError() == nil {
		t.Fatalf("expected failed result")
	}
}

func TestEchoLogsCommand(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := New(WithLogger(logger), WithEcho(true), WithInherited(&bytes.Buffer{}, &bytes.Buffer{}))
	r.Run(context.Background(), "true", []string{"--flag", "value"})
	if !strings.Contains(logs.String(), "true --flag value") {
		t.Fatalf("logs=%q, want echoed command", logs.String())
	}
}
