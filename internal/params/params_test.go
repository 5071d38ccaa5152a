package params

import (
	"errors"
	"reflect"
	"testing"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
)

func TestRenderOrdersGlobalModeThenModeFlags(t *testing.T) {
	var p Parameters
	mode := p.SetMode("md-multiple-iters")
	mode.Params.SetValue("--iters", "1")
	p.Global.SetValue(TimeLimitFlag, "300")
	mode.Params.SetValue("--num-candidates", "0")
	p.Global.SetFlag("--strict-deadlines")

	got, err := p.Render()
	if err != nil {
		t.Fatalf("Render() err=%v", err)
	}
	want := []string{
		"--egg-time-limit", "300",
		"--strict-deadlines",
		"md-multiple-iters",
		"--iters", "1",
		"--num-candidates", "0",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Render()=%v, want %v", got, want)
	}

	again, err := p.Render()
	if err != nil {
		t.Fatalf("Render() err=%v", err)
	}
	if !reflect.DeepEqual(got, again) {
		t.Fatalf("expected idempotent render, got %v vs %v", got, again)
	}
}

func TestRenderWithoutMode(t *testing.T) {
	var p Parameters
	p.Global.SetFlag("--strict-deadlines")
	if _, err := p.Render(); !errors.Is(err, domain.ErrModeMissing) {
		t.Fatalf("Render() err=%v, want ErrModeMissing", err)
	}
}

func TestParseInto(t *testing.T) {
	var s Set
	if err := ParseInto(&s, "a=1 b"); err != nil {
		t.Fatalf("ParseInto() err=%v", err)
	}
	want := []Entry{Valued("a", "1"), Flag("b")}
	if got := s.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Entries()=%v, want %v", got, want)
	}

	if err := ParseInto(&s, "c a=2"); err != nil {
		t.Fatalf("ParseInto() err=%v", err)
	}
	want = []Entry{Valued("a", "2"), Flag("b"), Flag("c")}
	if got := s.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Entries()=%v, want %v", got, want)
	}
}

func TestParseIntoRejectsAmbiguousTokens(t *testing.T) {
	var s Set
	if err := ParseInto(&s, "a=b=c"); err == nil {
		t.Fatalf("expected error for token with two '='")
	}
	if err := ParseInto(&s, "=1"); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestParseIntoLeavesTargetOnError(t *testing.T) {
	var s Set
	s.SetValue("--iters", "1")
	if err := ParseInto(&s, "a=1 --iters=5 b=c=d"); err == nil {
		t.Fatalf("expected error for token with two '='")
	}
	want := []Entry{Valued("--iters", "1")}
	if got := s.Entries(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Entries()=%v, want %v", got, want)
	}
}

func TestPutKeepsPosition(t *testing.T) {
	var s Set
	s.SetFlag("--x")
	s.SetValue("--y", "1")
	s.SetValue("--x", "2")
	if got, want := s.Tokens(), []string{"--x", "2", "--y", "1"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokens()=%v, want %v", got, want)
	}
	s.SetFlag("--z")
	if got, want := s.Tokens(), []string{"--x", "2", "--y", "1", "--z"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokens()=%v, want %v", got, want)
	}
}

func TestWithTimeLimitDoesNotMutate(t *testing.T) {
	p := New("md-vanilla-flow")
	p.Global.SetValue(TimeLimitFlag, "300")
	limited := p.WithTimeLimit("60")

	e, _ := p.Global.Get(TimeLimitFlag)
	if e.Value != "300" {
		t.Fatalf("original time limit=%q, want 300", e.Value)
	}
	e, _ = limited.Global.Get(TimeLimitFlag)
	if e.Value != "60" {
		t.Fatalf("override time limit=%q, want 60", e.Value)
	}

	limited.Mode().Params.SetFlag("--extra")
	if p.Mode().Params.Len() != 0 {
		t.Fatalf("clone shares mode params with original")
	}
}
