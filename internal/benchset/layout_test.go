package benchset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestResolveAll(t *testing.T) {
	root := t.TempDir()
	l := Layout{Root: root}
	writeFile(t, l.BenchPath("lobster", "b"))
	writeFile(t, l.BenchPath("lobster", "a"))
	writeFile(t, filepath.Join(l.BenchDir("lobster"), "README"))

	got, err := l.Resolve("lobster", nil, true)
	if err != nil {
		t.Fatalf("Resolve() err=%v", err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve()=%v, want %v", got, want)
	}
}

func TestResolveNamed(t *testing.T) {
	root := t.TempDir()
	l := Layout{Root: root}
	writeFile(t, l.BenchPath("lobster", "adder"))

	got, err := l.Resolve("lobster", []string{"adder"}, false)
	if err != nil {
		t.Fatalf("Resolve() err=%v", err)
	}
	if !reflect.DeepEqual(got, []string{"adder"}) {
		t.Fatalf("Resolve()=%v", got)
	}

	if _, err := l.Resolve("lobster", []string{"adder", "missing"}, false); !errors.Is(err, domain.ErrBenchmarkNotFound) {
		t.Fatalf("Resolve() err=%v, want ErrBenchmarkNotFound", err)
	}
	if _, err := l.Resolve("nope", nil, true); !errors.Is(err, domain.ErrBenchmarkNotFound) {
		t.Fatalf("Resolve() err=%v, want ErrBenchmarkNotFound for missing set", err)
	}
}

func TestResolveRulesArg(t *testing.T) {
	root := t.TempDir()
	l := Layout{Root: root}
	writeFile(t, l.UnitRules("lobster", "adder"))

	ruleSet, shared, err := l.ResolveRulesArg("lobster")
	if err != nil || ruleSet != "lobster" || len(shared) != 0 {
		t.Fatalf("ResolveRulesArg(lobster)=%q,%v,%v", ruleSet, shared, err)
	}

	file := filepath.Join(root, "extra.rules")
	writeFile(t, file)
	ruleSet, shared, err = l.ResolveRulesArg(file)
	if err != nil || ruleSet != "" || !reflect.DeepEqual(shared, []string{file}) {
		t.Fatalf("ResolveRulesArg(file)=%q,%v,%v", ruleSet, shared, err)
	}

	dir := filepath.Join(root, "mine")
	writeFile(t, filepath.Join(dir, "z.rules"))
	writeFile(t, filepath.Join(dir, "a.rules"))
	_, shared, err = l.ResolveRulesArg(dir)
	if err != nil {
		t.Fatalf("ResolveRulesArg(dir) err=%v", err)
	}
	want := []string{filepath.Join(dir, "a.rules"), filepath.Join(dir, "z.rules")}
	if !reflect.DeepEqual(shared, want) {
		t.Fatalf("ResolveRulesArg(dir)=%v, want %v", shared, want)
	}

	if _, _, err := l.ResolveRulesArg(filepath.Join(root, "absent")); err == nil {
		t.Fatalf("expected error for unresolvable rules")
	}
}

func TestDomainRules(t *testing.T) {
	l := Layout{Root: "/drv"}
	if got := l.DomainRules(DomainBool); !reflect.DeepEqual(got, []string{"/drv/rules/bool.rules"}) {
		t.Fatalf("DomainRules(bool)=%v", got)
	}
	if got := l.DomainRules(DomainNone); len(got) != 0 {
		t.Fatalf("DomainRules(none)=%v", got)
	}
	if _, err := ParseDomain("float"); err == nil {
		t.Fatalf("ParseDomain() expected error")
	}
}
