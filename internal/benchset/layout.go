// Package benchset resolves benchmark sets and rule files under the driver
// root:
//
//	<root>/bench/<set>/<name>.eqn     benchmark sources
//	<root>/rules/<ruleset>/<name>.rules unit-specific rules
//	<root>/rules/{arith,bool,esyn,comm}.rules shared rules
package benchset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
)

const (
	InputExt        = ".eqn"
	IntermediateExt = ".seqn"
	OutputExt       = ".eqn"
	RulesExt        = ".rules"
)

type Layout struct {
	Root string
}

func (l Layout) BenchDir(set string) string {
	return filepath.Join(l.Root, "bench", set)
}

func (l Layout) BenchPath(set, name string) string {
	return filepath.Join(l.BenchDir(set), name+InputExt)
}

func (l Layout) RulesDir() string {
	return filepath.Join(l.Root, "rules")
}

func (l Layout) RuleSetDir(ruleSet string) string {
	return filepath.Join(l.RulesDir(), ruleSet)
}

// UnitRules is the rule file for one benchmark within a rule set.
func (l Layout) UnitRules(ruleSet, name string) string {
	return filepath.Join(l.RuleSetDir(ruleSet), name+RulesExt)
}

// IsRuleSet reports whether name is a rule-set directory under the rules root.
func (l Layout) IsRuleSet(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	info, err := os.Stat(l.RuleSetDir(name))
	return err == nil && info.IsDir()
}

// Resolve returns the benchmark names to run. With all set, every *.eqn file
// in the set directory is used, sorted by name; otherwise every name must
// exist in the set.
func (l Layout) Resolve(set string, names []string, all bool) ([]string, error) {
	if strings.TrimSpace(set) == "" {
		return nil, errors.New("benchmark set is required")
	}
	if all {
		return l.list(set)
	}
	if len(names) == 0 {
		return nil, errors.New("at least one benchmark name or all is required")
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		path := l.BenchPath(set, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || name == "" {
			return nil, fmt.Errorf("%w: %q in set %s (%s)", domain.ErrBenchmarkNotFound, name, set, path)
		}
		out = append(out, name)
	}
	return out, nil
}

func (l Layout) list(set string) ([]string, error) {
	dir := l.BenchDir(set)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: set %s (%s)", domain.ErrBenchmarkNotFound, set, dir)
		}
		return nil, fmt.Errorf("list benchmark set %s: %w", set, err)
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != InputExt {
			continue
		}
		out = append(out, strings.TrimSuffix(entry.Name(), InputExt))
	}
	sort.Strings(out)
	return out, nil
}
