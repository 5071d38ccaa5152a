package benchset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Domain selects the shared rewrite rules applied to every benchmark.
type Domain string

const (
	DomainInt  Domain = "int"
	DomainBool Domain = "bool"
	DomainEsyn Domain = "esyn"
	DomainNone Domain = "none"
)

func ParseDomain(raw string) (Domain, error) {
	switch d := Domain(strings.ToLower(strings.TrimSpace(raw))); d {
	case DomainInt, DomainBool, DomainEsyn, DomainNone:
		return d, nil
	case "":
		return DomainNone, nil
	default:
		return "", fmt.Errorf("unsupported rule domain: %q", raw)
	}
}

// DomainRules returns the shared rule files for d.
func (l Layout) DomainRules(d Domain) []string {
	switch d {
	case DomainInt:
		return []string{filepath.Join(l.RulesDir(), "arith.rules")}
	case DomainBool:
		return []string{filepath.Join(l.RulesDir(), "bool.rules")}
	case DomainEsyn:
		return []string{filepath.Join(l.RulesDir(), "esyn.rules")}
	default:
		return nil
	}
}

// CommRules replaces the optimizer's built-in commutative matching.
func (l Layout) CommRules() string {
	return filepath.Join(l.RulesDir(), "comm.rules")
}

// ResolveRulesArg interprets a --rules argument: a rule-set name under the
// rules root, a single shared rule file, or a directory of shared rule files.
func (l Layout) ResolveRulesArg(arg string) (string, []string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", nil, nil
	}
	if l.IsRuleSet(arg) {
		return arg, nil, nil
	}
	info, err := os.Stat(arg)
	if err != nil {
		return "", nil, fmt.Errorf("rules %q is neither a rule set, a file, nor a directory", arg)
	}
	if !info.IsDir() {
		return "", []string{arg}, nil
	}
	entries, err := os.ReadDir(arg)
	if err != nil {
		return "", nil, fmt.Errorf("list rules dir %s: %w", arg, err)
	}
	shared := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		shared = append(shared, filepath.Join(arg, entry.Name()))
	}
	sort.Strings(shared)
	return "", shared, nil
}
