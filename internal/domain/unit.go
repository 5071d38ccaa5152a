package domain

import (
	"path/filepath"
	"strings"
)

// BenchmarkUnit is one independent piece of work flowing through the stages.
// Units are immutable once built; rule paths are unit-specific and are applied
// after the driver's shared rules.
type BenchmarkUnit struct {
	InputPath  string
	RulePaths  []string
	OutputPath string
}

// Name is the benchmark name: the input's base name without its extension.
// Units without an input (evaluate-only) are named after their output.
func (u BenchmarkUnit) Name() string {
	path := u.InputPath
	if strings.TrimSpace(path) == "" {
		path = u.OutputPath
	}
	return Stem(path)
}

// Stem returns the base name of path without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
