package domain

import "errors"

var (
	ErrBenchmarkNotFound = errors.New("benchmark_not_found")
	ErrModeMissing       = errors.New("mode_missing")
	ErrUnitCountMismatch = errors.New("unit_count_mismatch")
	ErrToolNotFound      = errors.New("tool_not_found")
)
