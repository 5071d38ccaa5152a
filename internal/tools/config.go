package tools

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/animus-labs/eqsat-pipeline/internal/platform/env"
)

// Paths locates the external collaborators.
type Paths struct {
	Converter      string
	Optimizer      string
	Evaluator      string
	EquivChecker   string
	RewriteApply   string
	TraceCollector string
}

// DefaultPaths returns the build locations under the driver root. The rewrite
// tool and trace collector are looked up on PATH.
func DefaultPaths(driverDir string) Paths {
	return Paths{
		Converter:      filepath.Join(driverDir, "ckt-convert", "target", "release", "ckt-convert"),
		Optimizer:      filepath.Join(driverDir, "eqsat-opt", "target", "release", "eqsat-opt"),
		Evaluator:      filepath.Join(driverDir, "he-eval", "build", "he-eval"),
		EquivChecker:   filepath.Join(driverDir, "scripts", "run_abc.sh"),
		RewriteApply:   "esop_apply",
		TraceCollector: "esop_paper",
	}
}

func PathsFromEnv(driverDir string) (Paths, error) {
	def := DefaultPaths(driverDir)
	p := Paths{
		Converter:      env.String("PIPELINE_CKT_CONVERT", def.Converter),
		Optimizer:      env.String("PIPELINE_EQSAT_OPT", def.Optimizer),
		Evaluator:      env.String("PIPELINE_HE_EVAL", def.Evaluator),
		EquivChecker:   env.String("PIPELINE_RUN_ABC", def.EquivChecker),
		RewriteApply:   env.String("PIPELINE_ESOP_APPLY", def.RewriteApply),
		TraceCollector: env.String("PIPELINE_ESOP_PAPER", def.TraceCollector),
	}
	if err := p.Validate(); err != nil {
		return Paths{}, err
	}
	return p, nil
}

func (p Paths) Validate() error {
	if strings.TrimSpace(p.Converter) == "" {
		return errors.New("converter path is required")
	}
	if strings.TrimSpace(p.Optimizer) == "" {
		return errors.New("optimizer path is required")
	}
	if strings.TrimSpace(p.Evaluator) == "" {
		return errors.New("evaluator path is required")
	}
	if strings.TrimSpace(p.EquivChecker) == "" {
		return errors.New("equivalence checker path is required")
	}
	if strings.TrimSpace(p.RewriteApply) == "" {
		return errors.New("rewrite tool path is required")
	}
	if strings.TrimSpace(p.TraceCollector) == "" {
		return errors.New("trace collector path is required")
	}
	return nil
}
