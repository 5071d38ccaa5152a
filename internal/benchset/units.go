package benchset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/animus-labs/eqsat-pipeline/internal/domain"
)

// ListPaths expands path into the circuits it names: the file itself, or every
// regular file in the directory sorted by name.
func ListPaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		out = append(out, filepath.Join(path, entry.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// VerifyUnits pairs reference and candidate circuits positionally after
// expansion. Both sides must expand to the same number of circuits.
func VerifyUnits(reference, candidate string) ([]domain.BenchmarkUnit, error) {
	refs, err := ListPaths(reference)
	if err != nil {
		return nil, err
	}
	cands, err := ListPaths(candidate)
	if err != nil {
		return nil, err
	}
	if len(refs) != len(cands) {
		return nil, fmt.Errorf("%w: %d reference vs %d candidate circuits", domain.ErrUnitCountMismatch, len(refs), len(cands))
	}
	units := make([]domain.BenchmarkUnit, len(refs))
	for i := range refs {
		units[i] = domain.BenchmarkUnit{InputPath: refs[i], OutputPath: cands[i]}
	}
	return units, nil
}

// EvalUnits builds output-only units for every circuit under path.
func EvalUnits(path string) ([]domain.BenchmarkUnit, error) {
	paths, err := ListPaths(path)
	if err != nil {
		return nil, err
	}
	units := make([]domain.BenchmarkUnit, len(paths))
	for i, p := range paths {
		units[i] = domain.BenchmarkUnit{OutputPath: p}
	}
	return units, nil
}

// CandidateUnits pairs every circuit in candidateDir with the benchmark of the
// same file name in the reference set.
func (l Layout) CandidateUnits(referenceSet, candidateDir string) ([]domain.BenchmarkUnit, error) {
	cands, err := ListPaths(candidateDir)
	if err != nil {
		return nil, err
	}
	units := make([]domain.BenchmarkUnit, len(cands))
	for i, c := range cands {
		units[i] = domain.BenchmarkUnit{
			InputPath:  filepath.Join(l.BenchDir(referenceSet), filepath.Base(c)),
			OutputPath: c,
		}
	}
	return units, nil
}
