// Package outroot manages the output root of a pipeline run:
//
//	<root>/<name>.seqn     converted intermediate circuits
//	<root>/opt/            optimized circuits
//	<root>/baseline/       trace-collector baselines
//	<root>/trace/          rewrite traces
//	<root>/logs/           per-unit optimizer logs
package outroot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/juju/fslock"
)

const (
	OptDir      = "opt"
	BaselineDir = "baseline"
	TraceDir    = "trace"
	LogsDir     = "logs"

	lockName = ".pipeline.lock"
)

var ErrOutputRootBusy = errors.New("output_root_busy")

// Ensure creates root and the given subdirectories. It is idempotent.
func Ensure(root string, subdirs ...string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create output root: %w", err)
	}
	for _, sub := range subdirs {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", sub, err)
		}
	}
	return nil
}

type Lock struct {
	lock *fslock.Lock
	path string
}

// Acquire takes an exclusive lock on root without blocking. A root already
// held by another driver yields ErrOutputRootBusy.
func Acquire(root string) (*Lock, error) {
	if err := Ensure(root); err != nil {
		return nil, err
	}
	path := filepath.Join(root, lockName)
	lock := fslock.New(path)
	if err := lock.TryLock(); err != nil {
		if errors.Is(err, fslock.ErrLocked) {
			return nil, fmt.Errorf("%w: %s", ErrOutputRootBusy, root)
		}
		return nil, fmt.Errorf("lock output root: %w", err)
	}
	return &Lock{lock: lock, path: path}, nil
}

func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
