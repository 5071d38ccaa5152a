package outroot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureIdempotent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	for i := 0; i < 2; i++ {
		if err := Ensure(root, OptDir, LogsDir); err != nil {
			t.Fatalf("Ensure() err=%v", err)
		}
	}
	for _, sub := range []string{OptDir, LogsDir} {
		info, err := os.Stat(filepath.Join(root, sub))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected %s directory, err=%v", sub, err)
		}
	}
}

func TestAcquireExclusive(t *testing.T) {
	root := t.TempDir()
	first, err := Acquire(root)
	if err != nil {
		t.Fatalf("Acquire() err=%v", err)
	}
	if _, err := Acquire(root); !errors.Is(err, ErrOutputRootBusy) {
		t.Fatalf("second Acquire() err=%v, want ErrOutputRootBusy", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release() err=%v", err)
	}
	again, err := Acquire(root)
	if err != nil {
		t.Fatalf("Acquire() after release err=%v", err)
	}
	_ = again.Release()
}
