package sessionlock

import (
	"path/filepath"
	"testing"
)

func TestTryAcquireSucceedsThenFailsUntilReleased(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.glog")

	first, err := TryAcquire(path)
	if err != nil {
		t.Fatalf("TryAcquire: %v", err)
	}
	if first == nil {
		t.Fatalf("expected to acquire the lock the first time")
	}

	second, err := TryAcquire(path)
	if err != nil {
		t.Fatalf("TryAcquire (second): %v", err)
	}
	if second != nil {
		t.Fatalf("expected the second acquire to fail while the first is held")
	}

	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	third, err := TryAcquire(path)
	if err != nil {
		t.Fatalf("TryAcquire (third): %v", err)
	}
	if third == nil {
		t.Fatalf("expected to acquire the lock again after release")
	}
	_ = third.Release()
}

func TestReleaseOnNilLockIsSafe(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Fatalf("Release on nil *Lock should be a no-op, got %v", err)
	}
}
