package runlock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"filesort/internal/failure"
)

func TestAcquireIsExclusivePerDestination(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	dest := filepath.Join(t.TempDir(), "sorted")

	first, err := Acquire(dest)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	defer first.Release()

	if _, err := Acquire(dest); !errors.Is(err, failure.ErrLocked) {
		t.Fatalf("expected ErrLocked for second acquire, got %v", err)
	}

	other, err := Acquire(filepath.Join(t.TempDir(), "elsewhere"))
	if err != nil {
		t.Fatalf("different destination should not conflict: %v", err)
	}
	if err := other.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
}

func TestReleaseAllowsReacquire(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	dest := t.TempDir()

	lock, err := Acquire(dest)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	if _, err := os.Stat(lock.Path()); err != nil {
		t.Fatalf("expected lock file kept after release, stat err = %v", err)
	}

	again, err := Acquire(dest)
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	_ = again.Release()
}

func TestPathForIsStable(t *testing.T) {
	a, err := PathFor("/data/sorted")
	if err != nil {
		t.Fatal(err)
	}
	b, err := PathFor("/data/sorted/")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("expected cleaned paths to share a lock: %q vs %q", a, b)
	}
}

func TestNilLockRelease(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Fatalf("nil Release returned error: %v", err)
	}
}

func TestWaiterAndNewcomerContendForSameFile(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	dest := t.TempDir()

	first, err := Acquire(dest)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}

	// A contender that opened the lock file while it was held.
	waiter := flock.New(first.Path())
	if ok, err := waiter.TryLock(); err != nil || ok {
		t.Fatalf("expected waiter to be refused while held, ok=%v err=%v", ok, err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}
	ok, err := waiter.TryLock()
	if err != nil || !ok {
		t.Fatalf("expected waiter to take the lock after release, ok=%v err=%v", ok, err)
	}
	defer waiter.Unlock()

	if _, err := Acquire(dest); !errors.Is(err, failure.ErrLocked) {
		t.Fatalf("newcomer must see the waiter's lock, got %v", err)
	}
}
