package failure_test

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"syscall"
	"testing"

	"filesort/internal/failure"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := failure.Wrap(failure.ErrBucketCreate, "bootstrap", "mkdir", "Images", base)
	if !errors.Is(err, failure.ErrBucketCreate) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"bootstrap", "mkdir", "Images", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := failure.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, failure.ErrRelocate) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "sort failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsFatal(t *testing.T) {
	fatal := []error{
		failure.Wrap(failure.ErrSourceMissing, "process", "stat source", "", nil),
		failure.Wrap(failure.ErrSourceNotDirectory, "process", "stat source", "", nil),
		failure.Wrap(failure.ErrSourceUnreadable, "process", "read source", "", nil),
		failure.Wrap(failure.ErrBucketCreate, "bootstrap", "", "", nil),
		fmt.Errorf("lock: %w", failure.ErrLocked),
	}
	for _, err := range fatal {
		if !failure.IsFatal(err) {
			t.Fatalf("expected %v to be fatal", err)
		}
	}
	if failure.IsFatal(nil) {
		t.Fatal("nil must not be fatal")
	}
	if failure.IsFatal(failure.Wrap(failure.ErrRelocate, "process", "copy", "", os.ErrPermission)) {
		t.Fatal("per-file relocation errors must not be fatal")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want failure.Kind
	}{
		{&fs.PathError{Op: "open", Path: "/x", Err: syscall.EACCES}, failure.KindPermission},
		{&fs.PathError{Op: "write", Path: "/x", Err: syscall.ENOSPC}, failure.KindNoSpace},
		{&fs.PathError{Op: "open", Path: "/x", Err: syscall.ENOENT}, failure.KindVanished},
		{errors.New("short write"), failure.KindIO},
	}
	for _, tt := range tests {
		if got := failure.KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
