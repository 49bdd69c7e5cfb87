// Package runlock keeps two filesort runs from sorting into the same
// destination at once.
//
// The lock file lives in the OS temp directory, named after an xxhash of the
// absolute destination path, so nothing extra appears inside the destination
// tree. The file is left behind after Release: every contender must lock the
// same inode, and unlinking it would let a late opener lock an orphan.
package runlock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/gofrs/flock"

	"filesort/internal/failure"
)

// Lock is a held destination lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// PathFor returns the lock file path used for destination.
func PathFor(destination string) (string, error) {
	abs, err := filepath.Abs(destination)
	if err != nil {
		return "", fmt.Errorf("resolve destination: %w", err)
	}
	name := fmt.Sprintf("filesort-%016x.lock", xxhash.Sum64String(filepath.Clean(abs)))
	return filepath.Join(os.TempDir(), name), nil
}

// Acquire takes the lock for destination without blocking. It returns an error
// wrapping failure.ErrLocked when another process holds it.
func Acquire(destination string) (*Lock, error) {
	path, err := PathFor(destination)
	if err != nil {
		return nil, err
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, failure.Wrap(failure.ErrLocked, "lock", "acquire", fmt.Sprintf("another run is sorting into %s (lock %s)", destination, path), nil)
	}
	return &Lock{path: path, lock: fl}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks the lock file. The empty file stays in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
