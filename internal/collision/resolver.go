// Package collision picks destination paths that do not overwrite existing
// files.
//
// The answer is only valid at the instant of the check. Callers that create the
// file afterwards should do so exclusively and ask again if they lose a race.
package collision

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"filesort/internal/classify"
)

// maxAttempts bounds a single resolution so a pathological directory cannot
// spin forever.
const maxAttempts = 1_000_000

// ErrExhausted reports that no free disambiguated name was found.
var ErrExhausted = errors.New("exhausted disambiguated filenames")

// Resolver finds free destination paths on a filesystem.
type Resolver struct {
	fs afero.Fs
}

// New returns a resolver for fsys. A nil fsys uses the OS filesystem.
func New(fsys afero.Fs) *Resolver {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Resolver{fs: fsys}
}

// Resolve returns desired when nothing exists there. Otherwise it returns the
// first free "stem_N.ext" in the same directory, counting up from 1.
func (r *Resolver) Resolve(desired string) (string, error) {
	free, err := r.free(desired)
	if err != nil {
		return "", err
	}
	if free {
		return desired, nil
	}

	dir := filepath.Dir(desired)
	stem, ext := Split(filepath.Base(desired))
	for counter := 1; counter <= maxAttempts; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
		free, err := r.free(candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w for %s", ErrExhausted, desired)
}

// Split returns the stem and extension Resolve builds candidates from.
func Split(name string) (stem, ext string) {
	return classify.SplitName(name)
}

// free reports whether nothing, not even a dangling symlink, occupies path.
func (r *Resolver) free(path string) (bool, error) {
	var err error
	if lstater, ok := r.fs.(afero.Lstater); ok {
		_, _, err = lstater.LstatIfPossible(path)
	} else {
		_, err = r.fs.Stat(path)
	}
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
		return true, nil
	}
	return false, fmt.Errorf("check %s: %w", path, err)
}
