package sorter

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/afero"

	"filesort/internal/classify"
	"filesort/internal/failure"
	"filesort/internal/logging"
)

// dirID identifies a directory independent of the path used to reach it.
// Filesystems without inode information fall back to the cleaned path.
type dirID struct {
	dev  uint64
	ino  uint64
	path string
}

func identify(path string, info os.FileInfo) dirID {
	if st, ok := info.Sys().(*syscall.Stat_t); ok && st != nil {
		return dirID{dev: uint64(st.Dev), ino: st.Ino}
	}
	return dirID{path: filepath.Clean(path)}
}

// walker performs the discovery phase.
type walker struct {
	fs        afero.Fs
	traversal Traversal
	logger    *slog.Logger

	visited map[dirID]struct{}
	pruned  map[dirID]struct{}

	records []classify.FileRecord
	skipped []string
	failed  []Failure
}

func newWalker(fsys afero.Fs, traversal Traversal, logger *slog.Logger) *walker {
	return &walker{
		fs:        fsys,
		traversal: traversal,
		logger:    logger,
		visited:   make(map[dirID]struct{}),
		pruned:    make(map[dirID]struct{}),
	}
}

// prune excludes the directory at path from the walk if it exists.
func (w *walker) prune(path string) {
	info, err := w.fs.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	w.pruned[identify(path, info)] = struct{}{}
}

// walk discovers files under root. Only cancellation aborts it; unreadable
// subdirectories are recorded as failures.
func (w *walker) walk(ctx context.Context, root string) error {
	info, err := w.fs.Stat(root)
	if err != nil {
		return err
	}
	w.visited[identify(root, info)] = struct{}{}
	return w.walkDir(ctx, root, true)
}

func (w *walker) walkDir(ctx context.Context, dir string, isRoot bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		if isRoot {
			return failure.Wrap(failure.ErrSourceUnreadable, "discover", "read source", dir, err)
		}
		w.fail(dir, err)
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)
		if !w.traversal.IncludeHidden && strings.HasPrefix(name, ".") {
			w.logger.Debug("hidden entry excluded", logging.String("path", path))
			continue
		}

		info := entry
		if entry.Mode()&os.ModeSymlink != 0 {
			if w.traversal.Symlinks == SymlinkSkip {
				w.logger.Debug("symlink excluded", logging.String("path", path))
				continue
			}
			target, err := w.fs.Stat(path)
			if err != nil {
				if os.IsNotExist(err) {
					w.logger.Debug("dangling symlink ignored", logging.String("path", path))
					continue
				}
				w.fail(path, err)
				continue
			}
			info = target
		}

		switch {
		case info.IsDir():
			id := identify(path, info)
			if _, ok := w.pruned[id]; ok {
				w.logger.Debug("destination excluded from walk", logging.String("path", path))
				continue
			}
			if _, ok := w.visited[id]; ok {
				w.logger.Debug("directory already visited", logging.String("path", path))
				continue
			}
			w.visited[id] = struct{}{}
			if err := w.walkDir(ctx, path, false); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if w.traversal.SkipEmpty && info.Size() == 0 {
				w.skipped = append(w.skipped, path)
				continue
			}
			record := classify.NewFileRecord(path, info.Size())
			record.Symlink = entry.Mode()&os.ModeSymlink != 0
			w.records = append(w.records, record)
		default:
			w.logger.Debug("non-regular entry ignored",
				logging.String("path", path),
				logging.String("mode", info.Mode().Type().String()),
			)
		}
	}
	return nil
}

func (w *walker) fail(path string, err error) {
	w.failed = append(w.failed, Failure{
		Name:   filepath.Base(path),
		Path:   path,
		Reason: err.Error(),
		Kind:   failure.KindOf(err),
		Err:    err,
	})
}
