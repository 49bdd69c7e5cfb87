// Package fileutil performs the copy and move primitives used to relocate
// files.
//
// Every helper creates its destination exclusively and removes partial output
// on failure, so a caller never observes a half-written file under a name it
// will report as done.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

// CopyFile streams src to a new file at dst and preserves permission bits and
// modification time. dst must not exist; fs.ErrExist is returned otherwise.
func CopyFile(fsys afero.Fs, src, dst string) (int64, error) {
	return copyFile(fsys, src, dst, false)
}

// CopyFileVerified behaves like CopyFile, then reads dst back and compares its
// size and xxhash digest with the bytes read from src. dst is removed on
// mismatch.
func CopyFileVerified(fsys afero.Fs, src, dst string) (int64, error) {
	return copyFile(fsys, src, dst, true)
}

// MoveFile renames src to dst. Across devices it falls back to a verified copy
// followed by removal of src; if src cannot be removed the copy is rolled back
// so the file ends up in exactly one place.
func MoveFile(fsys afero.Fs, src, dst string) error {
	if exists, err := afero.Exists(fsys, dst); err != nil {
		return fmt.Errorf("check destination: %w", err)
	} else if exists {
		return &os.PathError{Op: "move", Path: dst, Err: os.ErrExist}
	}
	err := fsys.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return fmt.Errorf("move file: %w", err)
	}
	if _, err := CopyFileVerified(fsys, src, dst); err != nil {
		return fmt.Errorf("copy file across devices: %w", err)
	}
	return removeSourceOrRollback(fsys, src, dst)
}

// MoveSymlink relocates the link at src to dst. The new link points at the
// absolute form of the original target, so a relative link keeps resolving
// from its new directory. Filesystems without link support fall back to a
// verified copy of the target's content.
func MoveSymlink(fsys afero.Fs, src, dst string) error {
	reader, canRead := fsys.(afero.LinkReader)
	linker, canLink := fsys.(afero.Linker)
	if !canRead || !canLink {
		if _, err := CopyFileVerified(fsys, src, dst); err != nil {
			return fmt.Errorf("copy link target: %w", err)
		}
		return removeSourceOrRollback(fsys, src, dst)
	}

	target, err := reader.ReadlinkIfPossible(src)
	if err != nil {
		return fmt.Errorf("read link: %w", err)
	}
	if !filepath.IsAbs(target) {
		dir, err := filepath.Abs(filepath.Dir(src))
		if err != nil {
			return fmt.Errorf("resolve link directory: %w", err)
		}
		target = filepath.Join(dir, target)
	}
	// Symlink fails with EEXIST rather than replacing an existing dst.
	if err := linker.SymlinkIfPossible(target, dst); err != nil {
		return err
	}
	return removeSourceOrRollback(fsys, src, dst)
}

func removeSourceOrRollback(fsys afero.Fs, src, dst string) error {
	if err := fsys.Remove(src); err != nil {
		if rmErr := fsys.Remove(dst); rmErr != nil {
			return fmt.Errorf("remove source after copy: %w (rollback of %s failed: %v)", err, dst, rmErr)
		}
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

func copyFile(fsys afero.Fs, src, dst string, verify bool) (int64, error) {
	in, err := fsys.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("copy %s: not a regular file", src)
	}

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	srcHasher := xxhash.New()
	written, err := io.Copy(out, io.TeeReader(in, srcHasher))
	if err == nil {
		if syncErr := out.Sync(); syncErr != nil {
			err = fmt.Errorf("sync destination: %w", syncErr)
		}
	}
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close destination: %w", closeErr)
	}
	if err == nil && verify {
		err = verifyCopy(fsys, dst, info.Size(), written, srcHasher.Sum64())
	}
	if err == nil {
		err = preserveMetadata(fsys, dst, info)
	}
	if err != nil {
		_ = fsys.Remove(dst)
		return 0, err
	}
	return written, nil
}

// verifyCopy re-reads dst from disk and compares it with what was read from
// the source.
func verifyCopy(fsys afero.Fs, dst string, size, written int64, srcSum uint64) error {
	if written != size {
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", size, written)
	}
	dstSum, err := HashFile(fsys, dst)
	if err != nil {
		return fmt.Errorf("hash destination: %w", err)
	}
	if dstSum != srcSum {
		return errors.New("copy hash mismatch: file corrupted during copy")
	}
	return nil
}

func preserveMetadata(fsys afero.Fs, dst string, info os.FileInfo) error {
	if err := fsys.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("preserve mode: %w", err)
	}
	if err := fsys.Chtimes(dst, time.Now(), info.ModTime()); err != nil {
		return fmt.Errorf("preserve times: %w", err)
	}
	return nil
}

// HashFile returns the xxhash digest of the file at path.
func HashFile(fsys afero.Fs, path string) (uint64, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, err
	}
	return hasher.Sum64(), nil
}
