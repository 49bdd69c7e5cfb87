package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o640); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := os.Chtimes(src, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	written, err := CopyFile(afero.NewOsFs(), src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if written != int64(len(content)) {
		t.Fatalf("written = %d, want %d", written, len(content))
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("mode = %o, want 640", info.Mode().Perm())
	}
	if !info.ModTime().Equal(mtime) {
		t.Fatalf("mtime = %v, want %v", info.ModTime(), mtime)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source should remain after copy: %v", err)
	}
}

func TestCopyFileRefusesExistingDestination(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/a/src", []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, "/a/dst", []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := CopyFile(fsys, "/a/src", "/a/dst")
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	got, _ := afero.ReadFile(fsys, "/a/dst")
	if string(got) != "old" {
		t.Fatalf("existing destination was modified: %q", got)
	}
}

func TestCopyFileVerified(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := []byte("verified copy content")
	if err := afero.WriteFile(fsys, "/src.bin", content, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := CopyFileVerified(fsys, "/src.bin", "/dst.bin"); err != nil {
		t.Fatal(err)
	}

	srcSum, err := HashFile(fsys, "/src.bin")
	if err != nil {
		t.Fatal(err)
	}
	dstSum, err := HashFile(fsys, "/dst.bin")
	if err != nil {
		t.Fatal(err)
	}
	if srcSum != dstSum {
		t.Fatalf("digest mismatch: %x != %x", srcSum, dstSum)
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_, err := CopyFile(fsys, "/nope", "/dst")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if exists, _ := afero.Exists(fsys, "/dst"); exists {
		t.Fatal("destination must not be created when the source is missing")
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "clip.mp4")
	dst := filepath.Join(dir, "out", "clip.mp4")
	if err := os.MkdirAll(filepath.Dir(src), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("frames"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := MoveFile(afero.NewOsFs(), src, dst); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected source removed, stat err = %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "frames" {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestMoveFileRefusesExistingDestination(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/src/a.txt", []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, "/dst/a.txt", []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := MoveFile(fsys, "/src/a.txt", "/dst/a.txt")
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	if exists, _ := afero.Exists(fsys, "/src/a.txt"); !exists {
		t.Fatal("source must survive a refused move")
	}
}

// corruptingFs flips every byte written through files opened for writing.
type corruptingFs struct {
	afero.Fs
}

func (c corruptingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := c.Fs.OpenFile(name, flag, perm)
	if err != nil || flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return f, err
	}
	return corruptingFile{File: f}, nil
}

type corruptingFile struct {
	afero.File
}

func (c corruptingFile) Write(p []byte) (int, error) {
	flipped := make([]byte, len(p))
	for i, b := range p {
		flipped[i] = b ^ 0xff
	}
	return c.File.Write(flipped)
}

func TestCopyFileVerifiedDetectsCorruptedDestination(t *testing.T) {
	mem := afero.NewMemMapFs()
	if err := afero.WriteFile(mem, "/src", []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	fsys := corruptingFs{Fs: mem}

	if _, err := CopyFileVerified(fsys, "/src", "/dst"); err == nil {
		t.Fatal("expected corrupted copy to fail verification")
	}
	if exists, _ := afero.Exists(mem, "/dst"); exists {
		t.Fatal("corrupted destination must be removed")
	}

	// Without verification the corruption goes unnoticed.
	if _, err := CopyFile(fsys, "/src", "/unchecked"); err != nil {
		t.Fatalf("unverified copy: %v", err)
	}
}

func TestMoveSymlinkKeepsRelativeTargetResolvable(t *testing.T) {
	dir := t.TempDir()
	realPath := filepath.Join(dir, "other", "real.txt")
	link := filepath.Join(dir, "src", "link.txt")
	dst := filepath.Join(dir, "sorted", "Documents", "link.txt")
	for _, d := range []string{filepath.Dir(realPath), filepath.Dir(link), filepath.Dir(dst)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(realPath, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join("..", "other", "real.txt"), link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if err := MoveSymlink(afero.NewOsFs(), link, dst); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Lstat(link); !os.IsNotExist(err) {
		t.Fatalf("expected source link removed, lstat err = %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("moved link does not resolve: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("content mismatch: %q", got)
	}
	if target, err := os.Readlink(dst); err != nil || !filepath.IsAbs(target) {
		t.Fatalf("expected absolute link target, got %q (%v)", target, err)
	}
	if _, err := os.Stat(realPath); err != nil {
		t.Fatalf("link target must stay in place: %v", err)
	}
}

func TestMoveSymlinkRefusesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	realPath := filepath.Join(dir, "real.txt")
	link := filepath.Join(dir, "link.txt")
	dst := filepath.Join(dir, "taken.txt")
	if err := os.WriteFile(realPath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("real.txt", link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	err := MoveSymlink(afero.NewOsFs(), link, dst)
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	if _, err := os.Lstat(link); err != nil {
		t.Fatalf("source link must remain after a refused move: %v", err)
	}
}
