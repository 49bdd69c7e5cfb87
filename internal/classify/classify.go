// Package classify maps discovered files to category buckets by extension.
package classify

import (
	"path/filepath"
	"strings"

	"filesort/internal/category"
)

// FileRecord describes a file found during traversal.
type FileRecord struct {
	Path string
	Name string
	Ext  string
	Size int64
	// Symlink marks a record reached through a symbolic link; Size is the
	// size of the link target.
	Symlink bool
}

// NewFileRecord builds a record for the file at path.
func NewFileRecord(path string, size int64) FileRecord {
	name := filepath.Base(path)
	return FileRecord{
		Path: path,
		Name: name,
		Ext:  Extension(name),
		Size: size,
	}
}

// Extension returns the substring of name from its last '.' onward, or "" when
// there is none. A name whose only dot is the leading one (".bashrc") or whose
// last dot is the final character ("notes.") has no extension.
func Extension(name string) string {
	_, ext := SplitName(name)
	return ext
}

// SplitName splits a basename into stem and extension using the same rule as
// Extension.
func SplitName(name string) (stem, ext string) {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 || idx == len(name)-1 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

// Classifier resolves records to bucket names using its table.
type Classifier struct {
	table *category.Table
}

// New returns a classifier bound to table. A nil table uses the defaults.
func New(table *category.Table) *Classifier {
	if table == nil {
		table = category.Default()
	}
	return &Classifier{table: table}
}

// Classify returns the bucket for record.
func (c *Classifier) Classify(record FileRecord) string {
	ext := record.Ext
	if ext == "" {
		ext = Extension(record.Name)
	}
	return c.table.CategoryFor(strings.ToLower(ext))
}

// Table exposes the table the classifier was built with.
func (c *Classifier) Table() *category.Table {
	return c.table
}
