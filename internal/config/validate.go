package config

import (
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSort(); err != nil {
		return err
	}
	if err := c.validateTraversal(); err != nil {
		return err
	}
	if _, err := c.CategoryTable(); err != nil {
		return err
	}
	return nil
}

// ValidateRun checks the settings a sort run needs beyond Validate: both
// directories must be known and must not be the same path.
func (c *Config) ValidateRun() error {
	if c.Paths.SourceDir == "" {
		return fmt.Errorf("source directory is required: pass it as an argument, set paths.source_dir, or export FILESORT_SOURCE")
	}
	if c.Paths.DestinationDir == "" {
		return fmt.Errorf("destination directory is required: pass it as an argument, set paths.destination_dir, or export FILESORT_DEST")
	}
	return c.validatePaths()
}

func (c *Config) validatePaths() error {
	src, dst := c.Paths.SourceDir, c.Paths.DestinationDir
	if src == "" || dst == "" {
		return nil
	}
	if filepath.Clean(src) == filepath.Clean(dst) {
		return fmt.Errorf("paths.destination_dir must differ from paths.source_dir (%s)", src)
	}
	return nil
}

func (c *Config) validateSort() error {
	switch c.Sort.Mode {
	case ModeCopy, ModeMove:
		return nil
	default:
		return fmt.Errorf("sort.mode must be %q or %q, got %q", ModeCopy, ModeMove, c.Sort.Mode)
	}
}

func (c *Config) validateTraversal() error {
	switch c.Traversal.Symlinks {
	case SymlinksFollow, SymlinksSkip:
		return nil
	default:
		return fmt.Errorf("traversal.symlinks must be %q or %q, got %q", SymlinksFollow, SymlinksSkip, c.Traversal.Symlinks)
	}
}
