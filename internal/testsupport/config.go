package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"filesort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The source directory exists; the destination does not, so tests exercise
// bucket bootstrap.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SourceDir = filepath.Join(base, "source")
	cfgVal.Paths.DestinationDir = filepath.Join(base, "sorted")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	if err := os.MkdirAll(cfgVal.Paths.SourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMoveMode switches the test config to moving files.
func WithMoveMode() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Sort.Mode = config.ModeMove
	}
}

// WithCategory adds a configured category override.
func WithCategory(name string, extensions ...string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Categories == nil {
			b.cfg.Categories = make(map[string][]string)
		}
		b.cfg.Categories[name] = append(b.cfg.Categories[name], extensions...)
	}
}

// WithSourceFiles populates the source directory.
func WithSourceFiles(files map[string]string) ConfigOption {
	return func(b *configBuilder) {
		WriteTree(b.t, b.cfg.Paths.SourceDir, files)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SourceDir)
}
