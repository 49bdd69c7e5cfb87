package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"filesort/internal/config"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// resolvePaths overlays positional SOURCE and DEST arguments on the
// configured paths.
func resolvePaths(cfg *config.Config, args []string) error {
	if len(args) > 0 {
		expanded, err := config.ExpandPath(strings.TrimSpace(args[0]))
		if err != nil {
			return fmt.Errorf("resolve source: %w", err)
		}
		cfg.Paths.SourceDir = expanded
	}
	if len(args) > 1 {
		expanded, err := config.ExpandPath(strings.TrimSpace(args[1]))
		if err != nil {
			return fmt.Errorf("resolve destination: %w", err)
		}
		cfg.Paths.DestinationDir = expanded
	}
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
