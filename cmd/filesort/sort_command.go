package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"filesort/internal/config"
	"filesort/internal/logging"
	"filesort/internal/runlock"
	"filesort/internal/sorter"
)

type sortFlags struct {
	move         bool
	verify       bool
	jsonOut      bool
	skipSymlinks bool
	noHidden     bool
	skipEmpty    bool
	strict       bool
	verbose      bool
}

func newSortCommand(ctx *commandContext) *cobra.Command {
	var flags sortFlags

	cmd := &cobra.Command{
		Use:   "sort [SOURCE] [DEST]",
		Short: "Sort every file under SOURCE into category folders under DEST",
		Long: "Sort walks SOURCE, classifies each file by extension and copies (or with --move, moves)\n" +
			"it into DEST/<Category>. Existing files are never overwritten; a clashing name gets a\n" +
			"numeric suffix such as photo_1.jpg. SOURCE and DEST default to the configured paths.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCfg := *cfg
			if err := resolvePaths(&runCfg, args); err != nil {
				return err
			}
			applySortFlags(&runCfg, flags)
			if err := runCfg.ValidateRun(); err != nil {
				return err
			}
			return runSort(cmd, &runCfg, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.move, "move", false, "Move files instead of copying them")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "Verify each copy by size and checksum")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Print the run summary as JSON")
	cmd.Flags().BoolVar(&flags.skipSymlinks, "skip-symlinks", false, "Ignore symbolic links instead of following them")
	cmd.Flags().BoolVar(&flags.noHidden, "no-hidden", false, "Leave hidden files and directories alone")
	cmd.Flags().BoolVar(&flags.skipEmpty, "skip-empty", false, "Leave zero-byte files in place")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Exit with status 2 when any file could not be sorted")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log every file even while the progress bar is shown")
	return cmd
}

func applySortFlags(cfg *config.Config, flags sortFlags) {
	if flags.move {
		cfg.Sort.Mode = config.ModeMove
	}
	if flags.verify {
		cfg.Sort.VerifyCopies = true
	}
	if flags.skipSymlinks {
		cfg.Traversal.Symlinks = config.SymlinksSkip
	}
	if flags.noHidden {
		cfg.Traversal.IncludeHidden = false
	}
	if flags.skipEmpty {
		cfg.Traversal.SkipEmpty = true
	}
}

func sortOptions(cfg *config.Config) sorter.Options {
	opts := sorter.DefaultOptions()
	if cfg.MoveFiles() {
		opts.Mode = sorter.ModeMove
	}
	opts.Verify = cfg.Sort.VerifyCopies
	opts.Traversal.IncludeHidden = cfg.Traversal.IncludeHidden
	opts.Traversal.SkipEmpty = cfg.Traversal.SkipEmpty
	if cfg.Traversal.Symlinks == config.SymlinksSkip {
		opts.Traversal.Symlinks = sorter.SymlinkSkip
	}
	return opts
}

func runSort(cmd *cobra.Command, cfg *config.Config, flags sortFlags) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	table, err := cfg.CategoryTable()
	if err != nil {
		return err
	}

	showBar := !flags.jsonOut && isTerminal(cmd.ErrOrStderr())
	if showBar && !flags.verbose {
		// Per-file info lines would tear the progress bar apart.
		cfg.Logging.Level = "warn"
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if cfg.Sort.LockDestination {
		lock, err := runlock.Acquire(cfg.Paths.DestinationDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logging.WarnWithContext(logger, "failed to release destination lock", "lock_release_failed",
					logging.String("lock_path", lock.Path()),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "remove the lock file if no other run is active"),
				)
			}
		}()
	}

	opts := sortOptions(cfg)
	var progress *sortProgress
	if showBar {
		progress = newSortProgress(cmd.ErrOrStderr())
		opts.OnEvent = progress.handle
	}

	result, runErr := sorter.New(table, opts, logger).Process(signalCtx, cfg.Paths.SourceDir, cfg.Paths.DestinationDir)
	if progress != nil {
		progress.finish()
	}
	if runErr != nil && result.Total == 0 && len(result.Failures) == 0 {
		return runErr
	}

	if flags.jsonOut {
		if err := writeJSON(cmd, result); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), renderSortSummary(result, table.Names(), isTerminal(cmd.OutOrStdout())))
	}

	if runErr != nil {
		return runErr
	}
	if flags.strict && !result.Succeeded() {
		return &exitError{code: 2, message: fmt.Sprintf("%d file(s) could not be sorted", len(result.Failures))}
	}
	return nil
}
