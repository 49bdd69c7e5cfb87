package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"filesort/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [SOURCE] [DEST]",
		Short: "Check that a sort run could start, without touching any file",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCfg := *cfg
			if err := resolvePaths(&runCfg, args); err != nil {
				return err
			}

			results := preflight.RunAll(&runCfg)
			colorize := isTerminal(cmd.OutOrStdout())
			rows := make([][]string, 0, len(results))
			for _, r := range results {
				rows = append(rows, []string{r.Name, statusText(r.Passed, colorize), r.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			return nil
		},
	}
}
