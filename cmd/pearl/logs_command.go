package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"pearl/internal/logging"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the tail of the workspace log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, "pearl.log")
			tail, err := logging.Tail(cmd.Context(), path, logging.TailOptions{
				Limit:  lines,
				Follow: follow,
				Wait:   wait,
			})
			if err != nil {
				return err
			}
			if len(tail) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No log output yet")
				return nil
			}
			for _, line := range tail {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Wait for new lines when the backlog is empty")
	cmd.Flags().DurationVar(&wait, "wait", 10*time.Second, "How long --follow waits for new lines")
	return cmd
}
