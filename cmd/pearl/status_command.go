package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pearl/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a workspace summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				health, err := st.Health(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, health)
				}
				colorize := shouldColorize(cmd.OutOrStdout())
				for _, line := range renderSectionHeader(ctx.configValue().Workspace.GroupName, colorize) {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				rows := [][]string{
					{"Titles", strconv.Itoa(health.Titles)},
					{"Chapters", strconv.Itoa(health.Chapters)},
					{"Assignments", strconv.Itoa(health.Assignments)},
					{"Users", strconv.Itoa(health.Users)},
					{"Unassigned", strconv.Itoa(health.Unassigned)},
					{"In flight", strconv.Itoa(health.InFlight)},
					{"Done", strconv.Itoa(health.Done)},
				}
				out := renderTable([]string{"Records", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
