package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pearl/internal/tracker"
	"pearl/internal/workflow"
)

func newTitleCommand(ctx *commandContext) *cobra.Command {
	titleCmd := &cobra.Command{
		Use:   "title",
		Short: "Manage the catalogue of tracked works",
	}

	titleCmd.AddCommand(newTitleAddCommand(ctx))
	titleCmd.AddCommand(newTitleListCommand(ctx))
	titleCmd.AddCommand(newTitleBoardCommand(ctx))
	titleCmd.AddCommand(newTitleProgressCommand(ctx))

	return titleCmd
}

func newTitleAddCommand(ctx *commandContext) *cobra.Command {
	params := tracker.CreateTitleParams{}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a new title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			params.Name = args[0]
			return ctx.withService(func(svc *tracker.Service) error {
				title, err := svc.CreateTitle(cmd.Context(), actor, params)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created title %s (%s)\n", title.Name, title.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&params.Author, "author", "", "Author of the work")
	cmd.Flags().StringVar(&params.Status, "status", "", "Catalogue status (active, paused, hiatus, completed, cancelled)")
	cmd.Flags().IntVar(&params.TotalChapters, "chapters", 0, "Estimated total chapter count")
	cmd.Flags().StringVar(&params.DriveLink, "drive-link", "", "Shared drive folder for the title")
	cmd.Flags().BoolVar(&params.IsJoint, "joint", false, "Mark as a joint project with another group")
	cmd.Flags().StringSliceVar(&params.AvailableStages, "stages", nil, "Stages this group handles on a joint project")

	return cmd
}

func newTitleListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *tracker.Service) error {
				titles, err := svc.ListTitles(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, titles)
				}
				if len(titles) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No titles tracked yet")
					return nil
				}
				rows := make([][]string, 0, len(titles))
				for _, title := range titles {
					joint := ""
					if title.IsJoint {
						joint = "joint"
					}
					rows = append(rows, []string{
						title.ID,
						title.Name,
						string(title.Status),
						strconv.Itoa(title.TotalChapters),
						joint,
					})
				}
				out := renderTable(
					[]string{"ID", "Name", "Status", "Chapters", "Joint"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newTitleBoardCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "board <title-id>",
		Short: "Show the per-chapter stage board of a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *tracker.Service) error {
				rows, err := svc.ChapterBoard(cmd.Context(), actor, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, rows)
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No chapters tracked yet")
					return nil
				}
				colorize := shouldColorize(cmd.OutOrStdout())
				headers := []string{"Chapter", "State"}
				for _, stage := range workflow.AllStages() {
					headers = append(headers, string(stage))
				}
				headers = append(headers, "Label")
				tableRows := make([][]string, 0, len(rows))
				for _, row := range rows {
					line := []string{
						row.ChapterNumber,
						renderChapterState(row.Aggregate.State, colorize),
					}
					for _, cell := range row.Aggregate.Cells {
						line = append(line, renderStageCell(cell, colorize))
					}
					label := ""
					if row.Chapter != nil {
						label = string(row.Chapter.Status)
					}
					line = append(line, label)
					tableRows = append(tableRows, line)
				}
				aligns := make([]columnAlignment, len(headers))
				aligns[0] = alignRight
				out := renderTable(headers, tableRows, aligns)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newTitleProgressCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "progress <title-id>",
		Short: "Show rolled-up completion of a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *tracker.Service) error {
				progress, err := svc.TitleProgress(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, progress)
				}
				colorize := shouldColorize(cmd.OutOrStdout())
				for _, line := range renderSectionHeader(progress.TitleName, colorize) {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				rows := [][]string{
					{"Tracked chapters", strconv.Itoa(progress.TrackedChapters)},
					{"Completed", strconv.Itoa(progress.CompletedChapters)},
					{"Uploaded", strconv.Itoa(progress.UploadedChapters)},
					{"In progress", strconv.Itoa(progress.InProgress)},
					{"Unassigned", strconv.Itoa(progress.Unassigned)},
					{"Progress", fmt.Sprintf("%.1f%% of %d", progress.ProgressPercent, progress.TotalChapters)},
				}
				out := renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
