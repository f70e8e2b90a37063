package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pearl/internal/tracker"
)

func newChapterCommand(ctx *commandContext) *cobra.Command {
	chapterCmd := &cobra.Command{
		Use:   "chapter",
		Short: "Manage chapter records",
	}

	chapterCmd.AddCommand(newChapterAddCommand(ctx))
	chapterCmd.AddCommand(newChapterSaveCommand(ctx))
	chapterCmd.AddCommand(newChapterDeleteCommand(ctx))

	return chapterCmd
}

func newChapterAddCommand(ctx *commandContext) *cobra.Command {
	params := tracker.CreateChapterParams{}

	cmd := &cobra.Command{
		Use:   "add <title-id> <chapter>",
		Short: "Record a chapter before it is staffed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			params.TitleID = args[0]
			params.ChapterNumber = args[1]
			return ctx.withService(func(svc *tracker.Service) error {
				chapter, err := svc.CreateChapter(cmd.Context(), actor, params)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created chapter %s of title %s\n", chapter.ChapterNumber, chapter.TitleID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&params.DriveLink, "drive-link", "", "Shared drive folder for the chapter")
	cmd.Flags().StringVar(&params.Notes, "notes", "", "Free-form notes")
	return cmd
}

func newChapterSaveCommand(ctx *commandContext) *cobra.Command {
	var driveLink string
	var notes string
	var status string
	var derive bool

	cmd := &cobra.Command{
		Use:   "save <title-id> <chapter>",
		Short: "Save chapter metadata and optionally its status label",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			params := tracker.SaveChapterParams{
				Status:       status,
				DeriveStatus: derive,
			}
			if cmd.Flags().Changed("drive-link") {
				params.DriveLink = &driveLink
			}
			if cmd.Flags().Changed("notes") {
				params.Notes = &notes
			}
			return ctx.withService(func(svc *tracker.Service) error {
				chapter, err := svc.SaveChapter(cmd.Context(), actor, args[0], args[1], params)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved chapter %s (%s)\n", chapter.ChapterNumber, chapter.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&driveLink, "drive-link", "", "Shared drive folder for the chapter")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&status, "status", "", "Manual status label (created, en_progreso, uploaded)")
	cmd.Flags().BoolVar(&derive, "derive-status", false, "Recompute the label from the assignment aggregate")
	return cmd
}

func newChapterDeleteCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "delete <title-id> <chapter>",
		Short: "Delete a chapter and every assignment of it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("deleting chapter %s removes its assignments too; re-run with --yes", args[1])
			}
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *tracker.Service) error {
				result, err := svc.DeleteChapter(cmd.Context(), actor, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted chapter %s (%d assignments removed)\n", args[1], result.AssignmentsRemoved)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm the cascading delete")
	return cmd
}
