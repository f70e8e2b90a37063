package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pearl/internal/tracker"
	"pearl/internal/workflow"
)

func newAssignmentCommand(ctx *commandContext) *cobra.Command {
	assignmentCmd := &cobra.Command{
		Use:     "assignment",
		Aliases: []string{"a"},
		Short:   "Manage stage assignments",
	}

	assignmentCmd.AddCommand(newAssignmentAddCommand(ctx))
	assignmentCmd.AddCommand(newAssignmentAssignCommand(ctx))
	assignmentCmd.AddCommand(newAssignmentStatusCommand(ctx))
	assignmentCmd.AddCommand(newAssignmentEditCommand(ctx))
	assignmentCmd.AddCommand(newAssignmentShortcut(ctx, "start", "Mark an assignment in progress",
		func(svc *tracker.Service, cmd *cobra.Command, actor, id string) (*workflow.Assignment, error) {
			return svc.UpdateProgress(cmd.Context(), actor, id)
		}))
	assignmentCmd.AddCommand(newAssignmentShortcut(ctx, "done", "Mark an assignment completed",
		func(svc *tracker.Service, cmd *cobra.Command, actor, id string) (*workflow.Assignment, error) {
			return svc.MarkCompleted(cmd.Context(), actor, id)
		}))
	assignmentCmd.AddCommand(newAssignmentShortcut(ctx, "approve", "Approve a completed assignment",
		func(svc *tracker.Service, cmd *cobra.Command, actor, id string) (*workflow.Assignment, error) {
			return svc.Approve(cmd.Context(), actor, id)
		}))
	assignmentCmd.AddCommand(newAssignmentShortcut(ctx, "upload", "Mark an assignment uploaded",
		func(svc *tracker.Service, cmd *cobra.Command, actor, id string) (*workflow.Assignment, error) {
			return svc.MarkUploaded(cmd.Context(), actor, id)
		}))
	assignmentCmd.AddCommand(newAssignmentShortcut(ctx, "revert-upload", "Walk an upload back to completed",
		func(svc *tracker.Service, cmd *cobra.Command, actor, id string) (*workflow.Assignment, error) {
			return svc.RevertUpload(cmd.Context(), actor, id)
		}))

	return assignmentCmd
}

func newAssignmentAddCommand(ctx *commandContext) *cobra.Command {
	var assignee string
	var dueDate string
	var driveLink string
	var notes string

	cmd := &cobra.Command{
		Use:   "add <title-id> <chapter> <stage>",
		Short: "Create a stage assignment",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			params := tracker.CreateAssignmentParams{
				TitleID:        args[0],
				ChapterNumber:  args[1],
				Stage:          args[2],
				AssignedUserID: assignee,
				DriveLink:      driveLink,
				Notes:          notes,
			}
			if dueDate != "" {
				due, err := time.Parse("2006-01-02", dueDate)
				if err != nil {
					return fmt.Errorf("parse --due %q: %w", dueDate, err)
				}
				params.DueDate = &due
			}
			return ctx.withService(func(svc *tracker.Service) error {
				assignment, err := svc.CreateAssignment(cmd.Context(), actor, params)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s assignment %s (%s)\n", assignment.Stage, assignment.ID, assignment.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assignee, "user", "", "User id to assign the stage to")
	cmd.Flags().StringVar(&dueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&driveLink, "drive-link", "", "Working folder for the stage")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	return cmd
}

func newAssignmentAssignCommand(ctx *commandContext) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "assign <assignment-id> [user-id]",
		Short: "Place a worker on an assignment, or clear it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			userID := ""
			if len(args) == 2 {
				userID = args[1]
			}
			if userID == "" && !clear {
				return fmt.Errorf("pass a user id, or --clear to unassign")
			}
			return ctx.withService(func(svc *tracker.Service) error {
				assignment, err := svc.AssignUser(cmd.Context(), actor, args[0], userID)
				if err != nil {
					return err
				}
				if assignment.AssignedUserID == "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared assignee on %s\n", assignment.ID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %s\n", assignment.AssignedUserName, assignment.ID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the current assignee")
	return cmd
}

func newAssignmentStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <assignment-id> <status>",
		Short: "Set an assignment status (English or Spanish spelling)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *tracker.Service) error {
				assignment, err := svc.SetStatus(cmd.Context(), actor, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Assignment %s is now %s\n", assignment.ID, assignment.Status)
				return nil
			})
		},
	}
}

func newAssignmentShortcut(
	ctx *commandContext,
	use, short string,
	apply func(*tracker.Service, *cobra.Command, string, string) (*workflow.Assignment, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <assignment-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *tracker.Service) error {
				assignment, err := apply(svc, cmd, actor, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Assignment %s is now %s\n", assignment.ID, assignment.Status)
				return nil
			})
		},
	}
}

func newAssignmentEditCommand(ctx *commandContext) *cobra.Command {
	var chapterNumber string
	var stage string
	var dueDate string
	var clearDue bool
	var driveLink string
	var notes string

	cmd := &cobra.Command{
		Use:   "edit <assignment-id>",
		Short: "Edit assignment metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			params := tracker.EditAssignmentParams{
				ChapterNumber: chapterNumber,
				Stage:         stage,
				ClearDueDate:  clearDue,
			}
			if dueDate != "" {
				due, err := time.Parse("2006-01-02", dueDate)
				if err != nil {
					return fmt.Errorf("parse --due %q: %w", dueDate, err)
				}
				params.DueDate = &due
			}
			if cmd.Flags().Changed("drive-link") {
				params.DriveLink = &driveLink
			}
			if cmd.Flags().Changed("notes") {
				params.Notes = &notes
			}
			return ctx.withService(func(svc *tracker.Service) error {
				assignment, err := svc.EditAssignment(cmd.Context(), actor, args[0], params)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated assignment %s\n", assignment.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chapterNumber, "chapter", "", "Correct the chapter number")
	cmd.Flags().StringVar(&stage, "stage", "", "Correct the stage")
	cmd.Flags().StringVar(&dueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	cmd.Flags().StringVar(&driveLink, "drive-link", "", "Working folder for the stage")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	return cmd
}
