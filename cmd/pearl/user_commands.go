package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pearl/internal/tracker"
)

func newUserCommand(ctx *commandContext) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the staff roster",
	}

	userCmd.AddCommand(newUserAddCommand(ctx))
	userCmd.AddCommand(newUserListCommand(ctx))
	userCmd.AddCommand(newUserWorkloadCommand(ctx))
	userCmd.AddCommand(newGhostCommand(ctx))

	return userCmd
}

func newUserAddCommand(ctx *commandContext) *cobra.Command {
	params := tracker.CreateUserParams{}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			params.Name = args[0]
			return ctx.withService(func(svc *tracker.Service) error {
				user, err := svc.CreateUser(cmd.Context(), actor, params)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s) as %s\n", user.Name, user.ID, user.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&params.Role, "role", "", "Role (admin, jefe_editor, jefe_traductor, uploader, editor, traductor)")
	cmd.Flags().StringVar(&params.Email, "email", "", "Contact email")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newUserListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List staff members",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *tracker.Service) error {
				users, err := svc.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, users)
				}
				if len(users) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No users registered yet")
					return nil
				}
				rows := make([][]string, 0, len(users))
				for _, user := range users {
					kind := ""
					if user.IsGhost {
						kind = "ghost"
					}
					rows = append(rows, []string{
						user.ID,
						user.Name,
						string(user.Role),
						string(user.Status),
						kind,
						strconv.Itoa(user.Stats.ActiveCount),
						strconv.Itoa(user.Stats.CompletedCount),
					})
				}
				out := renderTable(
					[]string{"ID", "Name", "Role", "Status", "Kind", "Active", "Completed"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newUserWorkloadCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "workload <user-id>",
		Short: "Show a user's assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(svc *tracker.Service) error {
				workload, err := svc.Workload(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, workload)
				}
				colorize := shouldColorize(cmd.OutOrStdout())
				for _, line := range renderSectionHeader(workload.User.Name, colorize) {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				if len(workload.Assignments) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No assignments")
					return nil
				}
				rows := make([][]string, 0, len(workload.Assignments))
				for _, a := range workload.Assignments {
					due := ""
					if a.DueDate != nil {
						due = a.DueDate.Format("2006-01-02")
					}
					rows = append(rows, []string{
						a.TitleName,
						a.ChapterNumber,
						string(a.Stage),
						renderAssignmentStatus(a.Status, colorize),
						due,
					})
				}
				out := renderTable(
					[]string{"Title", "Chapter", "Stage", "Status", "Due"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newGhostCommand(ctx *commandContext) *cobra.Command {
	ghostCmd := &cobra.Command{
		Use:   "ghost",
		Short: "Manage placeholder identities for pre-tracker work",
	}

	var ghostRole string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a ghost user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *tracker.Service) error {
				ghost, err := svc.CreateGhost(cmd.Context(), actor, args[0], ghostRole)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created ghost %s (%s)\n", ghost.Name, ghost.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&ghostRole, "role", "traductor", "Assignable role the ghost carries")
	ghostCmd.AddCommand(addCmd)

	transferCmd := &cobra.Command{
		Use:   "transfer <ghost-id> <user-id>",
		Short: "Move a ghost's history onto a real user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, err := ctx.actorID()
			if err != nil {
				return err
			}
			return ctx.withService(func(svc *tracker.Service) error {
				result, err := svc.TransferGhost(cmd.Context(), actor, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(
					cmd.OutOrStdout(),
					"Transferred %d assignments (%d completed, %d active); ghost retired\n",
					result.AssignmentsMoved, result.CompletedMoved, result.ActiveMoved,
				)
				return nil
			})
		},
	}
	ghostCmd.AddCommand(transferCmd)

	return ghostCmd
}
