package task

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/perfboard/perfboard/adapter/cli"
	"github.com/perfboard/perfboard/internal/performance/application/commands"
)

// transition builds a command for the plain state transitions that only
// need a task ID and the current actor.
func transition(use, short string, handle func(ctx context.Context, a *cli.App, id uuid.UUID) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := cli.GetApp()
			if app == nil {
				fmt.Println("This command requires a database connection.")
				return nil
			}
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			if err := handle(cmd.Context(), app, id); err != nil {
				return err
			}
			fmt.Printf("Task %s: %s\n", id, short)
			return nil
		},
	}
}

var submitCmd = transition("submit", "submitted for approval",
	func(ctx context.Context, a *cli.App, id uuid.UUID) error {
		return a.SubmitTaskHandler.Handle(ctx, commands.SubmitTaskCommand{TaskID: id, Actor: a.CurrentActor})
	})

var rejectCmd = transition("reject", "rejected",
	func(ctx context.Context, a *cli.App, id uuid.UUID) error {
		return a.RejectTaskHandler.Handle(ctx, commands.RejectTaskCommand{TaskID: id, Actor: a.CurrentActor})
	})

var returnCmd = transition("return", "returned for rework",
	func(ctx context.Context, a *cli.App, id uuid.UUID) error {
		return a.ReturnTaskHandler.Handle(ctx, commands.ReturnTaskCommand{TaskID: id, Actor: a.CurrentActor})
	})

var withdrawCmd = transition("withdraw", "withdrawn",
	func(ctx context.Context, a *cli.App, id uuid.UUID) error {
		return a.WithdrawTaskHandler.Handle(ctx, commands.WithdrawTaskCommand{TaskID: id, Actor: a.CurrentActor})
	})

var reviseCmd = transition("revise", "reopened as draft",
	func(ctx context.Context, a *cli.App, id uuid.UUID) error {
		return a.ReviseTaskHandler.Handle(ctx, commands.ReviseTaskCommand{TaskID: id, Actor: a.CurrentActor})
	})

var completeCmd = transition("complete", "submitted for review",
	func(ctx context.Context, a *cli.App, id uuid.UUID) error {
		return a.CompleteTaskHandler.Handle(ctx, commands.CompleteTaskCommand{TaskID: id, Actor: a.CurrentActor})
	})

var cancelCmd = transition("cancel", "cancelled",
	func(ctx context.Context, a *cli.App, id uuid.UUID) error {
		return a.CancelTaskHandler.Handle(ctx, commands.CancelTaskCommand{TaskID: id, Actor: a.CurrentActor})
	})

var suspendCmd = transition("suspend", "suspended",
	func(ctx context.Context, a *cli.App, id uuid.UUID) error {
		return a.SuspendTaskHandler.Handle(ctx, commands.SuspendTaskCommand{TaskID: id, Actor: a.CurrentActor})
	})

var resumeCmd = transition("resume", "resumed",
	func(ctx context.Context, a *cli.App, id uuid.UUID) error {
		return a.ResumeTaskHandler.Handle(ctx, commands.ResumeTaskCommand{TaskID: id, Actor: a.CurrentActor})
	})

var deleteCmd = transition("delete", "deleted",
	func(ctx context.Context, a *cli.App, id uuid.UUID) error {
		return a.DeleteTaskHandler.Handle(ctx, commands.DeleteTaskCommand{TaskID: id, Actor: a.CurrentActor})
	})

var (
	approveImportance float64
	approveDifficulty float64
)

var approveCmd = &cobra.Command{
	Use:   "approve <task-id>",
	Short: "Approve a submitted task",
	Long: `Approve a submitted task, starting execution.

Without flags the task inherits its parent's importance and difficulty,
or neutral defaults. A leader approval only forwards the task; the final
approver sets the coefficients.

Examples:
  perfboard task approve 8f14e45f-...
  perfboard task approve 8f14e45f-... --importance 1.5 --difficulty 1.2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ApproveTaskHandler == nil {
			fmt.Println("Task approval requires a database connection.")
			return nil
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		approveCommand := commands.ApproveTaskCommand{TaskID: id, Actor: app.CurrentActor}
		if cmd.Flags().Changed("importance") {
			approveCommand.Importance = &approveImportance
		}
		if cmd.Flags().Changed("difficulty") {
			approveCommand.Difficulty = &approveDifficulty
		}

		if err := app.ApproveTaskHandler.Handle(cmd.Context(), approveCommand); err != nil {
			return fmt.Errorf("failed to approve task: %w", err)
		}
		fmt.Printf("Task %s approved\n", id)
		return nil
	},
}

var progressCmd = &cobra.Command{
	Use:   "progress <task-id> <percent>",
	Short: "Update task progress",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateProgressHandler == nil {
			fmt.Println("Progress updates require a database connection.")
			return nil
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}
		percent, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid progress %q: %w", args[1], err)
		}

		err = app.UpdateProgressHandler.Handle(cmd.Context(), commands.UpdateProgressCommand{
			TaskID:   id,
			Actor:    app.CurrentActor,
			Progress: percent,
		})
		if err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}
		fmt.Printf("Task %s progress set to %d%%\n", id, percent)
		return nil
	},
}

func init() {
	approveCmd.Flags().Float64Var(&approveImportance, "importance", 1.0, "importance coefficient (0.5-1.5)")
	approveCmd.Flags().Float64Var(&approveDifficulty, "difficulty", 1.0, "difficulty coefficient (0.8-1.5)")
}
