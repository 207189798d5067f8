package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/perfboard/perfboard/adapter/cli"
	"github.com/perfboard/perfboard/internal/performance/application/commands"
)

var acceptQuality float64

var acceptCmd = &cobra.Command{
	Use:   "accept <task-id>",
	Short: "Accept a completed task and compute its final score",
	Long: `Accept a task in review, grading its quality and computing the
final score from workload, coefficients, quality, timeliness, progress
and any outstanding penalties.

Examples:
  perfboard task accept 8f14e45f-... --quality 1.0
  perfboard task accept 8f14e45f-... --quality 1.2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AcceptTaskHandler == nil {
			fmt.Println("Task review requires a database connection.")
			return nil
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		result, err := app.AcceptTaskHandler.Handle(cmd.Context(), commands.AcceptTaskCommand{
			TaskID:  id,
			Actor:   app.CurrentActor,
			Quality: acceptQuality,
		})
		if err != nil {
			return fmt.Errorf("failed to accept task: %w", err)
		}

		fmt.Printf("Task %s accepted\n", id)
		fmt.Printf("  Final score: %.2f\n", result.FinalScore)
		if result.Penalty > 0 {
			fmt.Printf("  Penalty deducted: %.2f\n", result.Penalty)
		}
		return nil
	},
}

var reviewRejectCmd = transition("review-reject", "sent back to execution",
	func(ctx context.Context, a *cli.App, id uuid.UUID) error {
		return a.ReviewRejectHandler.Handle(ctx, commands.ReviewRejectTaskCommand{TaskID: id, Actor: a.CurrentActor})
	})

func init() {
	acceptCmd.Flags().Float64VarP(&acceptQuality, "quality", "q", 1.0, "quality grade (0.0-1.2)")
}
