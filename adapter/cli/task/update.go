package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perfboard/perfboard/adapter/cli"
	"github.com/perfboard/perfboard/internal/performance/application/commands"
)

var (
	updateDescription string
	updateCategory    string
	updateExecutor    string
	updateLeader      string
	updatePlanStart   string
	updatePlanEnd     string
	updateBaseScore   float64
)

var updateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Edit a task before approval",
	Long: `Edit a task's fields. Only the creator or owner may edit, and only
before the task is approved.

Examples:
  perfboard task update 8f14e45f-... --desc "Updated scope"
  perfboard task update 8f14e45f-... --plan-end 2026-09-12 --base 15`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateTaskHandler == nil {
			fmt.Println("Task editing requires a database connection.")
			return nil
		}
		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		updateCommand := commands.UpdateTaskCommand{TaskID: id, Actor: app.CurrentActor}
		if cmd.Flags().Changed("desc") {
			updateCommand.Description = &updateDescription
		}
		if cmd.Flags().Changed("category") {
			updateCommand.Category = &updateCategory
		}
		if cmd.Flags().Changed("executor") {
			executorID, err := parseUUIDFlag(updateExecutor)
			if err != nil {
				return err
			}
			updateCommand.ExecutorID = executorID
		}
		if cmd.Flags().Changed("leader") {
			leaderID, err := parseUUIDFlag(updateLeader)
			if err != nil {
				return err
			}
			updateCommand.LeaderID = leaderID
		}
		if cmd.Flags().Changed("plan-start") {
			planStart, err := parseWhen(updatePlanStart)
			if err != nil {
				return err
			}
			updateCommand.PlanStart = planStart
		}
		if cmd.Flags().Changed("plan-end") {
			planEnd, err := parseWhen(updatePlanEnd)
			if err != nil {
				return err
			}
			updateCommand.PlanEnd = planEnd
		}
		if cmd.Flags().Changed("base") {
			updateCommand.BaseScore = &updateBaseScore
		}

		if err := app.UpdateTaskHandler.Handle(cmd.Context(), updateCommand); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		fmt.Printf("Task %s updated\n", id)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateDescription, "desc", "", "task description")
	updateCmd.Flags().StringVar(&updateCategory, "category", "", "task category")
	updateCmd.Flags().StringVar(&updateExecutor, "executor", "", "executor user ID")
	updateCmd.Flags().StringVar(&updateLeader, "leader", "", "leader user ID")
	updateCmd.Flags().StringVar(&updatePlanStart, "plan-start", "", "planned start (YYYY-MM-DD)")
	updateCmd.Flags().StringVar(&updatePlanEnd, "plan-end", "", "planned end (YYYY-MM-DD)")
	updateCmd.Flags().Float64Var(&updateBaseScore, "base", 0, "workload base score")
}
