package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perfboard/perfboard/adapter/cli"
	"github.com/perfboard/perfboard/internal/performance/application/commands"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
)

var (
	createDescription string
	createCategory    string
	createType        string
	createExecutor    string
	createLeader      string
	createParent      string
	createPlanStart   string
	createPlanEnd     string
	createBaseScore   float64
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new task",
	Long: `Create a new task in draft, or assign it to an executor.

Task types:
  performance - counted toward performance scoring (default)
  daily       - routine work, excluded from the leaderboard

Examples:
  perfboard task create "Write Q3 report" --plan-start 2026-09-01 --plan-end 2026-09-05
  perfboard task create "Refactor billing" --type performance --base 12
  perfboard task create "Fix login bug" --executor 8f14e45f-... --leader 6512bd43-...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTaskHandler == nil {
			fmt.Println("Task creation requires a database connection.")
			return nil
		}

		taskType, err := task.ParseType(createType)
		if err != nil {
			return err
		}
		executorID, err := parseUUIDFlag(createExecutor)
		if err != nil {
			return err
		}
		leaderID, err := parseUUIDFlag(createLeader)
		if err != nil {
			return err
		}
		parentID, err := parseUUIDFlag(createParent)
		if err != nil {
			return err
		}
		planStart, err := parseWhen(createPlanStart)
		if err != nil {
			return err
		}
		planEnd, err := parseWhen(createPlanEnd)
		if err != nil {
			return err
		}

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), commands.CreateTaskCommand{
			Actor:       app.CurrentActor,
			Title:       args[0],
			Description: createDescription,
			Category:    createCategory,
			TaskType:    taskType,
			ExecutorID:  executorID,
			LeaderID:    leaderID,
			ParentID:    parentID,
			PlanStart:   planStart,
			PlanEnd:     planEnd,
			BaseScore:   createBaseScore,
		})
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		fmt.Println("Task created!")
		fmt.Printf("  ID: %s\n", result.TaskID)
		fmt.Printf("  Status: %s\n", result.Status)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createDescription, "desc", "d", "", "task description")
	createCmd.Flags().StringVar(&createCategory, "category", "", "task category")
	createCmd.Flags().StringVarP(&createType, "type", "t", "performance", "task type (performance, daily)")
	createCmd.Flags().StringVar(&createExecutor, "executor", "", "assign to this executor user ID")
	createCmd.Flags().StringVar(&createLeader, "leader", "", "leader user ID for two-step approval")
	createCmd.Flags().StringVar(&createParent, "parent", "", "parent task ID")
	createCmd.Flags().StringVar(&createPlanStart, "plan-start", "", "planned start (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&createPlanEnd, "plan-end", "", "planned end (YYYY-MM-DD)")
	createCmd.Flags().Float64Var(&createBaseScore, "base", 0, "workload base score (0 = global default)")
}
