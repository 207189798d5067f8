package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perfboard/perfboard/adapter/cli"
	"github.com/perfboard/perfboard/internal/performance/application/queries"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
)

var (
	listStatus         string
	listMine           bool
	listIncludeDeleted bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks, optionally filtered by status or limited to your own.

Examples:
  perfboard task list
  perfboard task list --status in_progress
  perfboard task list --mine --include-deleted`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListTasksHandler == nil {
			fmt.Println("Task listing requires a database connection.")
			return nil
		}

		query := queries.ListTasksQuery{IncludeDeleted: listIncludeDeleted}
		if listStatus != "" {
			status, err := task.ParseStatus(listStatus)
			if err != nil {
				return err
			}
			query.Status = &status
		}
		if listMine {
			userID := app.CurrentActor.ID
			query.UserID = &userID
		}

		tasks, err := app.ListTasksHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		for _, t := range tasks {
			line := fmt.Sprintf("%s  %-16s  %3d%%  %s", t.ID, t.Status, t.Progress, t.Title)
			if t.OverdueRatio != nil {
				line += fmt.Sprintf("  (overdue %.0f%%)", *t.OverdueRatio*100)
			}
			if t.FinalScore != nil {
				line += fmt.Sprintf("  score=%.2f", *t.FinalScore)
			}
			fmt.Println(line)
		}
		fmt.Printf("\n%d task(s)\n", len(tasks))
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by status")
	listCmd.Flags().BoolVar(&listMine, "mine", false, "only tasks you create, own or execute")
	listCmd.Flags().BoolVar(&listIncludeDeleted, "include-deleted", false, "include soft-deleted tasks")
}
