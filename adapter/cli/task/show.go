package task

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/perfboard/perfboard/adapter/cli"
	"github.com/perfboard/perfboard/internal/performance/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show a task with its audit log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetTaskHandler == nil {
			fmt.Println("Task lookup requires a database connection.")
			return nil
		}

		id, err := parseTaskID(args[0])
		if err != nil {
			return err
		}

		result, err := app.GetTaskHandler.Handle(cmd.Context(), queries.GetTaskQuery{TaskID: id})
		if err != nil {
			return fmt.Errorf("failed to load task: %w", err)
		}

		t := result.Task
		fmt.Printf("Task %s\n", t.ID)
		fmt.Printf("  Title: %s\n", t.Title)
		if t.Description != "" {
			fmt.Printf("  Description: %s\n", t.Description)
		}
		if t.Category != "" {
			fmt.Printf("  Category: %s\n", t.Category)
		}
		fmt.Printf("  Type: %s\n", t.TaskType)
		fmt.Printf("  Status: %s\n", t.Status)
		fmt.Printf("  Progress: %d%%\n", t.Progress)
		fmt.Printf("  Importance: %.2f  Difficulty: %.2f\n", t.Importance, t.Difficulty)
		if t.Quality != nil {
			fmt.Printf("  Quality: %.2f\n", *t.Quality)
		}
		fmt.Printf("  Base score: %.2f\n", t.BaseScore)
		if t.FinalScore != nil {
			fmt.Printf("  Final score: %.2f\n", *t.FinalScore)
		}
		if t.PlanStart != nil && t.PlanEnd != nil {
			fmt.Printf("  Plan: %s - %s\n",
				t.PlanStart.Format("2006-01-02"), t.PlanEnd.Format("2006-01-02"))
		}
		if t.OverdueRatio != nil {
			fmt.Printf("  Overdue: %.0f%% of planned duration\n", *t.OverdueRatio*100)
		}

		if len(result.Logs) > 0 {
			fmt.Println("\nHistory:")
			for _, entry := range result.Logs {
				line := fmt.Sprintf("  %s  %-10s %s",
					entry.CreatedAt.Format(time.RFC3339), entry.Actor, entry.Action)
				if entry.Detail != "" {
					line += " - " + entry.Detail
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}
