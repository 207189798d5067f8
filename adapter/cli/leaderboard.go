package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perfboard/perfboard/internal/performance/application/queries"
)

var leaderboardLimit int

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the KPI ranking",
	Long: `Show the per-user KPI ranking: summed final scores of completed,
KPI-eligible tasks, minus active penalties.

Examples:
  perfboard leaderboard
  perfboard leaderboard --limit 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.LeaderboardHandler == nil {
			fmt.Println("The leaderboard requires a database connection.")
			return nil
		}

		entries, err := app.LeaderboardHandler.Handle(cmd.Context(), queries.LeaderboardQuery{Limit: leaderboardLimit})
		if err != nil {
			return fmt.Errorf("failed to load leaderboard: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No scored tasks yet.")
			return nil
		}

		fmt.Printf("%-4s %-38s %10s %8s %9s\n", "#", "USER", "SCORE", "TASKS", "PENALTY")
		for i, e := range entries {
			fmt.Printf("%-4d %-38s %10.2f %8d %9.2f\n",
				i+1, e.UserID, e.TotalScore, e.TasksCompleted, e.PenaltyTotal)
		}
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().IntVarP(&leaderboardLimit, "limit", "n", 0, "limit the number of rows (0 = all)")
	rootCmd.AddCommand(leaderboardCmd)
}
