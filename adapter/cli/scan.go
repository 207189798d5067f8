package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the overdue scan once",
	Long: `Walk all open tasks with a planned end and issue penalty cards:
red for severely overdue work (which also opens an appeal), yellow for
overdue or lagging work. Repeat runs are idempotent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.OverdueScanner == nil {
			fmt.Println("The scan requires a database connection.")
			return nil
		}

		result, err := app.OverdueScanner.RunOnce(cmd.Context())
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		fmt.Printf("Scanned %d task(s): %d red, %d yellow card(s) issued\n",
			result.TasksScanned, result.RedsIssued, result.YellowsIssued)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
