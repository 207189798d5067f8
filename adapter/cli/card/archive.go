package card

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/perfboard/perfboard/adapter/cli"
	"github.com/perfboard/perfboard/internal/performance/application/commands"
)

var archiveBefore string

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive settled penalty cards",
	Long: `Archive active cards triggered before a cutoff, typically run at the
monthly settlement. Archived cards stay on record but no longer count
against scores.

Examples:
  perfboard card archive
  perfboard card archive --before 2026-08-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ArchiveCardsHandler == nil {
			fmt.Println("Card archival requires a database connection.")
			return nil
		}

		// Default cutoff is the start of the current month.
		now := time.Now()
		cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		if archiveBefore != "" {
			parsed, err := time.Parse("2006-01-02", archiveBefore)
			if err != nil {
				return fmt.Errorf("invalid cutoff %q, want YYYY-MM-DD", archiveBefore)
			}
			cutoff = parsed
		}

		result, err := app.ArchiveCardsHandler.Handle(cmd.Context(), commands.ArchiveCardsCommand{Cutoff: cutoff})
		if err != nil {
			return fmt.Errorf("failed to archive cards: %w", err)
		}
		fmt.Printf("Archived %d card(s) triggered before %s\n", result.Archived, cutoff.Format("2006-01-02"))
		return nil
	},
}

func init() {
	archiveCmd.Flags().StringVar(&archiveBefore, "before", "", "cutoff date (YYYY-MM-DD), defaults to start of this month")
}
