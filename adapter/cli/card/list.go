package card

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/perfboard/perfboard/adapter/cli"
	"github.com/perfboard/perfboard/internal/performance/application/queries"
)

var (
	listTask            string
	listUser            string
	listIncludeArchived bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List penalty cards",
	Long: `List penalty cards, narrowed to a task or a user.

Examples:
  perfboard card list
  perfboard card list --task 8f14e45f-...
  perfboard card list --user 6512bd43-... --include-archived`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListCardsHandler == nil {
			fmt.Println("Card listing requires a database connection.")
			return nil
		}

		query := queries.ListCardsQuery{IncludeArchived: listIncludeArchived}
		if listTask != "" {
			taskID, err := uuid.Parse(listTask)
			if err != nil {
				return fmt.Errorf("invalid task ID %q: %w", listTask, err)
			}
			query.TaskID = &taskID
		}
		if listUser != "" {
			userID, err := uuid.Parse(listUser)
			if err != nil {
				return fmt.Errorf("invalid user ID %q: %w", listUser, err)
			}
			query.UserID = &userID
		}

		cards, err := app.ListCardsHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to list cards: %w", err)
		}
		if len(cards) == 0 {
			fmt.Println("No cards found.")
			return nil
		}

		for _, c := range cards {
			line := fmt.Sprintf("%s  %-6s  task=%s  penalty=%.1f  %s",
				c.ID, c.CardType, c.TaskID, c.PenaltyScore, c.Reason)
			if c.Archived {
				line += "  [archived]"
			}
			fmt.Println(line)
		}
		fmt.Printf("\n%d card(s)\n", len(cards))
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listTask, "task", "", "cards for this task")
	listCmd.Flags().StringVarP(&listUser, "user", "u", "", "cards for this user")
	listCmd.Flags().BoolVar(&listIncludeArchived, "include-archived", false, "include archived cards")
}
