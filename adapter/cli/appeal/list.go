package appeal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/perfboard/perfboard/adapter/cli"
	"github.com/perfboard/perfboard/internal/performance/application/queries"
)

var showByCard bool

var showCmd = &cobra.Command{
	Use:   "show <appeal-id | card-id>",
	Short: "Show an appeal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetAppealHandler == nil {
			fmt.Println("Appeal lookup requires a database connection.")
			return nil
		}
		id, err := parseAppealID(args[0])
		if err != nil {
			return err
		}

		query := queries.GetAppealQuery{}
		if showByCard {
			query.CardID = &id
		} else {
			query.AppealID = &id
		}

		a, err := app.GetAppealHandler.Handle(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("failed to load appeal: %w", err)
		}
		printAppeal(a)
		return nil
	},
}

var listUser string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List appeals",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListAppealsHandler == nil {
			fmt.Println("Appeal listing requires a database connection.")
			return nil
		}

		userID := app.CurrentActor.ID
		if listUser != "" {
			parsed, err := uuid.Parse(listUser)
			if err != nil {
				return fmt.Errorf("invalid user ID %q: %w", listUser, err)
			}
			userID = parsed
		}

		appeals, err := app.ListAppealsHandler.Handle(cmd.Context(), queries.ListAppealsQuery{UserID: userID})
		if err != nil {
			return fmt.Errorf("failed to list appeals: %w", err)
		}
		if len(appeals) == 0 {
			fmt.Println("No appeals found.")
			return nil
		}
		for _, a := range appeals {
			fmt.Printf("%s  %-10s  card=%s  expires=%s\n",
				a.ID, a.Status, a.CardID, a.ExpiresAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func printAppeal(a *queries.AppealDTO) {
	fmt.Printf("Appeal %s\n", a.ID)
	fmt.Printf("  Card: %s\n", a.CardID)
	fmt.Printf("  Task: %s\n", a.TaskID)
	fmt.Printf("  Status: %s\n", a.Status)
	fmt.Printf("  Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
	if a.ReasonCategory != "" {
		fmt.Printf("  Reason: %s\n", a.ReasonCategory)
	}
	if a.Detail != "" {
		fmt.Printf("  Detail: %s\n", a.Detail)
	}
	for _, ev := range a.Evidence {
		fmt.Printf("  Evidence: %s\n", ev)
	}
	if a.ReviewedAt != nil {
		fmt.Printf("  Reviewed: %s\n", a.ReviewedAt.Format(time.RFC3339))
	}
	if a.ReviewComment != "" {
		fmt.Printf("  Review comment: %s\n", a.ReviewComment)
	}
}

func init() {
	showCmd.Flags().BoolVar(&showByCard, "by-card", false, "look up by card ID instead of appeal ID")
	listCmd.Flags().StringVarP(&listUser, "user", "u", "", "list another user's appeals")
}
