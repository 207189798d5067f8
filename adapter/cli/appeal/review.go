package appeal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perfboard/perfboard/adapter/cli"
	"github.com/perfboard/perfboard/internal/performance/application/commands"
)

var (
	reviewApprove bool
	reviewReject  bool
	reviewComment string
)

var reviewCmd = &cobra.Command{
	Use:   "review <appeal-id>",
	Short: "Approve or reject an appeal",
	Long: `Review a submitted appeal. Requires a managerial role. Approving
reverses the linked red card's penalty; the card itself stays on record.

Examples:
  perfboard appeal review 8f14e45f-... --approve --comment "dependency confirmed"
  perfboard appeal review 8f14e45f-... --reject`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ReviewAppealHandler == nil {
			fmt.Println("Appeal review requires a database connection.")
			return nil
		}
		if reviewApprove == reviewReject {
			return fmt.Errorf("pass exactly one of --approve or --reject")
		}
		id, err := parseAppealID(args[0])
		if err != nil {
			return err
		}

		err = app.ReviewAppealHandler.Handle(cmd.Context(), commands.ReviewAppealCommand{
			AppealID: id,
			Actor:    app.CurrentActor,
			Approve:  reviewApprove,
			Comment:  reviewComment,
		})
		if err != nil {
			return fmt.Errorf("failed to review appeal: %w", err)
		}

		if reviewApprove {
			fmt.Printf("Appeal %s approved, penalty reversed\n", id)
		} else {
			fmt.Printf("Appeal %s rejected\n", id)
		}
		return nil
	},
}

func init() {
	reviewCmd.Flags().BoolVar(&reviewApprove, "approve", false, "approve the appeal")
	reviewCmd.Flags().BoolVar(&reviewReject, "reject", false, "reject the appeal")
	reviewCmd.Flags().StringVarP(&reviewComment, "comment", "c", "", "review comment")
}
