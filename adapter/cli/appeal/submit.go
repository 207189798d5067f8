package appeal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perfboard/perfboard/adapter/cli"
	"github.com/perfboard/perfboard/internal/performance/application/commands"
)

var (
	submitReason   string
	submitDetail   string
	submitEvidence []string
)

var submitCmd = &cobra.Command{
	Use:   "submit <appeal-id>",
	Short: "Submit a pending appeal for review",
	Long: `Fill in and submit the appeal a red card opened for you. Only the
card's owner may submit, and only before the appeal window expires.

Examples:
  perfboard appeal submit 8f14e45f-... --reason blocked_by_dependency \
    --detail "upstream sign-off arrived two days late" \
    --evidence https://tracker/ticket/42`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SubmitAppealHandler == nil {
			fmt.Println("Appeals require a database connection.")
			return nil
		}
		id, err := parseAppealID(args[0])
		if err != nil {
			return err
		}

		err = app.SubmitAppealHandler.Handle(cmd.Context(), commands.SubmitAppealCommand{
			AppealID:       id,
			Actor:          app.CurrentActor,
			ReasonCategory: submitReason,
			Detail:         submitDetail,
			Evidence:       submitEvidence,
		})
		if err != nil {
			return fmt.Errorf("failed to submit appeal: %w", err)
		}
		fmt.Printf("Appeal %s submitted for review\n", id)
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVarP(&submitReason, "reason", "r", "", "reason category (required)")
	submitCmd.Flags().StringVarP(&submitDetail, "detail", "d", "", "free-form explanation")
	submitCmd.Flags().StringArrayVar(&submitEvidence, "evidence", nil, "evidence link, repeatable")
	_ = submitCmd.MarkFlagRequired("reason")
}
