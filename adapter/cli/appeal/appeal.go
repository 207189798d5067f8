// Package appeal implements the appeal command group.
package appeal

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Cmd is the appeal command group
var Cmd = &cobra.Command{
	Use:   "appeal",
	Short: "Manage red card appeals",
	Long:  `Submit, review and inspect appeals against red penalty cards.`,
}

func init() {
	Cmd.AddCommand(submitCmd)
	Cmd.AddCommand(reviewCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(listCmd)
}

func parseAppealID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid appeal ID %q: %w", arg, err)
	}
	return id, nil
}
