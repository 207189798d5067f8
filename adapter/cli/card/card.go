// Package card implements the card command group.
package card

import (
	"github.com/spf13/cobra"
)

// Cmd is the card command group
var Cmd = &cobra.Command{
	Use:   "card",
	Short: "Inspect and archive penalty cards",
	Long:  `List yellow and red penalty cards and archive settled ones.`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(archiveCmd)
}
