// Package task implements the task command group.
package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Create tasks and walk them through submission, approval, execution and review.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(updateCmd)
	Cmd.AddCommand(submitCmd)
	Cmd.AddCommand(approveCmd)
	Cmd.AddCommand(rejectCmd)
	Cmd.AddCommand(returnCmd)
	Cmd.AddCommand(withdrawCmd)
	Cmd.AddCommand(reviseCmd)
	Cmd.AddCommand(progressCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(acceptCmd)
	Cmd.AddCommand(reviewRejectCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(suspendCmd)
	Cmd.AddCommand(resumeCmd)
	Cmd.AddCommand(deleteCmd)
}

func parseTaskID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid task ID %q: %w", arg, err)
	}
	return id, nil
}

// parseWhen accepts YYYY-MM-DD or full RFC 3339 timestamps.
func parseWhen(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q, want YYYY-MM-DD or RFC 3339", s)
	}
	return &t, nil
}

func parseUUIDFlag(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid ID %q: %w", s, err)
	}
	return &id, nil
}
