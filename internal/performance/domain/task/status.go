package task

import "fmt"

// Status represents the task lifecycle state.
type Status int

const (
	StatusDraft Status = iota
	StatusPendingSubmission
	StatusPendingLeaderApproval
	StatusPendingApproval
	StatusInProgress
	StatusPendingReview
	StatusCompleted
	StatusRejected
	StatusCancelled
	StatusSuspended
)

var statusNames = map[Status]string{
	StatusDraft:                 "draft",
	StatusPendingSubmission:     "pending_submission",
	StatusPendingLeaderApproval: "pending_leader_approval",
	StatusPendingApproval:       "pending_approval",
	StatusInProgress:            "in_progress",
	StatusPendingReview:         "pending_review",
	StatusCompleted:             "completed",
	StatusRejected:              "rejected",
	StatusCancelled:             "cancelled",
	StatusSuspended:             "suspended",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStatus converts a stored string back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown task status: %q", s)
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// BeforeApproval reports whether the task has not yet entered execution.
// Tasks in these states score a neutral timeliness coefficient.
func (s Status) BeforeApproval() bool {
	switch s {
	case StatusDraft, StatusPendingSubmission, StatusPendingLeaderApproval, StatusPendingApproval, StatusRejected:
		return true
	default:
		return false
	}
}

// Scannable reports whether the overdue scan evaluates tasks in this state.
func (s Status) Scannable() bool {
	return s == StatusInProgress || s == StatusPendingReview
}
