package appeal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/shared/domain"
)

var (
	ErrAppealNotFound = errors.New("appeal not found")
	ErrAppealExpired  = errors.New("appeal window has expired")
	ErrNotAppealOwner = errors.New("only the appeal's owner may submit it")
	ErrNotReviewer    = errors.New("only admin or manager roles may review appeals")
	ErrEmptyReason    = errors.New("appeal reason cannot be empty")
	ErrInvalidVerdict = errors.New("review verdict must be approved or rejected")
)

// Status tracks the appeal through its monotonic lifecycle.
type Status int

const (
	StatusPending Status = iota
	StatusReviewing
	StatusApproved
	StatusRejected
)

var statusNames = map[Status]string{
	StatusPending:   "pending",
	StatusReviewing: "reviewing",
	StatusApproved:  "approved",
	StatusRejected:  "rejected",
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
	return 0, fmt.Errorf("unknown appeal status: %q", s)
}

// IsTerminal reports whether the appeal has been reviewed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Appeal is a time-boxed challenge to a red penalty card. Exactly one exists
// per red card, created in the same transaction as the card itself.
type Appeal struct {
	domain.BaseAggregateRoot
	cardID         uuid.UUID
	taskID         uuid.UUID
	userID         uuid.UUID
	status         Status
	reasonCategory string
	detail         string
	evidence       []string
	expiresAt      time.Time
	reviewerID     *uuid.UUID
	reviewComment  string
	reviewedAt     *time.Time
}

// NewAppeal opens a pending appeal for a freshly issued red card.
func NewAppeal(cardID, taskID, userID uuid.UUID, expiresAt time.Time) *Appeal {
	a := &Appeal{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		cardID:            cardID,
		taskID:            taskID,
		userID:            userID,
		status:            StatusPending,
		expiresAt:         expiresAt.UTC(),
	}

	a.AddDomainEvent(NewAppealOpened(a.ID(), cardID, taskID, userID, a.expiresAt))

	return a
}

// Getters

func (a *Appeal) CardID() uuid.UUID      { return a.cardID }
func (a *Appeal) TaskID() uuid.UUID      { return a.taskID }
func (a *Appeal) UserID() uuid.UUID      { return a.userID }
func (a *Appeal) Status() Status         { return a.status }
func (a *Appeal) ReasonCategory() string { return a.reasonCategory }
func (a *Appeal) Detail() string         { return a.detail }
func (a *Appeal) Evidence() []string     { return a.evidence }
func (a *Appeal) ExpiresAt() time.Time   { return a.expiresAt }
func (a *Appeal) ReviewerID() *uuid.UUID { return a.reviewerID }
func (a *Appeal) ReviewComment() string  { return a.reviewComment }
func (a *Appeal) ReviewedAt() *time.Time { return a.reviewedAt }

// Submit files the appeal's case within the expiry window, moving it to
// reviewing. Only the owning user may submit, and only from pending.
func (a *Appeal) Submit(by actor.Actor, reasonCategory, detail string, evidence []string, now time.Time) error {
	if by.ID != a.userID {
		return ErrNotAppealOwner
	}
	if a.status != StatusPending {
		return &StateError{Action: "submit", From: a.status}
	}
	if now.After(a.expiresAt) {
		return ErrAppealExpired
	}
	reasonCategory = strings.TrimSpace(reasonCategory)
	if reasonCategory == "" {
		return ErrEmptyReason
	}

	a.reasonCategory = reasonCategory
	a.detail = strings.TrimSpace(detail)
	a.evidence = append([]string(nil), evidence...)
	a.status = StatusReviewing
	a.Touch()
	a.AddDomainEvent(NewAppealSubmitted(a.ID(), a.cardID, reasonCategory))
	return nil
}

// Review concludes the appeal. Only admin/manager roles may review, only from
// reviewing, and only to a terminal verdict. Terminal reviews do not re-enter.
func (a *Appeal) Review(by actor.Actor, verdict Status, comment string, now time.Time) error {
	if !by.Role.IsManagerial() {
		return ErrNotReviewer
	}
	if verdict != StatusApproved && verdict != StatusRejected {
		return ErrInvalidVerdict
	}
	if a.status != StatusReviewing {
		return &StateError{Action: "review", From: a.status}
	}

	reviewedAt := now.UTC()
	reviewerID := by.ID
	a.status = verdict
	a.reviewerID = &reviewerID
	a.reviewComment = strings.TrimSpace(comment)
	a.reviewedAt = &reviewedAt
	a.Touch()
	a.AddDomainEvent(NewAppealReviewed(a.ID(), a.cardID, verdict.String(), reviewerID))
	return nil
}

// IsApproved reports whether the review reversed the card's penalty.
func (a *Appeal) IsApproved() bool {
	return a.status == StatusApproved
}

// StateError reports an appeal operation attempted in the wrong status.
type StateError struct {
	Action string
	From   Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s appeal in status %s", e.Action, e.From)
}

// Snapshot is the flat persisted form of an appeal.
type Snapshot struct {
	ID             uuid.UUID
	CardID         uuid.UUID
	TaskID         uuid.UUID
	UserID         uuid.UUID
	Status         Status
	ReasonCategory string
	Detail         string
	Evidence       []string
	ExpiresAt      time.Time
	ReviewerID     *uuid.UUID
	ReviewComment  string
	ReviewedAt     *time.Time
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Rehydrate recreates an appeal from persisted state with no pending events.
func Rehydrate(s Snapshot) *Appeal {
	return &Appeal{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt),
			s.Version,
		),
		cardID:         s.CardID,
		taskID:         s.TaskID,
		userID:         s.UserID,
		status:         s.Status,
		reasonCategory: s.ReasonCategory,
		detail:         s.Detail,
		evidence:       s.Evidence,
		expiresAt:      s.ExpiresAt,
		reviewerID:     s.ReviewerID,
		reviewComment:  s.ReviewComment,
		reviewedAt:     s.ReviewedAt,
	}
}
