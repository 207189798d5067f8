package appeal

import (
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/shared/domain"
)

const (
	AggregateType = "Appeal"

	RoutingKeyOpened    = "perf.appeal.opened"
	RoutingKeySubmitted = "perf.appeal.submitted"
	RoutingKeyReviewed  = "perf.appeal.reviewed"
)

// AppealOpened is emitted when a red card automatically opens its appeal.
type AppealOpened struct {
	domain.BaseEvent
	CardID    uuid.UUID `json:"card_id"`
	TaskID    uuid.UUID `json:"task_id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewAppealOpened creates an AppealOpened event.
func NewAppealOpened(appealID, cardID, taskID, userID uuid.UUID, expiresAt time.Time) AppealOpened {
	return AppealOpened{
		BaseEvent: domain.NewBaseEvent(appealID, AggregateType, RoutingKeyOpened),
		CardID:    cardID,
		TaskID:    taskID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
}

// AppealSubmitted is emitted when the owner files their case.
type AppealSubmitted struct {
	domain.BaseEvent
	CardID         uuid.UUID `json:"card_id"`
	ReasonCategory string    `json:"reason_category"`
}

// NewAppealSubmitted creates an AppealSubmitted event.
func NewAppealSubmitted(appealID, cardID uuid.UUID, reasonCategory string) AppealSubmitted {
	return AppealSubmitted{
		BaseEvent:      domain.NewBaseEvent(appealID, AggregateType, RoutingKeySubmitted),
		CardID:         cardID,
		ReasonCategory: reasonCategory,
	}
}

// AppealReviewed is emitted when a reviewer reaches a terminal verdict.
type AppealReviewed struct {
	domain.BaseEvent
	CardID     uuid.UUID `json:"card_id"`
	Verdict    string    `json:"verdict"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
}

// NewAppealReviewed creates an AppealReviewed event.
func NewAppealReviewed(appealID, cardID uuid.UUID, verdict string, reviewerID uuid.UUID) AppealReviewed {
	return AppealReviewed{
		BaseEvent:  domain.NewBaseEvent(appealID, AggregateType, RoutingKeyReviewed),
		CardID:     cardID,
		Verdict:    verdict,
		ReviewerID: reviewerID,
	}
}
