package card

import (
	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/shared/domain"
)

const (
	AggregateType = "PenaltyCard"

	RoutingKeyIssued          = "perf.card.issued"
	RoutingKeyPenaltyReversed = "perf.card.penalty_reversed"
)

// CardIssued is emitted when a card is created, automatically or manually.
type CardIssued struct {
	domain.BaseEvent
	TaskID       uuid.UUID `json:"task_id"`
	UserID       uuid.UUID `json:"user_id"`
	CardType     string    `json:"card_type"`
	Reason       string    `json:"reason"`
	PenaltyScore float64   `json:"penalty_score"`
}

// NewCardIssued creates a CardIssued event.
func NewCardIssued(cardID, taskID, userID uuid.UUID, cardType, reason string, penalty float64) CardIssued {
	return CardIssued{
		BaseEvent:    domain.NewBaseEvent(cardID, AggregateType, RoutingKeyIssued),
		TaskID:       taskID,
		UserID:       userID,
		CardType:     cardType,
		Reason:       reason,
		PenaltyScore: penalty,
	}
}

// CardPenaltyReversed is emitted when an approved appeal zeroes the deduction.
type CardPenaltyReversed struct {
	domain.BaseEvent
	TaskID uuid.UUID `json:"task_id"`
}

// NewCardPenaltyReversed creates a CardPenaltyReversed event.
func NewCardPenaltyReversed(cardID, taskID uuid.UUID) CardPenaltyReversed {
	return CardPenaltyReversed{
		BaseEvent: domain.NewBaseEvent(cardID, AggregateType, RoutingKeyPenaltyReversed),
		TaskID:    taskID,
	}
}
