package card

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/shared/domain"
)

var (
	// ErrDuplicateCard signals a card of this type already exists for the
	// task. Repositories surface it from the (task_id, card_type) unique
	// constraint; the scan job treats it as "already issued".
	ErrDuplicateCard = errors.New("card of this type already issued for task")

	ErrCardNotFound = errors.New("penalty card not found")
	ErrCardArchived = errors.New("penalty card is archived")
)

// Type distinguishes a warning from a deducting penalty.
type Type int

const (
	TypeYellow Type = iota
	TypeRed
)

func (t Type) String() string {
	if t == TypeRed {
		return "red"
	}
	return "yellow"
}

// ParseType converts a stored string back to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "yellow":
		return TypeYellow, nil
	case "red":
		return TypeRed, nil
	default:
		return 0, fmt.Errorf("unknown card type: %q", s)
	}
}

// Card is a warning or penalty record tied to one task and one responsible user.
// Cards are never deleted, only archived at monthly settlement.
type Card struct {
	domain.BaseAggregateRoot
	taskID       uuid.UUID
	userID       uuid.UUID
	cardType     Type
	reason       string
	penaltyScore float64
	archived     bool
	triggeredAt  time.Time
}

// NewCard creates a card against a task's responsible user.
func NewCard(taskID, userID uuid.UUID, cardType Type, reason string, penalty float64, triggeredAt time.Time) *Card {
	c := &Card{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		taskID:            taskID,
		userID:            userID,
		cardType:          cardType,
		reason:            reason,
		penaltyScore:      penalty,
		triggeredAt:       triggeredAt.UTC(),
	}

	c.AddDomainEvent(NewCardIssued(c.ID(), taskID, userID, cardType.String(), reason, penalty))

	return c
}

// Getters

func (c *Card) TaskID() uuid.UUID      { return c.taskID }
func (c *Card) UserID() uuid.UUID      { return c.userID }
func (c *Card) CardType() Type         { return c.cardType }
func (c *Card) Reason() string         { return c.reason }
func (c *Card) PenaltyScore() float64  { return c.penaltyScore }
func (c *Card) IsArchived() bool       { return c.archived }
func (c *Card) TriggeredAt() time.Time { return c.triggeredAt }

// ReversePenalty zeroes the deduction after a successful appeal.
// The card record itself survives.
func (c *Card) ReversePenalty() error {
	if c.archived {
		return ErrCardArchived
	}
	if c.penaltyScore == 0 {
		return nil // idempotent
	}
	c.penaltyScore = 0
	c.Touch()
	c.AddDomainEvent(NewCardPenaltyReversed(c.ID(), c.taskID))
	return nil
}

// Archive marks the card as settled. Archived cards no longer count
// against the user's running total.
func (c *Card) Archive() error {
	if c.archived {
		return nil // idempotent
	}
	c.archived = true
	c.Touch()
	return nil
}

// Snapshot is the flat persisted form of a card.
type Snapshot struct {
	ID           uuid.UUID
	TaskID       uuid.UUID
	UserID       uuid.UUID
	CardType     Type
	Reason       string
	PenaltyScore float64
	Archived     bool
	TriggeredAt  time.Time
	Version      int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Rehydrate recreates a card from persisted state with no pending events.
func Rehydrate(s Snapshot) *Card {
	return &Card{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt),
			s.Version,
		),
		taskID:       s.TaskID,
		userID:       s.UserID,
		cardType:     s.CardType,
		reason:       s.Reason,
		penaltyScore: s.PenaltyScore,
		archived:     s.Archived,
		triggeredAt:  s.TriggeredAt,
	}
}
