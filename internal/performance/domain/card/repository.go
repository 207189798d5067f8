package card

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for penalty card persistence.
type Repository interface {
	// Save inserts or updates a card. Inserting a second card of the same
	// type for a task returns ErrDuplicateCard from the storage-level
	// unique constraint.
	Save(ctx context.Context, c *Card) error

	FindByID(ctx context.Context, id uuid.UUID) (*Card, error)
	FindByTask(ctx context.Context, taskID uuid.UUID) ([]*Card, error)
	ListByUser(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*Card, error)

	// ActivePenaltyTotal sums unarchived penalty scores for a task.
	ActivePenaltyTotal(ctx context.Context, taskID uuid.UUID) (float64, error)

	// ListActive returns all unarchived cards.
	ListActive(ctx context.Context) ([]*Card, error)

	// ArchiveBefore archives unarchived cards triggered before the cutoff.
	// Used by monthly settlement. Returns the number of cards archived.
	ArchiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
