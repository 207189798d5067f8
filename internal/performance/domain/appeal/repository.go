package appeal

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for appeal persistence.
type Repository interface {
	Save(ctx context.Context, a *Appeal) error
	FindByID(ctx context.Context, id uuid.UUID) (*Appeal, error)
	FindByCard(ctx context.Context, cardID uuid.UUID) (*Appeal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Appeal, error)
}
