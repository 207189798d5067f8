package application

import (
	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/shared/domain"
)

// NewEventMetadata builds metadata for a batch of events triggered by one actor.
// The correlation id doubles as the causation id for the first hop.
func NewEventMetadata(userID uuid.UUID) domain.EventMetadata {
	correlationID := uuid.New()
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   correlationID,
		UserID:        userID,
	}
}
