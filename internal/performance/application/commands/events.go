package commands

import (
	"context"

	"github.com/google/uuid"

	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/domain"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

type eventSource interface {
	DomainEvents() []domain.DomainEvent
	ClearDomainEvents()
}

// stageEvents drains the pending events of the given aggregates into the
// outbox within the current transaction.
func stageEvents(ctx context.Context, repo outbox.Repository, by uuid.UUID, sources ...eventSource) error {
	meta := sharedApplication.NewEventMetadata(by)

	var events []domain.DomainEvent
	for _, src := range sources {
		events = append(events, src.DomainEvents()...)
		src.ClearDomainEvents()
	}
	if len(events) == 0 {
		return nil
	}

	msgs, err := outbox.FromEvents(events, meta)
	if err != nil {
		return err
	}
	return repo.SaveBatch(ctx, msgs)
}
