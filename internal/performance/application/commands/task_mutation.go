package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// taskMutator is the common load-mutate-save-stage cycle shared by the
// task lifecycle handlers.
type taskMutator struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

func (m taskMutator) mutate(ctx context.Context, taskID, by uuid.UUID, fn func(*task.Task) error) error {
	return sharedApplication.WithUnitOfWork(ctx, m.uow, func(txCtx context.Context) error {
		t, err := m.taskRepo.FindByID(txCtx, taskID)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		if err := m.taskRepo.Save(txCtx, t); err != nil {
			return err
		}
		return stageEvents(txCtx, m.outboxRepo, by, t)
	})
}
