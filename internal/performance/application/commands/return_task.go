package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// ReturnTaskCommand sends a task awaiting approval back to draft for rework.
type ReturnTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor
}

// ReturnTaskHandler handles the ReturnTaskCommand.
type ReturnTaskHandler struct {
	taskMutator
}

// NewReturnTaskHandler creates a new ReturnTaskHandler.
func NewReturnTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *ReturnTaskHandler {
	return &ReturnTaskHandler{taskMutator{taskRepo: taskRepo, outboxRepo: outboxRepo, uow: uow}}
}

// Handle executes the ReturnTaskCommand.
func (h *ReturnTaskHandler) Handle(ctx context.Context, cmd ReturnTaskCommand) error {
	return h.mutate(ctx, cmd.TaskID, cmd.Actor.ID, func(t *task.Task) error {
		return t.Return(cmd.Actor)
	})
}
