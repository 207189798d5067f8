package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// ReviseTaskCommand reopens a rejected task as a draft.
type ReviseTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor
}

// ReviseTaskHandler handles the ReviseTaskCommand.
type ReviseTaskHandler struct {
	taskMutator
}

// NewReviseTaskHandler creates a new ReviseTaskHandler.
func NewReviseTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *ReviseTaskHandler {
	return &ReviseTaskHandler{taskMutator{taskRepo: taskRepo, outboxRepo: outboxRepo, uow: uow}}
}

// Handle executes the ReviseTaskCommand.
func (h *ReviseTaskHandler) Handle(ctx context.Context, cmd ReviseTaskCommand) error {
	return h.mutate(ctx, cmd.TaskID, cmd.Actor.ID, func(t *task.Task) error {
		return t.Revise(cmd.Actor)
	})
}
