package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// RejectTaskCommand declines a task awaiting approval.
type RejectTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor
}

// RejectTaskHandler handles the RejectTaskCommand.
type RejectTaskHandler struct {
	taskMutator
}

// NewRejectTaskHandler creates a new RejectTaskHandler.
func NewRejectTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *RejectTaskHandler {
	return &RejectTaskHandler{taskMutator{taskRepo: taskRepo, outboxRepo: outboxRepo, uow: uow}}
}

// Handle executes the RejectTaskCommand.
func (h *RejectTaskHandler) Handle(ctx context.Context, cmd RejectTaskCommand) error {
	return h.mutate(ctx, cmd.TaskID, cmd.Actor.ID, func(t *task.Task) error {
		return t.Reject(cmd.Actor)
	})
}
