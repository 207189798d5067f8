package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// SuspendTaskCommand pauses an in-progress task.
type SuspendTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor
}

// SuspendTaskHandler handles the SuspendTaskCommand.
type SuspendTaskHandler struct {
	taskMutator
}

// NewSuspendTaskHandler creates a new SuspendTaskHandler.
func NewSuspendTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *SuspendTaskHandler {
	return &SuspendTaskHandler{taskMutator{taskRepo: taskRepo, outboxRepo: outboxRepo, uow: uow}}
}

// Handle executes the SuspendTaskCommand.
func (h *SuspendTaskHandler) Handle(ctx context.Context, cmd SuspendTaskCommand) error {
	return h.mutate(ctx, cmd.TaskID, cmd.Actor.ID, func(t *task.Task) error {
		return t.Suspend(cmd.Actor)
	})
}

// ResumeTaskCommand resumes a suspended task.
type ResumeTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor
}

// ResumeTaskHandler handles the ResumeTaskCommand.
type ResumeTaskHandler struct {
	taskMutator
}

// NewResumeTaskHandler creates a new ResumeTaskHandler.
func NewResumeTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *ResumeTaskHandler {
	return &ResumeTaskHandler{taskMutator{taskRepo: taskRepo, outboxRepo: outboxRepo, uow: uow}}
}

// Handle executes the ResumeTaskCommand.
func (h *ResumeTaskHandler) Handle(ctx context.Context, cmd ResumeTaskCommand) error {
	return h.mutate(ctx, cmd.TaskID, cmd.Actor.ID, func(t *task.Task) error {
		return t.Resume(cmd.Actor)
	})
}
