package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// UpdateTaskCommand edits the descriptive fields of a draft. Nil fields are
// left unchanged.
type UpdateTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor

	Description *string
	Category    *string
	LeaderID    *uuid.UUID
	ExecutorID  *uuid.UUID
	PlanStart   *time.Time
	PlanEnd     *time.Time
	BaseScore   *float64
}

// UpdateTaskHandler handles the UpdateTaskCommand.
type UpdateTaskHandler struct {
	taskMutator
}

// NewUpdateTaskHandler creates a new UpdateTaskHandler.
func NewUpdateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *UpdateTaskHandler {
	return &UpdateTaskHandler{taskMutator{taskRepo: taskRepo, outboxRepo: outboxRepo, uow: uow}}
}

// Handle executes the UpdateTaskCommand. Edits are restricted to tasks that
// have not started execution, and to their participants.
func (h *UpdateTaskHandler) Handle(ctx context.Context, cmd UpdateTaskCommand) error {
	return h.mutate(ctx, cmd.TaskID, cmd.Actor.ID, func(t *task.Task) error {
		if !t.Status().BeforeApproval() {
			return task.ErrNotPermitted
		}
		if cmd.Actor.ID != t.CreatorID() && cmd.Actor.ID != t.OwnerID() {
			return task.ErrNotPermitted
		}

		if cmd.Description != nil {
			t.SetDescription(*cmd.Description)
		}
		if cmd.Category != nil {
			t.SetCategory(*cmd.Category)
		}
		if cmd.LeaderID != nil {
			t.SetLeader(cmd.LeaderID)
		}
		if cmd.ExecutorID != nil {
			t.SetExecutor(cmd.ExecutorID)
		}
		if cmd.PlanStart != nil || cmd.PlanEnd != nil {
			start, end := t.PlanStart(), t.PlanEnd()
			if cmd.PlanStart != nil {
				start = cmd.PlanStart
			}
			if cmd.PlanEnd != nil {
				end = cmd.PlanEnd
			}
			t.SetPlanWindow(start, end)
		}
		if cmd.BaseScore != nil {
			t.SetBaseScore(*cmd.BaseScore)
		}
		return nil
	})
}
