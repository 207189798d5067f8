package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	"github.com/perfboard/perfboard/internal/performance/domain/value_objects"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// ApproveTaskCommand advances a task through its approval chain. A task
// waiting on its leader moves to final approval; a task in final approval
// starts execution with its coefficients fixed.
type ApproveTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor

	// Importance and Difficulty override the resolved coefficients at
	// final approval. When nil, the task inherits its parent's
	// coefficients, falling back to neutral defaults.
	Importance *float64
	Difficulty *float64
}

// ApproveTaskHandler handles the ApproveTaskCommand.
type ApproveTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewApproveTaskHandler creates a new ApproveTaskHandler.
func NewApproveTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *ApproveTaskHandler {
	return &ApproveTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the ApproveTaskCommand.
func (h *ApproveTaskHandler) Handle(ctx context.Context, cmd ApproveTaskCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}

		if t.Status() == task.StatusPendingLeaderApproval {
			if err := t.LeaderApprove(cmd.Actor); err != nil {
				return err
			}
		} else {
			coeff, err := h.resolveCoefficients(txCtx, t, cmd)
			if err != nil {
				return err
			}
			if err := t.Approve(cmd.Actor, coeff, time.Now()); err != nil {
				return err
			}
		}

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}
		return stageEvents(txCtx, h.outboxRepo, cmd.Actor.ID, t)
	})
}

// resolveCoefficients fixes the task's coefficients at approval time. A
// subtask always inherits its parent's pair; explicit overrides apply only
// to top-level tasks, then the task's own values.
func (h *ApproveTaskHandler) resolveCoefficients(ctx context.Context, t *task.Task, cmd ApproveTaskCommand) (value_objects.Coefficients, error) {
	if t.ParentID() != nil {
		parent, err := h.taskRepo.FindByID(ctx, *t.ParentID())
		if err != nil {
			return value_objects.Coefficients{}, err
		}
		return task.ResolveCoefficients(t, parent), nil
	}

	if cmd.Importance != nil || cmd.Difficulty != nil {
		importance, difficulty := 1.0, 1.0
		if cmd.Importance != nil {
			importance = *cmd.Importance
		}
		if cmd.Difficulty != nil {
			difficulty = *cmd.Difficulty
		}
		return value_objects.NewCoefficients(importance, difficulty)
	}

	return task.ResolveCoefficients(t, nil), nil
}
