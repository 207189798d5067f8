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

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	Actor       actor.Actor
	Title       string
	Description string
	Category    string
	TaskType    task.Type

	// ExecutorID assigns the task to another user; the task then awaits
	// the executor's submission instead of starting as a draft.
	ExecutorID *uuid.UUID
	LeaderID   *uuid.UUID
	ParentID   *uuid.UUID
	PlanStart  *time.Time
	PlanEnd    *time.Time
	BaseScore  float64
}

// CreateTaskResult contains the result of creating a task.
type CreateTaskResult struct {
	TaskID uuid.UUID
	Status task.Status
}

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo   task.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *CreateTaskHandler {
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
	}
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	var result *CreateTaskResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var t *task.Task
		var err error

		if cmd.ExecutorID != nil {
			t, err = task.NewAssignedTask(cmd.Actor.ID, cmd.Actor.ID, *cmd.ExecutorID, cmd.Title, cmd.TaskType)
		} else {
			t, err = task.NewTask(cmd.Actor.ID, cmd.Title, cmd.TaskType)
		}
		if err != nil {
			return err
		}

		t.SetDescription(cmd.Description)
		t.SetCategory(cmd.Category)
		t.SetLeader(cmd.LeaderID)
		t.SetPlanWindow(cmd.PlanStart, cmd.PlanEnd)
		if cmd.BaseScore > 0 {
			t.SetBaseScore(cmd.BaseScore)
		}

		if cmd.ParentID != nil {
			parent, err := h.taskRepo.FindByID(txCtx, *cmd.ParentID)
			if err != nil {
				return err
			}
			if err := t.SetParent(parent); err != nil {
				return err
			}
		}

		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}

		if err := stageEvents(txCtx, h.outboxRepo, cmd.Actor.ID, t); err != nil {
			return err
		}

		result = &CreateTaskResult{TaskID: t.ID(), Status: t.Status()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
