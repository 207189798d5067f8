package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/application/services"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
)

// GetTaskQuery contains the parameters for getting a single task.
type GetTaskQuery struct {
	TaskID uuid.UUID
}

// GetTaskHandler handles the GetTaskQuery.
type GetTaskHandler struct {
	taskRepo task.Repository
	logRepo  task.LogRepository
	engine   *services.ScoringEngine
}

// NewGetTaskHandler creates a new GetTaskHandler.
func NewGetTaskHandler(taskRepo task.Repository, logRepo task.LogRepository, engine *services.ScoringEngine) *GetTaskHandler {
	return &GetTaskHandler{taskRepo: taskRepo, logRepo: logRepo, engine: engine}
}

// GetTaskResult bundles the task with its audit trail.
type GetTaskResult struct {
	Task *TaskDTO        `json:"task"`
	Logs []task.LogEntry `json:"logs,omitempty"`
}

// Handle executes the GetTaskQuery.
func (h *GetTaskHandler) Handle(ctx context.Context, query GetTaskQuery) (*GetTaskResult, error) {
	t, err := h.taskRepo.FindByID(ctx, query.TaskID)
	if err != nil {
		return nil, err
	}

	dto := taskToDTO(t)
	dto.OverdueRatio = h.engine.OverdueRatio(t, time.Now())

	logs, err := h.logRepo.FindByTask(ctx, t.ID())
	if err != nil {
		return nil, err
	}

	return &GetTaskResult{Task: dto, Logs: logs}, nil
}
