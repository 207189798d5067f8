package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/application/services"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
)

// ListTasksQuery contains the parameters for listing tasks. Soft-deleted
// tasks are excluded unless IncludeDeleted is set.
type ListTasksQuery struct {
	Status         *task.Status
	UserID         *uuid.UUID
	IncludeDeleted bool
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo task.Repository
	engine   *services.ScoringEngine
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo task.Repository, engine *services.ScoringEngine) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo, engine: engine}
}

// Handle executes the ListTasksQuery.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]*TaskDTO, error) {
	tasks, err := h.taskRepo.List(ctx, task.Filter{
		Status:         query.Status,
		UserID:         query.UserID,
		IncludeDeleted: query.IncludeDeleted,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dtos := make([]*TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		dto := taskToDTO(t)
		if !t.Status().IsTerminal() {
			dto.OverdueRatio = h.engine.OverdueRatio(t, now)
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}
