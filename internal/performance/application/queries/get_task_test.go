package queries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/perfboard/perfboard/internal/performance/application/services"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	"github.com/perfboard/perfboard/internal/performance/domain/value_objects"
)

func TestGetTaskHandler_ReturnsTaskWithOverdueRatioAndLogs(t *testing.T) {
	taskRepo := new(mockTaskRepo)
	logRepo := new(mockLogRepo)
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	handler := NewGetTaskHandler(taskRepo, logRepo, engine)

	userID := uuid.New()
	start := time.Now().Add(-15 * 24 * time.Hour).UTC()
	end := start.Add(10 * 24 * time.Hour)
	tsk := task.Rehydrate(task.Snapshot{
		ID:        uuid.New(),
		CreatorID: userID,
		OwnerID:   userID,
		Title:     "late report",
		TaskType:  task.TypePerformance,
		Status:    task.StatusInProgress,
		Coeff:     value_objects.DefaultCoefficients(),
		PlanStart: &start,
		PlanEnd:   &end,
		Progress:  30,
		Version:   1,
		CreatedAt: start,
		UpdatedAt: start,
	})

	logs := []task.LogEntry{{TaskID: tsk.ID(), Actor: task.SystemActor, Action: "red_card_issued"}}
	taskRepo.On("FindByID", mock.Anything, tsk.ID()).Return(tsk, nil)
	logRepo.On("FindByTask", mock.Anything, tsk.ID()).Return(logs, nil)

	result, err := handler.Handle(context.Background(), GetTaskQuery{TaskID: tsk.ID()})
	require.NoError(t, err)

	assert.Equal(t, "late report", result.Task.Title)
	assert.Equal(t, "in_progress", result.Task.Status)
	require.NotNil(t, result.Task.OverdueRatio)
	assert.InDelta(t, 0.5, *result.Task.OverdueRatio, 0.01)
	require.Len(t, result.Logs, 1)
}

func TestGetTaskHandler_NotFound(t *testing.T) {
	taskRepo := new(mockTaskRepo)
	logRepo := new(mockLogRepo)
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	handler := NewGetTaskHandler(taskRepo, logRepo, engine)

	id := uuid.New()
	taskRepo.On("FindByID", mock.Anything, id).Return(nil, task.ErrTaskNotFound)

	_, err := handler.Handle(context.Background(), GetTaskQuery{TaskID: id})
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestListTasksHandler_PassesFilterThrough(t *testing.T) {
	taskRepo := new(mockTaskRepo)
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	handler := NewListTasksHandler(taskRepo, engine)

	userID := uuid.New()
	status := task.StatusInProgress
	expected := task.Filter{Status: &status, UserID: &userID, IncludeDeleted: true}

	taskRepo.On("List", mock.Anything, expected).Return([]*task.Task{}, nil)

	dtos, err := handler.Handle(context.Background(), ListTasksQuery{
		Status:         &status,
		UserID:         &userID,
		IncludeDeleted: true,
	})
	require.NoError(t, err)
	assert.Empty(t, dtos)
	taskRepo.AssertExpectations(t)
}
