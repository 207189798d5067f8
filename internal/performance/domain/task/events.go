package task

import (
	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/shared/domain"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated   = "perf.task.created"
	RoutingKeySubmitted = "perf.task.submitted"
	RoutingKeyApproved  = "perf.task.approved"
	RoutingKeyRejected  = "perf.task.rejected"
	RoutingKeyCompleted = "perf.task.completed"
	RoutingKeyAccepted  = "perf.task.accepted"
	RoutingKeyCancelled = "perf.task.cancelled"
)

// TaskCreated is emitted when a new task is created.
type TaskCreated struct {
	domain.BaseEvent
	Title  string `json:"title"`
	Status string `json:"status"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(taskID uuid.UUID, title, status string) TaskCreated {
	return TaskCreated{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCreated),
		Title:     title,
		Status:    status,
	}
}

// TaskSubmitted is emitted when a task enters the approval pipeline.
type TaskSubmitted struct {
	domain.BaseEvent
	Status string `json:"status"`
}

// NewTaskSubmitted creates a TaskSubmitted event.
func NewTaskSubmitted(taskID uuid.UUID, status string) TaskSubmitted {
	return TaskSubmitted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeySubmitted),
		Status:    status,
	}
}

// TaskApproved is emitted when a task is approved into execution.
type TaskApproved struct {
	domain.BaseEvent
	Importance float64 `json:"importance"`
	Difficulty float64 `json:"difficulty"`
}

// NewTaskApproved creates a TaskApproved event.
func NewTaskApproved(taskID uuid.UUID, importance, difficulty float64) TaskApproved {
	return TaskApproved{
		BaseEvent:  domain.NewBaseEvent(taskID, AggregateType, RoutingKeyApproved),
		Importance: importance,
		Difficulty: difficulty,
	}
}

// TaskRejected is emitted when a submission is refused.
type TaskRejected struct {
	domain.BaseEvent
}

// NewTaskRejected creates a TaskRejected event.
func NewTaskRejected(taskID uuid.UUID) TaskRejected {
	return TaskRejected{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyRejected),
	}
}

// TaskCompleted is emitted when the executor hands the task over for review.
type TaskCompleted struct {
	domain.BaseEvent
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(taskID uuid.UUID) TaskCompleted {
	return TaskCompleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCompleted),
	}
}

// TaskAccepted is emitted when review concludes and the final score is fixed.
type TaskAccepted struct {
	domain.BaseEvent
	FinalScore float64 `json:"final_score"`
}

// NewTaskAccepted creates a TaskAccepted event.
func NewTaskAccepted(taskID uuid.UUID, finalScore float64) TaskAccepted {
	return TaskAccepted{
		BaseEvent:  domain.NewBaseEvent(taskID, AggregateType, RoutingKeyAccepted),
		FinalScore: finalScore,
	}
}

// TaskCancelled is emitted when a task is terminally abandoned.
type TaskCancelled struct {
	domain.BaseEvent
}

// NewTaskCancelled creates a TaskCancelled event.
func NewTaskCancelled(taskID uuid.UUID) TaskCancelled {
	return TaskCancelled{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCancelled),
	}
}
