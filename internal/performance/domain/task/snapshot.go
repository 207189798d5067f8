package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/value_objects"
	"github.com/perfboard/perfboard/internal/shared/domain"
)

// Snapshot is the flat persisted form of a task. Repositories use it to
// rehydrate aggregates without replaying lifecycle guards.
type Snapshot struct {
	ID          uuid.UUID
	CreatorID   uuid.UUID
	OwnerID     uuid.UUID
	ExecutorID  *uuid.UUID
	LeaderID    *uuid.UUID
	ParentID    *uuid.UUID
	Title       string
	Description string
	Category    string
	TaskType    Type
	Status      Status
	Coeff       value_objects.Coefficients
	Quality     *value_objects.Quality
	PlanStart   *time.Time
	PlanEnd     *time.Time
	ActualStart *time.Time
	ActualEnd   *time.Time
	Progress    int
	BaseScore   float64
	FinalScore  *float64
	Deleted     bool
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Rehydrate recreates a task from persisted state with no pending events.
func Rehydrate(s Snapshot) *Task {
	return &Task{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt),
			s.Version,
		),
		creatorID:   s.CreatorID,
		ownerID:     s.OwnerID,
		executorID:  s.ExecutorID,
		leaderID:    s.LeaderID,
		parentID:    s.ParentID,
		title:       s.Title,
		description: s.Description,
		category:    s.Category,
		taskType:    s.TaskType,
		status:      s.Status,
		coeff:       s.Coeff,
		quality:     s.Quality,
		planStart:   s.PlanStart,
		planEnd:     s.PlanEnd,
		actualStart: s.ActualStart,
		actualEnd:   s.ActualEnd,
		progress:    s.Progress,
		baseScore:   s.BaseScore,
		finalScore:  s.FinalScore,
		deleted:     s.Deleted,
	}
}
