package queries

import (
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
	"github.com/perfboard/perfboard/internal/performance/domain/card"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
)

// TaskDTO is the read-side shape of a task.
type TaskDTO struct {
	ID          uuid.UUID  `json:"id"`
	CreatorID   uuid.UUID  `json:"creator_id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	ExecutorID  *uuid.UUID `json:"executor_id,omitempty"`
	LeaderID    *uuid.UUID `json:"leader_id,omitempty"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	TaskType    string     `json:"task_type"`
	Status      string     `json:"status"`
	Importance  float64    `json:"importance"`
	Difficulty  float64    `json:"difficulty"`
	Quality     *float64   `json:"quality,omitempty"`
	PlanStart   *time.Time `json:"plan_start,omitempty"`
	PlanEnd     *time.Time `json:"plan_end,omitempty"`
	ActualStart *time.Time `json:"actual_start,omitempty"`
	ActualEnd   *time.Time `json:"actual_end,omitempty"`
	Progress    int        `json:"progress"`
	BaseScore   float64    `json:"base_score"`
	FinalScore  *float64   `json:"final_score,omitempty"`
	Deleted     bool       `json:"deleted,omitempty"`

	// OverdueRatio is the overrun as a fraction of the planned duration,
	// present only for overdue tasks.
	OverdueRatio *float64 `json:"overdue_ratio,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func taskToDTO(t *task.Task) *TaskDTO {
	dto := &TaskDTO{
		ID:          t.ID(),
		CreatorID:   t.CreatorID(),
		OwnerID:     t.OwnerID(),
		ExecutorID:  t.ExecutorID(),
		LeaderID:    t.LeaderID(),
		ParentID:    t.ParentID(),
		Title:       t.Title(),
		Description: t.Description(),
		Category:    t.Category(),
		TaskType:    t.TaskType().String(),
		Status:      t.Status().String(),
		Importance:  t.Coefficients().Importance(),
		Difficulty:  t.Coefficients().Difficulty(),
		PlanStart:   t.PlanStart(),
		PlanEnd:     t.PlanEnd(),
		ActualStart: t.ActualStart(),
		ActualEnd:   t.ActualEnd(),
		Progress:    t.Progress(),
		BaseScore:   t.BaseScore(),
		FinalScore:  t.FinalScore(),
		Deleted:     t.IsDeleted(),
		CreatedAt:   t.CreatedAt(),
		UpdatedAt:   t.UpdatedAt(),
	}
	if q := t.Quality(); q != nil {
		v := q.Value()
		dto.Quality = &v
	}
	return dto
}

// CardDTO is the read-side shape of a penalty card.
type CardDTO struct {
	ID           uuid.UUID `json:"id"`
	TaskID       uuid.UUID `json:"task_id"`
	UserID       uuid.UUID `json:"user_id"`
	CardType     string    `json:"card_type"`
	Reason       string    `json:"reason"`
	PenaltyScore float64   `json:"penalty_score"`
	TriggeredAt  time.Time `json:"triggered_at"`
	Archived     bool      `json:"archived"`
}

func cardToDTO(c *card.Card) *CardDTO {
	return &CardDTO{
		ID:           c.ID(),
		TaskID:       c.TaskID(),
		UserID:       c.UserID(),
		CardType:     c.CardType().String(),
		Reason:       c.Reason(),
		PenaltyScore: c.PenaltyScore(),
		TriggeredAt:  c.TriggeredAt(),
		Archived:     c.IsArchived(),
	}
}

// AppealDTO is the read-side shape of an appeal.
type AppealDTO struct {
	ID             uuid.UUID  `json:"id"`
	CardID         uuid.UUID  `json:"card_id"`
	TaskID         uuid.UUID  `json:"task_id"`
	UserID         uuid.UUID  `json:"user_id"`
	Status         string     `json:"status"`
	ReasonCategory string     `json:"reason_category,omitempty"`
	Detail         string     `json:"detail,omitempty"`
	Evidence       []string   `json:"evidence,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
	ReviewerID     *uuid.UUID `json:"reviewer_id,omitempty"`
	ReviewComment  string     `json:"review_comment,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
}

func appealToDTO(a *appeal.Appeal) *AppealDTO {
	return &AppealDTO{
		ID:             a.ID(),
		CardID:         a.CardID(),
		TaskID:         a.TaskID(),
		UserID:         a.UserID(),
		Status:         a.Status().String(),
		ReasonCategory: a.ReasonCategory(),
		Detail:         a.Detail(),
		Evidence:       a.Evidence(),
		ExpiresAt:      a.ExpiresAt(),
		ReviewerID:     a.ReviewerID(),
		ReviewComment:  a.ReviewComment(),
		ReviewedAt:     a.ReviewedAt(),
	}
}
