package task

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when a task cannot be located.
var ErrTaskNotFound = errors.New("task not found")

// Filter narrows task listings. The zero value lists everything except
// soft-deleted tasks; IncludeDeleted opts those back in.
type Filter struct {
	Status         *Status
	UserID         *uuid.UUID
	IncludeDeleted bool
}

// Repository defines the interface for task persistence.
type Repository interface {
	Save(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	List(ctx context.Context, filter Filter) ([]*Task, error)

	// FindScannable returns non-deleted tasks in a state the overdue scan
	// evaluates (in progress or pending review) that have a planned end.
	FindScannable(ctx context.Context) ([]*Task, error)
}
