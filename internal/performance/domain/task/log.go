package task

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SystemActor marks log entries written by automatic jobs rather than users.
const SystemActor = "system"

// LogEntry is an audit record attached to a task.
type LogEntry struct {
	ID        int64
	TaskID    uuid.UUID
	Actor     string
	Action    string
	Detail    string
	CreatedAt time.Time
}

// NewSystemLog creates a system-authored log entry.
func NewSystemLog(taskID uuid.UUID, action, detail string, at time.Time) LogEntry {
	return LogEntry{
		TaskID:    taskID,
		Actor:     SystemActor,
		Action:    action,
		Detail:    detail,
		CreatedAt: at.UTC(),
	}
}

// LogRepository persists task audit entries.
type LogRepository interface {
	Append(ctx context.Context, entry LogEntry) error
	FindByTask(ctx context.Context, taskID uuid.UUID) ([]LogEntry, error)
}
