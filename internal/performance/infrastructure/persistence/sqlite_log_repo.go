package persistence

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedPersistence "github.com/perfboard/perfboard/internal/shared/infrastructure/persistence"
)

// SQLiteLogRepository implements task.LogRepository using SQLite.
type SQLiteLogRepository struct {
	db *sql.DB
}

// NewSQLiteLogRepository creates a new SQLite task log repository.
func NewSQLiteLogRepository(db *sql.DB) *SQLiteLogRepository {
	return &SQLiteLogRepository{db: db}
}

func (r *SQLiteLogRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.db)
}

// Append stores an audit entry.
func (r *SQLiteLogRepository) Append(ctx context.Context, entry task.LogEntry) error {
	_, err := r.querier(ctx).ExecContext(ctx, `
		INSERT INTO task_logs (task_id, actor, action, detail, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		entry.TaskID.String(), entry.Actor, entry.Action, entry.Detail,
		fmtTime(entry.CreatedAt))
	return err
}

// FindByTask returns a task's audit entries in insertion order.
func (r *SQLiteLogRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]task.LogEntry, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, `
		SELECT id, task_id, actor, action, detail, created_at
		FROM task_logs WHERE task_id = ? ORDER BY id`,
		taskID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []task.LogEntry
	for rows.Next() {
		var (
			entry      task.LogEntry
			taskStr    string
			detail     sql.NullString
			createdStr string
		)
		if err := rows.Scan(&entry.ID, &taskStr, &entry.Actor, &entry.Action, &detail, &createdStr); err != nil {
			return nil, err
		}
		if entry.TaskID, err = uuid.Parse(taskStr); err != nil {
			return nil, err
		}
		entry.Detail = detail.String
		if entry.CreatedAt, err = parseTime(createdStr); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
