package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perfboard/perfboard/internal/performance/domain/task"
	sharedPersistence "github.com/perfboard/perfboard/internal/shared/infrastructure/persistence"
)

// PostgresLogRepository implements task.LogRepository using PostgreSQL.
type PostgresLogRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresLogRepository creates a new PostgreSQL task log repository.
func NewPostgresLogRepository(pool *pgxpool.Pool) *PostgresLogRepository {
	return &PostgresLogRepository{pool: pool}
}

func (r *PostgresLogRepository) executor(ctx context.Context) sharedPersistence.DBExecutor {
	return sharedPersistence.Executor(ctx, r.pool)
}

// Append stores an audit entry.
func (r *PostgresLogRepository) Append(ctx context.Context, entry task.LogEntry) error {
	_, err := r.executor(ctx).Exec(ctx, `
		INSERT INTO task_logs (task_id, actor, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.TaskID, entry.Actor, entry.Action, entry.Detail, entry.CreatedAt)
	return err
}

// FindByTask returns a task's audit entries in insertion order.
func (r *PostgresLogRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]task.LogEntry, error) {
	rows, err := r.executor(ctx).Query(ctx, `
		SELECT id, task_id, actor, action, detail, created_at
		FROM task_logs WHERE task_id = $1 ORDER BY id`,
		taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []task.LogEntry
	for rows.Next() {
		var (
			entry  task.LogEntry
			detail *string
		)
		if err := rows.Scan(&entry.ID, &entry.TaskID, &entry.Actor, &entry.Action, &detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if detail != nil {
			entry.Detail = *detail
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
