package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perfboard/perfboard/internal/performance/domain/task"
	"github.com/perfboard/perfboard/internal/performance/domain/value_objects"
	sharedPersistence "github.com/perfboard/perfboard/internal/shared/infrastructure/persistence"
)

// PostgresTaskRepository implements task.Repository using PostgreSQL.
type PostgresTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTaskRepository creates a new PostgreSQL task repository.
func NewPostgresTaskRepository(pool *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{pool: pool}
}

func (r *PostgresTaskRepository) executor(ctx context.Context) sharedPersistence.DBExecutor {
	return sharedPersistence.Executor(ctx, r.pool)
}

const pgTaskColumns = `id, creator_id, owner_id, executor_id, leader_id, parent_id,
	title, description, category, task_type, status, importance, difficulty, quality,
	plan_start, plan_end, actual_start, actual_end, progress, base_score, final_score,
	deleted, version, created_at, updated_at`

// Save inserts a new task or updates an existing one, bumping the version
// for optimistic concurrency.
func (r *PostgresTaskRepository) Save(ctx context.Context, t *task.Task) error {
	ex := r.executor(ctx)

	var quality *float64
	if qv := t.Quality(); qv != nil {
		v := qv.Value()
		quality = &v
	}

	tag, err := ex.Exec(ctx, `
		UPDATE tasks SET
			executor_id = $1, leader_id = $2, parent_id = $3,
			title = $4, description = $5, category = $6, status = $7,
			importance = $8, difficulty = $9, quality = $10,
			plan_start = $11, plan_end = $12, actual_start = $13, actual_end = $14,
			progress = $15, base_score = $16, final_score = $17, deleted = $18,
			version = version + 1, updated_at = $19
		WHERE id = $20 AND version = $21`,
		t.ExecutorID(), t.LeaderID(), t.ParentID(),
		t.Title(), t.Description(), t.Category(), t.Status().String(),
		t.Coefficients().Importance(), t.Coefficients().Difficulty(), quality,
		t.PlanStart(), t.PlanEnd(), t.ActualStart(), t.ActualEnd(),
		t.Progress(), t.BaseScore(), t.FinalScore(), t.IsDeleted(),
		t.UpdatedAt(),
		t.ID(), t.Version(),
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if t.Version() > 0 {
		return ErrOptimisticLocking
	}

	_, err = ex.Exec(ctx, `
		INSERT INTO tasks (`+pgTaskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`,
		t.ID(), t.CreatorID(), t.OwnerID(),
		t.ExecutorID(), t.LeaderID(), t.ParentID(),
		t.Title(), t.Description(), t.Category(), t.TaskType().String(), t.Status().String(),
		t.Coefficients().Importance(), t.Coefficients().Difficulty(), quality,
		t.PlanStart(), t.PlanEnd(), t.ActualStart(), t.ActualEnd(),
		t.Progress(), t.BaseScore(), t.FinalScore(), t.IsDeleted(),
		1, t.CreatedAt(), t.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// FindByID loads a task regardless of its deleted flag.
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	row := r.executor(ctx).QueryRow(ctx,
		`SELECT `+pgTaskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanPostgresTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, task.ErrTaskNotFound
	}
	return t, err
}

// List returns tasks matching the filter, newest first.
func (r *PostgresTaskRepository) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	query := `SELECT ` + pgTaskColumns + ` FROM tasks WHERE TRUE`
	var args []any

	if !filter.IncludeDeleted {
		query += ` AND NOT deleted`
	}
	if filter.Status != nil {
		args = append(args, filter.Status.String())
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(` AND (creator_id = $%d OR owner_id = $%d OR executor_id = $%d)`,
			len(args), len(args), len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.executor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPostgresTasks(rows)
}

// FindScannable returns non-deleted tasks the overdue scan evaluates.
func (r *PostgresTaskRepository) FindScannable(ctx context.Context) ([]*task.Task, error) {
	rows, err := r.executor(ctx).Query(ctx, `
		SELECT `+pgTaskColumns+` FROM tasks
		WHERE NOT deleted
		  AND status IN ('in_progress', 'pending_review')
		  AND plan_end IS NOT NULL
		ORDER BY plan_end`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPostgresTasks(rows)
}

func scanPostgresTask(row pgx.Row) (*task.Task, error) {
	var (
		s                      task.Snapshot
		description, category  *string
		typeStr, statusStr     string
		importance, difficulty float64
		quality                *float64
		planStart, planEnd     *time.Time
		actualStart, actualEnd *time.Time
		deleted                bool
	)

	err := row.Scan(
		&s.ID, &s.CreatorID, &s.OwnerID, &s.ExecutorID, &s.LeaderID, &s.ParentID,
		&s.Title, &description, &category, &typeStr, &statusStr,
		&importance, &difficulty, &quality,
		&planStart, &planEnd, &actualStart, &actualEnd,
		&s.Progress, &s.BaseScore, &s.FinalScore, &deleted, &s.Version,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description != nil {
		s.Description = *description
	}
	if category != nil {
		s.Category = *category
	}
	s.PlanStart, s.PlanEnd = planStart, planEnd
	s.ActualStart, s.ActualEnd = actualStart, actualEnd
	s.Deleted = deleted

	if s.TaskType, err = task.ParseType(typeStr); err != nil {
		return nil, err
	}
	if s.Status, err = task.ParseStatus(statusStr); err != nil {
		return nil, err
	}
	if s.Coeff, err = value_objects.NewCoefficients(importance, difficulty); err != nil {
		return nil, err
	}
	if quality != nil {
		q, err := value_objects.NewQuality(*quality)
		if err != nil {
			return nil, err
		}
		s.Quality = &q
	}

	return task.Rehydrate(s), nil
}

func scanPostgresTasks(rows pgx.Rows) ([]*task.Task, error) {
	var tasks []*task.Task
	for rows.Next() {
		t, err := scanPostgresTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
