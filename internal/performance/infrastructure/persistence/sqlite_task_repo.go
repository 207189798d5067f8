package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/task"
	"github.com/perfboard/perfboard/internal/performance/domain/value_objects"
	sharedPersistence "github.com/perfboard/perfboard/internal/shared/infrastructure/persistence"
)

// SQLiteTaskRepository implements task.Repository using SQLite.
type SQLiteTaskRepository struct {
	db *sql.DB
}

// NewSQLiteTaskRepository creates a new SQLite task repository.
func NewSQLiteTaskRepository(db *sql.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{db: db}
}

func (r *SQLiteTaskRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.db)
}

const sqliteTaskColumns = `id, creator_id, owner_id, executor_id, leader_id, parent_id,
	title, description, category, task_type, status, importance, difficulty, quality,
	plan_start, plan_end, actual_start, actual_end, progress, base_score, final_score,
	deleted, version, created_at, updated_at`

// Save inserts a new task or updates an existing one, bumping the version
// for optimistic concurrency.
func (r *SQLiteTaskRepository) Save(ctx context.Context, t *task.Task) error {
	q := r.querier(ctx)

	var quality any
	if qv := t.Quality(); qv != nil {
		quality = qv.Value()
	}

	result, err := q.ExecContext(ctx, `
		UPDATE tasks SET
			executor_id = ?, leader_id = ?, parent_id = ?,
			title = ?, description = ?, category = ?, status = ?,
			importance = ?, difficulty = ?, quality = ?,
			plan_start = ?, plan_end = ?, actual_start = ?, actual_end = ?,
			progress = ?, base_score = ?, final_score = ?, deleted = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		uuidPtrStr(t.ExecutorID()), uuidPtrStr(t.LeaderID()), uuidPtrStr(t.ParentID()),
		t.Title(), t.Description(), t.Category(), t.Status().String(),
		t.Coefficients().Importance(), t.Coefficients().Difficulty(), quality,
		fmtTimePtr(t.PlanStart()), fmtTimePtr(t.PlanEnd()),
		fmtTimePtr(t.ActualStart()), fmtTimePtr(t.ActualEnd()),
		t.Progress(), t.BaseScore(), t.FinalScore(), boolToInt(t.IsDeleted()),
		fmtTime(t.UpdatedAt()),
		t.ID().String(), t.Version(),
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	if t.Version() > 0 {
		return ErrOptimisticLocking
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO tasks (`+sqliteTaskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID().String(), t.CreatorID().String(), t.OwnerID().String(),
		uuidPtrStr(t.ExecutorID()), uuidPtrStr(t.LeaderID()), uuidPtrStr(t.ParentID()),
		t.Title(), t.Description(), t.Category(), t.TaskType().String(), t.Status().String(),
		t.Coefficients().Importance(), t.Coefficients().Difficulty(), quality,
		fmtTimePtr(t.PlanStart()), fmtTimePtr(t.PlanEnd()),
		fmtTimePtr(t.ActualStart()), fmtTimePtr(t.ActualEnd()),
		t.Progress(), t.BaseScore(), t.FinalScore(), boolToInt(t.IsDeleted()),
		1, fmtTime(t.CreatedAt()), fmtTime(t.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// FindByID loads a task regardless of its deleted flag; callers decide how
// to treat soft-deleted tasks.
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	row := r.querier(ctx).QueryRowContext(ctx,
		`SELECT `+sqliteTaskColumns+` FROM tasks WHERE id = ?`, id.String())
	t, err := scanSQLiteTask(row)
	if err == sql.ErrNoRows {
		return nil, task.ErrTaskNotFound
	}
	return t, err
}

// List returns tasks matching the filter, newest first. Soft-deleted tasks
// are excluded unless the filter opts in.
func (r *SQLiteTaskRepository) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	query := `SELECT ` + sqliteTaskColumns + ` FROM tasks WHERE 1=1`
	var args []any

	if !filter.IncludeDeleted {
		query += ` AND deleted = 0`
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, filter.Status.String())
	}
	if filter.UserID != nil {
		query += ` AND (creator_id = ? OR owner_id = ? OR executor_id = ?)`
		id := filter.UserID.String()
		args = append(args, id, id, id)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLiteTasks(rows)
}

// FindScannable returns non-deleted tasks the overdue scan evaluates.
func (r *SQLiteTaskRepository) FindScannable(ctx context.Context) ([]*task.Task, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, `
		SELECT `+sqliteTaskColumns+` FROM tasks
		WHERE deleted = 0
		  AND status IN ('in_progress', 'pending_review')
		  AND plan_end IS NOT NULL
		ORDER BY plan_end`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLiteTasks(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row rowScanner) (*task.Task, error) {
	var (
		idStr, creatorStr, ownerStr            string
		executorStr, leaderStr, parentStr      sql.NullString
		title, typeStr, statusStr              string
		description, category                  sql.NullString
		importance, difficulty                 float64
		quality, finalScore                    sql.NullFloat64
		planStart, planEnd                     sql.NullString
		actualStart, actualEnd                 sql.NullString
		progress, deleted, version             int
		baseScore                              float64
		createdStr, updatedStr                 string
	)

	err := row.Scan(
		&idStr, &creatorStr, &ownerStr, &executorStr, &leaderStr, &parentStr,
		&title, &description, &category, &typeStr, &statusStr,
		&importance, &difficulty, &quality,
		&planStart, &planEnd, &actualStart, &actualEnd,
		&progress, &baseScore, &finalScore, &deleted, &version,
		&createdStr, &updatedStr,
	)
	if err != nil {
		return nil, err
	}

	s := task.Snapshot{
		Title:       title,
		Description: description.String,
		Category:    category.String,
		Progress:    progress,
		BaseScore:   baseScore,
		Deleted:     deleted != 0,
		Version:     version,
	}

	if s.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if s.CreatorID, err = uuid.Parse(creatorStr); err != nil {
		return nil, err
	}
	if s.OwnerID, err = uuid.Parse(ownerStr); err != nil {
		return nil, err
	}
	if s.ExecutorID, err = parseUUIDPtr(executorStr); err != nil {
		return nil, err
	}
	if s.LeaderID, err = parseUUIDPtr(leaderStr); err != nil {
		return nil, err
	}
	if s.ParentID, err = parseUUIDPtr(parentStr); err != nil {
		return nil, err
	}
	if s.TaskType, err = task.ParseType(typeStr); err != nil {
		return nil, err
	}
	if s.Status, err = task.ParseStatus(statusStr); err != nil {
		return nil, err
	}
	if s.Coeff, err = value_objects.NewCoefficients(importance, difficulty); err != nil {
		return nil, err
	}
	if quality.Valid {
		q, err := value_objects.NewQuality(quality.Float64)
		if err != nil {
			return nil, err
		}
		s.Quality = &q
	}
	if finalScore.Valid {
		s.FinalScore = &finalScore.Float64
	}
	if s.PlanStart, err = parseTimePtr(planStart); err != nil {
		return nil, err
	}
	if s.PlanEnd, err = parseTimePtr(planEnd); err != nil {
		return nil, err
	}
	if s.ActualStart, err = parseTimePtr(actualStart); err != nil {
		return nil, err
	}
	if s.ActualEnd, err = parseTimePtr(actualEnd); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return nil, err
	}

	return task.Rehydrate(s), nil
}

func scanSQLiteTasks(rows *sql.Rows) ([]*task.Task, error) {
	var tasks []*task.Task
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
