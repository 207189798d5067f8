package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
	sharedPersistence "github.com/perfboard/perfboard/internal/shared/infrastructure/persistence"
)

// SQLiteAppealRepository implements appeal.Repository using SQLite.
type SQLiteAppealRepository struct {
	db *sql.DB
}

// NewSQLiteAppealRepository creates a new SQLite appeal repository.
func NewSQLiteAppealRepository(db *sql.DB) *SQLiteAppealRepository {
	return &SQLiteAppealRepository{db: db}
}

func (r *SQLiteAppealRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.db)
}

const sqliteAppealColumns = `id, card_id, task_id, user_id, status, reason_category,
	detail, evidence, expires_at, reviewer_id, review_comment, reviewed_at,
	version, created_at, updated_at`

// Save inserts or updates an appeal. The unique card_id column enforces
// one appeal per red card.
func (r *SQLiteAppealRepository) Save(ctx context.Context, a *appeal.Appeal) error {
	q := r.querier(ctx)

	evidence, err := encodeEvidence(a.Evidence())
	if err != nil {
		return err
	}

	result, err := q.ExecContext(ctx, `
		UPDATE appeals SET
			status = ?, reason_category = ?, detail = ?, evidence = ?,
			reviewer_id = ?, review_comment = ?, reviewed_at = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		a.Status().String(), a.ReasonCategory(), a.Detail(), evidence,
		uuidPtrStr(a.ReviewerID()), a.ReviewComment(), fmtTimePtr(a.ReviewedAt()),
		fmtTime(a.UpdatedAt()),
		a.ID().String(), a.Version(),
	)
	if err != nil {
		return fmt.Errorf("failed to update appeal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	if a.Version() > 0 {
		return ErrOptimisticLocking
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO appeals (`+sqliteAppealColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID().String(), a.CardID().String(), a.TaskID().String(), a.UserID().String(),
		a.Status().String(), a.ReasonCategory(), a.Detail(), evidence,
		fmtTime(a.ExpiresAt()), uuidPtrStr(a.ReviewerID()), a.ReviewComment(),
		fmtTimePtr(a.ReviewedAt()),
		1, fmtTime(a.CreatedAt()), fmtTime(a.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to insert appeal: %w", err)
	}
	return nil
}

// FindByID loads a single appeal.
func (r *SQLiteAppealRepository) FindByID(ctx context.Context, id uuid.UUID) (*appeal.Appeal, error) {
	row := r.querier(ctx).QueryRowContext(ctx,
		`SELECT `+sqliteAppealColumns+` FROM appeals WHERE id = ?`, id.String())
	a, err := scanSQLiteAppeal(row)
	if err == sql.ErrNoRows {
		return nil, appeal.ErrAppealNotFound
	}
	return a, err
}

// FindByCard loads the appeal attached to a card.
func (r *SQLiteAppealRepository) FindByCard(ctx context.Context, cardID uuid.UUID) (*appeal.Appeal, error) {
	row := r.querier(ctx).QueryRowContext(ctx,
		`SELECT `+sqliteAppealColumns+` FROM appeals WHERE card_id = ?`, cardID.String())
	a, err := scanSQLiteAppeal(row)
	if err == sql.ErrNoRows {
		return nil, appeal.ErrAppealNotFound
	}
	return a, err
}

// ListByUser returns a user's appeals, newest first.
func (r *SQLiteAppealRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*appeal.Appeal, error) {
	rows, err := r.querier(ctx).QueryContext(ctx,
		`SELECT `+sqliteAppealColumns+` FROM appeals WHERE user_id = ? ORDER BY created_at DESC`,
		userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appeals []*appeal.Appeal
	for rows.Next() {
		a, err := scanSQLiteAppeal(rows)
		if err != nil {
			return nil, err
		}
		appeals = append(appeals, a)
	}
	return appeals, rows.Err()
}

func scanSQLiteAppeal(row rowScanner) (*appeal.Appeal, error) {
	var (
		idStr, cardStr, taskStr, userStr, statusStr string
		reasonCategory, detail, reviewComment       sql.NullString
		evidence, reviewerStr, reviewedStr          sql.NullString
		expiresStr, createdStr, updatedStr          string
		version                                     int
	)

	err := row.Scan(&idStr, &cardStr, &taskStr, &userStr, &statusStr,
		&reasonCategory, &detail, &evidence, &expiresStr,
		&reviewerStr, &reviewComment, &reviewedStr,
		&version, &createdStr, &updatedStr)
	if err != nil {
		return nil, err
	}

	s := appeal.Snapshot{
		ReasonCategory: reasonCategory.String,
		Detail:         detail.String,
		ReviewComment:  reviewComment.String,
		Version:        version,
	}

	if s.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if s.CardID, err = uuid.Parse(cardStr); err != nil {
		return nil, err
	}
	if s.TaskID, err = uuid.Parse(taskStr); err != nil {
		return nil, err
	}
	if s.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, err
	}
	if s.Status, err = appeal.ParseStatus(statusStr); err != nil {
		return nil, err
	}
	if s.Evidence, err = decodeEvidence(evidence); err != nil {
		return nil, err
	}
	if s.ExpiresAt, err = parseTime(expiresStr); err != nil {
		return nil, err
	}
	if s.ReviewerID, err = parseUUIDPtr(reviewerStr); err != nil {
		return nil, err
	}
	if s.ReviewedAt, err = parseTimePtr(reviewedStr); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return nil, err
	}

	return appeal.Rehydrate(s), nil
}
