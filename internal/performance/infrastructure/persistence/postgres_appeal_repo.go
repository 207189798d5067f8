package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
	sharedPersistence "github.com/perfboard/perfboard/internal/shared/infrastructure/persistence"
)

// PostgresAppealRepository implements appeal.Repository using PostgreSQL.
type PostgresAppealRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAppealRepository creates a new PostgreSQL appeal repository.
func NewPostgresAppealRepository(pool *pgxpool.Pool) *PostgresAppealRepository {
	return &PostgresAppealRepository{pool: pool}
}

func (r *PostgresAppealRepository) executor(ctx context.Context) sharedPersistence.DBExecutor {
	return sharedPersistence.Executor(ctx, r.pool)
}

const pgAppealColumns = `id, card_id, task_id, user_id, status, reason_category,
	detail, evidence, expires_at, reviewer_id, review_comment, reviewed_at,
	version, created_at, updated_at`

// Save inserts or updates an appeal. The unique card_id column enforces
// one appeal per red card.
func (r *PostgresAppealRepository) Save(ctx context.Context, a *appeal.Appeal) error {
	ex := r.executor(ctx)

	tag, err := ex.Exec(ctx, `
		UPDATE appeals SET
			status = $1, reason_category = $2, detail = $3, evidence = $4,
			reviewer_id = $5, review_comment = $6, reviewed_at = $7,
			version = version + 1, updated_at = $8
		WHERE id = $9 AND version = $10`,
		a.Status().String(), a.ReasonCategory(), a.Detail(), a.Evidence(),
		a.ReviewerID(), a.ReviewComment(), a.ReviewedAt(),
		a.UpdatedAt(),
		a.ID(), a.Version(),
	)
	if err != nil {
		return fmt.Errorf("failed to update appeal: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if a.Version() > 0 {
		return ErrOptimisticLocking
	}

	_, err = ex.Exec(ctx, `
		INSERT INTO appeals (`+pgAppealColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		a.ID(), a.CardID(), a.TaskID(), a.UserID(),
		a.Status().String(), a.ReasonCategory(), a.Detail(), a.Evidence(),
		a.ExpiresAt(), a.ReviewerID(), a.ReviewComment(), a.ReviewedAt(),
		1, a.CreatedAt(), a.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert appeal: %w", err)
	}
	return nil
}

// FindByID loads a single appeal.
func (r *PostgresAppealRepository) FindByID(ctx context.Context, id uuid.UUID) (*appeal.Appeal, error) {
	row := r.executor(ctx).QueryRow(ctx,
		`SELECT `+pgAppealColumns+` FROM appeals WHERE id = $1`, id)
	a, err := scanPostgresAppeal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, appeal.ErrAppealNotFound
	}
	return a, err
}

// FindByCard loads the appeal attached to a card.
func (r *PostgresAppealRepository) FindByCard(ctx context.Context, cardID uuid.UUID) (*appeal.Appeal, error) {
	row := r.executor(ctx).QueryRow(ctx,
		`SELECT `+pgAppealColumns+` FROM appeals WHERE card_id = $1`, cardID)
	a, err := scanPostgresAppeal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, appeal.ErrAppealNotFound
	}
	return a, err
}

// ListByUser returns a user's appeals, newest first.
func (r *PostgresAppealRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*appeal.Appeal, error) {
	rows, err := r.executor(ctx).Query(ctx,
		`SELECT `+pgAppealColumns+` FROM appeals WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appeals []*appeal.Appeal
	for rows.Next() {
		a, err := scanPostgresAppeal(rows)
		if err != nil {
			return nil, err
		}
		appeals = append(appeals, a)
	}
	return appeals, rows.Err()
}

func scanPostgresAppeal(row pgx.Row) (*appeal.Appeal, error) {
	var (
		s                                     appeal.Snapshot
		statusStr                             string
		reasonCategory, detail, reviewComment *string
	)

	err := row.Scan(&s.ID, &s.CardID, &s.TaskID, &s.UserID, &statusStr,
		&reasonCategory, &detail, &s.Evidence, &s.ExpiresAt,
		&s.ReviewerID, &reviewComment, &s.ReviewedAt,
		&s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if reasonCategory != nil {
		s.ReasonCategory = *reasonCategory
	}
	if detail != nil {
		s.Detail = *detail
	}
	if reviewComment != nil {
		s.ReviewComment = *reviewComment
	}
	if s.Status, err = appeal.ParseStatus(statusStr); err != nil {
		return nil, err
	}

	return appeal.Rehydrate(s), nil
}
