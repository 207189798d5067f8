package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/perfboard/perfboard/internal/performance/domain/card"
	sharedPersistence "github.com/perfboard/perfboard/internal/shared/infrastructure/persistence"
)

// PostgresCardRepository implements card.Repository using PostgreSQL.
type PostgresCardRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCardRepository creates a new PostgreSQL card repository.
func NewPostgresCardRepository(pool *pgxpool.Pool) *PostgresCardRepository {
	return &PostgresCardRepository{pool: pool}
}

func (r *PostgresCardRepository) executor(ctx context.Context) sharedPersistence.DBExecutor {
	return sharedPersistence.Executor(ctx, r.pool)
}

const pgCardColumns = `id, task_id, user_id, card_type, reason, penalty_score,
	archived, triggered_at, version, created_at, updated_at`

// Save inserts or updates a card. The unique (task_id, card_type) index
// turns a second insert of the same card type into ErrDuplicateCard, which
// is what makes repeat scan runs idempotent.
func (r *PostgresCardRepository) Save(ctx context.Context, c *card.Card) error {
	ex := r.executor(ctx)

	tag, err := ex.Exec(ctx, `
		UPDATE penalty_cards SET
			reason = $1, penalty_score = $2, archived = $3,
			version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6`,
		c.Reason(), c.PenaltyScore(), c.IsArchived(),
		c.UpdatedAt(),
		c.ID(), c.Version(),
	)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if c.Version() > 0 {
		return ErrOptimisticLocking
	}

	_, err = ex.Exec(ctx, `
		INSERT INTO penalty_cards (`+pgCardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID(), c.TaskID(), c.UserID(),
		c.CardType().String(), c.Reason(), c.PenaltyScore(),
		c.IsArchived(), c.TriggeredAt(),
		1, c.CreatedAt(), c.UpdatedAt(),
	)
	if err != nil {
		if isPostgresUniqueViolation(err) {
			return card.ErrDuplicateCard
		}
		return fmt.Errorf("failed to insert card: %w", err)
	}
	return nil
}

// FindByID loads a single card.
func (r *PostgresCardRepository) FindByID(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	row := r.executor(ctx).QueryRow(ctx,
		`SELECT `+pgCardColumns+` FROM penalty_cards WHERE id = $1`, id)
	c, err := scanPostgresCard(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, card.ErrCardNotFound
	}
	return c, err
}

// FindByTask returns all cards for a task, including archived ones.
func (r *PostgresCardRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*card.Card, error) {
	rows, err := r.executor(ctx).Query(ctx,
		`SELECT `+pgCardColumns+` FROM penalty_cards WHERE task_id = $1 ORDER BY triggered_at`,
		taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPostgresCards(rows)
}

// ListByUser returns a user's cards, newest first.
func (r *PostgresCardRepository) ListByUser(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*card.Card, error) {
	query := `SELECT ` + pgCardColumns + ` FROM penalty_cards WHERE user_id = $1`
	if !includeArchived {
		query += ` AND NOT archived`
	}
	query += ` ORDER BY triggered_at DESC`

	rows, err := r.executor(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPostgresCards(rows)
}

// ActivePenaltyTotal sums unarchived penalty scores for a task.
func (r *PostgresCardRepository) ActivePenaltyTotal(ctx context.Context, taskID uuid.UUID) (float64, error) {
	var total float64
	err := r.executor(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(penalty_score), 0) FROM penalty_cards WHERE task_id = $1 AND NOT archived`,
		taskID).Scan(&total)
	return total, err
}

// ListActive returns all unarchived cards.
func (r *PostgresCardRepository) ListActive(ctx context.Context) ([]*card.Card, error) {
	rows, err := r.executor(ctx).Query(ctx,
		`SELECT `+pgCardColumns+` FROM penalty_cards WHERE NOT archived ORDER BY triggered_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPostgresCards(rows)
}

// ArchiveBefore archives unarchived cards triggered before the cutoff.
func (r *PostgresCardRepository) ArchiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.executor(ctx).Exec(ctx, `
		UPDATE penalty_cards SET archived = TRUE, version = version + 1, updated_at = now()
		WHERE NOT archived AND triggered_at < $1`,
		cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func isPostgresUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanPostgresCard(row pgx.Row) (*card.Card, error) {
	var (
		s       card.Snapshot
		typeStr string
	)

	err := row.Scan(&s.ID, &s.TaskID, &s.UserID, &typeStr, &s.Reason, &s.PenaltyScore,
		&s.Archived, &s.TriggeredAt, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if s.CardType, err = card.ParseType(typeStr); err != nil {
		return nil, err
	}
	return card.Rehydrate(s), nil
}

func scanPostgresCards(rows pgx.Rows) ([]*card.Card, error) {
	var cards []*card.Card
	for rows.Next() {
		c, err := scanPostgresCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
