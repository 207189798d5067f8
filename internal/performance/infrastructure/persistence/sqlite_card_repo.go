package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/card"
	sharedPersistence "github.com/perfboard/perfboard/internal/shared/infrastructure/persistence"
)

// SQLiteCardRepository implements card.Repository using SQLite.
type SQLiteCardRepository struct {
	db *sql.DB
}

// NewSQLiteCardRepository creates a new SQLite card repository.
func NewSQLiteCardRepository(db *sql.DB) *SQLiteCardRepository {
	return &SQLiteCardRepository{db: db}
}

func (r *SQLiteCardRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.db)
}

const sqliteCardColumns = `id, task_id, user_id, card_type, reason, penalty_score,
	archived, triggered_at, version, created_at, updated_at`

// Save inserts or updates a card. The unique (task_id, card_type) index
// turns a second insert of the same card type into ErrDuplicateCard, which
// is what makes repeat scan runs idempotent.
func (r *SQLiteCardRepository) Save(ctx context.Context, c *card.Card) error {
	q := r.querier(ctx)

	result, err := q.ExecContext(ctx, `
		UPDATE penalty_cards SET
			reason = ?, penalty_score = ?, archived = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		c.Reason(), c.PenaltyScore(), boolToInt(c.IsArchived()),
		fmtTime(c.UpdatedAt()),
		c.ID().String(), c.Version(),
	)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	if c.Version() > 0 {
		return ErrOptimisticLocking
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO penalty_cards (`+sqliteCardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID().String(), c.TaskID().String(), c.UserID().String(),
		c.CardType().String(), c.Reason(), c.PenaltyScore(),
		boolToInt(c.IsArchived()), fmtTime(c.TriggeredAt()),
		1, fmtTime(c.CreatedAt()), fmtTime(c.UpdatedAt()),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return card.ErrDuplicateCard
		}
		return fmt.Errorf("failed to insert card: %w", err)
	}
	return nil
}

// FindByID loads a single card.
func (r *SQLiteCardRepository) FindByID(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	row := r.querier(ctx).QueryRowContext(ctx,
		`SELECT `+sqliteCardColumns+` FROM penalty_cards WHERE id = ?`, id.String())
	c, err := scanSQLiteCard(row)
	if err == sql.ErrNoRows {
		return nil, card.ErrCardNotFound
	}
	return c, err
}

// FindByTask returns all cards for a task, including archived ones.
func (r *SQLiteCardRepository) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*card.Card, error) {
	rows, err := r.querier(ctx).QueryContext(ctx,
		`SELECT `+sqliteCardColumns+` FROM penalty_cards WHERE task_id = ? ORDER BY triggered_at`,
		taskID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLiteCards(rows)
}

// ListByUser returns a user's cards, newest first.
func (r *SQLiteCardRepository) ListByUser(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*card.Card, error) {
	query := `SELECT ` + sqliteCardColumns + ` FROM penalty_cards WHERE user_id = ?`
	if !includeArchived {
		query += ` AND archived = 0`
	}
	query += ` ORDER BY triggered_at DESC`

	rows, err := r.querier(ctx).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLiteCards(rows)
}

// ActivePenaltyTotal sums unarchived penalty scores for a task.
func (r *SQLiteCardRepository) ActivePenaltyTotal(ctx context.Context, taskID uuid.UUID) (float64, error) {
	var total float64
	err := r.querier(ctx).QueryRowContext(ctx,
		`SELECT COALESCE(SUM(penalty_score), 0) FROM penalty_cards WHERE task_id = ? AND archived = 0`,
		taskID.String()).Scan(&total)
	return total, err
}

// ListActive returns all unarchived cards.
func (r *SQLiteCardRepository) ListActive(ctx context.Context) ([]*card.Card, error) {
	rows, err := r.querier(ctx).QueryContext(ctx,
		`SELECT `+sqliteCardColumns+` FROM penalty_cards WHERE archived = 0 ORDER BY triggered_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLiteCards(rows)
}

// ArchiveBefore archives unarchived cards triggered before the cutoff.
func (r *SQLiteCardRepository) ArchiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.querier(ctx).ExecContext(ctx, `
		UPDATE penalty_cards SET archived = 1, version = version + 1, updated_at = ?
		WHERE archived = 0 AND triggered_at < ?`,
		fmtTime(time.Now()), fmtTime(cutoff))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanSQLiteCard(row rowScanner) (*card.Card, error) {
	var (
		idStr, taskStr, userStr, typeStr, reason string
		penaltyScore                             float64
		archived, version                        int
		triggeredStr, createdStr, updatedStr     string
	)

	err := row.Scan(&idStr, &taskStr, &userStr, &typeStr, &reason, &penaltyScore,
		&archived, &triggeredStr, &version, &createdStr, &updatedStr)
	if err != nil {
		return nil, err
	}

	s := card.Snapshot{
		Reason:       reason,
		PenaltyScore: penaltyScore,
		Archived:     archived != 0,
		Version:      version,
	}

	if s.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if s.TaskID, err = uuid.Parse(taskStr); err != nil {
		return nil, err
	}
	if s.UserID, err = uuid.Parse(userStr); err != nil {
		return nil, err
	}
	if s.CardType, err = card.ParseType(typeStr); err != nil {
		return nil, err
	}
	if s.TriggeredAt, err = parseTime(triggeredStr); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return nil, err
	}

	return card.Rehydrate(s), nil
}

func scanSQLiteCards(rows *sql.Rows) ([]*card.Card, error) {
	var cards []*card.Card
	for rows.Next() {
		c, err := scanSQLiteCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
