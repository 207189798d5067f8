package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	sharedPersistence "github.com/perfboard/perfboard/internal/shared/infrastructure/persistence"
)

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite outbox repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) querier(ctx context.Context) sharedPersistence.SQLiteQuerier {
	return sharedPersistence.SQLiteExecutor(ctx, r.db)
}

const sqliteInsertMessage = `
INSERT INTO outbox_messages (event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

// Save stores a new outbox message.
func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	result, err := r.querier(ctx).ExecContext(ctx, sqliteInsertMessage,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		string(msg.Metadata),
		msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}
	msg.ID, err = result.LastInsertId()
	return err
}

// SaveBatch stores multiple outbox messages. Callers run it inside a unit of
// work so the batch commits atomically with the aggregate change.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// GetUnpublished retrieves publishable messages ordered by creation time.
func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := r.querier(ctx).QueryContext(ctx, `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
		       payload, metadata, created_at, retry_count, next_retry_at
		FROM outbox_messages
		WHERE published_at IS NULL
		  AND dead_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at
		LIMIT ?`,
		time.Now().UTC().Format(time.RFC3339Nano), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var (
			m           Message
			eventID     string
			aggregateID string
			payload     string
			metadata    sql.NullString
			createdAt   string
			nextRetryAt sql.NullString
		)
		if err := rows.Scan(&m.ID, &eventID, &m.AggregateType, &aggregateID, &m.EventType,
			&m.RoutingKey, &payload, &metadata, &createdAt, &m.RetryCount, &nextRetryAt); err != nil {
			return nil, err
		}
		if m.EventID, err = uuid.Parse(eventID); err != nil {
			return nil, err
		}
		if m.AggregateID, err = uuid.Parse(aggregateID); err != nil {
			return nil, err
		}
		m.Payload = []byte(payload)
		if metadata.Valid {
			m.Metadata = []byte(metadata.String)
		}
		if m.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, err
		}
		if nextRetryAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, nextRetryAt.String)
			if err != nil {
				return nil, err
			}
			m.NextRetryAt = &t
		}
		msgs = append(msgs, &m)
	}

	return msgs, rows.Err()
}

// MarkPublished marks a message as successfully published.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := r.querier(ctx).ExecContext(ctx,
		`UPDATE outbox_messages SET published_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), id)
	return err
}

// MarkFailed records a publish failure and schedules the next retry.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := r.querier(ctx).ExecContext(ctx,
		`UPDATE outbox_messages
		 SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		 WHERE id = ?`,
		errMsg, nextRetryAt.UTC().Format(time.RFC3339Nano), id)
	return err
}

// MarkDead dead-letters a message that exhausted its retries.
func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := r.querier(ctx).ExecContext(ctx,
		`UPDATE outbox_messages SET dead_at = ?, dead_reason = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), reason, id)
	return err
}

// DeleteOld removes published messages older than the retention period.
func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	result, err := r.querier(ctx).ExecContext(ctx,
		`DELETE FROM outbox_messages WHERE published_at IS NOT NULL AND published_at < ?`,
		cutoff.Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
