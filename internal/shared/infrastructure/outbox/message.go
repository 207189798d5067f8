package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/shared/domain"
)

// Message represents an outbox message ready for publishing.
type Message struct {
	ID            int64
	EventID       uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	RoutingKey    string
	Payload       json.RawMessage
	Metadata      json.RawMessage
	CreatedAt     time.Time
	PublishedAt   *time.Time
	NextRetryAt   *time.Time
	RetryCount    int
	LastError     *string
	DeadAt        *time.Time
	DeadReason    *string
}

// NewMessage creates an outbox message from a domain event with actor metadata.
func NewMessage(event domain.DomainEvent, meta domain.EventMetadata) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	metadata, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		EventType:     event.RoutingKey(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// FromEvents converts a batch of domain events sharing one metadata envelope.
func FromEvents(events []domain.DomainEvent, meta domain.EventMetadata) ([]*Message, error) {
	msgs := make([]*Message, 0, len(events))
	for _, event := range events {
		msg, err := NewMessage(event, meta)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// IsPublished returns true if the message has been published.
func (m *Message) IsPublished() bool {
	return m.PublishedAt != nil
}

// CanRetry returns true if the message has retries remaining.
func (m *Message) CanRetry(maxRetries int) bool {
	return m.RetryCount < maxRetries
}
