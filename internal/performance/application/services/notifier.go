package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/perfboard/perfboard/internal/performance/domain/card"
)

// CardNotifier delivers issued-card notifications outside the scan
// transaction. Delivery is best effort: the card is already committed.
type CardNotifier interface {
	NotifyCardIssued(ctx context.Context, c *card.Card) error
}

// NoopNotifier discards notifications.
type NoopNotifier struct{}

func (NoopNotifier) NotifyCardIssued(context.Context, *card.Card) error { return nil }

// WebhookNotifier posts card notifications to an HTTP endpoint. A circuit
// breaker keeps a dead endpoint from stalling every scan run.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

// NewWebhookNotifier creates a notifier posting to the given URL.
func NewWebhookNotifier(url string, logger *slog.Logger) *WebhookNotifier {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "card-webhook",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}

	return &WebhookNotifier{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
		logger:  logger,
	}
}

type cardPayload struct {
	CardID       string    `json:"card_id"`
	TaskID       string    `json:"task_id"`
	UserID       string    `json:"user_id"`
	CardType     string    `json:"card_type"`
	Reason       string    `json:"reason"`
	PenaltyScore float64   `json:"penalty_score"`
	TriggeredAt  time.Time `json:"triggered_at"`
}

// NotifyCardIssued posts the card to the webhook endpoint.
func (n *WebhookNotifier) NotifyCardIssued(ctx context.Context, c *card.Card) error {
	body, err := json.Marshal(cardPayload{
		CardID:       c.ID().String(),
		TaskID:       c.TaskID().String(),
		UserID:       c.UserID().String(),
		CardType:     c.CardType().String(),
		Reason:       c.Reason(),
		PenaltyScore: c.PenaltyScore(),
		TriggeredAt:  c.TriggeredAt(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal card payload: %w", err)
	}

	_, err = n.breaker.Execute(func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return struct{}{}, fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return struct{}{}, nil
	})
	if err != nil {
		n.logger.Warn("card notification failed",
			"card_id", c.ID(),
			"task_id", c.TaskID(),
			"error", err,
		)
		return err
	}
	return nil
}
