package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/perfboard/perfboard/internal/shared/infrastructure/eventbus"
)

// ProcessorConfig holds configuration for the outbox processor.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig returns sensible defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     100 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: 1 * time.Second,
		RetryBackoffMax:  1 * time.Minute,
	}
}

// Stats is a snapshot of processor counters.
type Stats struct {
	IsRunning       bool
	PublishedCount  int64
	FailedCount     int64
	DeadCount       int64
	LastProcessedAt *time.Time
	LastError       string
	LastErrorAt     *time.Time
}

// Processor polls the outbox and publishes events to the message broker.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	config    ProcessorConfig
	logger    *slog.Logger

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex

	statsMu sync.Mutex
	stats   Stats
}

// NewProcessor creates a new outbox processor.
func NewProcessor(repo Repository, publisher eventbus.Publisher, config ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if config.RetryBackoffBase <= 0 {
		config.RetryBackoffBase = time.Second
	}
	if config.RetryBackoffMax <= 0 {
		config.RetryBackoffMax = time.Minute
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the polling loop in a goroutine.
func (p *Processor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("outbox processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
	)

	return nil
}

// Stop gracefully stops the processor.
func (p *Processor) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopChan)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("outbox processor stopped")
}

// GetStats returns a snapshot of processor counters.
func (p *Processor) GetStats() Stats {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	stats := p.stats
	p.mu.Lock()
	stats.IsRunning = p.running
	p.mu.Unlock()
	return stats
}

func (p *Processor) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			if err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error("failed to process outbox batch", "error", err)
			}
		}
	}
}

// ProcessBatch publishes one batch of unpublished messages.
func (p *Processor) ProcessBatch(ctx context.Context) error {
	messages, err := p.repo.GetUnpublished(ctx, p.config.BatchSize)
	if err != nil {
		p.recordError(err)
		return err
	}

	for _, msg := range messages {
		if err := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			p.handleFailure(ctx, msg, err)
			continue
		}

		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			p.logger.Error("failed to mark message published", "id", msg.ID, "error", err)
			p.recordError(err)
			continue
		}
		p.recordPublished()
	}

	if len(messages) > 0 {
		now := time.Now().UTC()
		p.statsMu.Lock()
		p.stats.LastProcessedAt = &now
		p.statsMu.Unlock()
	}

	return nil
}

func (p *Processor) handleFailure(ctx context.Context, msg *Message, pubErr error) {
	p.logger.Warn("failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"retry_count", msg.RetryCount,
		"error", pubErr,
	)

	if !msg.CanRetry(p.config.MaxRetries) {
		if err := p.repo.MarkDead(ctx, msg.ID, pubErr.Error()); err != nil {
			p.logger.Error("failed to dead-letter message", "id", msg.ID, "error", err)
			return
		}
		p.recordDead()
		return
	}

	backoff := p.config.RetryBackoffBase << msg.RetryCount
	if backoff > p.config.RetryBackoffMax {
		backoff = p.config.RetryBackoffMax
	}
	nextRetry := time.Now().UTC().Add(backoff)

	if err := p.repo.MarkFailed(ctx, msg.ID, pubErr.Error(), nextRetry); err != nil {
		p.logger.Error("failed to mark message failed", "id", msg.ID, "error", err)
		return
	}
	p.recordFailed(pubErr)
}

func (p *Processor) recordPublished() {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.PublishedCount++
}

func (p *Processor) recordFailed(err error) {
	now := time.Now().UTC()
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.FailedCount++
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
}

func (p *Processor) recordDead() {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.DeadCount++
}

func (p *Processor) recordError(err error) {
	now := time.Now().UTC()
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	p.stats.LastError = err.Error()
	p.stats.LastErrorAt = &now
}
