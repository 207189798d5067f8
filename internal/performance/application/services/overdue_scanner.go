package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
	"github.com/perfboard/perfboard/internal/performance/domain/card"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	"github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/domain"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

const (
	ReasonSevereOverdue   = "severe overdue"
	ReasonTaskOverdue     = "task overdue"
	ReasonLaggingProgress = "approaching deadline with lagging progress"
)

// ScanConfig holds the thresholds of the periodic overdue scan.
type ScanConfig struct {
	// Interval between scan runs.
	Interval time.Duration

	// RedThresholdDays is the number of whole days past the plan end
	// after which a red card is issued.
	RedThresholdDays int

	// RedDeduction is the penalty score carried by a red card.
	RedDeduction float64

	// YellowDeduction is the penalty score carried by a yellow card.
	YellowDeduction float64

	// WarnWindow is how close to the plan end the lagging-progress
	// warning starts firing.
	WarnWindow time.Duration

	// WarnProgressPercent is the progress below which a task inside the
	// warn window is considered lagging.
	WarnProgressPercent int

	// AppealWindow is how long after a red card the owner may appeal.
	AppealWindow time.Duration
}

// DefaultScanConfig returns the scan thresholds used when no configuration
// overrides them.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Interval:            30 * time.Minute,
		RedThresholdDays:    3,
		RedDeduction:        5.0,
		YellowDeduction:     0.0,
		WarnWindow:          24 * time.Hour,
		WarnProgressPercent: 50,
		AppealWindow:        48 * time.Hour,
	}
}

// ScanResult summarizes one scan run.
type ScanResult struct {
	TasksScanned  int
	RedsIssued    int
	YellowsIssued int
}

// OverdueScanner periodically walks open tasks and issues penalty cards
// for overdue and lagging work. Each run commits in a single transaction;
// a red card atomically opens its appeal and writes an audit log entry.
type OverdueScanner struct {
	uow      application.UnitOfWork
	tasks    task.Repository
	cards    card.Repository
	appeals  appeal.Repository
	logs     task.LogRepository
	outbox   outbox.Repository
	notifier CardNotifier
	config   ScanConfig
	logger   *slog.Logger
	now      func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex
}

// NewOverdueScanner creates a scanner over the given repositories.
func NewOverdueScanner(
	uow application.UnitOfWork,
	tasks task.Repository,
	cards card.Repository,
	appeals appeal.Repository,
	logs task.LogRepository,
	outboxRepo outbox.Repository,
	notifier CardNotifier,
	config ScanConfig,
	logger *slog.Logger,
) *OverdueScanner {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &OverdueScanner{
		uow:      uow,
		tasks:    tasks,
		cards:    cards,
		appeals:  appeals,
		logs:     logs,
		outbox:   outboxRepo,
		notifier: notifier,
		config:   config,
		logger:   logger,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic scan loop in a goroutine.
func (s *OverdueScanner) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("overdue scanner started", "interval", s.config.Interval)
	return nil
}

// Stop gracefully stops the scanner.
func (s *OverdueScanner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("overdue scanner stopped")
}

func (s *OverdueScanner) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("overdue scan failed", "error", err)
			}
		}
	}
}

// RunOnce executes a single scan pass. Issued cards are notified after the
// transaction commits.
func (s *OverdueScanner) RunOnce(ctx context.Context) (ScanResult, error) {
	var result ScanResult
	var issued []*card.Card

	now := s.now().UTC()

	err := application.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		scannable, err := s.tasks.FindScannable(txCtx)
		if err != nil {
			return fmt.Errorf("failed to load scannable tasks: %w", err)
		}
		result.TasksScanned = len(scannable)

		for _, t := range scannable {
			c, err := s.scanTask(txCtx, t, now, &result)
			if err != nil {
				// One bad task must not starve the rest of the run.
				s.logger.Error("failed to scan task", "task_id", t.ID(), "error", err)
				continue
			}
			if c != nil {
				issued = append(issued, c)
			}
		}
		return nil
	})
	if err != nil {
		return ScanResult{}, err
	}

	for _, c := range issued {
		_ = s.notifier.NotifyCardIssued(ctx, c)
	}

	if result.RedsIssued > 0 || result.YellowsIssued > 0 {
		s.logger.Info("overdue scan issued cards",
			"scanned", result.TasksScanned,
			"reds", result.RedsIssued,
			"yellows", result.YellowsIssued,
		)
	}

	return result, nil
}

func (s *OverdueScanner) scanTask(ctx context.Context, t *task.Task, now time.Time, result *ScanResult) (*card.Card, error) {
	planEnd := t.PlanEnd()
	if planEnd == nil {
		return nil, nil
	}

	overdue := now.Sub(*planEnd)
	overdueDays := int(overdue.Hours() / 24)

	if overdueDays >= s.config.RedThresholdDays {
		return s.issueRed(ctx, t, now, result)
	}
	if overdue > 0 {
		return s.issueYellow(ctx, t, ReasonTaskOverdue, now, result)
	}
	if planEnd.Sub(now) <= s.config.WarnWindow && t.Progress() < s.config.WarnProgressPercent {
		return s.issueYellow(ctx, t, ReasonLaggingProgress, now, result)
	}
	return nil, nil
}

// issueRed creates a red card and, in the same transaction, its pending
// appeal and an audit log entry. An existing red card means a previous run
// already handled the task.
func (s *OverdueScanner) issueRed(ctx context.Context, t *task.Task, now time.Time, result *ScanResult) (*card.Card, error) {
	c := card.NewCard(t.ID(), t.ResponsibleUser(), card.TypeRed, ReasonSevereOverdue, s.config.RedDeduction, now)

	if err := s.cards.Save(ctx, c); err != nil {
		if errors.Is(err, card.ErrDuplicateCard) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to save red card: %w", err)
	}

	a := appeal.NewAppeal(c.ID(), t.ID(), c.UserID(), now.Add(s.config.AppealWindow))
	if err := s.appeals.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to open appeal: %w", err)
	}

	entry := task.NewSystemLog(t.ID(), "red_card_issued",
		fmt.Sprintf("red card issued for severe overdue, penalty %.1f, appeal open until %s",
			c.PenaltyScore(), a.ExpiresAt().Format(time.RFC3339)),
		now)
	if err := s.logs.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to write task log: %w", err)
	}

	if err := s.stageEvents(ctx, c, a); err != nil {
		return nil, err
	}

	result.RedsIssued++
	return c, nil
}

// issueYellow creates a warning card unless the task already carries a red
// one. The unique card constraint makes repeat runs a no-op.
func (s *OverdueScanner) issueYellow(ctx context.Context, t *task.Task, reason string, now time.Time, result *ScanResult) (*card.Card, error) {
	existing, err := s.cards.FindByTask(ctx, t.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load existing cards: %w", err)
	}
	for _, ec := range existing {
		if ec.CardType() == card.TypeRed {
			return nil, nil
		}
	}

	c := card.NewCard(t.ID(), t.ResponsibleUser(), card.TypeYellow, reason, s.config.YellowDeduction, now)

	if err := s.cards.Save(ctx, c); err != nil {
		if errors.Is(err, card.ErrDuplicateCard) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to save yellow card: %w", err)
	}

	if err := s.stageEvents(ctx, c); err != nil {
		return nil, err
	}

	result.YellowsIssued++
	return c, nil
}

func (s *OverdueScanner) stageEvents(ctx context.Context, aggregates ...interface {
	DomainEvents() []domain.DomainEvent
	ClearDomainEvents()
}) error {
	meta := application.NewEventMetadata(uuid.Nil)
	var events []domain.DomainEvent
	for _, agg := range aggregates {
		events = append(events, agg.DomainEvents()...)
		agg.ClearDomainEvents()
	}

	messages, err := outbox.FromEvents(events, meta)
	if err != nil {
		return fmt.Errorf("failed to build outbox messages: %w", err)
	}
	if err := s.outbox.SaveBatch(ctx, messages); err != nil {
		return fmt.Errorf("failed to stage outbox messages: %w", err)
	}
	return nil
}
