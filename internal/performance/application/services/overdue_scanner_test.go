package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfboard/perfboard/internal/performance/application/services"
	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
	"github.com/perfboard/perfboard/internal/performance/domain/card"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

type fakeUnitOfWork struct {
	commits   int
	rollbacks int
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (u *fakeUnitOfWork) Commit(ctx context.Context) error                   { u.commits++; return nil }
func (u *fakeUnitOfWork) Rollback(ctx context.Context) error                 { u.rollbacks++; return nil }

type fakeTaskRepo struct {
	scannable []*task.Task
}

func (r *fakeTaskRepo) Save(ctx context.Context, t *task.Task) error { return nil }
func (r *fakeTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	return nil, task.ErrTaskNotFound
}
func (r *fakeTaskRepo) List(ctx context.Context, f task.Filter) ([]*task.Task, error) {
	return nil, nil
}
func (r *fakeTaskRepo) FindScannable(ctx context.Context) ([]*task.Task, error) {
	return r.scannable, nil
}

// fakeCardRepo enforces the one-card-per-type-per-task constraint the real
// repositories get from their unique index.
type fakeCardRepo struct {
	cards []*card.Card
}

func (r *fakeCardRepo) Save(ctx context.Context, c *card.Card) error {
	for _, existing := range r.cards {
		if existing.ID() == c.ID() {
			return nil
		}
		if existing.TaskID() == c.TaskID() && existing.CardType() == c.CardType() {
			return card.ErrDuplicateCard
		}
	}
	r.cards = append(r.cards, c)
	return nil
}

func (r *fakeCardRepo) FindByID(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	for _, c := range r.cards {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, card.ErrCardNotFound
}

func (r *fakeCardRepo) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*card.Card, error) {
	var out []*card.Card
	for _, c := range r.cards {
		if c.TaskID() == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) ListByUser(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*card.Card, error) {
	return nil, nil
}

func (r *fakeCardRepo) ActivePenaltyTotal(ctx context.Context, taskID uuid.UUID) (float64, error) {
	var total float64
	for _, c := range r.cards {
		if c.TaskID() == taskID && !c.IsArchived() {
			total += c.PenaltyScore()
		}
	}
	return total, nil
}

func (r *fakeCardRepo) ListActive(ctx context.Context) ([]*card.Card, error) {
	var out []*card.Card
	for _, c := range r.cards {
		if !c.IsArchived() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) ArchiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeAppealRepo struct {
	appeals []*appeal.Appeal
}

func (r *fakeAppealRepo) Save(ctx context.Context, a *appeal.Appeal) error {
	r.appeals = append(r.appeals, a)
	return nil
}

func (r *fakeAppealRepo) FindByID(ctx context.Context, id uuid.UUID) (*appeal.Appeal, error) {
	return nil, appeal.ErrAppealNotFound
}

func (r *fakeAppealRepo) FindByCard(ctx context.Context, cardID uuid.UUID) (*appeal.Appeal, error) {
	for _, a := range r.appeals {
		if a.CardID() == cardID {
			return a, nil
		}
	}
	return nil, appeal.ErrAppealNotFound
}

func (r *fakeAppealRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*appeal.Appeal, error) {
	return nil, nil
}

type fakeLogRepo struct {
	entries []task.LogEntry
}

func (r *fakeLogRepo) Append(ctx context.Context, entry task.LogEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeLogRepo) FindByTask(ctx context.Context, taskID uuid.UUID) ([]task.LogEntry, error) {
	return r.entries, nil
}

type fakeOutboxRepo struct {
	messages []*outbox.Message
}

func (r *fakeOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	r.messages = append(r.messages, msgs...)
	return nil
}

func (r *fakeOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	return nil, nil
}
func (r *fakeOutboxRepo) MarkPublished(ctx context.Context, id int64) error { return nil }
func (r *fakeOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return nil
}
func (r *fakeOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error { return nil }
func (r *fakeOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	return 0, nil
}

type recordingNotifier struct {
	cards []*card.Card
}

func (n *recordingNotifier) NotifyCardIssued(ctx context.Context, c *card.Card) error {
	n.cards = append(n.cards, c)
	return nil
}

type scannerFixture struct {
	scanner  *services.OverdueScanner
	uow      *fakeUnitOfWork
	tasks    *fakeTaskRepo
	cards    *fakeCardRepo
	appeals  *fakeAppealRepo
	logs     *fakeLogRepo
	outbox   *fakeOutboxRepo
	notifier *recordingNotifier
}

func newScannerFixture(scannable ...*task.Task) *scannerFixture {
	f := &scannerFixture{
		uow:      &fakeUnitOfWork{},
		tasks:    &fakeTaskRepo{scannable: scannable},
		cards:    &fakeCardRepo{},
		appeals:  &fakeAppealRepo{},
		logs:     &fakeLogRepo{},
		outbox:   &fakeOutboxRepo{},
		notifier: &recordingNotifier{},
	}
	f.scanner = services.NewOverdueScanner(
		f.uow, f.tasks, f.cards, f.appeals, f.logs, f.outbox,
		f.notifier, services.DefaultScanConfig(), nil,
	)
	return f
}

func TestRunOnce_SevereOverdueIssuesRedWithAppealAndLog(t *testing.T) {
	// Planned 10 days, now 4 days past plan end.
	start := time.Now().Add(-14 * 24 * time.Hour)
	tsk := plannedTask(t, start, 10*24*time.Hour)
	f := newScannerFixture(tsk)

	result, err := f.scanner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.TasksScanned)
	assert.Equal(t, 1, result.RedsIssued)
	assert.Equal(t, 0, result.YellowsIssued)
	assert.Equal(t, 1, f.uow.commits)

	require.Len(t, f.cards.cards, 1)
	c := f.cards.cards[0]
	assert.Equal(t, card.TypeRed, c.CardType())
	assert.Equal(t, services.ReasonSevereOverdue, c.Reason())
	assert.Equal(t, 5.0, c.PenaltyScore())
	assert.Equal(t, tsk.ResponsibleUser(), c.UserID())

	require.Len(t, f.appeals.appeals, 1)
	a := f.appeals.appeals[0]
	assert.Equal(t, c.ID(), a.CardID())
	assert.Equal(t, appeal.StatusPending, a.Status())
	assert.WithinDuration(t, time.Now().Add(48*time.Hour), a.ExpiresAt(), time.Minute)

	require.Len(t, f.logs.entries, 1)
	assert.Equal(t, task.SystemActor, f.logs.entries[0].Actor)
	assert.Equal(t, tsk.ID(), f.logs.entries[0].TaskID)

	// Card issued + appeal opened events staged for publishing.
	assert.Len(t, f.outbox.messages, 2)

	require.Len(t, f.notifier.cards, 1)
	assert.Equal(t, c.ID(), f.notifier.cards[0].ID())
}

func TestRunOnce_RepeatRunIssuesNothingNew(t *testing.T) {
	start := time.Now().Add(-14 * 24 * time.Hour)
	tsk := plannedTask(t, start, 10*24*time.Hour)
	f := newScannerFixture(tsk)

	_, err := f.scanner.RunOnce(context.Background())
	require.NoError(t, err)

	result, err := f.scanner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.RedsIssued)
	assert.Equal(t, 0, result.YellowsIssued)
	assert.Len(t, f.cards.cards, 1)
	assert.Len(t, f.appeals.appeals, 1)
	assert.Len(t, f.logs.entries, 1)
	assert.Len(t, f.notifier.cards, 1)
}

func TestRunOnce_MildOverdueIssuesYellow(t *testing.T) {
	// Planned 10 days, now 1 day past plan end.
	start := time.Now().Add(-11 * 24 * time.Hour)
	tsk := plannedTask(t, start, 10*24*time.Hour)
	f := newScannerFixture(tsk)

	result, err := f.scanner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.RedsIssued)
	assert.Equal(t, 1, result.YellowsIssued)

	require.Len(t, f.cards.cards, 1)
	c := f.cards.cards[0]
	assert.Equal(t, card.TypeYellow, c.CardType())
	assert.Equal(t, services.ReasonTaskOverdue, c.Reason())
	assert.Equal(t, 0.0, c.PenaltyScore())

	// Yellow cards never open appeals.
	assert.Empty(t, f.appeals.appeals)
	assert.Empty(t, f.logs.entries)
}

func TestRunOnce_YellowSuppressedByExistingRed(t *testing.T) {
	start := time.Now().Add(-11 * 24 * time.Hour)
	tsk := plannedTask(t, start, 10*24*time.Hour)
	f := newScannerFixture(tsk)

	// A previous run already escalated this task to red.
	red := card.NewCard(tsk.ID(), tsk.ResponsibleUser(), card.TypeRed, services.ReasonSevereOverdue, 5.0, time.Now())
	require.NoError(t, f.cards.Save(context.Background(), red))

	result, err := f.scanner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.YellowsIssued)
	assert.Len(t, f.cards.cards, 1)
}

func TestRunOnce_LaggingProgressNearDeadline(t *testing.T) {
	// 12 hours remain and progress is still below half.
	start := time.Now().Add(-10*24*time.Hour + 12*time.Hour)
	tsk := plannedTask(t, start, 10*24*time.Hour)
	f := newScannerFixture(tsk)

	result, err := f.scanner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.YellowsIssued)
	require.Len(t, f.cards.cards, 1)
	assert.Equal(t, services.ReasonLaggingProgress, f.cards.cards[0].Reason())
}

func TestRunOnce_NoWarningWhenProgressOnTrack(t *testing.T) {
	start := time.Now().Add(-10*24*time.Hour + 12*time.Hour)
	tsk := plannedTask(t, start, 10*24*time.Hour)
	require.NoError(t, tsk.UpdateProgress(staff(tsk.CreatorID()), 60))
	f := newScannerFixture(tsk)

	result, err := f.scanner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.YellowsIssued)
	assert.Empty(t, f.cards.cards)
}

func TestRunOnce_SkipsTasksWithoutPlanWindow(t *testing.T) {
	creator := uuid.New()
	tsk, err := task.NewTask(creator, "untracked chore", task.TypeDaily)
	require.NoError(t, err)
	require.NoError(t, tsk.Submit(staff(creator)))
	require.NoError(t, tsk.Approve(manager(), mustCoeff(t, 1.0, 1.0), time.Now()))
	f := newScannerFixture(tsk)

	result, err := f.scanner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.TasksScanned)
	assert.Empty(t, f.cards.cards)
}

func TestRunOnce_WellWithinPlanIssuesNothing(t *testing.T) {
	start := time.Now().Add(-5 * 24 * time.Hour)
	tsk := plannedTask(t, start, 10*24*time.Hour)
	require.NoError(t, tsk.UpdateProgress(staff(tsk.CreatorID()), 10))
	f := newScannerFixture(tsk)

	result, err := f.scanner.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.RedsIssued)
	assert.Equal(t, 0, result.YellowsIssued)
}

func TestScannerStartStop(t *testing.T) {
	f := newScannerFixture()

	require.NoError(t, f.scanner.Start(context.Background()))
	require.NoError(t, f.scanner.Start(context.Background())) // second start is a no-op
	f.scanner.Stop()
	f.scanner.Stop() // second stop is a no-op
}
