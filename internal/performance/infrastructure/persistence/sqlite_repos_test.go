package persistence_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
	"github.com/perfboard/perfboard/internal/performance/domain/card"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	"github.com/perfboard/perfboard/internal/performance/domain/value_objects"
	"github.com/perfboard/perfboard/internal/performance/infrastructure/persistence"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/perfboard/perfboard/internal/shared/infrastructure/persistence"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := sharedPersistence.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.RunSQLite(ctx, db))
	return db
}

// taskInStatus builds a task directly in the given status so tests do not
// have to walk the full lifecycle for every fixture.
func taskInStatus(status task.Status, planEnd *time.Time) *task.Task {
	now := time.Now().UTC().Truncate(time.Second)
	var planStart *time.Time
	if planEnd != nil {
		start := planEnd.Add(-7 * 24 * time.Hour)
		planStart = &start
	}
	return task.Rehydrate(task.Snapshot{
		ID:        uuid.New(),
		CreatorID: uuid.New(),
		OwnerID:   uuid.New(),
		Title:     "fixture task",
		TaskType:  task.TypePerformance,
		Status:    status,
		Coeff:     value_objects.DefaultCoefficients(),
		PlanStart: planStart,
		PlanEnd:   planEnd,
		BaseScore: 10,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func saveTask(t *testing.T, repo *persistence.SQLiteTaskRepository, tsk *task.Task) {
	t.Helper()
	require.NoError(t, repo.Save(context.Background(), tsk))
}

func TestSQLiteTaskRepository_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := persistence.NewSQLiteTaskRepository(db)

	tsk, err := task.NewTask(uuid.New(), "Write quarterly report", task.TypePerformance)
	require.NoError(t, err)
	tsk.SetDescription("Q3 numbers")
	tsk.SetCategory("reporting")
	start := time.Now().UTC().Truncate(time.Second)
	end := start.Add(5 * 24 * time.Hour)
	tsk.SetPlanWindow(&start, &end)
	tsk.SetBaseScore(12)

	require.NoError(t, repo.Save(ctx, tsk))

	loaded, err := repo.FindByID(ctx, tsk.ID())
	require.NoError(t, err)
	assert.Equal(t, tsk.ID(), loaded.ID())
	assert.Equal(t, "Write quarterly report", loaded.Title())
	assert.Equal(t, "Q3 numbers", loaded.Description())
	assert.Equal(t, task.StatusDraft, loaded.Status())
	assert.Equal(t, 12.0, loaded.BaseScore())
	assert.Equal(t, 1, loaded.Version())
	require.NotNil(t, loaded.PlanEnd())
	assert.True(t, loaded.PlanEnd().Equal(end))

	loaded.SetDescription("Q3 numbers, final")
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, tsk.ID())
	require.NoError(t, err)
	assert.Equal(t, "Q3 numbers, final", reloaded.Description())
	assert.Equal(t, 2, reloaded.Version())
}

func TestSQLiteTaskRepository_OptimisticLockConflict(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := persistence.NewSQLiteTaskRepository(db)

	tsk, err := task.NewTask(uuid.New(), "Contended task", task.TypePerformance)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, tsk))

	first, err := repo.FindByID(ctx, tsk.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, tsk.ID())
	require.NoError(t, err)

	first.SetDescription("first writer")
	require.NoError(t, repo.Save(ctx, first))

	second.SetDescription("second writer")
	err = repo.Save(ctx, second)
	assert.ErrorIs(t, err, persistence.ErrOptimisticLocking)
}

func TestSQLiteTaskRepository_FindByID_NotFound(t *testing.T) {
	db := setupDB(t)
	repo := persistence.NewSQLiteTaskRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestSQLiteTaskRepository_FindScannable(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := persistence.NewSQLiteTaskRepository(db)

	end := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	inProgress := taskInStatus(task.StatusInProgress, &end)
	pendingReview := taskInStatus(task.StatusPendingReview, &end)
	noWindow := taskInStatus(task.StatusInProgress, nil)
	draft := taskInStatus(task.StatusDraft, &end)
	completed := taskInStatus(task.StatusCompleted, &end)

	for _, tsk := range []*task.Task{inProgress, pendingReview, noWindow, draft, completed} {
		saveTask(t, repo, tsk)
	}

	scannable, err := repo.FindScannable(ctx)
	require.NoError(t, err)
	require.Len(t, scannable, 2)

	ids := map[uuid.UUID]bool{}
	for _, tsk := range scannable {
		ids[tsk.ID()] = true
	}
	assert.True(t, ids[inProgress.ID()])
	assert.True(t, ids[pendingReview.ID()])
}

func TestSQLiteTaskRepository_List_FiltersDeletedAndUser(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := persistence.NewSQLiteTaskRepository(db)

	creator := uuid.New()
	mine, err := task.NewTask(creator, "Mine", task.TypePerformance)
	require.NoError(t, err)
	other, err := task.NewTask(uuid.New(), "Someone else's", task.TypePerformance)
	require.NoError(t, err)
	saveTask(t, repo, mine)
	saveTask(t, repo, other)

	listed, err := repo.List(ctx, task.Filter{UserID: &creator})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID(), listed[0].ID())

	all, err := repo.List(ctx, task.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLiteCardRepository_DuplicateAndTotals(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	taskRepo := persistence.NewSQLiteTaskRepository(db)
	cardRepo := persistence.NewSQLiteCardRepository(db)

	end := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)
	tsk := taskInStatus(task.StatusInProgress, &end)
	saveTask(t, taskRepo, tsk)

	now := time.Now().UTC().Truncate(time.Second)
	red := card.NewCard(tsk.ID(), tsk.OwnerID(), card.TypeRed, "severe overdue", 5, now)
	yellow := card.NewCard(tsk.ID(), tsk.OwnerID(), card.TypeYellow, "task overdue", 0, now)
	require.NoError(t, cardRepo.Save(ctx, red))
	require.NoError(t, cardRepo.Save(ctx, yellow))

	dup := card.NewCard(tsk.ID(), tsk.OwnerID(), card.TypeRed, "severe overdue", 5, now)
	err := cardRepo.Save(ctx, dup)
	assert.ErrorIs(t, err, card.ErrDuplicateCard)

	total, err := cardRepo.ActivePenaltyTotal(ctx, tsk.ID())
	require.NoError(t, err)
	assert.Equal(t, 5.0, total)

	byTask, err := cardRepo.FindByTask(ctx, tsk.ID())
	require.NoError(t, err)
	assert.Len(t, byTask, 2)

	archived, err := cardRepo.ArchiveBefore(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 2, archived)

	active, err := cardRepo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	total, err = cardRepo.ActivePenaltyTotal(ctx, tsk.ID())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSQLiteAppealRepository_Roundtrip(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	taskRepo := persistence.NewSQLiteTaskRepository(db)
	cardRepo := persistence.NewSQLiteCardRepository(db)
	appealRepo := persistence.NewSQLiteAppealRepository(db)

	end := time.Now().UTC().Add(-96 * time.Hour).Truncate(time.Second)
	tsk := taskInStatus(task.StatusInProgress, &end)
	saveTask(t, taskRepo, tsk)

	now := time.Now().UTC().Truncate(time.Second)
	red := card.NewCard(tsk.ID(), tsk.OwnerID(), card.TypeRed, "severe overdue", 5, now)
	require.NoError(t, cardRepo.Save(ctx, red))

	reviewer := uuid.New()
	reviewed := now.Add(time.Hour)
	a := appeal.Rehydrate(appeal.Snapshot{
		ID:             uuid.New(),
		CardID:         red.ID(),
		TaskID:         tsk.ID(),
		UserID:         tsk.OwnerID(),
		Status:         appeal.StatusReviewing,
		ReasonCategory: "blocked_by_dependency",
		Detail:         "waiting on upstream sign-off",
		Evidence:       []string{"https://tracker/ticket/42", "mail-thread-7"},
		ExpiresAt:      now.Add(48 * time.Hour),
		ReviewerID:     &reviewer,
		ReviewedAt:     &reviewed,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	require.NoError(t, appealRepo.Save(ctx, a))

	loaded, err := appealRepo.FindByCard(ctx, red.ID())
	require.NoError(t, err)
	assert.Equal(t, a.ID(), loaded.ID())
	assert.Equal(t, appeal.StatusReviewing, loaded.Status())
	assert.Equal(t, "blocked_by_dependency", loaded.ReasonCategory())
	assert.Equal(t, []string{"https://tracker/ticket/42", "mail-thread-7"}, loaded.Evidence())
	require.NotNil(t, loaded.ReviewerID())
	assert.Equal(t, reviewer, *loaded.ReviewerID())
	assert.Equal(t, 1, loaded.Version())

	byUser, err := appealRepo.ListByUser(ctx, tsk.OwnerID())
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	_, err = appealRepo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, appeal.ErrAppealNotFound)
}

func TestSQLiteLogRepository_AppendAndFind(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	taskRepo := persistence.NewSQLiteTaskRepository(db)
	logRepo := persistence.NewSQLiteLogRepository(db)

	tsk, err := task.NewTask(uuid.New(), "Audited task", task.TypePerformance)
	require.NoError(t, err)
	saveTask(t, taskRepo, tsk)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, logRepo.Append(ctx, task.NewSystemLog(tsk.ID(), "card_issued", "red card", now)))
	require.NoError(t, logRepo.Append(ctx, task.NewSystemLog(tsk.ID(), "appeal_opened", "", now.Add(time.Second))))

	entries, err := logRepo.FindByTask(ctx, tsk.ID())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "card_issued", entries[0].Action)
	assert.Equal(t, "appeal_opened", entries[1].Action)
	assert.Equal(t, tsk.ID(), entries[1].TaskID)
}
