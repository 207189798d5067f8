package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
	"github.com/perfboard/perfboard/internal/performance/domain/card"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
)

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *mockTaskRepo) FindScannable(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

type mockCardRepo struct {
	mock.Mock
}

func (m *mockCardRepo) Save(ctx context.Context, c *card.Card) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *mockCardRepo) FindByID(ctx context.Context, id uuid.UUID) (*card.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*card.Card), args.Error(1)
}

func (m *mockCardRepo) FindByTask(ctx context.Context, taskID uuid.UUID) ([]*card.Card, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*card.Card), args.Error(1)
}

func (m *mockCardRepo) ListByUser(ctx context.Context, userID uuid.UUID, includeArchived bool) ([]*card.Card, error) {
	args := m.Called(ctx, userID, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*card.Card), args.Error(1)
}

func (m *mockCardRepo) ActivePenaltyTotal(ctx context.Context, taskID uuid.UUID) (float64, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockCardRepo) ListActive(ctx context.Context) ([]*card.Card, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*card.Card), args.Error(1)
}

func (m *mockCardRepo) ArchiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockAppealRepo struct {
	mock.Mock
}

func (m *mockAppealRepo) Save(ctx context.Context, a *appeal.Appeal) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAppealRepo) FindByID(ctx context.Context, id uuid.UUID) (*appeal.Appeal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appeal.Appeal), args.Error(1)
}

func (m *mockAppealRepo) FindByCard(ctx context.Context, cardID uuid.UUID) (*appeal.Appeal, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appeal.Appeal), args.Error(1)
}

func (m *mockAppealRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*appeal.Appeal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*appeal.Appeal), args.Error(1)
}

type mockLogRepo struct {
	mock.Mock
}

func (m *mockLogRepo) Append(ctx context.Context, entry task.LogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockLogRepo) FindByTask(ctx context.Context, taskID uuid.UUID) ([]task.LogEntry, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.LogEntry), args.Error(1)
}
