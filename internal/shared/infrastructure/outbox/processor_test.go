package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Save(ctx context.Context, msg *Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockRepo) SaveBatch(ctx context.Context, msgs []*Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockRepo) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Message), args.Error(1)
}

func (m *mockRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

func (m *mockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testMessage(id int64, retries int) *Message {
	return &Message{
		ID:         id,
		EventID:    uuid.New(),
		RoutingKey: "perf.task.card_issued",
		Payload:    []byte(`{}`),
		CreatedAt:  time.Now().UTC(),
		RetryCount: retries,
	}
}

func TestProcessor_PublishesAndMarks(t *testing.T) {
	repo := new(mockRepo)
	pub := new(mockPublisher)
	proc := NewProcessor(repo, pub, DefaultProcessorConfig(), nil)

	ctx := context.Background()
	msg := testMessage(1, 0)

	repo.On("GetUnpublished", ctx, 100).Return([]*Message{msg}, nil)
	pub.On("Publish", ctx, msg.RoutingKey, []byte(msg.Payload)).Return(nil)
	repo.On("MarkPublished", ctx, int64(1)).Return(nil)

	require.NoError(t, proc.ProcessBatch(ctx))

	stats := proc.GetStats()
	assert.Equal(t, int64(1), stats.PublishedCount)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestProcessor_FailureSchedulesRetry(t *testing.T) {
	repo := new(mockRepo)
	pub := new(mockPublisher)
	proc := NewProcessor(repo, pub, DefaultProcessorConfig(), nil)

	ctx := context.Background()
	msg := testMessage(2, 1)

	repo.On("GetUnpublished", ctx, 100).Return([]*Message{msg}, nil)
	pub.On("Publish", ctx, msg.RoutingKey, []byte(msg.Payload)).Return(errors.New("broker down"))
	repo.On("MarkFailed", ctx, int64(2), "broker down", mock.AnythingOfType("time.Time")).Return(nil)

	require.NoError(t, proc.ProcessBatch(ctx))

	stats := proc.GetStats()
	assert.Equal(t, int64(1), stats.FailedCount)
	assert.Equal(t, "broker down", stats.LastError)
	repo.AssertExpectations(t)
}

func TestProcessor_ExhaustedRetriesDeadLetters(t *testing.T) {
	repo := new(mockRepo)
	pub := new(mockPublisher)
	cfg := DefaultProcessorConfig()
	cfg.MaxRetries = 3
	proc := NewProcessor(repo, pub, cfg, nil)

	ctx := context.Background()
	msg := testMessage(3, 3)

	repo.On("GetUnpublished", ctx, 100).Return([]*Message{msg}, nil)
	pub.On("Publish", ctx, msg.RoutingKey, []byte(msg.Payload)).Return(errors.New("broker down"))
	repo.On("MarkDead", ctx, int64(3), "broker down").Return(nil)

	require.NoError(t, proc.ProcessBatch(ctx))

	stats := proc.GetStats()
	assert.Equal(t, int64(1), stats.DeadCount)
	repo.AssertExpectations(t)
}

func TestProcessor_StartStop(t *testing.T) {
	repo := new(mockRepo)
	pub := new(mockPublisher)
	cfg := DefaultProcessorConfig()
	cfg.PollInterval = 10 * time.Millisecond
	proc := NewProcessor(repo, pub, cfg, nil)

	repo.On("GetUnpublished", mock.Anything, 100).Return([]*Message{}, nil).Maybe()

	ctx := context.Background()
	require.NoError(t, proc.Start(ctx))
	assert.True(t, proc.GetStats().IsRunning)

	time.Sleep(30 * time.Millisecond)
	proc.Stop()
	assert.False(t, proc.GetStats().IsRunning)
}
