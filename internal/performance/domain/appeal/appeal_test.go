package appeal_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
)

func owner() actor.Actor {
	return actor.Actor{ID: uuid.New(), Role: actor.RoleStaff}
}

func manager() actor.Actor {
	return actor.Actor{ID: uuid.New(), Role: actor.RoleManager}
}

func pendingAppeal(t *testing.T, by actor.Actor) *appeal.Appeal {
	t.Helper()
	expires := time.Now().Add(48 * time.Hour)
	a := appeal.NewAppeal(uuid.New(), uuid.New(), by.ID, expires)
	a.ClearDomainEvents()
	return a
}

func TestNewAppeal_OpensPendingWithEvent(t *testing.T) {
	cardID, taskID, userID := uuid.New(), uuid.New(), uuid.New()
	expires := time.Date(2026, 4, 4, 10, 30, 0, 0, time.UTC)

	a := appeal.NewAppeal(cardID, taskID, userID, expires)

	assert.Equal(t, appeal.StatusPending, a.Status())
	assert.Equal(t, cardID, a.CardID())
	assert.Equal(t, expires, a.ExpiresAt())

	events := a.DomainEvents()
	require.Len(t, events, 1)
	opened, ok := events[0].(appeal.AppealOpened)
	require.True(t, ok)
	assert.Equal(t, cardID, opened.CardID)
	assert.Equal(t, expires, opened.ExpiresAt)
}

func TestSubmit_MovesToReviewing(t *testing.T) {
	by := owner()
	a := pendingAppeal(t, by)

	err := a.Submit(by, "external blocker", "vendor API was down for two days", []string{"https://status.vendor.example/incident/42"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, appeal.StatusReviewing, a.Status())
	assert.Equal(t, "external blocker", a.ReasonCategory())
	assert.Len(t, a.Evidence(), 1)
	require.Len(t, a.DomainEvents(), 1)
}

func TestSubmit_OnlyOwner(t *testing.T) {
	a := pendingAppeal(t, owner())

	err := a.Submit(owner(), "external blocker", "", nil, time.Now())
	assert.ErrorIs(t, err, appeal.ErrNotAppealOwner)
}

func TestSubmit_RejectedAfterExpiry(t *testing.T) {
	by := owner()
	a := appeal.NewAppeal(uuid.New(), uuid.New(), by.ID, time.Now().Add(-time.Minute))

	err := a.Submit(by, "external blocker", "", nil, time.Now())
	assert.ErrorIs(t, err, appeal.ErrAppealExpired)
	assert.Equal(t, appeal.StatusPending, a.Status())
}

func TestSubmit_RequiresReason(t *testing.T) {
	by := owner()
	a := pendingAppeal(t, by)

	err := a.Submit(by, "   ", "detail", nil, time.Now())
	assert.ErrorIs(t, err, appeal.ErrEmptyReason)
}

func TestSubmit_OnlyFromPending(t *testing.T) {
	by := owner()
	a := pendingAppeal(t, by)
	require.NoError(t, a.Submit(by, "external blocker", "", nil, time.Now()))

	err := a.Submit(by, "external blocker", "", nil, time.Now())
	var stateErr *appeal.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, appeal.StatusReviewing, stateErr.From)
}

func TestReview_ApprovesAndRecordsReviewer(t *testing.T) {
	by := owner()
	a := pendingAppeal(t, by)
	require.NoError(t, a.Submit(by, "external blocker", "", nil, time.Now()))
	a.ClearDomainEvents()

	reviewer := manager()
	err := a.Review(reviewer, appeal.StatusApproved, "blocker confirmed", time.Now())
	require.NoError(t, err)

	assert.Equal(t, appeal.StatusApproved, a.Status())
	assert.True(t, a.IsApproved())
	require.NotNil(t, a.ReviewerID())
	assert.Equal(t, reviewer.ID, *a.ReviewerID())
	assert.Equal(t, "blocker confirmed", a.ReviewComment())
	require.NotNil(t, a.ReviewedAt())

	events := a.DomainEvents()
	require.Len(t, events, 1)
	reviewed, ok := events[0].(appeal.AppealReviewed)
	require.True(t, ok)
	assert.Equal(t, "approved", reviewed.Verdict)
}

func TestReview_StaffNotPermitted(t *testing.T) {
	by := owner()
	a := pendingAppeal(t, by)
	require.NoError(t, a.Submit(by, "external blocker", "", nil, time.Now()))

	err := a.Review(owner(), appeal.StatusApproved, "", time.Now())
	assert.ErrorIs(t, err, appeal.ErrNotReviewer)
}

func TestReview_RequiresTerminalVerdict(t *testing.T) {
	by := owner()
	a := pendingAppeal(t, by)
	require.NoError(t, a.Submit(by, "external blocker", "", nil, time.Now()))

	err := a.Review(manager(), appeal.StatusPending, "", time.Now())
	assert.ErrorIs(t, err, appeal.ErrInvalidVerdict)
}

func TestReview_TerminalIsFinal(t *testing.T) {
	by := owner()
	a := pendingAppeal(t, by)
	require.NoError(t, a.Submit(by, "external blocker", "", nil, time.Now()))
	require.NoError(t, a.Review(manager(), appeal.StatusRejected, "no supporting evidence", time.Now()))

	err := a.Review(manager(), appeal.StatusApproved, "", time.Now())
	var stateErr *appeal.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, appeal.StatusRejected, a.Status())
}

func TestReview_NotBeforeSubmission(t *testing.T) {
	a := pendingAppeal(t, owner())

	err := a.Review(manager(), appeal.StatusApproved, "", time.Now())
	var stateErr *appeal.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, appeal.StatusPending, stateErr.From)
}

func TestRehydrate_NoPendingEvents(t *testing.T) {
	now := time.Now().UTC()
	a := appeal.Rehydrate(appeal.Snapshot{
		ID:        uuid.New(),
		CardID:    uuid.New(),
		TaskID:    uuid.New(),
		UserID:    uuid.New(),
		Status:    appeal.StatusReviewing,
		ExpiresAt: now.Add(48 * time.Hour),
		Version:   2,
		CreatedAt: now,
		UpdatedAt: now,
	})

	assert.Empty(t, a.DomainEvents())
	assert.Equal(t, appeal.StatusReviewing, a.Status())
	assert.Equal(t, 2, a.Version())
}

func TestParseStatus(t *testing.T) {
	s, err := appeal.ParseStatus("reviewing")
	require.NoError(t, err)
	assert.Equal(t, appeal.StatusReviewing, s)

	_, err = appeal.ParseStatus("escalated")
	assert.Error(t, err)
}
