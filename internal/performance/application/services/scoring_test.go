package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfboard/perfboard/internal/performance/application/services"
	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	"github.com/perfboard/perfboard/internal/performance/domain/value_objects"
)

func staff(id uuid.UUID) actor.Actor {
	return actor.Actor{ID: id, Role: actor.RoleStaff}
}

func manager() actor.Actor {
	return actor.Actor{ID: uuid.New(), Role: actor.RoleManager}
}

func mustCoeff(t *testing.T, i, d float64) value_objects.Coefficients {
	t.Helper()
	c, err := value_objects.NewCoefficients(i, d)
	require.NoError(t, err)
	return c
}

func mustQuality(t *testing.T, v float64) value_objects.Quality {
	t.Helper()
	q, err := value_objects.NewQuality(v)
	require.NoError(t, err)
	return q
}

// plannedTask returns an in-progress task planned from start over the given
// duration, approved with neutral coefficients.
func plannedTask(t *testing.T, start time.Time, duration time.Duration) *task.Task {
	t.Helper()
	creator := uuid.New()
	tsk, err := task.NewTask(creator, "quarterly report", task.TypePerformance)
	require.NoError(t, err)
	end := start.Add(duration)
	tsk.SetPlanWindow(&start, &end)
	require.NoError(t, tsk.Submit(staff(creator)))
	require.NoError(t, tsk.Approve(manager(), value_objects.DefaultCoefficients(), start))
	return tsk
}

func acceptAt(t *testing.T, tsk *task.Task, quality float64, at time.Time) {
	t.Helper()
	require.NoError(t, tsk.UpdateProgress(staff(tsk.CreatorID()), 100))
	require.NoError(t, tsk.Complete(staff(tsk.CreatorID())))
	require.NoError(t, tsk.Accept(manager(), mustQuality(t, quality), 0, at))
}

func TestTimeliness_LinearDecay(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Planned 10 days, finished 2 days late: 1 - 2/10 = 0.8.
	tsk := plannedTask(t, start, 10*24*time.Hour)
	acceptAt(t, tsk, 1.0, start.Add(12*24*time.Hour))

	assert.InDelta(t, 0.8, engine.Timeliness(tsk, time.Now()), 1e-9)
}

func TestTimeliness_OnTimeIsNeutral(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tsk := plannedTask(t, start, 10*24*time.Hour)
	acceptAt(t, tsk, 1.0, start.Add(9*24*time.Hour))

	assert.Equal(t, 1.0, engine.Timeliness(tsk, time.Now()))
}

func TestTimeliness_ClampedToFloor(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// 20 days late on a 10-day plan: 1 - 2.0 would be negative, so the
	// factor clamps to the floor.
	tsk := plannedTask(t, start, 10*24*time.Hour)
	acceptAt(t, tsk, 1.0, start.Add(30*24*time.Hour))

	assert.Equal(t, 0.2, engine.Timeliness(tsk, time.Now()))
}

func TestTimeliness_OpenTaskMeasuredAgainstNow(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tsk := plannedTask(t, start, 10*24*time.Hour)

	now := start.Add(15 * 24 * time.Hour) // 5 days past plan end
	assert.InDelta(t, 0.5, engine.Timeliness(tsk, now), 1e-9)
}

func TestTimeliness_DurationFlooredAtOneDay(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// A zero-length window decays like a one-day plan: 12 days late
	// clamps to the floor rather than staying neutral.
	tsk := plannedTask(t, start, 0)
	acceptAt(t, tsk, 1.0, start.Add(12*24*time.Hour))
	assert.Equal(t, 0.2, engine.Timeliness(tsk, time.Now()))

	// A 6-hour window 6 hours late: overrun 0.25 days against the
	// one-day floor, 1 - 0.25 = 0.75, not 1 - 1.0.
	tsk = plannedTask(t, start, 6*time.Hour)
	acceptAt(t, tsk, 1.0, start.Add(12*time.Hour))
	assert.InDelta(t, 0.75, engine.Timeliness(tsk, time.Now()), 1e-9)
}

func TestTimeliness_NeutralBeforeApproval(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	tsk, err := task.NewTask(uuid.New(), "draft task", task.TypePerformance)
	require.NoError(t, err)
	tsk.SetPlanWindow(&start, &end)

	// Far past the window but never approved: the clock has not started.
	assert.Equal(t, 1.0, engine.Timeliness(tsk, start.Add(90*24*time.Hour)))
}

func TestTimeliness_NeutralWithoutPlanWindow(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	creator := uuid.New()
	tsk, err := task.NewTask(creator, "ad hoc fix", task.TypeDaily)
	require.NoError(t, err)
	require.NoError(t, tsk.Submit(staff(creator)))
	require.NoError(t, tsk.Approve(manager(), value_objects.DefaultCoefficients(), time.Now()))

	assert.Equal(t, 1.0, engine.Timeliness(tsk, time.Now().Add(365*24*time.Hour)))
}

func TestScore_EndToEnd(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Base 10, neutral coefficients, quality 1.0, 2 days late on a
	// 10-day plan, full progress: 10 * 1 * 1 * 1 * 0.8 * 1.0 = 8.0.
	tsk := plannedTask(t, start, 10*24*time.Hour)
	acceptAt(t, tsk, 1.0, start.Add(12*24*time.Hour))

	score := engine.Score(tsk, tsk.Coefficients(), 0, time.Now())
	assert.InDelta(t, 8.0, score, 1e-9)
}

func TestScore_CoefficientsAndQualityMultiply(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tsk := plannedTask(t, start, 10*24*time.Hour)
	acceptAt(t, tsk, 1.2, start.Add(5*24*time.Hour))

	coeff := mustCoeff(t, 1.5, 1.2)
	// 10 * 1.5 * 1.2 * 1.2 * 1.0 * 1.0 = 21.6
	assert.InDelta(t, 21.6, engine.Score(tsk, coeff, 0, time.Now()), 1e-9)
}

func TestScore_PenaltySubtractedAndFlooredAtZero(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tsk := plannedTask(t, start, 10*24*time.Hour)
	acceptAt(t, tsk, 1.0, start.Add(12*24*time.Hour))

	assert.InDelta(t, 3.0, engine.Score(tsk, tsk.Coefficients(), 5.0, time.Now()), 1e-9)
	assert.Equal(t, 0.0, engine.Score(tsk, tsk.Coefficients(), 100.0, time.Now()))
}

func TestScore_ScalesWithProgress(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tsk := plannedTask(t, start, 10*24*time.Hour)
	require.NoError(t, tsk.UpdateProgress(staff(tsk.CreatorID()), 40))

	// Open task within its window: 10 * 1 * 1 * 1 * 1.0 * 0.4 = 4.0.
	now := start.Add(5 * 24 * time.Hour)
	assert.InDelta(t, 4.0, engine.Score(tsk, tsk.Coefficients(), 0, now), 1e-9)
}

func TestScore_FallsBackToConfiguredBase(t *testing.T) {
	engine := services.NewScoringEngine(services.ScoringConfig{
		BaseScore:       20,
		PenaltyFactor:   1.0,
		TimelinessFloor: 0.2,
	})
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tsk := plannedTask(t, start, 10*24*time.Hour)
	acceptAt(t, tsk, 1.0, start.Add(5*24*time.Hour))

	assert.InDelta(t, 20.0, engine.Score(tsk, tsk.Coefficients(), 0, time.Now()), 1e-9)

	tsk.SetBaseScore(5)
	assert.InDelta(t, 5.0, engine.Score(tsk, tsk.Coefficients(), 0, time.Now()), 1e-9)
}

func TestKPIEligible(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())

	assert.True(t, engine.KPIEligible(value_objects.DefaultCoefficients()))
	assert.True(t, engine.KPIEligible(mustCoeff(t, 0.7, 0.8))) // 0.56

	// 0.5 * 1.0 = 0.5 does not exceed the threshold.
	assert.False(t, engine.KPIEligible(mustCoeff(t, 0.5, 1.0)))
}

func TestOverdueRatio(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tsk := plannedTask(t, start, 10*24*time.Hour)

	// Not overdue yet.
	assert.Nil(t, engine.OverdueRatio(tsk, start.Add(9*24*time.Hour)))

	// 5 days past a 10-day plan.
	ratio := engine.OverdueRatio(tsk, start.Add(15*24*time.Hour))
	require.NotNil(t, ratio)
	assert.InDelta(t, 0.5, *ratio, 1e-9)

	// Unbounded: 30 days past.
	ratio = engine.OverdueRatio(tsk, start.Add(40*24*time.Hour))
	require.NotNil(t, ratio)
	assert.InDelta(t, 3.0, *ratio, 1e-9)
}

func TestOverdueRatio_ZeroDurationReturnsRawDays(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tsk := plannedTask(t, start, 0)

	ratio := engine.OverdueRatio(tsk, start.Add(2*24*time.Hour))
	require.NotNil(t, ratio)
	assert.InDelta(t, 2.0, *ratio, 1e-9)
}

func TestOverdueRatio_NilWithoutPlanWindow(t *testing.T) {
	engine := services.NewScoringEngine(services.DefaultScoringConfig())
	tsk, err := task.NewTask(uuid.New(), "no window", task.TypeDaily)
	require.NoError(t, err)

	assert.Nil(t, engine.OverdueRatio(tsk, time.Now()))
}
