package services

import (
	"time"

	"github.com/perfboard/perfboard/internal/performance/domain/task"
	"github.com/perfboard/perfboard/internal/performance/domain/value_objects"
)

// ScoringConfig holds the tunable constants of the scoring formula.
type ScoringConfig struct {
	// BaseScore is the default score assigned to tasks that do not carry
	// an explicit one.
	BaseScore float64

	// PenaltyFactor scales how fast the timeliness factor decays per unit
	// of overrun relative to the planned duration.
	PenaltyFactor float64

	// TimelinessFloor is the lowest value timeliness can decay to.
	TimelinessFloor float64
}

// DefaultScoringConfig returns the scoring constants used when no
// configuration overrides them.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BaseScore:       10,
		PenaltyFactor:   1.0,
		TimelinessFloor: 0.2,
	}
}

// ScoringEngine computes task scores. It is pure: all inputs arrive as
// arguments and the engine holds only configuration.
type ScoringEngine struct {
	cfg ScoringConfig
}

// NewScoringEngine creates a scoring engine with the given constants.
func NewScoringEngine(cfg ScoringConfig) *ScoringEngine {
	return &ScoringEngine{cfg: cfg}
}

// Timeliness computes the timeliness factor for a task.
//
// Tasks without a plan window, or still in a pre-approval status, score a
// neutral 1.0. Otherwise the factor decays linearly with the overrun
// relative to the planned duration, clamped to [floor, 1.0]:
//
//	T = clamp(1 - (overrun/duration) * penaltyFactor, floor, 1.0)
//
// The overrun is measured from the plan end to the actual end, or to now
// for tasks still open. The planned duration is floored at one day so
// zero-length and sub-day windows do not decay faster than a one-day task.
func (e *ScoringEngine) Timeliness(t *task.Task, now time.Time) float64 {
	if t.Status().BeforeApproval() {
		return 1.0
	}
	planStart, planEnd := t.PlanStart(), t.PlanEnd()
	if planStart == nil || planEnd == nil {
		return 1.0
	}

	end := now
	if t.ActualEnd() != nil {
		end = *t.ActualEnd()
	}
	overrun := end.Sub(*planEnd)
	if overrun <= 0 {
		return 1.0
	}

	durationDays := planEnd.Sub(*planStart).Hours() / 24
	if durationDays < 1.0 {
		durationDays = 1.0
	}
	overrunDays := overrun.Hours() / 24

	factor := 1.0 - (overrunDays/durationDays)*e.cfg.PenaltyFactor
	if factor < e.cfg.TimelinessFloor {
		return e.cfg.TimelinessFloor
	}
	return factor
}

// Score computes the final score of a task:
//
//	score = base * importance * difficulty * quality * timeliness * progress/100 - penalty
//
// floored at zero. The quality factor defaults to 1.0 when the task has
// none recorded, and the base score falls back to the configured default
// when the task carries none.
func (e *ScoringEngine) Score(t *task.Task, coeff value_objects.Coefficients, penalty float64, now time.Time) float64 {
	quality := 1.0
	if q := t.Quality(); q != nil {
		quality = q.Value()
	}
	return e.score(t, coeff, quality, penalty, now)
}

// ScoreForReview computes the score a reviewer's quality grade would yield
// before that grade is recorded on the task. Used at acceptance time, where
// the final score and the quality are written together.
func (e *ScoringEngine) ScoreForReview(t *task.Task, coeff value_objects.Coefficients, quality value_objects.Quality, penalty float64, now time.Time) float64 {
	return e.score(t, coeff, quality.Value(), penalty, now)
}

func (e *ScoringEngine) score(t *task.Task, coeff value_objects.Coefficients, quality, penalty float64, now time.Time) float64 {
	base := t.BaseScore()
	if base <= 0 {
		base = e.cfg.BaseScore
	}

	progress := float64(t.Progress()) / 100.0

	score := base*coeff.Product()*quality*e.Timeliness(t, now)*progress - penalty
	if score < 0 {
		return 0
	}
	return score
}

// KPIEligible reports whether a task counts toward KPI aggregation. Trivial
// tasks, where the coefficient product does not exceed 0.5, are excluded.
func (e *ScoringEngine) KPIEligible(coeff value_objects.Coefficients) bool {
	return coeff.Product() > 0.5
}

// OverdueRatio returns the overrun as a fraction of the planned duration,
// or nil when the task has no plan window or is not yet overdue. A
// zero-length window yields the raw overrun in days. The ratio is
// deliberately unbounded so reporting can distinguish a task one day late
// from one a month late.
func (e *ScoringEngine) OverdueRatio(t *task.Task, now time.Time) *float64 {
	planStart, planEnd := t.PlanStart(), t.PlanEnd()
	if planStart == nil || planEnd == nil {
		return nil
	}

	end := now
	if t.ActualEnd() != nil {
		end = *t.ActualEnd()
	}
	overrun := end.Sub(*planEnd)
	if overrun <= 0 {
		return nil
	}

	overrunDays := overrun.Hours() / 24
	durationDays := planEnd.Sub(*planStart).Hours() / 24

	ratio := overrunDays
	if durationDays > 0 {
		ratio = overrunDays / durationDays
	}
	return &ratio
}
