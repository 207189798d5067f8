package queries

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/application/services"
	"github.com/perfboard/perfboard/internal/performance/domain/card"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
)

// LeaderboardEntry is one row of the KPI ranking.
type LeaderboardEntry struct {
	UserID         uuid.UUID `json:"user_id"`
	TotalScore     float64   `json:"total_score"`
	TasksCompleted int       `json:"tasks_completed"`
	PenaltyTotal   float64   `json:"penalty_total"`
}

// RankingCache caches computed leaderboards between scan runs.
type RankingCache interface {
	Get(ctx context.Context, key string) ([]LeaderboardEntry, bool, error)
	Set(ctx context.Context, key string, entries []LeaderboardEntry, ttl time.Duration) error
}

// LeaderboardQuery contains the parameters for the KPI ranking.
type LeaderboardQuery struct {
	Limit int
}

// LeaderboardHandler aggregates completed, KPI-eligible tasks into a
// per-user ranking. Penalties on still-open tasks count against the
// responsible user; penalties on completed tasks are already baked into
// their final scores.
type LeaderboardHandler struct {
	taskRepo task.Repository
	cardRepo card.Repository
	engine   *services.ScoringEngine
	cache    RankingCache
	cacheTTL time.Duration
}

// NewLeaderboardHandler creates a new LeaderboardHandler. Cache may be nil.
func NewLeaderboardHandler(
	taskRepo task.Repository,
	cardRepo card.Repository,
	engine *services.ScoringEngine,
	cache RankingCache,
	cacheTTL time.Duration,
) *LeaderboardHandler {
	return &LeaderboardHandler{
		taskRepo: taskRepo,
		cardRepo: cardRepo,
		engine:   engine,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

const leaderboardCacheKey = "leaderboard"

// Handle executes the LeaderboardQuery.
func (h *LeaderboardHandler) Handle(ctx context.Context, query LeaderboardQuery) ([]LeaderboardEntry, error) {
	if h.cache != nil {
		if entries, ok, err := h.cache.Get(ctx, leaderboardCacheKey); err == nil && ok {
			return truncate(entries, query.Limit), nil
		}
	}

	entries, err := h.compute(ctx)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		_ = h.cache.Set(ctx, leaderboardCacheKey, entries, h.cacheTTL)
	}
	return truncate(entries, query.Limit), nil
}

func (h *LeaderboardHandler) compute(ctx context.Context) ([]LeaderboardEntry, error) {
	completed := task.StatusCompleted
	tasks, err := h.taskRepo.List(ctx, task.Filter{Status: &completed})
	if err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID]*LeaderboardEntry)
	entry := func(userID uuid.UUID) *LeaderboardEntry {
		e, ok := byUser[userID]
		if !ok {
			e = &LeaderboardEntry{UserID: userID}
			byUser[userID] = e
		}
		return e
	}

	countedTasks := make(map[uuid.UUID]bool)
	for _, t := range tasks {
		// Daily tasks are routine work; only performance tasks count
		// toward the ranking.
		if t.TaskType() == task.TypeDaily {
			continue
		}
		if !h.engine.KPIEligible(t.Coefficients()) {
			continue
		}
		score := 0.0
		if t.FinalScore() != nil {
			score = *t.FinalScore()
		}
		e := entry(t.ResponsibleUser())
		e.TotalScore += score
		e.TasksCompleted++
		countedTasks[t.ID()] = true
	}

	// Open-task penalties drag the ranking down immediately rather than
	// waiting for the task to close.
	cards, err := h.cardRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cards {
		if countedTasks[c.TaskID()] || c.PenaltyScore() == 0 {
			continue
		}
		e := entry(c.UserID())
		e.PenaltyTotal += c.PenaltyScore()
		e.TotalScore -= c.PenaltyScore()
		if e.TotalScore < 0 {
			e.TotalScore = 0
		}
	}

	entries := make([]LeaderboardEntry, 0, len(byUser))
	for _, e := range byUser {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].UserID.String() < entries[j].UserID.String()
	})
	return entries, nil
}

func truncate(entries []LeaderboardEntry, limit int) []LeaderboardEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
