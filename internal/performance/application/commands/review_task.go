package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/application/services"
	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/card"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	"github.com/perfboard/perfboard/internal/performance/domain/value_objects"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
)

// AcceptTaskCommand closes the review with a quality grade. The final score
// is computed from the task's fixed coefficients, the grade, timeliness and
// any unarchived penalties.
type AcceptTaskCommand struct {
	TaskID  uuid.UUID
	Actor   actor.Actor
	Quality float64
}

// AcceptTaskResult reports the computed score.
type AcceptTaskResult struct {
	FinalScore float64
	Penalty    float64
}

// AcceptTaskHandler handles the AcceptTaskCommand.
type AcceptTaskHandler struct {
	taskRepo   task.Repository
	cardRepo   card.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	engine     *services.ScoringEngine
}

// NewAcceptTaskHandler creates a new AcceptTaskHandler.
func NewAcceptTaskHandler(
	taskRepo task.Repository,
	cardRepo card.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	engine *services.ScoringEngine,
) *AcceptTaskHandler {
	return &AcceptTaskHandler{
		taskRepo:   taskRepo,
		cardRepo:   cardRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		engine:     engine,
	}
}

// Handle executes the AcceptTaskCommand.
func (h *AcceptTaskHandler) Handle(ctx context.Context, cmd AcceptTaskCommand) (*AcceptTaskResult, error) {
	var result *AcceptTaskResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		t, err := h.taskRepo.FindByID(txCtx, cmd.TaskID)
		if err != nil {
			return err
		}

		quality, err := value_objects.NewQuality(cmd.Quality)
		if err != nil {
			return err
		}

		penalty, err := h.cardRepo.ActivePenaltyTotal(txCtx, t.ID())
		if err != nil {
			return err
		}

		now := time.Now()
		score := h.engine.ScoreForReview(t, t.Coefficients(), quality, penalty, now)

		if err := t.Accept(cmd.Actor, quality, score, now); err != nil {
			return err
		}
		if err := h.taskRepo.Save(txCtx, t); err != nil {
			return err
		}
		if err := stageEvents(txCtx, h.outboxRepo, cmd.Actor.ID, t); err != nil {
			return err
		}

		result = &AcceptTaskResult{FinalScore: score, Penalty: penalty}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReviewRejectTaskCommand sends a reviewed task back to execution.
type ReviewRejectTaskCommand struct {
	TaskID uuid.UUID
	Actor  actor.Actor
}

// ReviewRejectTaskHandler handles the ReviewRejectTaskCommand.
type ReviewRejectTaskHandler struct {
	taskMutator
}

// NewReviewRejectTaskHandler creates a new ReviewRejectTaskHandler.
func NewReviewRejectTaskHandler(taskRepo task.Repository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork) *ReviewRejectTaskHandler {
	return &ReviewRejectTaskHandler{taskMutator{taskRepo: taskRepo, outboxRepo: outboxRepo, uow: uow}}
}

// Handle executes the ReviewRejectTaskCommand.
func (h *ReviewRejectTaskHandler) Handle(ctx context.Context, cmd ReviewRejectTaskCommand) error {
	return h.mutate(ctx, cmd.TaskID, cmd.Actor.ID, func(t *task.Task) error {
		return t.ReviewReject(cmd.Actor)
	})
}
