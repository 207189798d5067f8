package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/internal/performance/domain/value_objects"
	"github.com/perfboard/perfboard/internal/shared/domain"
)

var (
	ErrEmptyTitle         = errors.New("task title cannot be empty")
	ErrTaskDeleted        = errors.New("task is deleted")
	ErrNotPermitted       = errors.New("actor is not permitted to perform this operation")
	ErrInvalidProgress    = errors.New("progress must be between 0 and 100")
	ErrOwnParent          = errors.New("task cannot be its own parent")
	ErrSubtaskDepth       = errors.New("subtasks cannot have their own subtasks")
)

// TransitionError reports a lifecycle operation attempted in the wrong state.
type TransitionError struct {
	Action string
	From   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s task in state %s", e.Action, e.From)
}

func transitionErr(action string, from Status) error {
	return &TransitionError{Action: action, From: from}
}

// Type distinguishes performance-counted tasks from daily chores.
type Type int

const (
	TypePerformance Type = iota
	TypeDaily
)

func (t Type) String() string {
	if t == TypeDaily {
		return "daily"
	}
	return "performance"
}

// ParseType converts a stored string back to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "performance":
		return TypePerformance, nil
	case "daily":
		return TypeDaily, nil
	default:
		return 0, fmt.Errorf("unknown task type: %q", s)
	}
}

// Task is a unit of work tracked through approval, execution and review.
type Task struct {
	domain.BaseAggregateRoot
	creatorID   uuid.UUID
	ownerID     uuid.UUID
	executorID  *uuid.UUID
	leaderID    *uuid.UUID
	parentID    *uuid.UUID
	title       string
	description string
	category    string
	taskType    Type
	status      Status
	coeff       value_objects.Coefficients
	quality     *value_objects.Quality
	planStart   *time.Time
	planEnd     *time.Time
	actualStart *time.Time
	actualEnd   *time.Time
	progress    int
	baseScore   float64
	finalScore  *float64
	deleted     bool
}

// NewTask creates a self-owned task in draft.
func NewTask(creatorID uuid.UUID, title string, taskType Type) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		creatorID:         creatorID,
		ownerID:           creatorID,
		title:             title,
		taskType:          taskType,
		status:            StatusDraft,
		coeff:             value_objects.DefaultCoefficients(),
	}

	t.AddDomainEvent(NewTaskCreated(t.ID(), t.title, t.status.String()))

	return t, nil
}

// NewAssignedTask creates a task assigned to an executor, awaiting their submission.
func NewAssignedTask(creatorID, ownerID, executorID uuid.UUID, title string, taskType Type) (*Task, error) {
	t, err := NewTask(creatorID, title, taskType)
	if err != nil {
		return nil, err
	}
	t.ownerID = ownerID
	t.executorID = &executorID
	t.status = StatusPendingSubmission
	return t, nil
}

// Getters

func (t *Task) CreatorID() uuid.UUID                 { return t.creatorID }
func (t *Task) OwnerID() uuid.UUID                   { return t.ownerID }
func (t *Task) ExecutorID() *uuid.UUID               { return t.executorID }
func (t *Task) LeaderID() *uuid.UUID                 { return t.leaderID }
func (t *Task) ParentID() *uuid.UUID                 { return t.parentID }
func (t *Task) Title() string                        { return t.title }
func (t *Task) Description() string                  { return t.description }
func (t *Task) Category() string                     { return t.category }
func (t *Task) TaskType() Type                       { return t.taskType }
func (t *Task) Status() Status                       { return t.status }
func (t *Task) Coefficients() value_objects.Coefficients { return t.coeff }
func (t *Task) Quality() *value_objects.Quality      { return t.quality }
func (t *Task) PlanStart() *time.Time                { return t.planStart }
func (t *Task) PlanEnd() *time.Time                  { return t.planEnd }
func (t *Task) ActualStart() *time.Time              { return t.actualStart }
func (t *Task) ActualEnd() *time.Time                { return t.actualEnd }
func (t *Task) Progress() int                        { return t.progress }
func (t *Task) BaseScore() float64                   { return t.baseScore }
func (t *Task) FinalScore() *float64                 { return t.finalScore }
func (t *Task) IsDeleted() bool                      { return t.deleted }

// ResponsibleUser resolves who answers for the task's delivery:
// executor first, then owner, then creator.
func (t *Task) ResponsibleUser() uuid.UUID {
	if t.executorID != nil {
		return *t.executorID
	}
	return t.ownerID
}

// ResolveCoefficients returns the effective importance/difficulty pair.
// A subtask always uses its parent's pair; the parent's values override the
// subtask's own entirely, not as a fallback.
func ResolveCoefficients(t *Task, parent *Task) value_objects.Coefficients {
	if t.parentID != nil && parent != nil {
		return parent.coeff
	}
	return t.coeff
}

// Mutators for draft-time attributes

// SetDescription updates the task description.
func (t *Task) SetDescription(description string) {
	t.description = strings.TrimSpace(description)
	t.Touch()
}

// SetCategory updates the task category.
func (t *Task) SetCategory(category string) {
	t.category = strings.TrimSpace(category)
	t.Touch()
}

// SetLeader routes submissions through an intermediate leader approval.
func (t *Task) SetLeader(leaderID *uuid.UUID) {
	t.leaderID = leaderID
	t.Touch()
}

// SetExecutor assigns the user who carries out the task.
func (t *Task) SetExecutor(executorID *uuid.UUID) {
	t.executorID = executorID
	t.Touch()
}

// SetPlanWindow sets the planned start and end timestamps.
func (t *Task) SetPlanWindow(start, end *time.Time) {
	t.planStart = start
	t.planEnd = end
	t.Touch()
}

// SetBaseScore sets the workload base. Values <= 0 mean "use the global default".
func (t *Task) SetBaseScore(base float64) {
	t.baseScore = base
	t.Touch()
}

// SetParent links the task under a parent task.
func (t *Task) SetParent(parent *Task) error {
	if parent.ID() == t.ID() {
		return ErrOwnParent
	}
	if parent.parentID != nil {
		return ErrSubtaskDepth
	}
	id := parent.ID()
	t.parentID = &id
	t.Touch()
	return nil
}

// Lifecycle transitions. Every guard is a synchronous precondition check
// with no side effect on failure.

// Submit moves a draft into the approval pipeline. Only the creator, owner
// or executor may submit. Tasks with a leader go through leader approval first.
func (t *Task) Submit(by actor.Actor) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status != StatusDraft && t.status != StatusPendingSubmission {
		return transitionErr("submit", t.status)
	}
	if !t.isParticipant(by.ID) {
		return ErrNotPermitted
	}

	if t.leaderID != nil {
		t.status = StatusPendingLeaderApproval
	} else {
		t.status = StatusPendingApproval
	}
	t.Touch()
	t.AddDomainEvent(NewTaskSubmitted(t.ID(), t.status.String()))
	return nil
}

// LeaderApprove forwards a leader-routed submission to final approval.
func (t *Task) LeaderApprove(by actor.Actor) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status != StatusPendingLeaderApproval {
		return transitionErr("leader-approve", t.status)
	}
	if t.leaderID == nil || by.ID != *t.leaderID {
		return ErrNotPermitted
	}

	t.status = StatusPendingApproval
	t.Touch()
	return nil
}

// Approve puts the task into execution, fixing its coefficients and
// recording the actual start.
func (t *Task) Approve(by actor.Actor, coeff value_objects.Coefficients, now time.Time) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status != StatusPendingApproval {
		return transitionErr("approve", t.status)
	}
	if !by.Role.IsManagerial() {
		return ErrNotPermitted
	}

	start := now.UTC()
	t.coeff = coeff
	t.actualStart = &start
	t.status = StatusInProgress
	t.Touch()
	t.AddDomainEvent(NewTaskApproved(t.ID(), coeff.Importance(), coeff.Difficulty()))
	return nil
}

// Reject refuses a submission. Valid from either approval queue; the leader
// may reject their own queue, approvers may reject both.
func (t *Task) Reject(by actor.Actor) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	switch t.status {
	case StatusPendingLeaderApproval:
		leaderMatch := t.leaderID != nil && by.ID == *t.leaderID
		if !leaderMatch && !by.Role.IsManagerial() {
			return ErrNotPermitted
		}
	case StatusPendingApproval:
		if !by.Role.IsManagerial() {
			return ErrNotPermitted
		}
	default:
		return transitionErr("reject", t.status)
	}

	t.status = StatusRejected
	t.Touch()
	t.AddDomainEvent(NewTaskRejected(t.ID()))
	return nil
}

// Return sends a submission back to draft for rework. Approver operation.
func (t *Task) Return(by actor.Actor) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status != StatusPendingApproval {
		return transitionErr("return", t.status)
	}
	if !by.Role.IsManagerial() {
		return ErrNotPermitted
	}

	t.status = StatusDraft
	t.Touch()
	return nil
}

// Withdraw pulls a submission back to draft. Creator or owner only.
func (t *Task) Withdraw(by actor.Actor) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status != StatusPendingApproval {
		return transitionErr("withdraw", t.status)
	}
	if by.ID != t.creatorID && by.ID != t.ownerID {
		return ErrNotPermitted
	}

	t.status = StatusDraft
	t.Touch()
	return nil
}

// Revise reopens a rejected task as a draft.
func (t *Task) Revise(by actor.Actor) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status != StatusRejected {
		return transitionErr("revise", t.status)
	}
	if !t.isParticipant(by.ID) {
		return ErrNotPermitted
	}

	t.status = StatusDraft
	t.Touch()
	return nil
}

// UpdateProgress records completion percent while the task is executing.
func (t *Task) UpdateProgress(by actor.Actor, progress int) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status != StatusInProgress {
		return transitionErr("update progress of", t.status)
	}
	if !t.isParticipant(by.ID) {
		return ErrNotPermitted
	}
	if progress < 0 || progress > 100 {
		return ErrInvalidProgress
	}

	t.progress = progress
	t.Touch()
	return nil
}

// Complete hands the task over for review, claiming the work done.
func (t *Task) Complete(by actor.Actor) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status != StatusInProgress {
		return transitionErr("complete", t.status)
	}
	if !t.isParticipant(by.ID) {
		return ErrNotPermitted
	}

	t.progress = 100
	t.status = StatusPendingReview
	t.Touch()
	t.AddDomainEvent(NewTaskCompleted(t.ID()))
	return nil
}

// Accept finishes the review, recording the actual end, the reviewer's
// quality coefficient and the computed final score.
func (t *Task) Accept(by actor.Actor, quality value_objects.Quality, finalScore float64, now time.Time) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status != StatusPendingReview {
		return transitionErr("accept", t.status)
	}
	if !by.Role.IsManagerial() {
		return ErrNotPermitted
	}

	end := now.UTC()
	t.actualEnd = &end
	t.quality = &quality
	t.finalScore = &finalScore
	t.progress = 100
	t.status = StatusCompleted
	t.Touch()
	t.AddDomainEvent(NewTaskAccepted(t.ID(), finalScore))
	return nil
}

// ReviewReject sends the task back to execution. Progress and the plan
// window are untouched, so elapsed time keeps accruing against the plan.
func (t *Task) ReviewReject(by actor.Actor) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status != StatusPendingReview {
		return transitionErr("review-reject", t.status)
	}
	if !by.Role.IsManagerial() {
		return ErrNotPermitted
	}

	t.status = StatusInProgress
	t.Touch()
	return nil
}

// Cancel terminally abandons a task from any non-terminal state.
func (t *Task) Cancel(by actor.Actor) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status.IsTerminal() {
		return transitionErr("cancel", t.status)
	}
	if by.ID != t.creatorID && by.ID != t.ownerID && !by.Role.IsManagerial() {
		return ErrNotPermitted
	}

	t.status = StatusCancelled
	t.Touch()
	t.AddDomainEvent(NewTaskCancelled(t.ID()))
	return nil
}

// Suspend pauses an executing task.
func (t *Task) Suspend(by actor.Actor) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status != StatusInProgress {
		return transitionErr("suspend", t.status)
	}
	if !t.isParticipant(by.ID) && !by.Role.IsManagerial() {
		return ErrNotPermitted
	}

	t.status = StatusSuspended
	t.Touch()
	return nil
}

// Resume returns a suspended task to execution.
func (t *Task) Resume(by actor.Actor) error {
	if t.deleted {
		return ErrTaskDeleted
	}
	if t.status != StatusSuspended {
		return transitionErr("resume", t.status)
	}
	if !t.isParticipant(by.ID) && !by.Role.IsManagerial() {
		return ErrNotPermitted
	}

	t.status = StatusInProgress
	t.Touch()
	return nil
}

// MarkDeleted soft-deletes the task. The row survives; listings exclude it
// unless the caller opts in.
func (t *Task) MarkDeleted(by actor.Actor) error {
	if by.ID != t.creatorID && by.ID != t.ownerID && !by.Role.IsManagerial() {
		return ErrNotPermitted
	}
	if t.deleted {
		return nil // idempotent
	}
	t.deleted = true
	t.Touch()
	return nil
}

func (t *Task) isParticipant(id uuid.UUID) bool {
	if id == t.creatorID || id == t.ownerID {
		return true
	}
	return t.executorID != nil && id == *t.executorID
}
