package cli

import (
	"github.com/perfboard/perfboard/internal/performance/application/commands"
	"github.com/perfboard/perfboard/internal/performance/application/queries"
	"github.com/perfboard/perfboard/internal/performance/application/services"
	"github.com/perfboard/perfboard/internal/performance/domain/actor"
)

// App holds the CLI application dependencies.
type App struct {
	// Task command handlers
	CreateTaskHandler     *commands.CreateTaskHandler
	UpdateTaskHandler     *commands.UpdateTaskHandler
	SubmitTaskHandler     *commands.SubmitTaskHandler
	ApproveTaskHandler    *commands.ApproveTaskHandler
	RejectTaskHandler     *commands.RejectTaskHandler
	ReturnTaskHandler     *commands.ReturnTaskHandler
	WithdrawTaskHandler   *commands.WithdrawTaskHandler
	ReviseTaskHandler     *commands.ReviseTaskHandler
	UpdateProgressHandler *commands.UpdateProgressHandler
	CompleteTaskHandler   *commands.CompleteTaskHandler
	AcceptTaskHandler     *commands.AcceptTaskHandler
	ReviewRejectHandler   *commands.ReviewRejectTaskHandler
	CancelTaskHandler     *commands.CancelTaskHandler
	SuspendTaskHandler    *commands.SuspendTaskHandler
	ResumeTaskHandler     *commands.ResumeTaskHandler
	DeleteTaskHandler     *commands.DeleteTaskHandler

	// Appeal and card command handlers
	SubmitAppealHandler *commands.SubmitAppealHandler
	ReviewAppealHandler *commands.ReviewAppealHandler
	ArchiveCardsHandler *commands.ArchiveCardsHandler

	// Query handlers
	GetTaskHandler     *queries.GetTaskHandler
	ListTasksHandler   *queries.ListTasksHandler
	ListCardsHandler   *queries.ListCardsHandler
	GetAppealHandler   *queries.GetAppealHandler
	ListAppealsHandler *queries.ListAppealsHandler
	LeaderboardHandler *queries.LeaderboardHandler

	// Background scan, exposed for one-shot runs
	OverdueScanner *services.OverdueScanner

	// CurrentActor is the user all commands act as, resolved from config.
	CurrentActor actor.Actor
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
