package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/perfboard/perfboard/adapter/cli"
	cliAppeal "github.com/perfboard/perfboard/adapter/cli/appeal"
	cliCard "github.com/perfboard/perfboard/adapter/cli/card"
	cliTask "github.com/perfboard/perfboard/adapter/cli/task"
	"github.com/perfboard/perfboard/internal/app"
	"github.com/perfboard/perfboard/internal/performance/domain/actor"
	"github.com/perfboard/perfboard/pkg/config"
)

func main() {
	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	// Update logger level based on config
	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	cli.SetLogger(logger)

	container, err := buildContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	}

	if container != nil {
		defer container.Close()

		userID, err := uuid.Parse(cfg.UserID)
		if err != nil {
			logger.Error("invalid PERFBOARD_USER_ID", "error", err)
			os.Exit(1)
		}
		role, err := actor.ParseRole(cfg.UserRole)
		if err != nil {
			logger.Error("invalid PERFBOARD_USER_ROLE", "error", err)
			os.Exit(1)
		}

		cli.SetApp(&cli.App{
			CreateTaskHandler:     container.CreateTaskHandler,
			UpdateTaskHandler:     container.UpdateTaskHandler,
			SubmitTaskHandler:     container.SubmitTaskHandler,
			ApproveTaskHandler:    container.ApproveTaskHandler,
			RejectTaskHandler:     container.RejectTaskHandler,
			ReturnTaskHandler:     container.ReturnTaskHandler,
			WithdrawTaskHandler:   container.WithdrawTaskHandler,
			ReviseTaskHandler:     container.ReviseTaskHandler,
			UpdateProgressHandler: container.UpdateProgressHandler,
			CompleteTaskHandler:   container.CompleteTaskHandler,
			AcceptTaskHandler:     container.AcceptTaskHandler,
			ReviewRejectHandler:   container.ReviewRejectHandler,
			CancelTaskHandler:     container.CancelTaskHandler,
			SuspendTaskHandler:    container.SuspendTaskHandler,
			ResumeTaskHandler:     container.ResumeTaskHandler,
			DeleteTaskHandler:     container.DeleteTaskHandler,

			SubmitAppealHandler: container.SubmitAppealHandler,
			ReviewAppealHandler: container.ReviewAppealHandler,
			ArchiveCardsHandler: container.ArchiveCardsHandler,

			GetTaskHandler:     container.GetTaskHandler,
			ListTasksHandler:   container.ListTasksHandler,
			ListCardsHandler:   container.ListCardsHandler,
			GetAppealHandler:   container.GetAppealHandler,
			ListAppealsHandler: container.ListAppealsHandler,
			LeaderboardHandler: container.LeaderboardHandler,

			OverdueScanner: container.OverdueScanner,

			CurrentActor: actor.Actor{ID: userID, Role: role},
		})
	}

	// Register commands
	cli.AddCommand(cliTask.Cmd)
	cli.AddCommand(cliAppeal.Cmd)
	cli.AddCommand(cliCard.Cmd)

	// Execute CLI
	cli.Execute()
}

// buildContainer prefers local SQLite when configured, otherwise connects
// to PostgreSQL, falling back to local mode in development.
func buildContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.Container, error) {
	if cfg.SQLitePath != "" {
		return app.NewLocalContainer(ctx, cfg, logger)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil && cfg.IsDevelopment() {
		logger.Warn("PostgreSQL not available, falling back to local mode", "error", err)
		cfg.SQLitePath = "perfboard.db"
		return app.NewLocalContainer(ctx, cfg, logger)
	}
	return container, err
}
