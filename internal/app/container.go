// Package app wires configuration, storage and handlers into a running
// application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/perfboard/perfboard/internal/performance/application/commands"
	"github.com/perfboard/perfboard/internal/performance/application/queries"
	"github.com/perfboard/perfboard/internal/performance/application/services"
	"github.com/perfboard/perfboard/internal/performance/domain/appeal"
	"github.com/perfboard/perfboard/internal/performance/domain/card"
	"github.com/perfboard/perfboard/internal/performance/domain/task"
	"github.com/perfboard/perfboard/internal/performance/infrastructure/cache"
	"github.com/perfboard/perfboard/internal/performance/infrastructure/persistence"
	sharedApplication "github.com/perfboard/perfboard/internal/shared/application"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/eventbus"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/migrations"
	"github.com/perfboard/perfboard/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/perfboard/perfboard/internal/shared/infrastructure/persistence"
	"github.com/perfboard/perfboard/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DB       *pgxpool.Pool
	SQLiteDB *sql.DB

	// Redis
	RedisClient *redis.Client

	// Repositories
	TaskRepo   task.Repository
	CardRepo   card.Repository
	AppealRepo appeal.Repository
	LogRepo    task.LogRepository
	OutboxRepo outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Publishers
	EventPublisher eventbus.Publisher

	// Scoring
	ScoringEngine *services.ScoringEngine

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

	// Background workers
	OutboxProcessor *outbox.Processor
	OverdueScanner  *services.OverdueScanner
}

// NewContainer creates a container backed by PostgreSQL, wiring Redis and
// RabbitMQ when available.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	c.DB = pool
	logger.Info("connected to database")

	if err := migrations.RunPostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Redis is optional in development; the leaderboard recomputes on miss.
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				pool.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, leaderboard cache disabled", "error", err)
		} else {
			client := redis.NewClient(opt)
			if err := client.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					pool.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, leaderboard cache disabled", "error", err)
			} else {
				c.RedisClient = client
				logger.Info("connected to Redis")
			}
		}
	}

	c.TaskRepo = persistence.NewPostgresTaskRepository(pool)
	c.CardRepo = persistence.NewPostgresCardRepository(pool)
	c.AppealRepo = persistence.NewPostgresAppealRepository(pool)
	c.LogRepo = persistence.NewPostgresLogRepository(pool)
	c.OutboxRepo = outbox.NewPostgresRepository(pool)
	c.UnitOfWork = sharedPersistence.NewPostgresUnitOfWork(pool)

	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("RabbitMQ not available, using noop publisher")
			c.EventPublisher = eventbus.NewNoopPublisher(logger)
		} else {
			pool.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	} else {
		c.EventPublisher = publisher
	}

	c.wireHandlers()
	return c, nil
}

// NewLocalContainer creates a container for local mode with SQLite. This
// provides zero-config operation without PostgreSQL, Redis or RabbitMQ.
func NewLocalContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	db, err := sharedPersistence.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := migrations.RunSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	c.SQLiteDB = db

	c.TaskRepo = persistence.NewSQLiteTaskRepository(db)
	c.CardRepo = persistence.NewSQLiteCardRepository(db)
	c.AppealRepo = persistence.NewSQLiteAppealRepository(db)
	c.LogRepo = persistence.NewSQLiteLogRepository(db)
	c.OutboxRepo = outbox.NewSQLiteRepository(db)
	c.UnitOfWork = sharedPersistence.NewSQLiteUnitOfWork(db)
	c.EventPublisher = eventbus.NewNoopPublisher(logger)

	c.wireHandlers()
	logger.Info("local mode container initialized", "database", cfg.SQLitePath)
	return c, nil
}

func (c *Container) wireHandlers() {
	cfg := c.Config

	c.ScoringEngine = services.NewScoringEngine(services.ScoringConfig{
		BaseScore:       cfg.BaseScore,
		PenaltyFactor:   cfg.PenaltyFactor,
		TimelinessFloor: cfg.TimelinessFloor,
	})

	c.CreateTaskHandler = commands.NewCreateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.UpdateTaskHandler = commands.NewUpdateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.SubmitTaskHandler = commands.NewSubmitTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.ApproveTaskHandler = commands.NewApproveTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.RejectTaskHandler = commands.NewRejectTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.ReturnTaskHandler = commands.NewReturnTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.WithdrawTaskHandler = commands.NewWithdrawTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.ReviseTaskHandler = commands.NewReviseTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.UpdateProgressHandler = commands.NewUpdateProgressHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.CompleteTaskHandler = commands.NewCompleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.AcceptTaskHandler = commands.NewAcceptTaskHandler(c.TaskRepo, c.CardRepo, c.OutboxRepo, c.UnitOfWork, c.ScoringEngine)
	c.ReviewRejectHandler = commands.NewReviewRejectTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.CancelTaskHandler = commands.NewCancelTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.SuspendTaskHandler = commands.NewSuspendTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.ResumeTaskHandler = commands.NewResumeTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.DeleteTaskHandler = commands.NewDeleteTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)

	c.SubmitAppealHandler = commands.NewSubmitAppealHandler(c.AppealRepo, c.OutboxRepo, c.UnitOfWork)
	c.ReviewAppealHandler = commands.NewReviewAppealHandler(c.AppealRepo, c.CardRepo, c.OutboxRepo, c.UnitOfWork)
	c.ArchiveCardsHandler = commands.NewArchiveCardsHandler(c.CardRepo, c.UnitOfWork)

	var rankingCache queries.RankingCache
	if c.RedisClient != nil {
		rankingCache = cache.NewRedisRankingCache(c.RedisClient)
	}

	c.GetTaskHandler = queries.NewGetTaskHandler(c.TaskRepo, c.LogRepo, c.ScoringEngine)
	c.ListTasksHandler = queries.NewListTasksHandler(c.TaskRepo, c.ScoringEngine)
	c.ListCardsHandler = queries.NewListCardsHandler(c.CardRepo)
	c.GetAppealHandler = queries.NewGetAppealHandler(c.AppealRepo)
	c.ListAppealsHandler = queries.NewListAppealsHandler(c.AppealRepo)
	c.LeaderboardHandler = queries.NewLeaderboardHandler(c.TaskRepo, c.CardRepo, c.ScoringEngine, rankingCache, cfg.LeaderboardCacheTTL)

	processorConfig := outbox.DefaultProcessorConfig()
	processorConfig.PollInterval = cfg.OutboxPollInterval
	processorConfig.BatchSize = cfg.OutboxBatchSize
	processorConfig.MaxRetries = cfg.OutboxMaxRetries
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, c.Logger)

	var notifier services.CardNotifier
	if cfg.WebhookURL != "" {
		notifier = services.NewWebhookNotifier(cfg.WebhookURL, c.Logger)
	}
	c.OverdueScanner = services.NewOverdueScanner(
		c.UnitOfWork,
		c.TaskRepo,
		c.CardRepo,
		c.AppealRepo,
		c.LogRepo,
		c.OutboxRepo,
		notifier,
		services.ScanConfig{
			Interval:            cfg.ScanInterval,
			RedThresholdDays:    cfg.RedThresholdDays,
			RedDeduction:        cfg.RedDeduction,
			YellowDeduction:     cfg.YellowDeduction,
			WarnWindow:          cfg.WarnWindow,
			WarnProgressPercent: cfg.WarnProgress,
			AppealWindow:        cfg.AppealWindow,
		},
		c.Logger,
	)
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OverdueScanner != nil {
		c.OverdueScanner.Stop()
	}
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
		c.Logger.Info("PostgreSQL connection closed")
	}
	if c.SQLiteDB != nil {
		if err := c.SQLiteDB.Close(); err != nil {
			c.Logger.Warn("error closing SQLite connection", "error", err)
		}
	}
}
