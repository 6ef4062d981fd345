package notificationqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"golang.org/x/time/rate"

	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/config"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
)

// Metrics records queue operation outcomes.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)
}

// QueueService is the contract for the notification dispatcher.
type QueueService interface {
	// EnqueueSeasonClosed queues a fan-out notification job for a closed
	// season. Duplicate enqueues for the same season collapse into one job.
	EnqueueSeasonClosed(ctx context.Context, seasonID sharedtypes.SeasonID, userIDs []sharedtypes.UserID) error
	// HealthCheck verifies the queue's database connection.
	HealthCheck(ctx context.Context) error
	// Start starts job processing.
	Start(ctx context.Context) error
	// Stop drains and stops job processing.
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service schedules and processes notification jobs using River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics Metrics
}

// NewService creates a River-backed notification queue over its own pgx
// pool (River requires pgx, not database/sql).
func NewService(ctx context.Context, dsn string, cfg config.NotificationsConfig, notifier Notifier, logger *slog.Logger, metrics Metrics) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_notification_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service")

	ctxLogger.Info("Initializing notification queue service")

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst)

	workers := river.NewWorkers()
	river.AddWorker(workers, NewSeasonClosedWorker(ctxLogger, notifier, limiter))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			"notifications":    {MaxWorkers: 5},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	service := &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		metrics: metrics,
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service")
	metrics.RecordOperationDuration(ctx, "initialize_service", time.Since(start))

	ctxLogger.Info("Notification queue service initialized successfully")
	return service, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service")

	s.logger.Info("Starting notification queue service")

	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service")
		return fmt.Errorf("failed to start River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "start_service")
	s.metrics.RecordOperationDuration(ctx, "start_service", time.Since(start))

	s.logger.Info("Notification queue service started successfully")
	return nil
}

// Stop stops the River client and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service")

	s.logger.Info("Stopping notification queue service")

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service")
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()

	s.metrics.RecordOperationSuccess(ctx, "stop_service")
	s.metrics.RecordOperationDuration(ctx, "stop_service", time.Since(start))

	s.logger.Info("Notification queue service stopped successfully")
	return nil
}

// EnqueueSeasonClosed queues the fan-out job. ByArgs uniqueness keeps a
// retried closure from double-notifying the same season roster.
func (s *Service) EnqueueSeasonClosed(ctx context.Context, seasonID sharedtypes.SeasonID, userIDs []sharedtypes.UserID) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_season_closed")

	ctxLogger := s.logger.With(
		attr.SeasonID("season_id", seasonID),
		attr.Int("recipients", len(userIDs)),
		attr.String("operation", "enqueue_season_closed"),
	)

	if len(userIDs) == 0 {
		ctxLogger.Info("No recipients for season closed notification, skipping")
		s.metrics.RecordOperationSuccess(ctx, "enqueue_season_closed")
		return nil
	}

	job := SeasonClosedJob{
		SeasonID: seasonID,
		UserIDs:  userIDs,
	}

	jobResult, err := s.client.Insert(ctx, job, &river.InsertOpts{
		Queue: "notifications",
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		ctxLogger.Error("Failed to enqueue season closed job", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "enqueue_season_closed")
		return fmt.Errorf("failed to enqueue season closed job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_season_closed")
	s.metrics.RecordOperationDuration(ctx, "enqueue_season_closed", time.Since(start))

	ctxLogger.Info("Season closed job enqueued",
		attr.Int64("job_id", jobResult.Job.ID))
	return nil
}

// HealthCheck pings the queue's database connection.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("notification queue unhealthy: %w", err)
	}
	return nil
}
