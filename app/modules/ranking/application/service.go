package rankingservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rankingdb "github.com/rua-nove-fc/pelada-bot/app/modules/ranking/infrastructure/repositories"
	"github.com/rua-nove-fc/pelada-bot/app/shared/results"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RankingService implements the Service interface.
type RankingService struct {
	repo    rankingdb.Repository
	db      *bun.DB
	logger  *slog.Logger
	metrics Metrics
	tracer  trace.Tracer
}

// NewRankingService creates a new RankingService.
func NewRankingService(
	repo rankingdb.Repository,
	db *bun.DB,
	logger *slog.Logger,
	metrics Metrics,
	tracer trace.Tracer,
) *RankingService {
	return &RankingService{
		repo:    repo,
		db:      db,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

// withTelemetry wraps an operation with tracing, metrics, and panic recovery.
func (s *RankingService) withTelemetry(
	ctx context.Context,
	operationName string,
	userID sharedtypes.UserID,
	op func(ctx context.Context) (RankingOperationResult, error),
) (result RankingOperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("user_id", userID.String()),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.UserID("user_id", userID),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			result = RankingOperationResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.UserID("user_id", userID),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsSuccess() {
		s.metrics.RecordOperationSuccess(ctx, operationName)
	}
	return result, nil
}

// Increment merges counters into one explicit leaderboard window.
func (s *RankingService) Increment(ctx context.Context, period sharedtypes.RankingPeriod, periodKey string, userID sharedtypes.UserID, counters Counters) (RankingOperationResult, error) {
	return s.withTelemetry(ctx, "IncrementRankingDelta", userID, func(ctx context.Context) (RankingOperationResult, error) {
		delta := deltaRow(period, periodKey, userID, counters)
		if err := s.repo.Increment(ctx, s.db, delta); err != nil {
			return results.NewFailure[IncrementSuccess](IncrementFailure{
				UserID: userID,
				Reason: "failed to merge ranking counters",
			}), err
		}
		return results.NewSuccess[IncrementSuccess, IncrementFailure](IncrementSuccess{
			UserID:     userID,
			PeriodKeys: []string{periodKey},
		}), nil
	})
}

// StageCurrentWindows defers week and month increments into a caller-owned
// transaction. No telemetry here; the staged ops run inside someone else's
// operation span.
func (s *RankingService) StageCurrentWindows(userID sharedtypes.UserID, counters Counters, now time.Time) []func(ctx context.Context, tx bun.IDB) error {
	weekRow := deltaRow(sharedtypes.PeriodWeek, PeriodKey(sharedtypes.PeriodWeek, now), userID, counters)
	monthRow := deltaRow(sharedtypes.PeriodMonth, PeriodKey(sharedtypes.PeriodMonth, now), userID, counters)

	return []func(ctx context.Context, tx bun.IDB) error{
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.Increment(ctx, tx, weekRow)
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.repo.Increment(ctx, tx, monthRow)
		},
	}
}

func (s *RankingService) TopByXP(ctx context.Context, period sharedtypes.RankingPeriod, periodKey string, limit int) ([]rankingdb.RankingDelta, error) {
	return s.repo.TopByXP(ctx, period, periodKey, limit)
}

func deltaRow(period sharedtypes.RankingPeriod, periodKey string, userID sharedtypes.UserID, counters Counters) *rankingdb.RankingDelta {
	return &rankingdb.RankingDelta{
		Period:    period,
		PeriodKey: periodKey,
		UserID:    userID,
		Goals:     counters.Goals,
		Assists:   counters.Assists,
		Saves:     counters.Saves,
		XP:        counters.XP,
		Games:     counters.Games,
		Wins:      counters.Wins,
		MvpCount:  counters.MvpCount,
	}
}
