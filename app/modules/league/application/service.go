package leagueservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	leaguedomain "github.com/rua-nove-fc/pelada-bot/app/modules/league/domain"
	leaguedb "github.com/rua-nove-fc/pelada-bot/app/modules/league/infrastructure/repositories"
	"github.com/rua-nove-fc/pelada-bot/app/shared/results"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LeagueService implements the Service interface.
type LeagueService struct {
	repo     leaguedb.Repository
	db       *bun.DB
	strategy leaguedomain.DivisionStrategy
	notifier Dispatcher
	clock    sharedtypes.Clock
	logger   *slog.Logger
	metrics  Metrics
	tracer   trace.Tracer

	// maxOpsPerCommit bounds season-closure chunk size.
	maxOpsPerCommit int
}

// NewLeagueService creates a new LeagueService.
func NewLeagueService(
	repo leaguedb.Repository,
	db *bun.DB,
	strategy leaguedomain.DivisionStrategy,
	notifier Dispatcher,
	clock sharedtypes.Clock,
	logger *slog.Logger,
	metrics Metrics,
	tracer trace.Tracer,
	maxOpsPerCommit int,
) *LeagueService {
	return &LeagueService{
		repo:            repo,
		db:              db,
		strategy:        strategy,
		notifier:        notifier,
		clock:           clock,
		logger:          logger,
		metrics:         metrics,
		tracer:          tracer,
		maxOpsPerCommit: maxOpsPerCommit,
	}
}

// withTelemetry wraps an operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *LeagueService,
	ctx context.Context,
	operationName string,
	seasonID sharedtypes.SeasonID,
	op func(ctx context.Context) (results.OperationResult[S, F], error),
) (result results.OperationResult[S, F], err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("season_id", seasonID.String()),
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
				attr.SeasonID("season_id", seasonID),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.SeasonID("season_id", seasonID),
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
