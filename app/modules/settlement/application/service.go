package settlementservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gamificationdomain "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/domain"
	gamificationdb "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/infrastructure/repositories"
	settlementdb "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/repositories"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SettlementService orchestrates post-match settlement: it reads match
// facts, runs the XP/milestone/league/ranking machinery per player, and
// lands every staged write in one atomic commit guarded by the settled flag.
type SettlementService struct {
	repo      settlementdb.Repository
	players   gamificationdb.Repository
	league    LeagueUpdater
	ranking   RankingStager
	publisher SummaryPublisher

	db       *bun.DB
	xpConfig gamificationdomain.XpConfig
	clock    sharedtypes.Clock
	logger   *slog.Logger
	metrics  Metrics
	tracer   trace.Tracer

	minPlayers int
	writeCap   int
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	repo settlementdb.Repository,
	players gamificationdb.Repository,
	league LeagueUpdater,
	ranking RankingStager,
	publisher SummaryPublisher,
	db *bun.DB,
	xpConfig gamificationdomain.XpConfig,
	clock sharedtypes.Clock,
	logger *slog.Logger,
	metrics Metrics,
	tracer trace.Tracer,
	minPlayers int,
	writeCap int,
) *SettlementService {
	return &SettlementService{
		repo:       repo,
		players:    players,
		league:     league,
		ranking:    ranking,
		publisher:  publisher,
		db:         db,
		xpConfig:   xpConfig,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		minPlayers: minPlayers,
		writeCap:   writeCap,
	}
}

// withTelemetry wraps an operation with tracing, metrics, and panic recovery.
func (s *SettlementService) withTelemetry(
	ctx context.Context,
	operationName string,
	gameID sharedtypes.GameID,
	op func(ctx context.Context) (SettlementOperationResult, error),
) (result SettlementOperationResult, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("game_id", gameID.String()),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, operationName+" triggered",
		attr.String("operation", operationName),
		attr.GameID("game_id", gameID),
		attr.ExtractCorrelationID(ctx),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.GameID("game_id", gameID),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName)
			span.RecordError(err)
			result = SettlementOperationResult{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.GameID("game_id", gameID),
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
