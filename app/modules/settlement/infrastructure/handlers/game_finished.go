// Package settlementhandlers contains the event handlers that drive the
// settlement pipeline from bus messages.
package settlementhandlers

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	settlementservice "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/application"
	settlementevents "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/events"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
)

// Handlers is the contract the router wires against.
type Handlers interface {
	HandleGameFinished(ctx context.Context, payload *settlementevents.GameFinishedPayloadV1) error
}

// GameHandlers drives the settlement service from inbound events.
type GameHandlers struct {
	service settlementservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewGameHandlers(service settlementservice.Service, logger *slog.Logger, tracer trace.Tracer) *GameHandlers {
	return &GameHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

var _ Handlers = (*GameHandlers)(nil)

// HandleGameFinished settles the finished game. A failure result is
// terminal and acked; only transport-level errors are returned so the
// message is retried.
func (h *GameHandlers) HandleGameFinished(ctx context.Context, payload *settlementevents.GameFinishedPayloadV1) error {
	ctx, span := h.tracer.Start(ctx, "handle_game_finished")
	defer span.End()

	ctxLogger := h.logger.With(
		attr.GameID("game_id", payload.GameID),
		attr.ExtractCorrelationID(ctx),
	)

	result, err := h.service.ProcessGame(ctx, payload.GameID)
	if result.IsFailure() {
		ctxLogger.Error("Game settlement failed terminally",
			attr.String("reason", result.Failure.Reason),
			attr.Error(err))
		return nil
	}
	if err != nil {
		ctxLogger.Error("Game settlement errored, message will be retried", attr.Error(err))
		return fmt.Errorf("failed to process game %s: %w", payload.GameID, err)
	}

	if result.Success != nil {
		ctxLogger.Info("Game settled",
			attr.Bool("already_processed", result.Success.AlreadyProcessed),
			attr.Bool("insufficient_players", result.Success.InsufficientPlayers),
			attr.Int("player_results", len(result.Success.PlayerResults)))
	}
	return nil
}
