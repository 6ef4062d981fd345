// Package settlementevents defines the settlement module's wire payloads
// and its event bus publisher.
package settlementevents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	settlementservice "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/application"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/internal/eventbus"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
)

// GameFinishedPayloadV1 is the inbound trigger for settlement. Anything
// that finishes a game publishes this on game.finished.
type GameFinishedPayloadV1 struct {
	GameID sharedtypes.GameID `json:"game_id"`
}

// Publisher emits settlement summaries on the event bus.
type Publisher struct {
	bus    eventbus.EventBus
	logger *slog.Logger
}

func NewPublisher(bus eventbus.EventBus, logger *slog.Logger) *Publisher {
	return &Publisher{bus: bus, logger: logger}
}

var _ settlementservice.SummaryPublisher = (*Publisher)(nil)

// PublishGameSettled publishes the full per-player settlement summary on
// game.settled for downstream consumers (Discord bot, stats pages).
func (p *Publisher) PublishGameSettled(ctx context.Context, result settlementservice.GameProcessingResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal game settled payload: %w", err)
	}

	metadata := map[string]string{
		"game_id": string(result.GameID),
	}
	if id := attr.ExtractCorrelationID(ctx).Value.String(); id != "" {
		metadata["correlation_id"] = id
	}

	if err := p.bus.Publish(ctx, eventbus.TopicGameSettled, payload, metadata); err != nil {
		return fmt.Errorf("failed to publish game settled event: %w", err)
	}

	p.logger.InfoContext(ctx, "Published game settled event",
		attr.GameID("game_id", result.GameID),
		attr.Int("player_results", len(result.PlayerResults)))
	return nil
}
