// Package notificationevents publishes per-player notifications on the
// event bus for the Discord-facing consumer to deliver.
package notificationevents

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	notificationqueue "github.com/rua-nove-fc/pelada-bot/app/modules/notifications/infrastructure/queue"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/internal/eventbus"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
)

// SeasonClosedNotificationPayloadV1 is one player's season-closed notice.
type SeasonClosedNotificationPayloadV1 struct {
	SeasonID sharedtypes.SeasonID `json:"season_id"`
	UserID   sharedtypes.UserID   `json:"user_id"`
}

// EventNotifier delivers notifications by publishing them on the bus.
type EventNotifier struct {
	bus    eventbus.EventBus
	logger *slog.Logger
}

func NewEventNotifier(bus eventbus.EventBus, logger *slog.Logger) *EventNotifier {
	return &EventNotifier{bus: bus, logger: logger}
}

var _ notificationqueue.Notifier = (*EventNotifier)(nil)

// NotifySeasonClosed publishes one season.closed notice for the player.
func (n *EventNotifier) NotifySeasonClosed(ctx context.Context, seasonID sharedtypes.SeasonID, userID sharedtypes.UserID) error {
	payload, err := json.Marshal(SeasonClosedNotificationPayloadV1{
		SeasonID: seasonID,
		UserID:   userID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal season closed notification: %w", err)
	}

	metadata := map[string]string{
		"season_id": string(seasonID),
		"user_id":   string(userID),
	}

	if err := n.bus.Publish(ctx, eventbus.TopicSeasonClosed, payload, metadata); err != nil {
		return fmt.Errorf("failed to publish season closed notification: %w", err)
	}

	n.logger.DebugContext(ctx, "Published season closed notification",
		attr.SeasonID("season_id", seasonID),
		attr.UserID("user_id", userID))
	return nil
}
