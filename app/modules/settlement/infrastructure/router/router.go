// Package settlementrouter wires the settlement handlers onto a watermill
// router with the shared middleware stack.
package settlementrouter

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	settlementevents "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/events"
	settlementhandlers "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/handlers"
	"github.com/rua-nove-fc/pelada-bot/internal/eventbus"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
)

const gameFinishedHandlerName = "settlement.game.finished"

// SettlementRouter owns the watermill router for the settlement module.
type SettlementRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     message.Subscriber
	metricsBuilder *metrics.PrometheusMetricsBuilder
	metricsEnabled bool
}

// NewSettlementRouter builds the router wrapper. Router metrics are only
// registered when a registry is provided outside the test environment.
func NewSettlementRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	prometheusRegistry *prometheus.Registry,
	environment string,
) *SettlementRouter {
	metricsEnabled := prometheusRegistry != nil && environment != "test"

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if metricsEnabled {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &SettlementRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		metricsBuilder: metricsBuilder,
		metricsEnabled: metricsEnabled,
	}
}

// Configure installs middleware and registers the game.finished handler.
func (r *SettlementRouter) Configure(ctx context.Context, handlers settlementhandlers.Handlers) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      5,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     30 * time.Second,
			Multiplier:      2,
			Logger:          watermill.NopLogger{},
		}.Middleware,
	)

	r.Router.AddNoPublisherHandler(
		gameFinishedHandlerName,
		eventbus.TopicGameFinished,
		r.subscriber,
		r.handleGameFinished(handlers),
	)
	return nil
}

// handleGameFinished decodes the payload and hands it to the handler.
// Malformed messages are dropped rather than retried.
func (r *SettlementRouter) handleGameFinished(handlers settlementhandlers.Handlers) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var payload settlementevents.GameFinishedPayloadV1
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			r.logger.Error("Dropping malformed game finished message",
				attr.String("message_uuid", msg.UUID),
				attr.Error(err))
			return nil
		}
		if payload.GameID == "" {
			r.logger.Error("Dropping game finished message without game id",
				attr.String("message_uuid", msg.UUID))
			return nil
		}

		id := middleware.MessageCorrelationID(msg)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := attr.WithCorrelationID(msg.Context(), id)
		return handlers.HandleGameFinished(ctx, &payload)
	}
}

// Close stops the watermill router.
func (r *SettlementRouter) Close() error {
	return r.Router.Close()
}
