package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	gamificationdomain "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/domain"
	leagueservice "github.com/rua-nove-fc/pelada-bot/app/modules/league/application"
	leaguedomain "github.com/rua-nove-fc/pelada-bot/app/modules/league/domain"
	notificationevents "github.com/rua-nove-fc/pelada-bot/app/modules/notifications/infrastructure/events"
	notificationqueue "github.com/rua-nove-fc/pelada-bot/app/modules/notifications/infrastructure/queue"
	rankingservice "github.com/rua-nove-fc/pelada-bot/app/modules/ranking/application"
	settlementservice "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/application"
	settlementevents "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/events"
	settlementhandlers "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/handlers"
	settlementrouter "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/router"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/config"
	"github.com/rua-nove-fc/pelada-bot/db/bundb"
	"github.com/rua-nove-fc/pelada-bot/internal/eventbus"
	"github.com/rua-nove-fc/pelada-bot/internal/observability"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
)

// App owns every long-lived component of the settlement service.
type App struct {
	Config            *config.Config
	Logger            *slog.Logger
	Registry          *prometheus.Registry
	EventBus          *eventbus.JetStreamEventBus
	WatermillRouter   *message.Router
	SettlementRouter  *settlementrouter.SettlementRouter
	NotificationQueue *notificationqueue.Service

	RankingService    *rankingservice.RankingService
	LeagueService     *leagueservice.LeagueService
	SettlementService *settlementservice.SettlementService

	db            *bundb.DBService
	tracer        trace.Tracer
	metricsServer *http.Server
}

// Initialize builds the full dependency graph: database, event bus,
// notification queue, services, routers, and the metrics server.
func (app *App) Initialize(ctx context.Context, cfg *config.Config) error {
	app.Config = cfg
	app.Logger = observability.NewLogger(cfg.Observability.Environment, slog.LevelInfo)
	app.tracer = otel.Tracer("pelada-bot")

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("failed to initialize database service: %w", err)
	}
	app.db = dbService

	bus, err := eventbus.NewJetStreamEventBus(cfg.NATS.URL, watermill.NewSlogLogger(app.Logger))
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}
	app.EventBus = bus

	clock := sharedtypes.RealClock{}

	app.RankingService = rankingservice.NewRankingService(
		dbService.RankingDB,
		dbService.GetDB(),
		app.Logger,
		observability.NewOperationMetrics(app.Registry, "ranking"),
		app.tracer,
	)

	notifier := notificationevents.NewEventNotifier(bus, app.Logger)
	app.NotificationQueue, err = notificationqueue.NewService(
		ctx,
		cfg.Postgres.DSN,
		cfg.Notifications,
		notifier,
		app.Logger,
		observability.NewOperationMetrics(app.Registry, "notifications"),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize notification queue: %w", err)
	}

	app.LeagueService = leagueservice.NewLeagueService(
		dbService.LeagueDB,
		dbService.GetDB(),
		leaguedomain.DirectStrategy{},
		app.NotificationQueue,
		clock,
		app.Logger,
		observability.NewOperationMetrics(app.Registry, "league"),
		app.tracer,
		cfg.Storage.MaxOpsPerCommit,
	)

	app.SettlementService = settlementservice.NewSettlementService(
		dbService.SettlementDB,
		dbService.GamificationDB,
		app.LeagueService,
		app.RankingService,
		settlementevents.NewPublisher(bus, app.Logger),
		dbService.GetDB(),
		xpConfigFromSettings(cfg.Gamification),
		clock,
		app.Logger,
		observability.NewOperationMetrics(app.Registry, "settlement"),
		app.tracer,
		cfg.Settlement.MinPlayers,
		cfg.Storage.MaxOpsPerCommit,
	)

	if err := bus.EnsureTopic(eventbus.TopicGameFinished); err != nil {
		return fmt.Errorf("failed to provision game.finished: %w", err)
	}

	wmRouter, err := message.NewRouter(
		message.RouterConfig{CloseTimeout: 30 * time.Second},
		watermill.NewSlogLogger(app.Logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create watermill router: %w", err)
	}
	app.WatermillRouter = wmRouter

	app.SettlementRouter = settlementrouter.NewSettlementRouter(
		app.Logger,
		wmRouter,
		bus.WatermillSubscriber(),
		app.Registry,
		cfg.Observability.Environment,
	)
	handlers := settlementhandlers.NewGameHandlers(app.SettlementService, app.Logger, app.tracer)
	if err := app.SettlementRouter.Configure(ctx, handlers); err != nil {
		return fmt.Errorf("failed to configure settlement router: %w", err)
	}

	app.metricsServer = newMetricsServer(cfg.Observability.MetricsAddress, app.Registry, app.NotificationQueue)
	return nil
}

// Run starts the notification queue, the metrics server, and the watermill
// router. It blocks until the context is cancelled or the router stops.
func (app *App) Run(ctx context.Context) error {
	if err := app.NotificationQueue.Start(ctx); err != nil {
		return fmt.Errorf("failed to start notification queue: %w", err)
	}

	go func() {
		app.Logger.Info("Serving metrics", attr.String("address", app.metricsServer.Addr))
		if err := app.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Error("Metrics server failed", attr.Error(err))
		}
	}()

	app.Logger.Info("Starting settlement router")
	return app.WatermillRouter.Run(ctx)
}

// Close shuts everything down in reverse dependency order.
func (app *App) Close(ctx context.Context) {
	if app.SettlementRouter != nil {
		if err := app.SettlementRouter.Close(); err != nil {
			app.Logger.Error("Failed to close settlement router", attr.Error(err))
		}
	}
	if app.NotificationQueue != nil {
		if err := app.NotificationQueue.Stop(ctx); err != nil {
			app.Logger.Error("Failed to stop notification queue", attr.Error(err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			app.Logger.Error("Failed to close event bus", attr.Error(err))
		}
	}
	if app.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.metricsServer.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("Failed to shut down metrics server", attr.Error(err))
		}
	}
	if app.db != nil {
		if err := app.db.GetDB().Close(); err != nil {
			app.Logger.Error("Failed to close database", attr.Error(err))
		}
	}
}

// DB returns the database service.
func (app *App) DB() *bundb.DBService {
	return app.db
}

func newMetricsServer(addr string, registry *prometheus.Registry, queue *notificationqueue.Service) *http.Server {
	mux := chi.NewRouter()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := queue.HealthCheck(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// xpConfigFromSettings maps config overrides onto the XP rate table. Zero
// fields keep the built-in defaults.
func xpConfigFromSettings(cfg config.GamificationConfig) gamificationdomain.XpConfig {
	return gamificationdomain.XpConfig{
		PresenceXP:         sharedtypes.XP(cfg.PresenceXP),
		GoalXP:             sharedtypes.XP(cfg.GoalXP),
		AssistXP:           sharedtypes.XP(cfg.AssistXP),
		SaveXP:             sharedtypes.XP(cfg.SaveXP),
		WinXP:              sharedtypes.XP(cfg.WinXP),
		DrawXP:             sharedtypes.XP(cfg.DrawXP),
		MvpXP:              sharedtypes.XP(cfg.MvpXP),
		BestGoalXP:         sharedtypes.XP(cfg.BestGoalXP),
		CleanSheetXP:       sharedtypes.XP(cfg.CleanSheetXP),
		WorstPlayerPenalty: sharedtypes.XP(cfg.WorstPlayerPenalty),
	}
}
