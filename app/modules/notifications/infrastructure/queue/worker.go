package notificationqueue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"
	"golang.org/x/time/rate"

	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
)

// Notifier delivers a single season-closed notification to one player.
// The eventbus adapter satisfies this in production.
type Notifier interface {
	NotifySeasonClosed(ctx context.Context, seasonID sharedtypes.SeasonID, userID sharedtypes.UserID) error
}

// SeasonClosedWorker processes SeasonClosedJob jobs, delivering one
// notification per player under a shared rate limit.
type SeasonClosedWorker struct {
	river.WorkerDefaults[SeasonClosedJob]

	logger   *slog.Logger
	notifier Notifier
	limiter  *rate.Limiter
}

// NewSeasonClosedWorker creates the worker. The limiter is shared across
// jobs so concurrent closures cannot stampede the notifier.
func NewSeasonClosedWorker(logger *slog.Logger, notifier Notifier, limiter *rate.Limiter) *SeasonClosedWorker {
	return &SeasonClosedWorker{
		logger:   logger,
		notifier: notifier,
		limiter:  limiter,
	}
}

// Work delivers the notifications. Individual delivery failures are
// collected rather than aborting the batch, so one unreachable player does
// not force a retry that re-notifies everyone else.
func (w *SeasonClosedWorker) Work(ctx context.Context, job *river.Job[SeasonClosedJob]) error {
	args := job.Args
	ctxLogger := w.logger.With(
		attr.SeasonID("season_id", args.SeasonID),
		attr.Int("recipients", len(args.UserIDs)),
		attr.String("operation", "season_closed_notification"),
	)
	ctxLogger.Info("Delivering season closed notifications")

	var failed int
	for _, userID := range args.UserIDs {
		if err := w.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter interrupted: %w", err)
		}
		if err := w.notifier.NotifySeasonClosed(ctx, args.SeasonID, userID); err != nil {
			failed++
			ctxLogger.Warn("Failed to notify player",
				attr.UserID("user_id", userID),
				attr.Error(err))
		}
	}

	if failed > 0 {
		ctxLogger.Warn("Season closed notifications delivered with failures",
			attr.Int("failed", failed))
	} else {
		ctxLogger.Info("Season closed notifications delivered")
	}
	return nil
}
