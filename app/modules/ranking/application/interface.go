package rankingservice

import (
	"context"
	"time"

	rankingdb "github.com/rua-nove-fc/pelada-bot/app/modules/ranking/infrastructure/repositories"
	"github.com/rua-nove-fc/pelada-bot/app/shared/results"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// Counters is one settlement's contribution to a player's leaderboard
// windows. Every field is additive.
type Counters struct {
	Goals    int64
	Assists  int64
	Saves    int64
	XP       sharedtypes.XP
	Games    int64
	Wins     int64
	MvpCount int64
}

// IncrementSuccess reports which window keys the counters were merged into.
type IncrementSuccess struct {
	UserID     sharedtypes.UserID
	PeriodKeys []string
}

// IncrementFailure carries the reason an increment was rejected.
type IncrementFailure struct {
	UserID sharedtypes.UserID
	Reason string
}

// RankingOperationResult is the success/failure envelope for ranking ops.
type RankingOperationResult = results.OperationResult[IncrementSuccess, IncrementFailure]

// Service maintains the rolling week/month leaderboard counters.
type Service interface {
	// Increment merges counters into one explicit window.
	Increment(ctx context.Context, period sharedtypes.RankingPeriod, periodKey string, userID sharedtypes.UserID, counters Counters) (RankingOperationResult, error)

	// StageCurrentWindows returns deferred writes that merge counters into
	// the current week and month windows, for a caller-owned atomic commit.
	StageCurrentWindows(userID sharedtypes.UserID, counters Counters, now time.Time) []func(ctx context.Context, tx bun.IDB) error

	TopByXP(ctx context.Context, period sharedtypes.RankingPeriod, periodKey string, limit int) ([]rankingdb.RankingDelta, error)
}

// Metrics is the operation telemetry the service records.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, d time.Duration)
}
