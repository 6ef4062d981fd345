package leagueservice

import (
	"context"
	"time"

	leaguedomain "github.com/rua-nove-fc/pelada-bot/app/modules/league/domain"
	"github.com/rua-nove-fc/pelada-bot/app/shared/results"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// MatchSummary is one player's slice of a finished game, as the league
// machine needs it.
type MatchSummary struct {
	Outcome sharedtypes.MatchOutcome
	WasMvp  bool
	Goals   int
	Assists int
}

// LeagueUpdateResult reports one rating/division step.
type LeagueUpdateResult struct {
	UserID      sharedtypes.UserID
	SeasonID    sharedtypes.SeasonID
	OldDivision leaguedomain.Division
	NewDivision leaguedomain.Division
	Rating      float64
	Promoted    bool
	Relegated   bool
}

// LeagueUpdateFailure carries the reason an update was rejected.
type LeagueUpdateFailure struct {
	UserID   sharedtypes.UserID
	SeasonID sharedtypes.SeasonID
	Reason   string
}

// CloseSeasonSuccess reports a completed or already-performed closure.
type CloseSeasonSuccess struct {
	SeasonID         sharedtypes.SeasonID
	AlreadyClosed    bool
	StandingsWritten int
}

// CloseSeasonFailure carries the reason a closure failed.
type CloseSeasonFailure struct {
	SeasonID sharedtypes.SeasonID
	Reason   string
}

type (
	LeagueOperationResult      = results.OperationResult[LeagueUpdateResult, LeagueUpdateFailure]
	CloseSeasonOperationResult = results.OperationResult[CloseSeasonSuccess, CloseSeasonFailure]
)

// Dispatcher queues season-closed notifications for later delivery.
type Dispatcher interface {
	EnqueueSeasonClosed(ctx context.Context, seasonID sharedtypes.SeasonID, userIDs []sharedtypes.UserID) error
}

// Service is the league rating/division state machine over storage.
type Service interface {
	// UpdateLeague applies one match result to a player's season record and
	// commits it on its own.
	UpdateLeague(ctx context.Context, userID sharedtypes.UserID, seasonID sharedtypes.SeasonID, summary MatchSummary) (LeagueOperationResult, error)

	// PrepareMatchUpdate computes the same step but defers the write into a
	// caller-owned transaction, for the settlement commit.
	PrepareMatchUpdate(ctx context.Context, userID sharedtypes.UserID, seasonID sharedtypes.SeasonID, summary MatchSummary) (*LeagueUpdateResult, func(ctx context.Context, tx bun.IDB) error, error)

	// CloseSeason freezes every participation row into a final standing and
	// queues notifications. Idempotent.
	CloseSeason(ctx context.Context, seasonID sharedtypes.SeasonID) (CloseSeasonOperationResult, error)
}

// Metrics is the operation telemetry the service records.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, d time.Duration)
}
