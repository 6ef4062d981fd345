package settlementservice

import (
	"context"
	"time"

	gamificationdomain "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/domain"
	gamificationdb "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/infrastructure/repositories"
	leagueservice "github.com/rua-nove-fc/pelada-bot/app/modules/league/application"
	rankingservice "github.com/rua-nove-fc/pelada-bot/app/modules/ranking/application"
	"github.com/rua-nove-fc/pelada-bot/app/shared/results"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// PlayerResult is one player's share of a settled game.
type PlayerResult struct {
	UserID             sharedtypes.UserID                `json:"user_id"`
	Outcome            sharedtypes.MatchOutcome          `json:"outcome"`
	XPEarned           sharedtypes.XP                    `json:"xp_earned"`
	Breakdown          gamificationdomain.XpBreakdown    `json:"breakdown"`
	NewLevel           sharedtypes.Level                 `json:"new_level"`
	LeveledUp          bool                              `json:"leveled_up"`
	UnlockedMilestones []gamificationdomain.Milestone    `json:"unlocked_milestones,omitempty"`
	Badges             []gamificationdb.BadgeType        `json:"badges,omitempty"`
	LeagueUpdate       *leagueservice.LeagueUpdateResult `json:"league_update,omitempty"`

	// Skipped players had an auxiliary read fail; everyone else settled.
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// GameProcessingResult is the structured outcome of one ProcessGame call.
type GameProcessingResult struct {
	GameID              sharedtypes.GameID `json:"game_id"`
	AlreadyProcessed    bool               `json:"already_processed,omitempty"`
	InsufficientPlayers bool               `json:"insufficient_players,omitempty"`
	PlayerResults       []PlayerResult     `json:"player_results,omitempty"`
}

// ProcessGameFailure carries the reason a settlement failed outright.
type ProcessGameFailure struct {
	GameID sharedtypes.GameID `json:"game_id"`
	Reason string             `json:"reason"`
}

// SettlementOperationResult is the success/failure envelope for ProcessGame.
type SettlementOperationResult = results.OperationResult[GameProcessingResult, ProcessGameFailure]

// LeagueUpdater is the slice of the league service the orchestrator needs.
type LeagueUpdater interface {
	PrepareMatchUpdate(ctx context.Context, userID sharedtypes.UserID, seasonID sharedtypes.SeasonID, summary leagueservice.MatchSummary) (*leagueservice.LeagueUpdateResult, func(ctx context.Context, tx bun.IDB) error, error)
}

// RankingStager is the slice of the ranking service the orchestrator needs.
type RankingStager interface {
	StageCurrentWindows(userID sharedtypes.UserID, counters rankingservice.Counters, now time.Time) []func(ctx context.Context, tx bun.IDB) error
}

// SummaryPublisher emits the post-game summary for downstream UI feedback.
// Fire-and-forget; persisted state never depends on it.
type SummaryPublisher interface {
	PublishGameSettled(ctx context.Context, result GameProcessingResult) error
}

// Service settles finished games.
type Service interface {
	ProcessGame(ctx context.Context, gameID sharedtypes.GameID) (SettlementOperationResult, error)
}

// Metrics is the operation telemetry the service records.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, d time.Duration)
}
