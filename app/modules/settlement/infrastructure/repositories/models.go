package settlementdb

import (
	"time"

	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// GameStatus is the lifecycle state of a scheduled game.
type GameStatus string

const (
	GameStatusScheduled GameStatus = "SCHEDULED"
	GameStatusFinished  GameStatus = "FINISHED"
	GameStatusCancelled GameStatus = "CANCELLED"
)

// TeamEntry is one drafted team of a game, embedded in the game record.
type TeamEntry struct {
	ID      sharedtypes.TeamID   `json:"id"`
	Name    string               `json:"name"`
	Score   *int                 `json:"score"`
	Players []sharedtypes.UserID `json:"players"`
}

// PlayerStatLine is the per-player box score recorded for a game.
type PlayerStatLine struct {
	UserID        sharedtypes.UserID `json:"user_id"`
	Goals         int                `json:"goals"`
	Assists       int                `json:"assists"`
	Saves         int                `json:"saves"`
	YellowCards   int                `json:"yellow_cards"`
	RedCards      int                `json:"red_cards"`
	Goalkeeper    bool               `json:"goalkeeper"`
	GoalsConceded int                `json:"goals_conceded"`
}

// Game is the persisted game record. Everything the settlement pipeline
// needs to read is on this row or in the confirmations/live score tables.
type Game struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID         sharedtypes.GameID   `bun:"id,pk"`
	SeasonID   sharedtypes.SeasonID `bun:"season_id,notnull"`
	Status     GameStatus           `bun:"status,notnull"`
	Settled    bool                 `bun:"settled,notnull,default:false"`
	MvpID      sharedtypes.UserID   `bun:"mvp_id,nullzero"`
	BestGoalID sharedtypes.UserID   `bun:"best_goal_id,nullzero"`
	WorstID    sharedtypes.UserID   `bun:"worst_id,nullzero"`
	Teams      []TeamEntry          `bun:"teams,type:jsonb"`
	Stats      []PlayerStatLine     `bun:"stats,type:jsonb"`
	PlayedAt   time.Time            `bun:"played_at,nullzero"`
	CreatedAt  time.Time            `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time            `bun:",nullzero,notnull,default:current_timestamp"`
}

// Confirmation is one player's attendance confirmation for a game. Counted
// flips when a settlement has credited the confirmation, and the earned XP
// and MVP flag are written back for display.
type Confirmation struct {
	bun.BaseModel `bun:"table:game_confirmations,alias:gc"`

	GameID    sharedtypes.GameID `bun:"game_id,pk"`
	UserID    sharedtypes.UserID `bun:"user_id,pk"`
	Counted   bool               `bun:"counted,notnull,default:false"`
	XPEarned  sharedtypes.XP     `bun:"xp_earned,notnull,default:0"`
	WasMvp    bool               `bun:"was_mvp,notnull,default:false"`
	CreatedAt time.Time          `bun:",nullzero,notnull,default:current_timestamp"`
}

// ConfirmationCredit is the settlement result written back onto one
// confirmation row.
type ConfirmationCredit struct {
	UserID   sharedtypes.UserID
	XPEarned sharedtypes.XP
	WasMvp   bool
}

// LiveScore is the authoritative running score keyed by team, when one was
// kept during the game. Absent for games scored only per-team afterwards.
type LiveScore struct {
	bun.BaseModel `bun:"table:live_scores,alias:ls"`

	GameID    sharedtypes.GameID         `bun:"game_id,pk"`
	Scores    map[sharedtypes.TeamID]int `bun:"scores,type:jsonb"`
	Final     bool                       `bun:"final,notnull,default:false"`
	UpdatedAt time.Time                  `bun:",nullzero,notnull,default:current_timestamp"`
}
