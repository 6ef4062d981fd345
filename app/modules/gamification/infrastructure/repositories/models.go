package gamificationdb

import (
	"time"

	gamificationdomain "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/domain"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// Player holds a user's progression state.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID                 sharedtypes.UserID `bun:"id,pk"`
	XP                 sharedtypes.XP     `bun:"xp,notnull,default:0"`
	Level              sharedtypes.Level  `bun:"level,notnull,default:1"`
	MilestonesAchieved []string           `bun:"milestones_achieved,type:jsonb"`
	CreatedAt          time.Time          `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt          time.Time          `bun:",nullzero,notnull,default:current_timestamp"`
}

// PlayerStats is a user's lifetime cumulative box-score counters.
type PlayerStats struct {
	bun.BaseModel `bun:"table:player_statistics,alias:ps"`

	UserID      sharedtypes.UserID `bun:"user_id,pk"`
	Games       int64              `bun:"games,notnull,default:0"`
	Goals       int64              `bun:"goals,notnull,default:0"`
	Assists     int64              `bun:"assists,notnull,default:0"`
	Saves       int64              `bun:"saves,notnull,default:0"`
	Wins        int64              `bun:"wins,notnull,default:0"`
	Draws       int64              `bun:"draws,notnull,default:0"`
	Losses      int64              `bun:"losses,notnull,default:0"`
	YellowCards int64              `bun:"yellow_cards,notnull,default:0"`
	RedCards    int64              `bun:"red_cards,notnull,default:0"`
	MvpCount    int64              `bun:"mvp_count,notnull,default:0"`
	WorstCount  int64              `bun:"worst_count,notnull,default:0"`
	BestStreak  int64              `bun:"best_streak,notnull,default:0"`
	UpdatedAt   time.Time          `bun:",nullzero,notnull,default:current_timestamp"`
}

// Cumulative converts the row into the domain stats shape the milestone
// checker consumes.
func (s *PlayerStats) Cumulative() gamificationdomain.CumulativeStats {
	return gamificationdomain.CumulativeStats{
		Games:       s.Games,
		Goals:       s.Goals,
		Assists:     s.Assists,
		Saves:       s.Saves,
		Wins:        s.Wins,
		Draws:       s.Draws,
		Losses:      s.Losses,
		YellowCards: s.YellowCards,
		RedCards:    s.RedCards,
		MvpCount:    s.MvpCount,
		WorstCount:  s.WorstCount,
		BestStreak:  s.BestStreak,
	}
}

// Streak tracks consecutive playing days for one user.
type Streak struct {
	bun.BaseModel `bun:"table:streaks,alias:st"`

	UserID       sharedtypes.UserID `bun:"user_id,pk"`
	Current      int                `bun:"current,notnull,default:0"`
	Best         int                `bun:"best,notnull,default:0"`
	LastPlayedAt time.Time          `bun:"last_played_at,nullzero"`
	UpdatedAt    time.Time          `bun:",nullzero,notnull,default:current_timestamp"`
}

// XpLedgerEntry is the append-only audit record of one settlement for one
// player. The deterministic ID makes retried settlements collide instead of
// double-writing.
type XpLedgerEntry struct {
	bun.BaseModel `bun:"table:xp_ledger,alias:xl"`

	ID        string                         `bun:"id,pk"`
	UserID    sharedtypes.UserID             `bun:"user_id,notnull"`
	GameID    sharedtypes.GameID             `bun:"game_id,notnull"`
	Breakdown gamificationdomain.XpBreakdown `bun:"breakdown,type:jsonb"`
	OldLevel  sharedtypes.Level              `bun:"old_level,notnull"`
	NewLevel  sharedtypes.Level              `bun:"new_level,notnull"`
	CreatedAt time.Time                      `bun:",nullzero,notnull,default:current_timestamp"`
}

// LedgerEntryID builds the deterministic ledger key for a player/game pair.
func LedgerEntryID(gameID sharedtypes.GameID, userID sharedtypes.UserID) string {
	return "game_" + string(gameID) + "_user_" + string(userID)
}

// BadgeType is a one-off in-game achievement.
type BadgeType string

const (
	BadgeHatTrick   BadgeType = "HAT_TRICK"
	BadgeCleanSheet BadgeType = "CLEAN_SHEET"
)

// Badge records a badge earned in a specific game. Write-once via its
// deterministic ID.
type Badge struct {
	bun.BaseModel `bun:"table:player_badges,alias:pb"`

	ID        string             `bun:"id,pk"`
	UserID    sharedtypes.UserID `bun:"user_id,notnull"`
	GameID    sharedtypes.GameID `bun:"game_id,notnull"`
	Type      BadgeType          `bun:"type,notnull"`
	CreatedAt time.Time          `bun:",nullzero,notnull,default:current_timestamp"`
}

// BadgeID builds the deterministic badge key.
func BadgeID(badgeType BadgeType, gameID sharedtypes.GameID, userID sharedtypes.UserID) string {
	return "badge_" + string(badgeType) + "_game_" + string(gameID) + "_user_" + string(userID)
}
