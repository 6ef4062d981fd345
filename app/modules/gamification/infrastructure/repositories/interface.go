package gamificationdb

import (
	"context"

	gamificationdomain "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/domain"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// Repository is the persistence contract for player progression.
//
// Reads tolerate absent rows by returning a zero-state record, because a
// player's first settlement happens before any progression row exists.
// Writes taking a bun.IDB participate in a caller-owned transaction.
type Repository interface {
	GetPlayer(ctx context.Context, userID sharedtypes.UserID) (*Player, error)
	GetStats(ctx context.Context, userID sharedtypes.UserID) (*PlayerStats, error)
	GetStreak(ctx context.Context, userID sharedtypes.UserID) (*Streak, error)

	SavePlayerProgress(ctx context.Context, tx bun.IDB, player *Player) error
	IncrementStats(ctx context.Context, tx bun.IDB, userID sharedtypes.UserID, delta gamificationdomain.CumulativeStats) error
	UpsertStreak(ctx context.Context, tx bun.IDB, streak *Streak) error
	InsertLedgerEntry(ctx context.Context, tx bun.IDB, entry *XpLedgerEntry) error
	InsertBadge(ctx context.Context, tx bun.IDB, badge *Badge) error
}
