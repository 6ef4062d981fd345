package rankingdb

import (
	"context"

	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// Repository is the persistence contract for rolling leaderboard counters.
// Increment is the only write and is strictly additive.
type Repository interface {
	Increment(ctx context.Context, tx bun.IDB, delta *RankingDelta) error
	GetDelta(ctx context.Context, period sharedtypes.RankingPeriod, periodKey string, userID sharedtypes.UserID) (*RankingDelta, error)
	TopByXP(ctx context.Context, period sharedtypes.RankingPeriod, periodKey string, limit int) ([]RankingDelta, error)
}
