package rankingdb

import (
	"time"

	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// RankingDelta is one user's additive counters for one leaderboard window.
// Rows are created on first contribution and only ever incremented, so
// concurrent settlements merge commutatively.
type RankingDelta struct {
	bun.BaseModel `bun:"table:ranking_deltas,alias:rd"`

	Period    sharedtypes.RankingPeriod `bun:"period,pk"`
	PeriodKey string                    `bun:"period_key,pk"`
	UserID    sharedtypes.UserID        `bun:"user_id,pk"`

	Goals    int64          `bun:"goals,notnull,default:0"`
	Assists  int64          `bun:"assists,notnull,default:0"`
	Saves    int64          `bun:"saves,notnull,default:0"`
	XP       sharedtypes.XP `bun:"xp,notnull,default:0"`
	Games    int64          `bun:"games,notnull,default:0"`
	Wins     int64          `bun:"wins,notnull,default:0"`
	MvpCount int64          `bun:"mvp_count,notnull,default:0"`

	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}
