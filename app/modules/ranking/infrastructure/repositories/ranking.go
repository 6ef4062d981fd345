package rankingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// RankingDBImpl is the bun-backed Repository.
type RankingDBImpl struct {
	DB *bun.DB
}

// Increment merges additive counters into the (period, key, user) row,
// creating it on first contribution. Never a read-modify-write.
func (db *RankingDBImpl) Increment(ctx context.Context, tx bun.IDB, delta *RankingDelta) error {
	_, err := tx.NewInsert().
		Model(delta).
		On("CONFLICT (period, period_key, user_id) DO UPDATE").
		Set("goals = rd.goals + EXCLUDED.goals").
		Set("assists = rd.assists + EXCLUDED.assists").
		Set("saves = rd.saves + EXCLUDED.saves").
		Set("xp = rd.xp + EXCLUDED.xp").
		Set("games = rd.games + EXCLUDED.games").
		Set("wins = rd.wins + EXCLUDED.wins").
		Set("mvp_count = rd.mvp_count + EXCLUDED.mvp_count").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment ranking delta for %s in %s/%s: %w",
			delta.UserID, delta.Period, delta.PeriodKey, err)
	}
	return nil
}

// GetDelta returns the row, or a zeroed one when the user has not yet
// contributed to the period.
func (db *RankingDBImpl) GetDelta(ctx context.Context, period sharedtypes.RankingPeriod, periodKey string, userID sharedtypes.UserID) (*RankingDelta, error) {
	var delta RankingDelta
	err := db.DB.NewSelect().
		Model(&delta).
		Where("period = ?", period).
		Where("period_key = ?", periodKey).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &RankingDelta{Period: period, PeriodKey: periodKey, UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to fetch ranking delta for %s in %s/%s: %w", userID, period, periodKey, err)
	}
	return &delta, nil
}

func (db *RankingDBImpl) TopByXP(ctx context.Context, period sharedtypes.RankingPeriod, periodKey string, limit int) ([]RankingDelta, error) {
	var deltas []RankingDelta
	err := db.DB.NewSelect().
		Model(&deltas).
		Where("period = ?", period).
		Where("period_key = ?", periodKey).
		Order("xp DESC", "user_id ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ranking deltas for %s/%s: %w", period, periodKey, err)
	}
	return deltas, nil
}
