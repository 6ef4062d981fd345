package gamificationdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gamificationdomain "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/domain"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// GamificationDBImpl is the bun-backed Repository.
type GamificationDBImpl struct {
	DB *bun.DB
}

// GetPlayer returns the player's progression row, or a fresh level-1 record
// when none exists yet.
func (db *GamificationDBImpl) GetPlayer(ctx context.Context, userID sharedtypes.UserID) (*Player, error) {
	var player Player
	err := db.DB.NewSelect().
		Model(&player).
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Player{ID: userID, Level: 1}, nil
		}
		return nil, fmt.Errorf("failed to fetch player %s: %w", userID, err)
	}
	return &player, nil
}

func (db *GamificationDBImpl) GetStats(ctx context.Context, userID sharedtypes.UserID) (*PlayerStats, error) {
	var stats PlayerStats
	err := db.DB.NewSelect().
		Model(&stats).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &PlayerStats{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to fetch stats for %s: %w", userID, err)
	}
	return &stats, nil
}

func (db *GamificationDBImpl) GetStreak(ctx context.Context, userID sharedtypes.UserID) (*Streak, error) {
	var streak Streak
	err := db.DB.NewSelect().
		Model(&streak).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Streak{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to fetch streak for %s: %w", userID, err)
	}
	return &streak, nil
}

func (db *GamificationDBImpl) SavePlayerProgress(ctx context.Context, tx bun.IDB, player *Player) error {
	_, err := tx.NewInsert().
		Model(player).
		On("CONFLICT (id) DO UPDATE").
		Set("xp = EXCLUDED.xp").
		Set("level = EXCLUDED.level").
		Set("milestones_achieved = EXCLUDED.milestones_achieved").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save progress for %s: %w", player.ID, err)
	}
	return nil
}

// IncrementStats applies purely additive counter updates so concurrent
// settlements of different games merge instead of clobbering each other.
func (db *GamificationDBImpl) IncrementStats(ctx context.Context, tx bun.IDB, userID sharedtypes.UserID, delta gamificationdomain.CumulativeStats) error {
	row := &PlayerStats{
		UserID:      userID,
		Games:       delta.Games,
		Goals:       delta.Goals,
		Assists:     delta.Assists,
		Saves:       delta.Saves,
		Wins:        delta.Wins,
		Draws:       delta.Draws,
		Losses:      delta.Losses,
		YellowCards: delta.YellowCards,
		RedCards:    delta.RedCards,
		MvpCount:    delta.MvpCount,
		WorstCount:  delta.WorstCount,
		BestStreak:  delta.BestStreak,
	}
	_, err := tx.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("games = ps.games + EXCLUDED.games").
		Set("goals = ps.goals + EXCLUDED.goals").
		Set("assists = ps.assists + EXCLUDED.assists").
		Set("saves = ps.saves + EXCLUDED.saves").
		Set("wins = ps.wins + EXCLUDED.wins").
		Set("draws = ps.draws + EXCLUDED.draws").
		Set("losses = ps.losses + EXCLUDED.losses").
		Set("yellow_cards = ps.yellow_cards + EXCLUDED.yellow_cards").
		Set("red_cards = ps.red_cards + EXCLUDED.red_cards").
		Set("mvp_count = ps.mvp_count + EXCLUDED.mvp_count").
		Set("worst_count = ps.worst_count + EXCLUDED.worst_count").
		Set("best_streak = GREATEST(ps.best_streak, EXCLUDED.best_streak)").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment stats for %s: %w", userID, err)
	}
	return nil
}

func (db *GamificationDBImpl) UpsertStreak(ctx context.Context, tx bun.IDB, streak *Streak) error {
	_, err := tx.NewInsert().
		Model(streak).
		On("CONFLICT (user_id) DO UPDATE").
		Set("current = EXCLUDED.current").
		Set("best = GREATEST(st.best, EXCLUDED.best)").
		Set("last_played_at = EXCLUDED.last_played_at").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert streak for %s: %w", streak.UserID, err)
	}
	return nil
}

// InsertLedgerEntry is write-once: a retried settlement hits the same
// deterministic key and becomes a no-op.
func (db *GamificationDBImpl) InsertLedgerEntry(ctx context.Context, tx bun.IDB, entry *XpLedgerEntry) error {
	_, err := tx.NewInsert().
		Model(entry).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert ledger entry %s: %w", entry.ID, err)
	}
	return nil
}

func (db *GamificationDBImpl) InsertBadge(ctx context.Context, tx bun.IDB, badge *Badge) error {
	_, err := tx.NewInsert().
		Model(badge).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert badge %s: %w", badge.ID, err)
	}
	return nil
}
