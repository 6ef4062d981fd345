package leaguedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

var (
	ErrSeasonNotFound        = errors.New("season not found")
	ErrParticipationNotFound = errors.New("season participation not found")
)

// LeagueDBImpl is the bun-backed Repository.
type LeagueDBImpl struct {
	DB *bun.DB
}

func (db *LeagueDBImpl) GetSeason(ctx context.Context, seasonID sharedtypes.SeasonID) (*Season, error) {
	var season Season
	err := db.DB.NewSelect().
		Model(&season).
		Where("id = ?", seasonID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to fetch season %s: %w", seasonID, err)
	}
	return &season, nil
}

func (db *LeagueDBImpl) GetParticipation(ctx context.Context, seasonID sharedtypes.SeasonID, userID sharedtypes.UserID) (*SeasonParticipation, error) {
	var participation SeasonParticipation
	err := db.DB.NewSelect().
		Model(&participation).
		Where("season_id = ?", seasonID).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipationNotFound
		}
		return nil, fmt.Errorf("failed to fetch participation %s/%s: %w", seasonID, userID, err)
	}
	return &participation, nil
}

func (db *LeagueDBImpl) LatestParticipation(ctx context.Context, userID sharedtypes.UserID) (*SeasonParticipation, error) {
	var participation SeasonParticipation
	err := db.DB.NewSelect().
		Model(&participation).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipationNotFound
		}
		return nil, fmt.Errorf("failed to fetch latest participation for %s: %w", userID, err)
	}
	return &participation, nil
}

func (db *LeagueDBImpl) ListParticipations(ctx context.Context, seasonID sharedtypes.SeasonID) ([]SeasonParticipation, error) {
	var participations []SeasonParticipation
	err := db.DB.NewSelect().
		Model(&participations).
		Where("season_id = ?", seasonID).
		Order("points DESC", "rating DESC", "user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations for season %s: %w", seasonID, err)
	}
	return participations, nil
}

func (db *LeagueDBImpl) UpsertParticipation(ctx context.Context, tx bun.IDB, participation *SeasonParticipation) error {
	_, err := tx.NewInsert().
		Model(participation).
		On("CONFLICT (season_id, user_id) DO UPDATE").
		Set("games = EXCLUDED.games").
		Set("wins = EXCLUDED.wins").
		Set("draws = EXCLUDED.draws").
		Set("losses = EXCLUDED.losses").
		Set("goals = EXCLUDED.goals").
		Set("assists = EXCLUDED.assists").
		Set("mvp_count = EXCLUDED.mvp_count").
		Set("points = EXCLUDED.points").
		Set("rating = EXCLUDED.rating").
		Set("division = EXCLUDED.division").
		Set("promotion_progress = EXCLUDED.promotion_progress").
		Set("relegation_progress = EXCLUDED.relegation_progress").
		Set("protection_games = EXCLUDED.protection_games").
		Set("updated_at = CURRENT_TIMESTAMP").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert participation %s/%s: %w", participation.SeasonID, participation.UserID, err)
	}
	return nil
}

// InsertFinalStanding is write-once: a retried closure chunk re-inserts the
// same snapshot and the conflict clause makes it a no-op.
func (db *LeagueDBImpl) InsertFinalStanding(ctx context.Context, tx bun.IDB, standing *FinalStanding) error {
	_, err := tx.NewInsert().
		Model(standing).
		On("CONFLICT (season_id, user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert final standing %s/%s: %w", standing.SeasonID, standing.UserID, err)
	}
	return nil
}

func (db *LeagueDBImpl) MarkSeasonClosed(ctx context.Context, tx bun.IDB, seasonID sharedtypes.SeasonID) (bool, error) {
	res, err := tx.NewUpdate().
		Model((*Season)(nil)).
		Set("active = FALSE").
		Set("closed_at = CURRENT_TIMESTAMP").
		Where("id = ?", seasonID).
		Where("active = TRUE").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to close season %s: %w", seasonID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read close result for season %s: %w", seasonID, err)
	}
	return affected == 1, nil
}
