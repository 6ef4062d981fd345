package settlementdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrLiveScoreNotFound = errors.New("live score not found")
)

// SettlementDBImpl is the bun-backed Repository.
type SettlementDBImpl struct {
	DB *bun.DB
}

func (db *SettlementDBImpl) GetGame(ctx context.Context, gameID sharedtypes.GameID) (*Game, error) {
	var game Game
	err := db.DB.NewSelect().
		Model(&game).
		Where("id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to fetch game %s: %w", gameID, err)
	}
	return &game, nil
}

func (db *SettlementDBImpl) GetLiveScore(ctx context.Context, gameID sharedtypes.GameID) (*LiveScore, error) {
	var score LiveScore
	err := db.DB.NewSelect().
		Model(&score).
		Where("game_id = ?", gameID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLiveScoreNotFound
		}
		return nil, fmt.Errorf("failed to fetch live score for game %s: %w", gameID, err)
	}
	return &score, nil
}

func (db *SettlementDBImpl) ListConfirmations(ctx context.Context, gameID sharedtypes.GameID) ([]Confirmation, error) {
	var confirmations []Confirmation
	err := db.DB.NewSelect().
		Model(&confirmations).
		Where("game_id = ?", gameID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmations for game %s: %w", gameID, err)
	}
	return confirmations, nil
}

func (db *SettlementDBImpl) MarkSettled(ctx context.Context, tx bun.IDB, gameID sharedtypes.GameID) (bool, error) {
	res, err := tx.NewUpdate().
		Model((*Game)(nil)).
		Set("settled = TRUE").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", gameID).
		Where("settled = FALSE").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to mark game %s settled: %w", gameID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read settle result for game %s: %w", gameID, err)
	}
	return affected == 1, nil
}

func (db *SettlementDBImpl) CreditConfirmations(ctx context.Context, tx bun.IDB, gameID sharedtypes.GameID, credits []ConfirmationCredit) error {
	for _, credit := range credits {
		_, err := tx.NewUpdate().
			Model((*Confirmation)(nil)).
			Set("counted = TRUE").
			Set("xp_earned = ?", credit.XPEarned).
			Set("was_mvp = ?", credit.WasMvp).
			Where("game_id = ?", gameID).
			Where("user_id = ?", credit.UserID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to credit confirmation for game %s user %s: %w", gameID, credit.UserID, err)
		}
	}
	return nil
}
