package settlementdb

import (
	"context"

	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// Repository is the persistence contract for game settlement.
//
// Error semantics:
//   - ErrGameNotFound: the referenced game does not exist (GetGame)
//   - ErrLiveScoreNotFound: no live score was kept for the game (GetLiveScore)
//   - Other errors: infrastructure failures
//
// Methods taking a bun.IDB participate in a caller-owned transaction; the
// settlement orchestrator stages them into one atomic commit.
type Repository interface {
	GetGame(ctx context.Context, gameID sharedtypes.GameID) (*Game, error)
	GetLiveScore(ctx context.Context, gameID sharedtypes.GameID) (*LiveScore, error)
	ListConfirmations(ctx context.Context, gameID sharedtypes.GameID) ([]Confirmation, error)

	// MarkSettled flips the settled flag and reports whether this call won
	// the flip. A false return with a nil error means the game was already
	// settled when the statement ran.
	MarkSettled(ctx context.Context, tx bun.IDB, gameID sharedtypes.GameID) (bool, error)
	// CreditConfirmations marks the given confirmations counted and writes
	// each player's earned XP and MVP flag back onto their row.
	CreditConfirmations(ctx context.Context, tx bun.IDB, gameID sharedtypes.GameID, credits []ConfirmationCredit) error
}
