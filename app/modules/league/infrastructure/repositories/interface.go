package leaguedb

import (
	"context"

	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// Repository is the persistence contract for seasons and league standings.
//
// Error semantics:
//   - ErrSeasonNotFound: the referenced season does not exist
//   - ErrParticipationNotFound: no row for (season, user) yet, and for
//     LatestParticipation no row for the user in any season
type Repository interface {
	GetSeason(ctx context.Context, seasonID sharedtypes.SeasonID) (*Season, error)
	GetParticipation(ctx context.Context, seasonID sharedtypes.SeasonID, userID sharedtypes.UserID) (*SeasonParticipation, error)

	// LatestParticipation returns the user's most recently updated row
	// across all seasons, used to seed a new season's starting rating.
	LatestParticipation(ctx context.Context, userID sharedtypes.UserID) (*SeasonParticipation, error)

	// ListParticipations returns every row of a season ordered by points,
	// then rating, descending, so index order is final-standing position.
	ListParticipations(ctx context.Context, seasonID sharedtypes.SeasonID) ([]SeasonParticipation, error)

	UpsertParticipation(ctx context.Context, tx bun.IDB, participation *SeasonParticipation) error
	InsertFinalStanding(ctx context.Context, tx bun.IDB, standing *FinalStanding) error

	// MarkSeasonClosed deactivates the season and reports whether this call
	// performed the deactivation. False with nil error means it was already
	// closed.
	MarkSeasonClosed(ctx context.Context, tx bun.IDB, seasonID sharedtypes.SeasonID) (bool, error)
}
