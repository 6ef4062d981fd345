package leagueservice

import (
	"context"
	"errors"
	"fmt"

	leaguedomain "github.com/rua-nove-fc/pelada-bot/app/modules/league/domain"
	leaguedb "github.com/rua-nove-fc/pelada-bot/app/modules/league/infrastructure/repositories"
	"github.com/rua-nove-fc/pelada-bot/app/shared/results"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
	"github.com/uptrace/bun"
)

// UpdateLeague applies one match result to a player's season record and
// commits the row immediately.
func (s *LeagueService) UpdateLeague(ctx context.Context, userID sharedtypes.UserID, seasonID sharedtypes.SeasonID, summary MatchSummary) (LeagueOperationResult, error) {
	return withTelemetry(s, ctx, "UpdateLeague", seasonID, func(ctx context.Context) (LeagueOperationResult, error) {
		update, commit, err := s.PrepareMatchUpdate(ctx, userID, seasonID, summary)
		if err != nil {
			return results.NewFailure[LeagueUpdateResult](LeagueUpdateFailure{
				UserID:   userID,
				SeasonID: seasonID,
				Reason:   "failed to prepare league update",
			}), err
		}
		if err := commit(ctx, s.db); err != nil {
			return results.NewFailure[LeagueUpdateResult](LeagueUpdateFailure{
				UserID:   userID,
				SeasonID: seasonID,
				Reason:   "failed to persist league update",
			}), err
		}
		return results.NewSuccess[LeagueUpdateResult, LeagueUpdateFailure](*update), nil
	})
}

// PrepareMatchUpdate runs the rating/division step and returns the deferred
// participation write. The read side is not transactionally linked to the
// eventual commit; the settled-flag guard on the game is what prevents the
// same match being applied twice.
func (s *LeagueService) PrepareMatchUpdate(ctx context.Context, userID sharedtypes.UserID, seasonID sharedtypes.SeasonID, summary MatchSummary) (*LeagueUpdateResult, func(ctx context.Context, tx bun.IDB) error, error) {
	participation, err := s.loadOrSeedParticipation(ctx, userID, seasonID)
	if err != nil {
		return nil, nil, err
	}

	delta := leaguedomain.RatingDelta(summary.Outcome, summary.WasMvp)
	step := s.strategy.Step(participation.ProgressionState(), participation.Rating+delta)
	participation.ApplyProgression(step.State)

	participation.Games++
	participation.Goals += summary.Goals
	participation.Assists += summary.Assists
	participation.Points += leaguedomain.MatchPoints(summary.Outcome)
	switch summary.Outcome {
	case sharedtypes.OutcomeWin:
		participation.Wins++
	case sharedtypes.OutcomeDraw:
		participation.Draws++
	default:
		participation.Losses++
	}
	if summary.WasMvp {
		participation.MvpCount++
	}

	if step.DivisionChanged() {
		s.logger.InfoContext(ctx, "Division change",
			attr.UserID("user_id", userID),
			attr.SeasonID("season_id", seasonID),
			attr.String("from", string(step.PreviousDivision)),
			attr.String("to", string(step.State.Division)),
			attr.Bool("promoted", step.Promoted),
		)
	}

	update := &LeagueUpdateResult{
		UserID:      userID,
		SeasonID:    seasonID,
		OldDivision: step.PreviousDivision,
		NewDivision: step.State.Division,
		Rating:      step.State.Rating,
		Promoted:    step.Promoted,
		Relegated:   step.Relegated,
	}
	commit := func(ctx context.Context, tx bun.IDB) error {
		return s.repo.UpsertParticipation(ctx, tx, participation)
	}
	return update, commit, nil
}

// loadOrSeedParticipation returns the existing row or builds a first one.
// A brand-new row starts from the player's most recent prior-season rating
// so momentum carries over, falling back to the default for true rookies.
func (s *LeagueService) loadOrSeedParticipation(ctx context.Context, userID sharedtypes.UserID, seasonID sharedtypes.SeasonID) (*leaguedb.SeasonParticipation, error) {
	participation, err := s.repo.GetParticipation(ctx, seasonID, userID)
	if err == nil {
		return participation, nil
	}
	if !errors.Is(err, leaguedb.ErrParticipationNotFound) {
		return nil, err
	}

	rating := leaguedomain.DefaultInitialRating
	prior, err := s.repo.LatestParticipation(ctx, userID)
	switch {
	case err == nil:
		rating = prior.Rating
	case errors.Is(err, leaguedb.ErrParticipationNotFound):
		// True rookie.
	default:
		return nil, fmt.Errorf("failed to look up prior season rating: %w", err)
	}

	return &leaguedb.SeasonParticipation{
		SeasonID: seasonID,
		UserID:   userID,
		Rating:   rating,
		Division: leaguedomain.DivisionForRating(rating),
	}, nil
}
