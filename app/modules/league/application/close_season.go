package leagueservice

import (
	"context"

	leaguedb "github.com/rua-nove-fc/pelada-bot/app/modules/league/infrastructure/repositories"
	"github.com/rua-nove-fc/pelada-bot/app/shared/results"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/db/bundb"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
	"github.com/uptrace/bun"
)

// CloseSeason freezes every participation row into an immutable final
// standing, deactivates the season, and queues one notification per
// participant.
//
// The deactivation is the idempotency guard and it is flipped LAST, only
// after every standing is durable. A failure while listing or freezing
// leaves the season active, so a retry re-runs the freeze; each insert is
// write-once, so rows that already landed are skipped and the retry
// completes the remainder. A season found inactive therefore always has
// its full set of standings.
func (s *LeagueService) CloseSeason(ctx context.Context, seasonID sharedtypes.SeasonID) (CloseSeasonOperationResult, error) {
	return withTelemetry(s, ctx, "CloseSeason", seasonID, func(ctx context.Context) (CloseSeasonOperationResult, error) {
		season, err := s.repo.GetSeason(ctx, seasonID)
		if err != nil {
			return results.NewFailure[CloseSeasonSuccess](CloseSeasonFailure{
				SeasonID: seasonID,
				Reason:   "season not found",
			}), err
		}
		if !season.Active {
			s.logger.InfoContext(ctx, "Season already closed, skipping",
				attr.SeasonID("season_id", seasonID),
				attr.ExtractCorrelationID(ctx),
			)
			return results.NewSuccess[CloseSeasonSuccess, CloseSeasonFailure](CloseSeasonSuccess{
				SeasonID:      seasonID,
				AlreadyClosed: true,
			}), nil
		}

		participations, err := s.repo.ListParticipations(ctx, seasonID)
		if err != nil {
			return results.NewFailure[CloseSeasonSuccess](CloseSeasonFailure{
				SeasonID: seasonID,
				Reason:   "failed to list participations",
			}), err
		}

		frozenAt := s.clock.Now()
		ops := make([]bundb.Op, 0, len(participations))
		userIDs := make([]sharedtypes.UserID, 0, len(participations))
		for i := range participations {
			standing := leaguedb.SnapshotStanding(&participations[i], i+1, frozenAt)
			ops = append(ops, func(ctx context.Context, tx bun.IDB) error {
				return s.repo.InsertFinalStanding(ctx, tx, standing)
			})
			userIDs = append(userIDs, participations[i].UserID)
		}

		if err := bundb.CommitChunked(ctx, s.db, s.maxOpsPerCommit, ops); err != nil {
			return results.NewFailure[CloseSeasonSuccess](CloseSeasonFailure{
				SeasonID: seasonID,
				Reason:   "failed to write final standings",
			}), err
		}

		closed, err := s.repo.MarkSeasonClosed(ctx, s.db, seasonID)
		if err != nil {
			return results.NewFailure[CloseSeasonSuccess](CloseSeasonFailure{
				SeasonID: seasonID,
				Reason:   "failed to deactivate season",
			}), err
		}
		if !closed {
			// A concurrent closer flipped the flag first. The standings it
			// wrote and ours are the same write-once rows, so nothing here
			// is lost; the winner owns the notification enqueue.
			s.logger.InfoContext(ctx, "Season closed concurrently, skipping",
				attr.SeasonID("season_id", seasonID),
				attr.ExtractCorrelationID(ctx),
			)
			return results.NewSuccess[CloseSeasonSuccess, CloseSeasonFailure](CloseSeasonSuccess{
				SeasonID:      seasonID,
				AlreadyClosed: true,
			}), nil
		}

		if s.notifier != nil {
			if err := s.notifier.EnqueueSeasonClosed(ctx, seasonID, userIDs); err != nil {
				// Standings are durable at this point; a notification
				// backlog problem should not fail the closure.
				s.logger.ErrorContext(ctx, "Failed to enqueue season-closed notifications",
					attr.SeasonID("season_id", seasonID),
					attr.Int("participants", len(userIDs)),
					attr.Error(err),
				)
			}
		}

		s.logger.InfoContext(ctx, "Season closed",
			attr.SeasonID("season_id", seasonID),
			attr.Int("standings", len(ops)),
		)
		return results.NewSuccess[CloseSeasonSuccess, CloseSeasonFailure](CloseSeasonSuccess{
			SeasonID:         seasonID,
			StandingsWritten: len(ops),
		}), nil
	})
}
