package settlementservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	gamificationdomain "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/domain"
	gamificationdb "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/infrastructure/repositories"
	leagueservice "github.com/rua-nove-fc/pelada-bot/app/modules/league/application"
	rankingservice "github.com/rua-nove-fc/pelada-bot/app/modules/ranking/application"
	settlementdb "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/repositories"
	"github.com/rua-nove-fc/pelada-bot/app/shared/results"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/db/bundb"
	"github.com/rua-nove-fc/pelada-bot/internal/observability/attr"
	"github.com/uptrace/bun"
)

// errLostSettleRace aborts the commit when a concurrent settlement flipped
// the settled flag between our read and our write.
var errLostSettleRace = errors.New("game was settled concurrently")

// ProcessGame settles one finished game. Safe to retry: an already-settled
// game is a no-op reported as success with the AlreadyProcessed marker.
func (s *SettlementService) ProcessGame(ctx context.Context, gameID sharedtypes.GameID) (SettlementOperationResult, error) {
	return s.withTelemetry(ctx, "ProcessGame", gameID, func(ctx context.Context) (SettlementOperationResult, error) {
		game, err := s.repo.GetGame(ctx, gameID)
		if err != nil {
			if errors.Is(err, settlementdb.ErrGameNotFound) {
				return results.NewFailure[GameProcessingResult](ProcessGameFailure{
					GameID: gameID,
					Reason: "game not found",
				}), err
			}
			return results.NewFailure[GameProcessingResult](ProcessGameFailure{
				GameID: gameID,
				Reason: "failed to read game",
			}), err
		}

		if game.Settled {
			s.logger.InfoContext(ctx, "Game already settled, skipping",
				attr.GameID("game_id", gameID),
				attr.ExtractCorrelationID(ctx),
			)
			return results.NewSuccess[GameProcessingResult, ProcessGameFailure](GameProcessingResult{
				GameID:           gameID,
				AlreadyProcessed: true,
			}), nil
		}

		confirmations, err := s.repo.ListConfirmations(ctx, gameID)
		if err != nil {
			return results.NewFailure[GameProcessingResult](ProcessGameFailure{
				GameID: gameID,
				Reason: "failed to read confirmations",
			}), err
		}

		if len(confirmations) < s.minPlayers {
			return s.settleWithoutAwards(ctx, game, len(confirmations))
		}

		live, err := s.repo.GetLiveScore(ctx, gameID)
		if err != nil && !errors.Is(err, settlementdb.ErrLiveScoreNotFound) {
			return results.NewFailure[GameProcessingResult](ProcessGameFailure{
				GameID: gameID,
				Reason: "failed to read live score",
			}), err
		}

		outcomes := deriveTeamOutcomes(game, live)
		teams := playerTeams(game)
		lines := statLines(game)

		playedAt := game.PlayedAt
		if playedAt.IsZero() {
			playedAt = s.clock.Now()
		}

		writes := bundb.NewWriteSet(s.writeCap)
		playerResults := make([]PlayerResult, 0, len(confirmations))
		credits := make([]settlementdb.ConfirmationCredit, 0, len(confirmations))

		for _, confirmation := range confirmations {
			userID := confirmation.UserID
			result, err := s.settlePlayer(ctx, game, userID, outcomes[teams[userID]], lines[userID], playedAt, writes)
			if err != nil {
				// One player's bad auxiliary data must not sink the rest
				// of the group.
				s.logger.ErrorContext(ctx, "Skipping player in settlement",
					attr.GameID("game_id", gameID),
					attr.UserID("user_id", userID),
					attr.ExtractCorrelationID(ctx),
					attr.Error(err),
				)
				playerResults = append(playerResults, PlayerResult{
					UserID:     userID,
					Skipped:    true,
					SkipReason: err.Error(),
				})
				continue
			}
			playerResults = append(playerResults, *result)
			credits = append(credits, settlementdb.ConfirmationCredit{
				UserID:   userID,
				XPEarned: result.XPEarned,
				WasMvp:   game.MvpID == userID,
			})
		}

		writes.Add(func(ctx context.Context, tx bun.IDB) error {
			return s.repo.CreditConfirmations(ctx, tx, gameID, credits)
		})
		writes.Add(s.settleFlagOp(gameID))

		if err := writes.Commit(ctx, s.db); err != nil {
			if errors.Is(err, errLostSettleRace) {
				return results.NewSuccess[GameProcessingResult, ProcessGameFailure](GameProcessingResult{
					GameID:           gameID,
					AlreadyProcessed: true,
				}), nil
			}
			return results.NewFailure[GameProcessingResult](ProcessGameFailure{
				GameID: gameID,
				Reason: "failed to commit settlement",
			}), err
		}

		processed := GameProcessingResult{
			GameID:        gameID,
			PlayerResults: playerResults,
		}
		s.publishSummary(ctx, processed)
		return results.NewSuccess[GameProcessingResult, ProcessGameFailure](processed), nil
	})
}

// settlePlayer computes one player's settlement and stages its writes. The
// staged closures only touch data computed here, so staging for player A is
// unaffected by a later failure for player B.
func (s *SettlementService) settlePlayer(
	ctx context.Context,
	game *settlementdb.Game,
	userID sharedtypes.UserID,
	outcome sharedtypes.MatchOutcome,
	line settlementdb.PlayerStatLine,
	playedAt time.Time,
	writes *bundb.WriteSet,
) (*PlayerResult, error) {
	player, err := s.players.GetPlayer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("player read: %w", err)
	}
	stats, err := s.players.GetStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("stats read: %w", err)
	}
	streak, err := s.players.GetStreak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("streak read: %w", err)
	}

	if outcome == "" {
		outcome = sharedtypes.OutcomeDraw
	}

	currentStreak := nextStreak(streak.Current, streak.LastPlayedAt, playedAt)

	input := gamificationdomain.PlayerGameInput{
		UserID:        userID,
		Goals:         line.Goals,
		Assists:       line.Assists,
		Saves:         line.Saves,
		YellowCards:   line.YellowCards,
		RedCards:      line.RedCards,
		Outcome:       outcome,
		IsMvp:         game.MvpID == userID,
		IsWorstPlayer: game.WorstID != "" && game.WorstID == userID,
		HasBestGoal:   game.BestGoalID == userID,
		Goalkeeper:    line.Goalkeeper,
		GoalsConceded: line.GoalsConceded,
		CurrentStreak: currentStreak,
	}

	breakdown := gamificationdomain.Compute(input, s.xpConfig)

	newStats := stats.Cumulative().Add(input)
	unlocked, bonus := gamificationdomain.CheckMilestones(newStats, player.MilestonesAchieved)
	breakdown = breakdown.WithMilestones(bonus)

	oldLevel := player.Level
	player.XP += breakdown.Total
	player.Level = gamificationdomain.LevelForXP(player.XP)
	for _, milestone := range unlocked {
		player.MilestonesAchieved = append(player.MilestonesAchieved, milestone.ID)
	}

	leagueUpdate, leagueCommit, err := s.league.PrepareMatchUpdate(ctx, userID, game.SeasonID, leagueservice.MatchSummary{
		Outcome: outcome,
		WasMvp:  input.IsMvp,
		Goals:   line.Goals,
		Assists: line.Assists,
	})
	if err != nil {
		return nil, fmt.Errorf("league update: %w", err)
	}

	statsDelta := gamificationdomain.CumulativeStats{}.Add(input)

	newStreak := &gamificationdb.Streak{
		UserID:       userID,
		Current:      currentStreak,
		Best:         currentStreak,
		LastPlayedAt: playedAt,
	}
	ledgerEntry := &gamificationdb.XpLedgerEntry{
		ID:        gamificationdb.LedgerEntryID(game.ID, userID),
		UserID:    userID,
		GameID:    game.ID,
		Breakdown: breakdown,
		OldLevel:  oldLevel,
		NewLevel:  player.Level,
	}

	badges := gameBadges(input)
	counters := rankingservice.Counters{
		Goals:   int64(line.Goals),
		Assists: int64(line.Assists),
		Saves:   int64(line.Saves),
		XP:      breakdown.Total,
		Games:   1,
	}
	if outcome == sharedtypes.OutcomeWin {
		counters.Wins = 1
	}
	if input.IsMvp {
		counters.MvpCount = 1
	}

	writes.Add(
		func(ctx context.Context, tx bun.IDB) error {
			return s.players.SavePlayerProgress(ctx, tx, player)
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.players.IncrementStats(ctx, tx, userID, statsDelta)
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.players.UpsertStreak(ctx, tx, newStreak)
		},
		func(ctx context.Context, tx bun.IDB) error {
			return s.players.InsertLedgerEntry(ctx, tx, ledgerEntry)
		},
		leagueCommit,
	)
	for _, badgeType := range badges {
		badge := &gamificationdb.Badge{
			ID:     gamificationdb.BadgeID(badgeType, game.ID, userID),
			UserID: userID,
			GameID: game.ID,
			Type:   badgeType,
		}
		writes.Add(func(ctx context.Context, tx bun.IDB) error {
			return s.players.InsertBadge(ctx, tx, badge)
		})
	}
	for _, op := range s.ranking.StageCurrentWindows(userID, counters, playedAt) {
		writes.Add(op)
	}

	return &PlayerResult{
		UserID:             userID,
		Outcome:            outcome,
		XPEarned:           breakdown.Total,
		Breakdown:          breakdown,
		NewLevel:           player.Level,
		LeveledUp:          player.Level > oldLevel,
		UnlockedMilestones: unlocked,
		Badges:             badges,
		LeagueUpdate:       leagueUpdate,
	}, nil
}

// settleWithoutAwards marks an under-attended game settled with no XP for
// anyone. A short-circuit, not an error.
func (s *SettlementService) settleWithoutAwards(ctx context.Context, game *settlementdb.Game, confirmed int) (SettlementOperationResult, error) {
	s.logger.InfoContext(ctx, "Too few confirmed players, settling without awards",
		attr.GameID("game_id", game.ID),
		attr.Int("confirmed", confirmed),
		attr.Int("minimum", s.minPlayers),
		attr.ExtractCorrelationID(ctx),
	)

	writes := bundb.NewWriteSet(s.writeCap)
	writes.Add(s.settleFlagOp(game.ID))
	if err := writes.Commit(ctx, s.db); err != nil {
		if errors.Is(err, errLostSettleRace) {
			return results.NewSuccess[GameProcessingResult, ProcessGameFailure](GameProcessingResult{
				GameID:           game.ID,
				AlreadyProcessed: true,
			}), nil
		}
		return results.NewFailure[GameProcessingResult](ProcessGameFailure{
			GameID: game.ID,
			Reason: "failed to commit settlement",
		}), err
	}
	return results.NewSuccess[GameProcessingResult, ProcessGameFailure](GameProcessingResult{
		GameID:              game.ID,
		InsufficientPlayers: true,
	}), nil
}

// settleFlagOp stages the idempotency guard. It runs in the same
// transaction as the rest of the write set; losing the flip aborts the
// whole commit so nothing lands twice.
func (s *SettlementService) settleFlagOp(gameID sharedtypes.GameID) bundb.Op {
	return func(ctx context.Context, tx bun.IDB) error {
		won, err := s.repo.MarkSettled(ctx, tx, gameID)
		if err != nil {
			return err
		}
		if !won {
			return errLostSettleRace
		}
		return nil
	}
}

// gameBadges awards one-off in-game achievements.
func gameBadges(input gamificationdomain.PlayerGameInput) []gamificationdb.BadgeType {
	var badges []gamificationdb.BadgeType
	if input.Goals >= 3 {
		badges = append(badges, gamificationdb.BadgeHatTrick)
	}
	if input.Goalkeeper && input.GoalsConceded == 0 && input.Saves > 0 {
		badges = append(badges, gamificationdb.BadgeCleanSheet)
	}
	return badges
}

// publishSummary emits the post-game summary. Fire-and-forget.
func (s *SettlementService) publishSummary(ctx context.Context, result GameProcessingResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishGameSettled(ctx, result); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish settlement summary",
			attr.GameID("game_id", result.GameID),
			attr.Error(err),
		)
	}
}
