package settlementservice

import (
	"context"
	"time"

	gamificationdomain "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/domain"
	gamificationdb "github.com/rua-nove-fc/pelada-bot/app/modules/gamification/infrastructure/repositories"
	leagueservice "github.com/rua-nove-fc/pelada-bot/app/modules/league/application"
	leaguedomain "github.com/rua-nove-fc/pelada-bot/app/modules/league/domain"
	rankingservice "github.com/rua-nove-fc/pelada-bot/app/modules/ranking/application"
	settlementdb "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/repositories"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// FakeSettlementRepository is an in-memory stub for settlementdb.Repository.
type FakeSettlementRepository struct {
	trace []string

	Games         map[sharedtypes.GameID]*settlementdb.Game
	Confirmations map[sharedtypes.GameID][]settlementdb.Confirmation
	LiveScores    map[sharedtypes.GameID]*settlementdb.LiveScore
	Credited      map[sharedtypes.GameID][]settlementdb.ConfirmationCredit

	GetGameFunc     func(ctx context.Context, gameID sharedtypes.GameID) (*settlementdb.Game, error)
	MarkSettledFunc func(ctx context.Context, tx bun.IDB, gameID sharedtypes.GameID) (bool, error)
}

func NewFakeSettlementRepository() *FakeSettlementRepository {
	return &FakeSettlementRepository{
		trace:         []string{},
		Games:         map[sharedtypes.GameID]*settlementdb.Game{},
		Confirmations: map[sharedtypes.GameID][]settlementdb.Confirmation{},
		LiveScores:    map[sharedtypes.GameID]*settlementdb.LiveScore{},
		Credited:      map[sharedtypes.GameID][]settlementdb.ConfirmationCredit{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeSettlementRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeSettlementRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeSettlementRepository) GetGame(ctx context.Context, gameID sharedtypes.GameID) (*settlementdb.Game, error) {
	f.record("GetGame")
	if f.GetGameFunc != nil {
		return f.GetGameFunc(ctx, gameID)
	}
	if game, ok := f.Games[gameID]; ok {
		copied := *game
		return &copied, nil
	}
	return nil, settlementdb.ErrGameNotFound
}

func (f *FakeSettlementRepository) GetLiveScore(ctx context.Context, gameID sharedtypes.GameID) (*settlementdb.LiveScore, error) {
	f.record("GetLiveScore")
	if score, ok := f.LiveScores[gameID]; ok {
		copied := *score
		return &copied, nil
	}
	return nil, settlementdb.ErrLiveScoreNotFound
}

func (f *FakeSettlementRepository) ListConfirmations(ctx context.Context, gameID sharedtypes.GameID) ([]settlementdb.Confirmation, error) {
	f.record("ListConfirmations")
	return append([]settlementdb.Confirmation(nil), f.Confirmations[gameID]...), nil
}

func (f *FakeSettlementRepository) MarkSettled(ctx context.Context, tx bun.IDB, gameID sharedtypes.GameID) (bool, error) {
	f.record("MarkSettled")
	if f.MarkSettledFunc != nil {
		return f.MarkSettledFunc(ctx, tx, gameID)
	}
	game, ok := f.Games[gameID]
	if !ok || game.Settled {
		return false, nil
	}
	game.Settled = true
	return true, nil
}

func (f *FakeSettlementRepository) CreditConfirmations(ctx context.Context, tx bun.IDB, gameID sharedtypes.GameID, credits []settlementdb.ConfirmationCredit) error {
	f.record("CreditConfirmations")
	f.Credited[gameID] = append(f.Credited[gameID], credits...)
	return nil
}

// CreditedUsers lists the users whose confirmations were credited.
func (f *FakeSettlementRepository) CreditedUsers(gameID sharedtypes.GameID) []sharedtypes.UserID {
	var users []sharedtypes.UserID
	for _, credit := range f.Credited[gameID] {
		users = append(users, credit.UserID)
	}
	return users
}

var _ settlementdb.Repository = (*FakeSettlementRepository)(nil)

// FakeGamificationRepository is an in-memory stub for
// gamificationdb.Repository.
type FakeGamificationRepository struct {
	trace []string

	Players map[sharedtypes.UserID]*gamificationdb.Player
	Stats   map[sharedtypes.UserID]*gamificationdb.PlayerStats
	Streaks map[sharedtypes.UserID]*gamificationdb.Streak
	Ledger  map[string]*gamificationdb.XpLedgerEntry
	Badges  map[string]*gamificationdb.Badge

	GetStatsFunc func(ctx context.Context, userID sharedtypes.UserID) (*gamificationdb.PlayerStats, error)
}

func NewFakeGamificationRepository() *FakeGamificationRepository {
	return &FakeGamificationRepository{
		trace:   []string{},
		Players: map[sharedtypes.UserID]*gamificationdb.Player{},
		Stats:   map[sharedtypes.UserID]*gamificationdb.PlayerStats{},
		Streaks: map[sharedtypes.UserID]*gamificationdb.Streak{},
		Ledger:  map[string]*gamificationdb.XpLedgerEntry{},
		Badges:  map[string]*gamificationdb.Badge{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeGamificationRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeGamificationRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeGamificationRepository) GetPlayer(ctx context.Context, userID sharedtypes.UserID) (*gamificationdb.Player, error) {
	f.record("GetPlayer")
	if player, ok := f.Players[userID]; ok {
		copied := *player
		copied.MilestonesAchieved = append([]string(nil), player.MilestonesAchieved...)
		return &copied, nil
	}
	return &gamificationdb.Player{ID: userID, Level: 1}, nil
}

func (f *FakeGamificationRepository) GetStats(ctx context.Context, userID sharedtypes.UserID) (*gamificationdb.PlayerStats, error) {
	f.record("GetStats")
	if f.GetStatsFunc != nil {
		return f.GetStatsFunc(ctx, userID)
	}
	if stats, ok := f.Stats[userID]; ok {
		copied := *stats
		return &copied, nil
	}
	return &gamificationdb.PlayerStats{UserID: userID}, nil
}

func (f *FakeGamificationRepository) GetStreak(ctx context.Context, userID sharedtypes.UserID) (*gamificationdb.Streak, error) {
	f.record("GetStreak")
	if streak, ok := f.Streaks[userID]; ok {
		copied := *streak
		return &copied, nil
	}
	return &gamificationdb.Streak{UserID: userID}, nil
}

func (f *FakeGamificationRepository) SavePlayerProgress(ctx context.Context, tx bun.IDB, player *gamificationdb.Player) error {
	f.record("SavePlayerProgress")
	copied := *player
	f.Players[player.ID] = &copied
	return nil
}

func (f *FakeGamificationRepository) IncrementStats(ctx context.Context, tx bun.IDB, userID sharedtypes.UserID, delta gamificationdomain.CumulativeStats) error {
	f.record("IncrementStats")
	stats, ok := f.Stats[userID]
	if !ok {
		stats = &gamificationdb.PlayerStats{UserID: userID}
		f.Stats[userID] = stats
	}
	stats.Games += delta.Games
	stats.Goals += delta.Goals
	stats.Assists += delta.Assists
	stats.Saves += delta.Saves
	stats.Wins += delta.Wins
	stats.Draws += delta.Draws
	stats.Losses += delta.Losses
	stats.YellowCards += delta.YellowCards
	stats.RedCards += delta.RedCards
	stats.MvpCount += delta.MvpCount
	stats.WorstCount += delta.WorstCount
	if delta.BestStreak > stats.BestStreak {
		stats.BestStreak = delta.BestStreak
	}
	return nil
}

func (f *FakeGamificationRepository) UpsertStreak(ctx context.Context, tx bun.IDB, streak *gamificationdb.Streak) error {
	f.record("UpsertStreak")
	copied := *streak
	if prior, ok := f.Streaks[streak.UserID]; ok && prior.Best > copied.Best {
		copied.Best = prior.Best
	}
	f.Streaks[streak.UserID] = &copied
	return nil
}

func (f *FakeGamificationRepository) InsertLedgerEntry(ctx context.Context, tx bun.IDB, entry *gamificationdb.XpLedgerEntry) error {
	f.record("InsertLedgerEntry")
	if _, exists := f.Ledger[entry.ID]; exists {
		return nil
	}
	copied := *entry
	f.Ledger[entry.ID] = &copied
	return nil
}

func (f *FakeGamificationRepository) InsertBadge(ctx context.Context, tx bun.IDB, badge *gamificationdb.Badge) error {
	f.record("InsertBadge")
	if _, exists := f.Badges[badge.ID]; exists {
		return nil
	}
	copied := *badge
	f.Badges[badge.ID] = &copied
	return nil
}

var _ gamificationdb.Repository = (*FakeGamificationRepository)(nil)

// FakeLeagueUpdater records prepared updates and applies a direct band step.
type FakeLeagueUpdater struct {
	Prepared  []sharedtypes.UserID
	Committed []sharedtypes.UserID

	PrepareErr error
}

func (f *FakeLeagueUpdater) PrepareMatchUpdate(ctx context.Context, userID sharedtypes.UserID, seasonID sharedtypes.SeasonID, summary leagueservice.MatchSummary) (*leagueservice.LeagueUpdateResult, func(ctx context.Context, tx bun.IDB) error, error) {
	if f.PrepareErr != nil {
		return nil, nil, f.PrepareErr
	}
	f.Prepared = append(f.Prepared, userID)
	update := &leagueservice.LeagueUpdateResult{
		UserID:      userID,
		SeasonID:    seasonID,
		OldDivision: leaguedomain.DivisionBronze,
		NewDivision: leaguedomain.DivisionBronze,
		Rating:      leaguedomain.DefaultInitialRating + leaguedomain.RatingDelta(summary.Outcome, summary.WasMvp),
	}
	commit := func(ctx context.Context, tx bun.IDB) error {
		f.Committed = append(f.Committed, userID)
		return nil
	}
	return update, commit, nil
}

// FakeRankingStager accumulates staged counters per user.
type FakeRankingStager struct {
	Staged map[sharedtypes.UserID]rankingservice.Counters
}

func NewFakeRankingStager() *FakeRankingStager {
	return &FakeRankingStager{Staged: map[sharedtypes.UserID]rankingservice.Counters{}}
}

func (f *FakeRankingStager) StageCurrentWindows(userID sharedtypes.UserID, counters rankingservice.Counters, now time.Time) []func(ctx context.Context, tx bun.IDB) error {
	return []func(ctx context.Context, tx bun.IDB) error{
		func(ctx context.Context, tx bun.IDB) error {
			merged := f.Staged[userID]
			merged.Goals += counters.Goals
			merged.Assists += counters.Assists
			merged.Saves += counters.Saves
			merged.XP += counters.XP
			merged.Games += counters.Games
			merged.Wins += counters.Wins
			merged.MvpCount += counters.MvpCount
			f.Staged[userID] = merged
			return nil
		},
	}
}

// FakePublisher records published summaries.
type FakePublisher struct {
	Published []GameProcessingResult
	Err       error
}

func (f *FakePublisher) PublishGameSettled(ctx context.Context, result GameProcessingResult) error {
	if f.Err != nil {
		return f.Err
	}
	f.Published = append(f.Published, result)
	return nil
}
