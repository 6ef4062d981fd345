package leagueservice

import (
	"context"
	"testing"
	"time"

	leaguedomain "github.com/rua-nove-fc/pelada-bot/app/modules/league/domain"
	leaguedb "github.com/rua-nove-fc/pelada-bot/app/modules/league/infrastructure/repositories"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(repo *FakeLeagueRepository, notifier Dispatcher) *LeagueService {
	return NewLeagueService(
		repo,
		nil,
		leaguedomain.DirectStrategy{},
		notifier,
		sharedtypes.FixedClock{T: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)},
		observability.NoOpLogger,
		observability.NewNoOpOperationMetrics(),
		noop.NewTracerProvider().Tracer("test"),
		2,
	)
}

func TestUpdateLeague_SeedsRookieWithDefaultRating(t *testing.T) {
	repo := NewFakeLeagueRepository()
	svc := newTestService(repo, nil)

	result, err := svc.UpdateLeague(context.Background(), "u1", "s1", MatchSummary{Outcome: sharedtypes.OutcomeWin})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	update := *result.Success
	assert.Equal(t, leaguedomain.DivisionBronze, update.OldDivision)
	assert.Equal(t, leaguedomain.DivisionBronze, update.NewDivision)
	assert.Equal(t, leaguedomain.DefaultInitialRating+3, update.Rating)

	stored := repo.Participations["s1|u1"]
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.Games)
	assert.Equal(t, 1, stored.Wins)
	assert.Equal(t, 3, stored.Points)
}

func TestUpdateLeague_SeedsFromPriorSeason(t *testing.T) {
	repo := NewFakeLeagueRepository()
	repo.Participations["s0|u1"] = &leaguedb.SeasonParticipation{
		SeasonID:  "s0",
		UserID:    "u1",
		Rating:    48,
		Division:  leaguedomain.DivisionSilver,
		UpdatedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	svc := newTestService(repo, nil)

	// MVP in the first game of the new season: 48 + 5 crosses the gold floor.
	result, err := svc.UpdateLeague(context.Background(), "u1", "s1", MatchSummary{Outcome: sharedtypes.OutcomeWin, WasMvp: true})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	update := *result.Success
	assert.Equal(t, leaguedomain.DivisionSilver, update.OldDivision)
	assert.Equal(t, leaguedomain.DivisionGold, update.NewDivision)
	assert.True(t, update.Promoted)
	assert.Equal(t, 53.0, update.Rating)
}

func TestUpdateLeague_LossRelegates(t *testing.T) {
	repo := NewFakeLeagueRepository()
	repo.Participations["s1|u2"] = &leaguedb.SeasonParticipation{
		SeasonID: "s1",
		UserID:   "u2",
		Rating:   30.5,
		Division: leaguedomain.DivisionSilver,
	}
	svc := newTestService(repo, nil)

	result, err := svc.UpdateLeague(context.Background(), "u2", "s1", MatchSummary{Outcome: sharedtypes.OutcomeLoss})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.True(t, result.Success.Relegated)
	assert.Equal(t, leaguedomain.DivisionBronze, result.Success.NewDivision)
	assert.Equal(t, 28.5, result.Success.Rating)
}

func TestCloseSeason_FreezesStandingsInOrder(t *testing.T) {
	repo := NewFakeLeagueRepository()
	repo.Seasons["s1"] = &leaguedb.Season{ID: "s1", Name: "Winter", Active: true}
	repo.Participations["s1|u1"] = &leaguedb.SeasonParticipation{SeasonID: "s1", UserID: "u1", Points: 12, Rating: 40}
	repo.Participations["s1|u2"] = &leaguedb.SeasonParticipation{SeasonID: "s1", UserID: "u2", Points: 21, Rating: 55}
	repo.Participations["s1|u3"] = &leaguedb.SeasonParticipation{SeasonID: "s1", UserID: "u3", Points: 12, Rating: 47}
	dispatcher := NewFakeDispatcher()
	svc := newTestService(repo, dispatcher)

	result, err := svc.CloseSeason(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.False(t, result.Success.AlreadyClosed)
	assert.Equal(t, 3, result.Success.StandingsWritten)

	assert.Equal(t, 1, repo.Standings["s1|u2"].Position)
	assert.Equal(t, 2, repo.Standings["s1|u3"].Position)
	assert.Equal(t, 3, repo.Standings["s1|u1"].Position)
	assert.False(t, repo.Seasons["s1"].Active)

	assert.ElementsMatch(t, []sharedtypes.UserID{"u1", "u2", "u3"}, dispatcher.Enqueued["s1"])
}

func TestCloseSeason_SecondCallIsNoOp(t *testing.T) {
	repo := NewFakeLeagueRepository()
	repo.Seasons["s1"] = &leaguedb.Season{ID: "s1", Name: "Winter", Active: true}
	repo.Participations["s1|u1"] = &leaguedb.SeasonParticipation{SeasonID: "s1", UserID: "u1", Points: 3}
	svc := newTestService(repo, nil)

	first, err := svc.CloseSeason(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, first.IsSuccess())

	second, err := svc.CloseSeason(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, second.IsSuccess())
	assert.True(t, second.Success.AlreadyClosed)
	assert.Zero(t, second.Success.StandingsWritten)
	assert.Len(t, repo.Standings, 1)
}

func TestCloseSeason_RetryAfterStandingFailureCompletes(t *testing.T) {
	repo := NewFakeLeagueRepository()
	repo.Seasons["s1"] = &leaguedb.Season{ID: "s1", Name: "Winter", Active: true}
	repo.Participations["s1|u1"] = &leaguedb.SeasonParticipation{SeasonID: "s1", UserID: "u1", Points: 9}
	failOnce := true
	repo.InsertFinalStandingFunc = func(ctx context.Context, tx bun.IDB, standing *leaguedb.FinalStanding) error {
		if failOnce {
			failOnce = false
			return assert.AnError
		}
		return nil
	}
	dispatcher := NewFakeDispatcher()
	svc := newTestService(repo, dispatcher)

	first, err := svc.CloseSeason(context.Background(), "s1")
	require.Error(t, err)
	require.True(t, first.IsFailure())
	assert.Equal(t, "failed to write final standings", first.Failure.Reason)

	// Nothing durable yet, and the season is still open for a retry.
	assert.True(t, repo.Seasons["s1"].Active)
	assert.Empty(t, repo.Standings)
	assert.Empty(t, dispatcher.Enqueued)

	second, err := svc.CloseSeason(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, second.IsSuccess())
	assert.False(t, second.Success.AlreadyClosed)
	assert.Equal(t, 1, second.Success.StandingsWritten)

	require.NotNil(t, repo.Standings["s1|u1"])
	assert.False(t, repo.Seasons["s1"].Active)
	assert.Equal(t, []sharedtypes.UserID{"u1"}, dispatcher.Enqueued["s1"])
}

func TestCloseSeason_LosingCloseRaceSkipsNotification(t *testing.T) {
	repo := NewFakeLeagueRepository()
	repo.Seasons["s1"] = &leaguedb.Season{ID: "s1", Name: "Winter", Active: true}
	repo.Participations["s1|u1"] = &leaguedb.SeasonParticipation{SeasonID: "s1", UserID: "u1"}
	repo.MarkSeasonClosedFunc = func(ctx context.Context, tx bun.IDB, seasonID sharedtypes.SeasonID) (bool, error) {
		return false, nil
	}
	dispatcher := NewFakeDispatcher()
	svc := newTestService(repo, dispatcher)

	result, err := svc.CloseSeason(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.True(t, result.Success.AlreadyClosed)

	// The winning closer owns the notification enqueue.
	assert.Empty(t, dispatcher.Enqueued)
}

func TestCloseSeason_UnknownSeasonFails(t *testing.T) {
	repo := NewFakeLeagueRepository()
	svc := newTestService(repo, nil)

	result, err := svc.CloseSeason(context.Background(), "missing")
	require.Error(t, err)
	require.True(t, result.IsFailure())
	assert.Equal(t, "season not found", result.Failure.Reason)
}

func TestCloseSeason_NotifierErrorDoesNotFailClosure(t *testing.T) {
	repo := NewFakeLeagueRepository()
	repo.Seasons["s1"] = &leaguedb.Season{ID: "s1", Name: "Winter", Active: true}
	repo.Participations["s1|u1"] = &leaguedb.SeasonParticipation{SeasonID: "s1", UserID: "u1"}
	dispatcher := NewFakeDispatcher()
	dispatcher.Err = assert.AnError
	svc := newTestService(repo, dispatcher)

	result, err := svc.CloseSeason(context.Background(), "s1")
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Len(t, repo.Standings, 1)
}
