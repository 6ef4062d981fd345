package rankingservice

import (
	"context"
	"errors"
	"testing"
	"time"

	rankingdb "github.com/rua-nove-fc/pelada-bot/app/modules/ranking/infrastructure/repositories"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/rua-nove-fc/pelada-bot/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestService(repo *FakeRankingRepository) *RankingService {
	return NewRankingService(
		repo,
		nil,
		observability.NoOpLogger,
		observability.NewNoOpOperationMetrics(),
		noop.NewTracerProvider().Tracer("test"),
	)
}

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		name   string
		period sharedtypes.RankingPeriod
		at     time.Time
		want   string
	}{
		{"mid-year week", sharedtypes.PeriodWeek, time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC), "2026-W33"},
		{"new year's eve belongs to next iso year", sharedtypes.PeriodWeek, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
		{"month", sharedtypes.PeriodMonth, time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC), "2026-08"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodKey(tt.period, tt.at))
		})
	}
}

func TestIncrement_MergesCounters(t *testing.T) {
	repo := NewFakeRankingRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Increment(ctx, sharedtypes.PeriodWeek, "2026-W33", "u1", Counters{Goals: 2, XP: 50, Games: 1})
	require.NoError(t, err)
	_, err = svc.Increment(ctx, sharedtypes.PeriodWeek, "2026-W33", "u1", Counters{Goals: 1, XP: 30, Games: 1, Wins: 1})
	require.NoError(t, err)

	row, err := repo.GetDelta(ctx, sharedtypes.PeriodWeek, "2026-W33", "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), row.Goals)
	assert.Equal(t, sharedtypes.XP(80), row.XP)
	assert.Equal(t, int64(2), row.Games)
	assert.Equal(t, int64(1), row.Wins)
}

func TestIncrement_IsCommutative(t *testing.T) {
	batches := []Counters{
		{Goals: 2, XP: 50, Games: 1, Wins: 1},
		{Assists: 1, XP: 17, Games: 1},
		{Saves: 4, XP: 32, Games: 1, MvpCount: 1},
	}
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}}

	var results []Counters
	for _, order := range orders {
		repo := NewFakeRankingRepository()
		svc := newTestService(repo)
		for _, i := range order {
			_, err := svc.Increment(context.Background(), sharedtypes.PeriodMonth, "2026-08", "u1", batches[i])
			require.NoError(t, err)
		}
		row, err := repo.GetDelta(context.Background(), sharedtypes.PeriodMonth, "2026-08", "u1")
		require.NoError(t, err)
		results = append(results, Counters{
			Goals: row.Goals, Assists: row.Assists, Saves: row.Saves,
			XP: row.XP, Games: row.Games, Wins: row.Wins, MvpCount: row.MvpCount,
		})
	}

	assert.Equal(t, results[0], results[1])
	assert.Equal(t, results[0], results[2])
}

func TestIncrement_RepoErrorSurfacesAsFailure(t *testing.T) {
	repo := NewFakeRankingRepository()
	boom := errors.New("connection reset")
	repo.IncrementFunc = func(ctx context.Context, _ bun.IDB, _ *rankingdb.RankingDelta) error {
		return boom
	}
	svc := newTestService(repo)

	result, err := svc.Increment(context.Background(), sharedtypes.PeriodWeek, "2026-W33", "u1", Counters{XP: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	require.True(t, result.IsFailure())
	assert.Equal(t, sharedtypes.UserID("u1"), result.Failure.UserID)
}

func TestStageCurrentWindows_HitsWeekAndMonth(t *testing.T) {
	repo := NewFakeRankingRepository()
	svc := newTestService(repo)
	now := time.Date(2026, 8, 12, 21, 0, 0, 0, time.UTC)

	ops := svc.StageCurrentWindows("u7", Counters{XP: 40, Games: 1}, now)
	require.Len(t, ops, 2)
	for _, op := range ops {
		require.NoError(t, op(context.Background(), nil))
	}

	week, err := repo.GetDelta(context.Background(), sharedtypes.PeriodWeek, "2026-W33", "u7")
	require.NoError(t, err)
	assert.Equal(t, sharedtypes.XP(40), week.XP)

	month, err := repo.GetDelta(context.Background(), sharedtypes.PeriodMonth, "2026-08", "u7")
	require.NoError(t, err)
	assert.Equal(t, sharedtypes.XP(40), month.XP)
	assert.Equal(t, int64(1), month.Games)
}
