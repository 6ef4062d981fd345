package rankingservice

import (
	"context"
	"sort"

	rankingdb "github.com/rua-nove-fc/pelada-bot/app/modules/ranking/infrastructure/repositories"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// FakeRankingRepository is a programmable stub for rankingdb.Repository that
// accumulates increments in memory the way the conflict clause does in SQL.
type FakeRankingRepository struct {
	trace []string
	rows  map[string]*rankingdb.RankingDelta

	IncrementFunc func(ctx context.Context, tx bun.IDB, delta *rankingdb.RankingDelta) error
}

func NewFakeRankingRepository() *FakeRankingRepository {
	return &FakeRankingRepository{
		trace: []string{},
		rows:  map[string]*rankingdb.RankingDelta{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeRankingRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRankingRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func rowKey(period sharedtypes.RankingPeriod, periodKey string, userID sharedtypes.UserID) string {
	return string(period) + "|" + periodKey + "|" + string(userID)
}

func (f *FakeRankingRepository) Increment(ctx context.Context, tx bun.IDB, delta *rankingdb.RankingDelta) error {
	f.record("Increment")
	if f.IncrementFunc != nil {
		if err := f.IncrementFunc(ctx, tx, delta); err != nil {
			return err
		}
	}
	key := rowKey(delta.Period, delta.PeriodKey, delta.UserID)
	row, ok := f.rows[key]
	if !ok {
		copied := *delta
		f.rows[key] = &copied
		return nil
	}
	row.Goals += delta.Goals
	row.Assists += delta.Assists
	row.Saves += delta.Saves
	row.XP += delta.XP
	row.Games += delta.Games
	row.Wins += delta.Wins
	row.MvpCount += delta.MvpCount
	return nil
}

func (f *FakeRankingRepository) GetDelta(ctx context.Context, period sharedtypes.RankingPeriod, periodKey string, userID sharedtypes.UserID) (*rankingdb.RankingDelta, error) {
	f.record("GetDelta")
	if row, ok := f.rows[rowKey(period, periodKey, userID)]; ok {
		copied := *row
		return &copied, nil
	}
	return &rankingdb.RankingDelta{Period: period, PeriodKey: periodKey, UserID: userID}, nil
}

func (f *FakeRankingRepository) TopByXP(ctx context.Context, period sharedtypes.RankingPeriod, periodKey string, limit int) ([]rankingdb.RankingDelta, error) {
	f.record("TopByXP")
	var out []rankingdb.RankingDelta
	for _, row := range f.rows {
		if row.Period == period && row.PeriodKey == periodKey {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].XP != out[j].XP {
			return out[i].XP > out[j].XP
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ rankingdb.Repository = (*FakeRankingRepository)(nil)
