package leagueservice

import (
	"context"
	"sort"

	leaguedb "github.com/rua-nove-fc/pelada-bot/app/modules/league/infrastructure/repositories"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// FakeLeagueRepository is a programmable in-memory stub for
// leaguedb.Repository.
type FakeLeagueRepository struct {
	trace []string

	Seasons        map[sharedtypes.SeasonID]*leaguedb.Season
	Participations map[string]*leaguedb.SeasonParticipation
	Standings      map[string]*leaguedb.FinalStanding

	GetParticipationFunc    func(ctx context.Context, seasonID sharedtypes.SeasonID, userID sharedtypes.UserID) (*leaguedb.SeasonParticipation, error)
	LatestParticipationFunc func(ctx context.Context, userID sharedtypes.UserID) (*leaguedb.SeasonParticipation, error)
	InsertFinalStandingFunc func(ctx context.Context, tx bun.IDB, standing *leaguedb.FinalStanding) error
	MarkSeasonClosedFunc    func(ctx context.Context, tx bun.IDB, seasonID sharedtypes.SeasonID) (bool, error)
}

func NewFakeLeagueRepository() *FakeLeagueRepository {
	return &FakeLeagueRepository{
		trace:          []string{},
		Seasons:        map[sharedtypes.SeasonID]*leaguedb.Season{},
		Participations: map[string]*leaguedb.SeasonParticipation{},
		Standings:      map[string]*leaguedb.FinalStanding{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeLeagueRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeLeagueRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func participationKey(seasonID sharedtypes.SeasonID, userID sharedtypes.UserID) string {
	return string(seasonID) + "|" + string(userID)
}

func (f *FakeLeagueRepository) GetSeason(ctx context.Context, seasonID sharedtypes.SeasonID) (*leaguedb.Season, error) {
	f.record("GetSeason")
	if season, ok := f.Seasons[seasonID]; ok {
		copied := *season
		return &copied, nil
	}
	return nil, leaguedb.ErrSeasonNotFound
}

func (f *FakeLeagueRepository) GetParticipation(ctx context.Context, seasonID sharedtypes.SeasonID, userID sharedtypes.UserID) (*leaguedb.SeasonParticipation, error) {
	f.record("GetParticipation")
	if f.GetParticipationFunc != nil {
		return f.GetParticipationFunc(ctx, seasonID, userID)
	}
	if p, ok := f.Participations[participationKey(seasonID, userID)]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, leaguedb.ErrParticipationNotFound
}

func (f *FakeLeagueRepository) LatestParticipation(ctx context.Context, userID sharedtypes.UserID) (*leaguedb.SeasonParticipation, error) {
	f.record("LatestParticipation")
	if f.LatestParticipationFunc != nil {
		return f.LatestParticipationFunc(ctx, userID)
	}
	var latest *leaguedb.SeasonParticipation
	for _, p := range f.Participations {
		if p.UserID != userID {
			continue
		}
		if latest == nil || p.UpdatedAt.After(latest.UpdatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, leaguedb.ErrParticipationNotFound
	}
	copied := *latest
	return &copied, nil
}

func (f *FakeLeagueRepository) ListParticipations(ctx context.Context, seasonID sharedtypes.SeasonID) ([]leaguedb.SeasonParticipation, error) {
	f.record("ListParticipations")
	var out []leaguedb.SeasonParticipation
	for _, p := range f.Participations {
		if p.SeasonID == seasonID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (f *FakeLeagueRepository) UpsertParticipation(ctx context.Context, tx bun.IDB, participation *leaguedb.SeasonParticipation) error {
	f.record("UpsertParticipation")
	copied := *participation
	f.Participations[participationKey(participation.SeasonID, participation.UserID)] = &copied
	return nil
}

func (f *FakeLeagueRepository) InsertFinalStanding(ctx context.Context, tx bun.IDB, standing *leaguedb.FinalStanding) error {
	f.record("InsertFinalStanding")
	if f.InsertFinalStandingFunc != nil {
		if err := f.InsertFinalStandingFunc(ctx, tx, standing); err != nil {
			return err
		}
	}
	key := string(standing.SeasonID) + "|" + string(standing.UserID)
	if _, exists := f.Standings[key]; exists {
		return nil
	}
	copied := *standing
	f.Standings[key] = &copied
	return nil
}

func (f *FakeLeagueRepository) MarkSeasonClosed(ctx context.Context, tx bun.IDB, seasonID sharedtypes.SeasonID) (bool, error) {
	f.record("MarkSeasonClosed")
	if f.MarkSeasonClosedFunc != nil {
		return f.MarkSeasonClosedFunc(ctx, tx, seasonID)
	}
	season, ok := f.Seasons[seasonID]
	if !ok || !season.Active {
		return false, nil
	}
	season.Active = false
	return true, nil
}

var _ leaguedb.Repository = (*FakeLeagueRepository)(nil)

// FakeDispatcher records enqueued season-closed notifications.
type FakeDispatcher struct {
	Enqueued map[sharedtypes.SeasonID][]sharedtypes.UserID
	Err      error
}

func NewFakeDispatcher() *FakeDispatcher {
	return &FakeDispatcher{Enqueued: map[sharedtypes.SeasonID][]sharedtypes.UserID{}}
}

func (f *FakeDispatcher) EnqueueSeasonClosed(ctx context.Context, seasonID sharedtypes.SeasonID, userIDs []sharedtypes.UserID) error {
	if f.Err != nil {
		return f.Err
	}
	f.Enqueued[seasonID] = append(f.Enqueued[seasonID], userIDs...)
	return nil
}
