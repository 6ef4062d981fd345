package settlementservice

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	settlementdb "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/repositories"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/stretchr/testify/assert"
)

func twoTeamGame(scoreA, scoreB *int) *settlementdb.Game {
	return &settlementdb.Game{
		ID: "g1",
		Teams: []settlementdb.TeamEntry{
			{ID: "A", Score: scoreA, Players: []sharedtypes.UserID{"u1"}},
			{ID: "B", Score: scoreB, Players: []sharedtypes.UserID{"u2"}},
		},
	}
}

func TestDeriveTeamOutcomes_LiveScoreWins(t *testing.T) {
	// Recorded team scores disagree with the live score; live score rules.
	game := twoTeamGame(intp(0), intp(5))
	live := &settlementdb.LiveScore{
		GameID: "g1",
		Scores: map[sharedtypes.TeamID]int{"A": 2, "B": 1},
	}

	outcomes := deriveTeamOutcomes(game, live)
	assert.Equal(t, sharedtypes.OutcomeWin, outcomes["A"])
	assert.Equal(t, sharedtypes.OutcomeLoss, outcomes["B"])
}

func TestDeriveTeamOutcomes_FallsBackToTeamScores(t *testing.T) {
	game := twoTeamGame(intp(1), intp(1))

	outcomes := deriveTeamOutcomes(game, nil)
	assert.Equal(t, sharedtypes.OutcomeDraw, outcomes["A"])
	assert.Equal(t, sharedtypes.OutcomeDraw, outcomes["B"])
}

func TestDeriveTeamOutcomes_NoScoresMeansAllDraw(t *testing.T) {
	game := twoTeamGame(nil, nil)

	outcomes := deriveTeamOutcomes(game, nil)
	assert.Equal(t, sharedtypes.OutcomeDraw, outcomes["A"])
	assert.Equal(t, sharedtypes.OutcomeDraw, outcomes["B"])
}

func TestDeriveTeamOutcomes_SingleScoredTeamMeansAllDraw(t *testing.T) {
	game := twoTeamGame(intp(4), nil)

	outcomes := deriveTeamOutcomes(game, nil)
	assert.Equal(t, sharedtypes.OutcomeDraw, outcomes["A"])
	assert.Equal(t, sharedtypes.OutcomeDraw, outcomes["B"])
}

func TestDeriveTeamOutcomes_ThreeTeams(t *testing.T) {
	game := &settlementdb.Game{
		ID: "g1",
		Teams: []settlementdb.TeamEntry{
			{ID: "A", Score: intp(3)},
			{ID: "B", Score: intp(3)},
			{ID: "C", Score: intp(1)},
		},
	}

	want := map[sharedtypes.TeamID]sharedtypes.MatchOutcome{
		"A": sharedtypes.OutcomeDraw,
		"B": sharedtypes.OutcomeDraw,
		"C": sharedtypes.OutcomeLoss,
	}
	if diff := cmp.Diff(want, deriveTeamOutcomes(game, nil)); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}
}

func TestNextStreak(t *testing.T) {
	monday := time.Date(2026, 8, 10, 21, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		current    int
		lastPlayed time.Time
		playedAt   time.Time
		want       int
	}{
		{"first game ever", 0, time.Time{}, monday, 1},
		{"same day keeps going", 2, monday, monday.Add(2 * time.Hour), 3},
		{"next day keeps going", 2, monday, monday.AddDate(0, 0, 1), 3},
		{"two-day gap resets", 5, monday, monday.AddDate(0, 0, 2), 1},
		{"late night into early morning counts as next day", 3, monday, monday.Add(5 * time.Hour), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextStreak(tt.current, tt.lastPlayed, tt.playedAt))
		})
	}
}
