package gamificationdomain

import (
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
)

// StatField names the cumulative counter a milestone watches.
type StatField string

const (
	FieldGames   StatField = "games"
	FieldGoals   StatField = "goals"
	FieldAssists StatField = "assists"
	FieldSaves   StatField = "saves"
	FieldWins    StatField = "wins"
	FieldMvps    StatField = "mvps"
)

// Milestone is one static catalog entry: a one-time stat-threshold
// achievement worth a fixed XP reward.
type Milestone struct {
	ID        string
	Name      string
	Field     StatField
	Threshold int64
	RewardXP  sharedtypes.XP
}

// Catalog is the full milestone catalog, ordered by field then threshold.
// Configuration, not per-user state.
var Catalog = []Milestone{
	{ID: "GAMES_10", Name: "Regular", Field: FieldGames, Threshold: 10, RewardXP: 50},
	{ID: "GAMES_25", Name: "Committed", Field: FieldGames, Threshold: 25, RewardXP: 100},
	{ID: "GAMES_50", Name: "Fixture", Field: FieldGames, Threshold: 50, RewardXP: 200},
	{ID: "GAMES_100", Name: "Veteran", Field: FieldGames, Threshold: 100, RewardXP: 500},
	{ID: "GAMES_250", Name: "Living Legend", Field: FieldGames, Threshold: 250, RewardXP: 1000},
	{ID: "GAMES_500", Name: "Immortal", Field: FieldGames, Threshold: 500, RewardXP: 2500},

	{ID: "GOALS_10", Name: "First Striker", Field: FieldGoals, Threshold: 10, RewardXP: 50},
	{ID: "GOALS_25", Name: "Scorer", Field: FieldGoals, Threshold: 25, RewardXP: 100},
	{ID: "GOALS_50", Name: "Finisher", Field: FieldGoals, Threshold: 50, RewardXP: 200},
	{ID: "GOALS_100", Name: "Century Club", Field: FieldGoals, Threshold: 100, RewardXP: 500},
	{ID: "GOALS_250", Name: "All-Time Scorer", Field: FieldGoals, Threshold: 250, RewardXP: 1000},

	{ID: "ASSISTS_10", Name: "Provider", Field: FieldAssists, Threshold: 10, RewardXP: 50},
	{ID: "ASSISTS_25", Name: "Playmaker", Field: FieldAssists, Threshold: 25, RewardXP: 100},
	{ID: "ASSISTS_50", Name: "Maestro", Field: FieldAssists, Threshold: 50, RewardXP: 200},
	{ID: "ASSISTS_100", Name: "The Brain", Field: FieldAssists, Threshold: 100, RewardXP: 500},

	{ID: "SAVES_25", Name: "Golden Gloves", Field: FieldSaves, Threshold: 25, RewardXP: 50},
	{ID: "SAVES_50", Name: "Shot Stopper", Field: FieldSaves, Threshold: 50, RewardXP: 100},
	{ID: "SAVES_100", Name: "Elite Keeper", Field: FieldSaves, Threshold: 100, RewardXP: 200},
	{ID: "SAVES_250", Name: "The Wall", Field: FieldSaves, Threshold: 250, RewardXP: 500},

	{ID: "MVP_5", Name: "Standout", Field: FieldMvps, Threshold: 5, RewardXP: 100},
	{ID: "MVP_10", Name: "Star Player", Field: FieldMvps, Threshold: 10, RewardXP: 300},
	{ID: "MVP_25", Name: "Phenomenon", Field: FieldMvps, Threshold: 25, RewardXP: 750},
	{ID: "MVP_50", Name: "Legend", Field: FieldMvps, Threshold: 50, RewardXP: 1500},

	{ID: "WINS_10", Name: "Winner", Field: FieldWins, Threshold: 10, RewardXP: 75},
	{ID: "WINS_25", Name: "Champion", Field: FieldWins, Threshold: 25, RewardXP: 150},
	{ID: "WINS_50", Name: "Dominator", Field: FieldWins, Threshold: 50, RewardXP: 300},
	{ID: "WINS_100", Name: "Unbeaten", Field: FieldWins, Threshold: 100, RewardXP: 750},
}

// MilestoneByID looks up a catalog entry.
func MilestoneByID(id string) (Milestone, bool) {
	for _, m := range Catalog {
		if m.ID == id {
			return m, true
		}
	}
	return Milestone{}, false
}

func (s CumulativeStats) field(f StatField) int64 {
	switch f {
	case FieldGames:
		return s.Games
	case FieldGoals:
		return s.Goals
	case FieldAssists:
		return s.Assists
	case FieldSaves:
		return s.Saves
	case FieldWins:
		return s.Wins
	case FieldMvps:
		return s.MvpCount
	}
	return 0
}

// CheckMilestones returns catalog entries newly unlocked by stats, excluding
// anything already in achieved, plus the summed bonus XP. Idempotent given an
// accurate achieved set; keeping that set accurate under concurrent
// settlements is the caller's problem.
func CheckMilestones(stats CumulativeStats, achieved []string) ([]Milestone, sharedtypes.XP) {
	return CheckMilestonesPending(stats, achieved, nil)
}

// CheckMilestonesPending is the defensive variant: pending holds ids unlocked
// earlier in the same uncommitted batch so one run never grants twice.
func CheckMilestonesPending(stats CumulativeStats, achieved, pending []string) ([]Milestone, sharedtypes.XP) {
	seen := make(map[string]struct{}, len(achieved)+len(pending))
	for _, id := range achieved {
		seen[id] = struct{}{}
	}
	for _, id := range pending {
		seen[id] = struct{}{}
	}

	var unlocked []Milestone
	var bonus sharedtypes.XP
	for _, m := range Catalog {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		if stats.field(m.Field) >= m.Threshold {
			unlocked = append(unlocked, m)
			bonus += m.RewardXP
		}
	}
	return unlocked, bonus
}
