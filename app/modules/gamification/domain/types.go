// Package gamificationdomain holds the pure XP/milestone/level logic for the
// post-match settlement pipeline. Nothing in here touches storage.
package gamificationdomain

import (
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
)

// PlayerGameInput is everything the XP engine needs about one player in one
// finished game. Built by the settlement orchestrator; assumed validated.
type PlayerGameInput struct {
	UserID        sharedtypes.UserID
	Goals         int
	Assists       int
	Saves         int
	YellowCards   int
	RedCards      int
	Outcome       sharedtypes.MatchOutcome
	IsMvp         bool
	IsWorstPlayer bool
	HasBestGoal   bool
	Goalkeeper    bool
	GoalsConceded int
	CurrentStreak int
}

// XpBreakdown is the per-component XP result of one settlement for one
// player. Components keep their sign; Total is clamped at zero.
type XpBreakdown struct {
	Presence   sharedtypes.XP `json:"presence"`
	Goals      sharedtypes.XP `json:"goals"`
	Assists    sharedtypes.XP `json:"assists"`
	Saves      sharedtypes.XP `json:"saves"`
	Result     sharedtypes.XP `json:"result"`
	Mvp        sharedtypes.XP `json:"mvp"`
	BestGoal   sharedtypes.XP `json:"best_goal"`
	CleanSheet sharedtypes.XP `json:"clean_sheet"`
	Milestones sharedtypes.XP `json:"milestones"`
	Streak     sharedtypes.XP `json:"streak"`
	Penalty    sharedtypes.XP `json:"penalty"`
	Total      sharedtypes.XP `json:"total"`
}

// WithMilestones returns a copy with the milestone bonus folded in and the
// total re-clamped. The engine itself never awards milestone XP.
func (b XpBreakdown) WithMilestones(bonus sharedtypes.XP) XpBreakdown {
	b.Milestones = bonus
	b.Total = clampTotal(b)
	return b
}

// XpConfig carries the configurable rates. The zero value of any field falls
// back to the built-in default, so callers can pass a partially filled config.
type XpConfig struct {
	PresenceXP         sharedtypes.XP
	GoalXP             sharedtypes.XP
	AssistXP           sharedtypes.XP
	SaveXP             sharedtypes.XP
	WinXP              sharedtypes.XP
	DrawXP             sharedtypes.XP
	MvpXP              sharedtypes.XP
	BestGoalXP         sharedtypes.XP
	CleanSheetXP       sharedtypes.XP
	WorstPlayerPenalty sharedtypes.XP

	MaxGoalsCounted   int
	MaxAssistsCounted int
	MaxSavesCounted   int
}

// DefaultXpConfig returns the stock rates.
func DefaultXpConfig() XpConfig {
	return XpConfig{
		PresenceXP:         10,
		GoalXP:             10,
		AssistXP:           7,
		SaveXP:             8,
		WinXP:              20,
		DrawXP:             10,
		MvpXP:              30,
		BestGoalXP:         15,
		CleanSheetXP:       10,
		WorstPlayerPenalty: 10,
		MaxGoalsCounted:    15,
		MaxAssistsCounted:  10,
		MaxSavesCounted:    30,
	}
}

// CumulativeStats is a player's lifetime counters, the input to milestone
// checking. Mirrors the statistics row one-to-one.
type CumulativeStats struct {
	Games       int64
	Goals       int64
	Assists     int64
	Saves       int64
	Wins        int64
	Draws       int64
	Losses      int64
	YellowCards int64
	RedCards    int64
	MvpCount    int64
	WorstCount  int64
	BestStreak  int64
}

// Add returns the stats after folding in one game's facts.
func (s CumulativeStats) Add(in PlayerGameInput) CumulativeStats {
	s.Games++
	s.Goals += int64(in.Goals)
	s.Assists += int64(in.Assists)
	s.Saves += int64(in.Saves)
	s.YellowCards += int64(in.YellowCards)
	s.RedCards += int64(in.RedCards)
	switch in.Outcome {
	case sharedtypes.OutcomeWin:
		s.Wins++
	case sharedtypes.OutcomeDraw:
		s.Draws++
	default:
		s.Losses++
	}
	if in.IsMvp {
		s.MvpCount++
	}
	if in.IsWorstPlayer {
		s.WorstCount++
	}
	if int64(in.CurrentStreak) > s.BestStreak {
		s.BestStreak = int64(in.CurrentStreak)
	}
	return s
}
