package gamificationdomain

import (
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
)

// Streak bonuses are a step function: only the highest threshold met applies.
var streakSteps = []struct {
	games int
	bonus sharedtypes.XP
}{
	{10, 100},
	{7, 50},
	{3, 20},
}

// Compute turns one player's match facts into an XP breakdown. Pure and
// deterministic; the milestone component is filled in later by the caller.
func Compute(in PlayerGameInput, cfg XpConfig) XpBreakdown {
	cfg = cfg.withDefaults()

	b := XpBreakdown{
		Presence: cfg.PresenceXP,
		Goals:    sharedtypes.XP(capCount(in.Goals, cfg.MaxGoalsCounted)) * cfg.GoalXP,
		Assists:  sharedtypes.XP(capCount(in.Assists, cfg.MaxAssistsCounted)) * cfg.AssistXP,
		Saves:    sharedtypes.XP(capCount(in.Saves, cfg.MaxSavesCounted)) * cfg.SaveXP,
		Streak:   streakBonus(in.CurrentStreak),
	}

	switch in.Outcome {
	case sharedtypes.OutcomeWin:
		b.Result = cfg.WinXP
	case sharedtypes.OutcomeDraw:
		b.Result = cfg.DrawXP
	}

	if in.IsMvp {
		b.Mvp = cfg.MvpXP
	}
	if in.HasBestGoal {
		b.BestGoal = cfg.BestGoalXP
	}
	if in.Goalkeeper && in.GoalsConceded == 0 && in.Saves > 0 {
		b.CleanSheet = cfg.CleanSheetXP
	}
	if in.IsWorstPlayer {
		b.Penalty = -cfg.WorstPlayerPenalty
	}

	b.Total = clampTotal(b)
	return b
}

func streakBonus(streak int) sharedtypes.XP {
	for _, step := range streakSteps {
		if streak >= step.games {
			return step.bonus
		}
	}
	return 0
}

func capCount(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}

func clampTotal(b XpBreakdown) sharedtypes.XP {
	total := b.Presence + b.Goals + b.Assists + b.Saves + b.Result +
		b.Mvp + b.BestGoal + b.CleanSheet + b.Milestones + b.Streak + b.Penalty
	if total < 0 {
		return 0
	}
	return total
}

// withDefaults fills every zero field from DefaultXpConfig. Zero doubles as
// the "not configured" sentinel, so a rate cannot be set to exactly 0.
func (c XpConfig) withDefaults() XpConfig {
	d := DefaultXpConfig()
	if c.PresenceXP == 0 {
		c.PresenceXP = d.PresenceXP
	}
	if c.GoalXP == 0 {
		c.GoalXP = d.GoalXP
	}
	if c.AssistXP == 0 {
		c.AssistXP = d.AssistXP
	}
	if c.SaveXP == 0 {
		c.SaveXP = d.SaveXP
	}
	if c.WinXP == 0 {
		c.WinXP = d.WinXP
	}
	if c.DrawXP == 0 {
		c.DrawXP = d.DrawXP
	}
	if c.MvpXP == 0 {
		c.MvpXP = d.MvpXP
	}
	if c.BestGoalXP == 0 {
		c.BestGoalXP = d.BestGoalXP
	}
	if c.CleanSheetXP == 0 {
		c.CleanSheetXP = d.CleanSheetXP
	}
	if c.WorstPlayerPenalty == 0 {
		c.WorstPlayerPenalty = d.WorstPlayerPenalty
	}
	if c.MaxGoalsCounted == 0 {
		c.MaxGoalsCounted = d.MaxGoalsCounted
	}
	if c.MaxAssistsCounted == 0 {
		c.MaxAssistsCounted = d.MaxAssistsCounted
	}
	if c.MaxSavesCounted == 0 {
		c.MaxSavesCounted = d.MaxSavesCounted
	}
	return c
}
