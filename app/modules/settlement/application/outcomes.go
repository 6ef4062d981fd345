package settlementservice

import (
	"time"

	settlementdb "github.com/rua-nove-fc/pelada-bot/app/modules/settlement/infrastructure/repositories"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
)

// deriveTeamOutcomes turns recorded scores into a per-team win/draw/loss map.
// The live score is authoritative when present; otherwise each team's own
// recorded score field is used. With fewer than two scored teams there is
// nothing to compare, so every team draws.
func deriveTeamOutcomes(game *settlementdb.Game, live *settlementdb.LiveScore) map[sharedtypes.TeamID]sharedtypes.MatchOutcome {
	scores := map[sharedtypes.TeamID]int{}
	if live != nil && len(live.Scores) > 0 {
		for teamID, score := range live.Scores {
			scores[teamID] = score
		}
	} else {
		for _, team := range game.Teams {
			if team.Score != nil {
				scores[team.ID] = *team.Score
			}
		}
	}

	outcomes := make(map[sharedtypes.TeamID]sharedtypes.MatchOutcome, len(game.Teams))
	if len(scores) < 2 {
		for _, team := range game.Teams {
			outcomes[team.ID] = sharedtypes.OutcomeDraw
		}
		return outcomes
	}

	best := 0
	first := true
	for _, score := range scores {
		if first || score > best {
			best = score
			first = false
		}
	}
	topCount := 0
	for _, score := range scores {
		if score == best {
			topCount++
		}
	}

	for _, team := range game.Teams {
		score, scored := scores[team.ID]
		switch {
		case !scored:
			outcomes[team.ID] = sharedtypes.OutcomeLoss
		case score == best && topCount == 1:
			outcomes[team.ID] = sharedtypes.OutcomeWin
		case score == best:
			outcomes[team.ID] = sharedtypes.OutcomeDraw
		default:
			outcomes[team.ID] = sharedtypes.OutcomeLoss
		}
	}
	return outcomes
}

// playerTeams maps each rostered player to their team.
func playerTeams(game *settlementdb.Game) map[sharedtypes.UserID]sharedtypes.TeamID {
	teams := map[sharedtypes.UserID]sharedtypes.TeamID{}
	for _, team := range game.Teams {
		for _, userID := range team.Players {
			teams[userID] = team.ID
		}
	}
	return teams
}

// statLines indexes the box score by player.
func statLines(game *settlementdb.Game) map[sharedtypes.UserID]settlementdb.PlayerStatLine {
	lines := map[sharedtypes.UserID]settlementdb.PlayerStatLine{}
	for _, line := range game.Stats {
		lines[line.UserID] = line
	}
	return lines
}

// nextStreak advances a playing-day streak. Playing again the same day or
// the next keeps it going; a longer gap restarts at one.
func nextStreak(current int, lastPlayed, playedAt time.Time) int {
	if current == 0 || lastPlayed.IsZero() {
		return 1
	}
	if daysBetween(lastPlayed, playedAt) <= 1 {
		return current + 1
	}
	return 1
}

func daysBetween(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
