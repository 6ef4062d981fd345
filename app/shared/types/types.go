package sharedtypes

import "time"

// UserID identifies a player account. Document-store style opaque string id.
type UserID string

func (u UserID) String() string { return string(u) }

// GameID identifies a scheduled pickup game.
type GameID string

func (g GameID) String() string { return string(g) }

// SeasonID identifies a league season.
type SeasonID string

func (s SeasonID) String() string { return string(s) }

// TeamID identifies one of the drafted teams of a game.
type TeamID string

// XP is an experience-point amount. Components of a breakdown keep their
// sign; totals are clamped to be non-negative before persistence.
type XP int64

// Level is a player level derived from cumulative XP.
type Level int

// MatchOutcome is the per-team result of a finished game.
type MatchOutcome string

const (
	OutcomeWin  MatchOutcome = "WIN"
	OutcomeDraw MatchOutcome = "DRAW"
	OutcomeLoss MatchOutcome = "LOSS"
)

// RankingPeriod is the kind of rolling leaderboard window.
type RankingPeriod string

const (
	PeriodWeek  RankingPeriod = "week"
	PeriodMonth RankingPeriod = "month"
)

// Clock abstracts time for period-key derivation and freeze timestamps.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FixedClock returns a constant instant, for tests.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }
