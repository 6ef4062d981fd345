package leaguedb

import (
	"time"

	leaguedomain "github.com/rua-nove-fc/pelada-bot/app/modules/league/domain"
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
	"github.com/uptrace/bun"
)

// Season is one league season.
type Season struct {
	bun.BaseModel `bun:"table:seasons,alias:s"`

	ID        sharedtypes.SeasonID `bun:"id,pk"`
	Name      string               `bun:"name,notnull"`
	Active    bool                 `bun:"active,notnull,default:true"`
	StartsAt  time.Time            `bun:"starts_at,nullzero"`
	ClosedAt  time.Time            `bun:"closed_at,nullzero"`
	CreatedAt time.Time            `bun:",nullzero,notnull,default:current_timestamp"`
}

// SeasonParticipation is a user's cumulative record within one season.
// Created lazily on first settlement, superseded by a FinalStanding at
// season close, never deleted.
type SeasonParticipation struct {
	bun.BaseModel `bun:"table:season_participation,alias:sp"`

	SeasonID sharedtypes.SeasonID `bun:"season_id,pk"`
	UserID   sharedtypes.UserID   `bun:"user_id,pk"`

	Games    int `bun:"games,notnull,default:0"`
	Wins     int `bun:"wins,notnull,default:0"`
	Draws    int `bun:"draws,notnull,default:0"`
	Losses   int `bun:"losses,notnull,default:0"`
	Goals    int `bun:"goals,notnull,default:0"`
	Assists  int `bun:"assists,notnull,default:0"`
	MvpCount int `bun:"mvp_count,notnull,default:0"`
	Points   int `bun:"points,notnull,default:0"`

	Rating   float64               `bun:"rating,notnull,default:0"`
	Division leaguedomain.Division `bun:"division,notnull"`

	PromotionProgress  int `bun:"promotion_progress,notnull,default:0"`
	RelegationProgress int `bun:"relegation_progress,notnull,default:0"`
	ProtectionGames    int `bun:"protection_games,notnull,default:0"`

	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// ProgressionState maps the row to the domain strategy input.
func (p *SeasonParticipation) ProgressionState() leaguedomain.ProgressionState {
	return leaguedomain.ProgressionState{
		Division:           p.Division,
		Rating:             p.Rating,
		PromotionProgress:  p.PromotionProgress,
		RelegationProgress: p.RelegationProgress,
		ProtectionGames:    p.ProtectionGames,
	}
}

// ApplyProgression writes a strategy step back onto the row.
func (p *SeasonParticipation) ApplyProgression(state leaguedomain.ProgressionState) {
	p.Division = state.Division
	p.Rating = state.Rating
	p.PromotionProgress = state.PromotionProgress
	p.RelegationProgress = state.RelegationProgress
	p.ProtectionGames = state.ProtectionGames
}

// FinalStanding is the immutable season-close snapshot of a participation.
type FinalStanding struct {
	bun.BaseModel `bun:"table:final_standings,alias:fs"`

	SeasonID sharedtypes.SeasonID `bun:"season_id,pk"`
	UserID   sharedtypes.UserID   `bun:"user_id,pk"`

	Position int                   `bun:"position,notnull"`
	Games    int                   `bun:"games,notnull"`
	Wins     int                   `bun:"wins,notnull"`
	Draws    int                   `bun:"draws,notnull"`
	Losses   int                   `bun:"losses,notnull"`
	Goals    int                   `bun:"goals,notnull"`
	Assists  int                   `bun:"assists,notnull"`
	MvpCount int                   `bun:"mvp_count,notnull"`
	Points   int                   `bun:"points,notnull"`
	Rating   float64               `bun:"rating,notnull"`
	Division leaguedomain.Division `bun:"division,notnull"`

	FrozenAt time.Time `bun:"frozen_at,notnull"`
}

// SnapshotStanding freezes a participation row into its final standing.
func SnapshotStanding(p *SeasonParticipation, position int, frozenAt time.Time) *FinalStanding {
	return &FinalStanding{
		SeasonID: p.SeasonID,
		UserID:   p.UserID,
		Position: position,
		Games:    p.Games,
		Wins:     p.Wins,
		Draws:    p.Draws,
		Losses:   p.Losses,
		Goals:    p.Goals,
		Assists:  p.Assists,
		MvpCount: p.MvpCount,
		Points:   p.Points,
		Rating:   p.Rating,
		Division: p.Division,
		FrozenAt: frozenAt,
	}
}
