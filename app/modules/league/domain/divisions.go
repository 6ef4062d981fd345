// Package leaguedomain holds the pure league rating and division logic.
package leaguedomain

import (
	sharedtypes "github.com/rua-nove-fc/pelada-bot/app/shared/types"
)

// Division is an ordered skill band over the league rating scale.
type Division string

const (
	DivisionBronze  Division = "BRONZE"
	DivisionSilver  Division = "SILVER"
	DivisionGold    Division = "GOLD"
	DivisionDiamond Division = "DIAMOND"
)

// Band boundaries: Bronze [0,30), Silver [30,50), Gold [50,70), Diamond [70,100].
const (
	SilverFloor  = 30.0
	GoldFloor    = 50.0
	DiamondFloor = 70.0
	RatingCeil   = 100.0
)

// DefaultInitialRating seeds a player's first-ever season participation.
const DefaultInitialRating = 10.0

// Ordinal returns the rank of a division for comparisons. Unknown values
// rank as Bronze.
func (d Division) Ordinal() int {
	switch d {
	case DivisionSilver:
		return 1
	case DivisionGold:
		return 2
	case DivisionDiamond:
		return 3
	}
	return 0
}

// DivisionForRating is the band lookup. Out-of-scale ratings clamp into the
// nearest band so membership is total.
func DivisionForRating(rating float64) Division {
	switch {
	case rating >= DiamondFloor:
		return DivisionDiamond
	case rating >= GoldFloor:
		return DivisionGold
	case rating >= SilverFloor:
		return DivisionSilver
	}
	return DivisionBronze
}

// NextDivision returns the band above, saturating at Diamond.
func NextDivision(d Division) Division {
	switch d {
	case DivisionBronze:
		return DivisionSilver
	case DivisionSilver:
		return DivisionGold
	case DivisionGold:
		return DivisionDiamond
	}
	return d
}

// PreviousDivision returns the band below, saturating at Bronze.
func PreviousDivision(d Division) Division {
	switch d {
	case DivisionDiamond:
		return DivisionGold
	case DivisionGold:
		return DivisionSilver
	case DivisionSilver:
		return DivisionBronze
	}
	return d
}

// UpperThreshold is the rating a player must reach to leave d upward.
func UpperThreshold(d Division) float64 {
	switch d {
	case DivisionBronze:
		return SilverFloor
	case DivisionSilver:
		return GoldFloor
	case DivisionGold:
		return DiamondFloor
	}
	return RatingCeil
}

// LowerThreshold is the rating below which a player falls out of d.
func LowerThreshold(d Division) float64 {
	switch d {
	case DivisionSilver:
		return SilverFloor
	case DivisionGold:
		return GoldFloor
	case DivisionDiamond:
		return DiamondFloor
	}
	return 0
}

// Per-match rating deltas keyed by outcome class, evaluated in priority
// order: MVP dominates win/draw/loss.
const (
	deltaMvp  = 5.0
	deltaWin  = 3.0
	deltaDraw = 1.0
	deltaLoss = -2.0
)

// RatingDelta returns the rating movement for one match.
func RatingDelta(outcome sharedtypes.MatchOutcome, wasMvp bool) float64 {
	switch {
	case wasMvp:
		return deltaMvp
	case outcome == sharedtypes.OutcomeWin:
		return deltaWin
	case outcome == sharedtypes.OutcomeDraw:
		return deltaDraw
	}
	return deltaLoss
}

// MatchPoints is the classic 3/1/0 table.
func MatchPoints(outcome sharedtypes.MatchOutcome) int {
	switch outcome {
	case sharedtypes.OutcomeWin:
		return 3
	case sharedtypes.OutcomeDraw:
		return 1
	}
	return 0
}
