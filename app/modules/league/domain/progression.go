package leaguedomain

// ProgressionState is the per-player division bookkeeping a strategy reads
// and writes. The progress/protection counters are only meaningful to the
// streak-gated strategy; the direct strategy keeps them zeroed.
type ProgressionState struct {
	Division           Division
	Rating             float64
	PromotionProgress  int
	RelegationProgress int
	ProtectionGames    int
}

// ProgressionResult is one strategy step.
type ProgressionResult struct {
	State            ProgressionState
	PreviousDivision Division
	Promoted         bool
	Relegated        bool
}

// DivisionChanged reports whether the step moved the player between bands.
func (r ProgressionResult) DivisionChanged() bool { return r.Promoted || r.Relegated }

// DivisionStrategy derives the post-match division from a player's state and
// their freshly computed rating.
type DivisionStrategy interface {
	Step(state ProgressionState, newRating float64) ProgressionResult
}

// DirectStrategy recomputes the division straight from the new rating: band
// membership is a pure function of the current rating, no hysteresis. This is
// the behavior the settlement path ships with.
type DirectStrategy struct{}

func (DirectStrategy) Step(state ProgressionState, newRating float64) ProgressionResult {
	oldDivision := state.Division
	newDivision := DivisionForRating(newRating)

	return ProgressionResult{
		State: ProgressionState{
			Division: newDivision,
			Rating:   newRating,
		},
		PreviousDivision: oldDivision,
		Promoted:         newDivision.Ordinal() > oldDivision.Ordinal(),
		Relegated:        newDivision.Ordinal() < oldDivision.Ordinal(),
	}
}

// StreakGatedConfig tunes the streak-gated strategy.
type StreakGatedConfig struct {
	PromotionGamesRequired  int
	RelegationGamesRequired int
	ProtectionGames         int
}

// DefaultStreakGatedConfig mirrors the product's original intent: three
// consecutive qualifying results to move, five games of immunity after.
func DefaultStreakGatedConfig() StreakGatedConfig {
	return StreakGatedConfig{
		PromotionGamesRequired:  3,
		RelegationGamesRequired: 3,
		ProtectionGames:         5,
	}
}

// StreakGatedStrategy requires several consecutive above/below-band results
// before a transition and grants a protection window after one.
//
// Not wired into the settlement path; kept behind the strategy interface
// pending a product decision on which behavior ships.
type StreakGatedStrategy struct {
	Config StreakGatedConfig
}

func NewStreakGatedStrategy() StreakGatedStrategy {
	return StreakGatedStrategy{Config: DefaultStreakGatedConfig()}
}

func (s StreakGatedStrategy) Step(state ProgressionState, newRating float64) ProgressionResult {
	oldDivision := state.Division
	upper := UpperThreshold(oldDivision)
	lower := LowerThreshold(oldDivision)

	protection := state.ProtectionGames
	promotionProgress := state.PromotionProgress
	relegationProgress := state.RelegationProgress
	newDivision := oldDivision
	promoted := false
	relegated := false

	if protection > 0 {
		protection--
		promotionProgress = 0
		relegationProgress = 0
	} else {
		switch {
		case newRating >= upper && oldDivision != DivisionDiamond:
			promotionProgress++
			relegationProgress = 0
			if promotionProgress >= s.Config.PromotionGamesRequired {
				promoted = true
				promotionProgress = 0
				protection = s.Config.ProtectionGames
				newDivision = NextDivision(oldDivision)
			}
		case newRating < lower && oldDivision != DivisionBronze:
			relegationProgress++
			promotionProgress = 0
			if relegationProgress >= s.Config.RelegationGamesRequired {
				relegated = true
				relegationProgress = 0
				protection = s.Config.ProtectionGames
				newDivision = PreviousDivision(oldDivision)
			}
		default:
			if newRating < upper {
				promotionProgress = 0
			}
			if newRating >= lower {
				relegationProgress = 0
			}
		}
	}

	return ProgressionResult{
		State: ProgressionState{
			Division:           newDivision,
			Rating:             newRating,
			PromotionProgress:  promotionProgress,
			RelegationProgress: relegationProgress,
			ProtectionGames:    protection,
		},
		PreviousDivision: oldDivision,
		Promoted:         promoted,
		Relegated:        relegated,
	}
}
