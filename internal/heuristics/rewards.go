package heuristics

import "github.com/ardenlabs/playrunner/internal/gamestate"

// #region navigation

// NavigationReward returns the reward earned for newly-visited areas in this
// step. Callers should call ProgressMetrics.RecordVisit first and only award
// this when it returns true.
func NavigationReward(cfg Config, newlyVisitedCount int) float64 {
	return cfg.NavigationRewardPerArea * float64(newlyVisitedCount)
}

// #endregion navigation

// #region healing

// HealingReward rewards net HP recovery across the party, ignoring damage.
func HealingReward(cfg Config, hpBefore, hpAfter, hpMax int) float64 {
	if hpMax <= 0 {
		return 0
	}
	delta := hpAfter - hpBefore
	if delta <= 0 {
		return 0
	}
	return cfg.HealingRewardMultiplier * float64(delta) / float64(hpMax)
}

// #endregion healing

// #region level

// LevelReward rewards level growth using a capped, concave curve so early
// levels are worth more than the late grind, and only positive differentials
// are counted (a level-down, never possible in-game, would not be rewarded).
func LevelReward(cfg Config, levelsBefore, levelsAfter int) float64 {
	before := levelCurve(cfg, levelsBefore)
	after := levelCurve(cfg, levelsAfter)
	if after <= before {
		return 0
	}
	return after - before
}

func levelCurve(cfg Config, totalLevels int) float64 {
	sum := float64(totalLevels)
	capped := sum
	if sum > 22 {
		capped = (sum-22)/4 + 22
	}
	if capped > sum {
		capped = sum
	}
	return cfg.LevelRewardMultiplier * capped
}

// #endregion level

// #region event

// EventReward looks up the one-time reward for a named milestone. Callers
// must gate on ProgressMetrics.RecordMilestone returning true so repeats
// earn nothing.
func EventReward(cfg Config, milestone string) float64 {
	return cfg.EventRewards[milestone]
}

// #endregion event

// #region priority

// Priority is the heuristic-derived high-level intent for the current frame,
// used to bias the model prompt and as a sanity check on its response.
type Priority string

const (
	PriorityHealOrEscape Priority = "heal_or_escape"
	PriorityBattle       Priority = "battle"
	PriorityProgress     Priority = "progress"
	PriorityExplore      Priority = "explore"
)

// PriorityAction derives the coordinator's priority intent from GameState.
func PriorityAction(gs gamestate.GameState) Priority {
	if gs.PartyHealthSummary.CriticalHP() {
		return PriorityHealOrEscape
	}
	if gs.Flags.InBattle {
		return PriorityBattle
	}
	if gs.Flags.InDialogue || gs.Flags.InMenu {
		return PriorityProgress
	}
	return PriorityExplore
}

// #endregion priority
