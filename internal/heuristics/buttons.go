package heuristics

import "github.com/ardenlabs/playrunner/internal/gamestate"

// #region press-counters

// RecordPress updates the consecutive and total counters for the button
// just pressed, resetting the streaks for the other spam-prone buttons, and
// bans the button once its total press count reaches BanPressThreshold.
// The "avoid" hints for the next prompt come from AvoidHints.
func RecordPress(cfg Config, stats *gamestate.ButtonStats, pressed gamestate.Button) {
	switch pressed {
	case gamestate.ButtonStart, gamestate.ButtonSelect:
		stats.StartSelectStreak++
		stats.WaitStreak = 0
		stats.BStreak = 0
	case gamestate.ButtonWait:
		stats.WaitStreak++
		stats.StartSelectStreak = 0
		stats.BStreak = 0
	case gamestate.ButtonB:
		stats.BStreak++
		stats.StartSelectStreak = 0
		stats.WaitStreak = 0
	default:
		stats.StartSelectStreak = 0
		stats.WaitStreak = 0
		stats.BStreak = 0
	}

	stats.TotalPresses[pressed]++

	if stats.TotalPresses[pressed] >= cfg.BanPressThreshold {
		stats.BannedButtons[pressed] = cfg.BanPromptDuration
		stats.TotalPresses[pressed] = 0
	}
}

// AvoidHints returns the buttons the next prompt should discourage based on
// the per-button streak thresholds.
func AvoidHints(cfg Config, stats gamestate.ButtonStats) map[gamestate.Button]bool {
	hints := map[gamestate.Button]bool{}
	for b := range stats.ButtonsToAvoid {
		hints[b] = true
	}
	if stats.StartSelectStreak > cfg.StartSelectThreshold {
		hints[gamestate.ButtonStart] = true
		hints[gamestate.ButtonSelect] = true
	}
	if stats.WaitStreak >= cfg.WaitThreshold {
		hints[gamestate.ButtonWait] = true
	}
	if stats.BStreak >= cfg.BThreshold {
		hints[gamestate.ButtonB] = true
	}
	return hints
}

// #endregion press-counters

// #region no-change-penalty

// RecordVisualChange updates the no-change streaks for pressed and clears
// buttonsToAvoid/floor state on any change_detected.
func RecordVisualChange(cfg Config, stats *gamestate.ButtonStats, pressed gamestate.Button, change gamestate.VisualChange) {
	if change == gamestate.ChangeDetected {
		stats.NoChangeStreak[pressed] = 0
		delete(stats.ButtonsToAvoid, pressed)
		return
	}
	if change != gamestate.ChangeNone {
		return
	}
	stats.NoChangeStreak[pressed]++
	if stats.NoChangeStreak[pressed] >= cfg.NoChangePenaltyStreak {
		stats.ButtonsToAvoid[pressed] = true
	}
}

// PreviousConfidenceFloor returns the confidence floor to report for b in the
// "previous scores" prompt context, applying the no-change penalty.
func PreviousConfidenceFloor(cfg Config, stats gamestate.ButtonStats, b gamestate.Button, reported float32) float32 {
	if stats.ButtonsToAvoid[b] && reported > cfg.NoChangeConfidenceFloor {
		return cfg.NoChangeConfidenceFloor
	}
	return reported
}

// #endregion no-change-penalty

// #region ban-eviction

// AdvanceBans decrements each banned button's remaining-prompt count and
// evicts any that reach zero. Call once per prompt built, before the ban
// set is projected into that prompt.
func AdvanceBans(stats *gamestate.ButtonStats) {
	for b, remaining := range stats.BannedButtons {
		remaining--
		if remaining <= 0 {
			delete(stats.BannedButtons, b)
			continue
		}
		stats.BannedButtons[b] = remaining
	}
}

// IsBanned reports whether b is currently banned.
func IsBanned(stats gamestate.ButtonStats, b gamestate.Button) bool {
	_, ok := stats.BannedButtons[b]
	return ok
}

// #endregion ban-eviction
