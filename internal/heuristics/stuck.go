package heuristics

import "github.com/ardenlabs/playrunner/internal/gamestate"

// #region types

// StuckSignal is the heuristic engine's own classification of a detected
// loop, fed to the Decision Step as a prompt hint. It is distinct from
// Notes.StuckMode, which the model itself writes in its structured reply.
type StuckSignal string

const (
	StuckSignalNone          StuckSignal = "none"
	StuckSignalWallCollision StuckSignal = "wall_collision"
	StuckSignalDialogueLoop  StuckSignal = "dialogue_loop"
	StuckSignalUnknown       StuckSignal = "unknown"
)

// #endregion types

// #region classify

// ClassifyStuck inspects ProgressMetrics.ConsecutiveNoChangeCounter and the
// most recent button presses to decide whether the agent is looping, and if
// so what kind of loop. history is ordered oldest-first; only the most
// recent few entries matter.
func ClassifyStuck(cfg Config, consecutiveNoChange int, history []gamestate.Button) StuckSignal {
	if consecutiveNoChange < cfg.StuckNoChangeThreshold {
		return StuckSignalNone
	}

	recent := lastN(history, 5)
	if isAllDirectionalSame(recent, 3) {
		return StuckSignalWallCollision
	}
	if countButton(recent, gamestate.ButtonA) >= 3 {
		return StuckSignalDialogueLoop
	}
	return StuckSignalUnknown
}

// #endregion classify

// #region helpers

func lastN(history []gamestate.Button, n int) []gamestate.Button {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// isAllDirectionalSame reports whether at least minCount of the trailing
// presses are the same directional button — a wall collision signature.
func isAllDirectionalSame(recent []gamestate.Button, minCount int) bool {
	if len(recent) < minCount {
		return false
	}
	tail := recent[len(recent)-minCount:]
	first := tail[0]
	if !first.IsDirectional() {
		return false
	}
	for _, b := range tail {
		if b != first {
			return false
		}
	}
	return true
}

func countButton(history []gamestate.Button, target gamestate.Button) int {
	n := 0
	for _, b := range history {
		if b == target {
			n++
		}
	}
	return n
}

// #endregion helpers
