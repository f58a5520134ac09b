package heuristics

import (
	"testing"

	"github.com/ardenlabs/playrunner/internal/gamestate"
)

// #region test-classify

func TestClassifyStuck_BelowThreshold(t *testing.T) {
	cfg := DefaultConfig()

	got := ClassifyStuck(cfg, cfg.StuckNoChangeThreshold-1, nil)
	if got != StuckSignalNone {
		t.Errorf("expected StuckSignalNone below threshold, got %s", got)
	}
}

func TestClassifyStuck_WallCollision(t *testing.T) {
	cfg := DefaultConfig()
	history := []gamestate.Button{gamestate.ButtonUp, gamestate.ButtonUp, gamestate.ButtonUp}

	got := ClassifyStuck(cfg, cfg.StuckNoChangeThreshold, history)
	if got != StuckSignalWallCollision {
		t.Errorf("expected StuckSignalWallCollision, got %s", got)
	}
}

func TestClassifyStuck_DialogueLoop(t *testing.T) {
	cfg := DefaultConfig()
	history := []gamestate.Button{gamestate.ButtonA, gamestate.ButtonA, gamestate.ButtonA}

	got := ClassifyStuck(cfg, cfg.StuckNoChangeThreshold, history)
	if got != StuckSignalDialogueLoop {
		t.Errorf("expected StuckSignalDialogueLoop, got %s", got)
	}
}

func TestClassifyStuck_Unknown(t *testing.T) {
	cfg := DefaultConfig()
	history := []gamestate.Button{gamestate.ButtonUp, gamestate.ButtonLeft, gamestate.ButtonB}

	got := ClassifyStuck(cfg, cfg.StuckNoChangeThreshold, history)
	if got != StuckSignalUnknown {
		t.Errorf("expected StuckSignalUnknown, got %s", got)
	}
}

func TestClassifyStuck_OnlyConsidersRecentFive(t *testing.T) {
	cfg := DefaultConfig()
	history := []gamestate.Button{
		gamestate.ButtonA, gamestate.ButtonA, gamestate.ButtonA,
		gamestate.ButtonUp, gamestate.ButtonUp, gamestate.ButtonUp,
	}

	// The last 5 entries contain only two As (the first two of the window),
	// so the dialogue-loop count of 3 should not be reached; the trailing 3
	// UPs should classify as a wall collision instead.
	got := ClassifyStuck(cfg, cfg.StuckNoChangeThreshold, history)
	if got != StuckSignalWallCollision {
		t.Errorf("expected StuckSignalWallCollision from the trailing window, got %s", got)
	}
}

// #endregion test-classify
