package replay

import (
	"testing"

	"github.com/ardenlabs/playrunner/internal/gamestate"
)

// helper: single-step sequence confident in button.
func stepFor(button gamestate.Button, confidence float32) gamestate.SequenceStep {
	return gamestate.SequenceStep{Confidences: gamestate.ConfidenceTable{button: confidence}}
}

// helper: a plain turn executing button with no vetoes.
func cleanTurn(turnID string, button gamestate.Button) Interaction {
	return Interaction{
		TurnID:    turnID,
		Steps:     []gamestate.SequenceStep{stepFor(button, 0.9)},
		Stats:     gamestate.NewButtonStats(),
		PrevState: gamestate.NewGameState(),
		NextState: gamestate.NewGameState(),
	}
}

// 1. Clean execute: unvetoed button, valid state transition.
func TestReplay_CleanExecute(t *testing.T) {
	inter := cleanTurn("turn-1", gamestate.ButtonA)
	results := Replay([]Interaction{inter}, DefaultReplayConfig())

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.Vetoed {
		t.Error("expected Vetoed=false")
	}
	if len(r.Plan) != 1 || r.Plan[0] != gamestate.ButtonA {
		t.Errorf("expected plan [A], got %v", r.Plan)
	}
	if !r.VerifyResult.Passed {
		t.Error("expected VerifyResult.Passed=true")
	}
}

// 2. Banned button veto: plan falls back to WAIT.
func TestReplay_BannedButtonVeto(t *testing.T) {
	inter := cleanTurn("turn-1", gamestate.ButtonA)
	inter.Stats.BannedButtons[gamestate.ButtonA] = 3

	results := Replay([]Interaction{inter}, DefaultReplayConfig())

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if !r.Vetoed {
		t.Error("expected Vetoed=true for a banned button")
	}
	if len(r.Plan) != 1 || r.Plan[0] != gamestate.ButtonWait {
		t.Errorf("expected fallback plan [WAIT], got %v", r.Plan)
	}
}

// 3. Multi-step sequence trims at the first below-threshold step.
func TestReplay_SequenceThresholdTrims(t *testing.T) {
	stats := gamestate.NewButtonStats()
	inter := Interaction{
		TurnID: "turn-1",
		Steps: []gamestate.SequenceStep{
			stepFor(gamestate.ButtonUp, 0.95),
			stepFor(gamestate.ButtonUp, 0.5), // below default 0.85 threshold
			stepFor(gamestate.ButtonUp, 0.95),
		},
		Stats:     stats,
		PrevState: gamestate.NewGameState(),
		NextState: gamestate.NewGameState(),
	}

	results := Replay([]Interaction{inter}, DefaultReplayConfig())

	r := results[0]
	if len(r.Plan) != 1 {
		t.Fatalf("expected plan to stop at step 1, got %v", r.Plan)
	}
	if r.Vetoed {
		t.Error("expected Vetoed=false; step 1 itself was not vetoed")
	}
}

// 4. Verify failure surfaces without blocking the gate decision.
func TestReplay_VerifyFailureSurfaces(t *testing.T) {
	inter := cleanTurn("turn-1", gamestate.ButtonA)
	inter.NextState.BadgeCount = inter.PrevState.BadgeCount - 1 // non-monotonic badge count

	results := Replay([]Interaction{inter}, DefaultReplayConfig())

	r := results[0]
	if r.Vetoed {
		t.Error("expected Vetoed=false; verify failures don't veto the gate plan")
	}
	if r.VerifyResult.Passed {
		t.Error("expected VerifyResult.Passed=false for a shrinking badge count")
	}
}

// 5. Multi-turn: vetoed and clean turns interleave independently.
func TestReplay_MultiTurn(t *testing.T) {
	bannedTurn := cleanTurn("turn-2", gamestate.ButtonB)
	bannedTurn.Stats.BannedButtons[gamestate.ButtonB] = 1

	results := Replay([]Interaction{
		cleanTurn("turn-1", gamestate.ButtonA),
		bannedTurn,
		cleanTurn("turn-3", gamestate.ButtonStart),
	}, DefaultReplayConfig())

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Vetoed || results[2].Vetoed {
		t.Error("expected turn-1 and turn-3 unvetoed")
	}
	if !results[1].Vetoed {
		t.Error("expected turn-2 vetoed")
	}
}

// 6. Config passthrough: a tighter sequence threshold vetoes a mid-confidence step.
func TestReplay_ConfigPassthrough(t *testing.T) {
	inter := Interaction{
		TurnID: "turn-1",
		Steps: []gamestate.SequenceStep{
			stepFor(gamestate.ButtonUp, 0.95),
			stepFor(gamestate.ButtonUp, 0.7),
		},
		Stats:     gamestate.NewButtonStats(),
		PrevState: gamestate.NewGameState(),
		NextState: gamestate.NewGameState(),
	}

	lenient := DefaultReplayConfig()
	lenient.GateConfig.SequenceThreshold = 0.5
	lenientResults := Replay([]Interaction{inter}, lenient)

	strict := DefaultReplayConfig()
	strict.GateConfig.SequenceThreshold = 0.85
	strictResults := Replay([]Interaction{inter}, strict)

	if len(lenientResults[0].Plan) != 2 {
		t.Errorf("expected lenient threshold to keep both steps, got %v", lenientResults[0].Plan)
	}
	if len(strictResults[0].Plan) != 1 {
		t.Errorf("expected strict threshold to trim to 1 step, got %v", strictResults[0].Plan)
	}
}

// 7. Summarize: counts match result fields.
func TestReplay_Summarize(t *testing.T) {
	bannedTurn := cleanTurn("turn-2", gamestate.ButtonB)
	bannedTurn.Stats.BannedButtons[gamestate.ButtonB] = 1

	failingVerify := cleanTurn("turn-3", gamestate.ButtonA)
	failingVerify.NextState.BadgeCount = -1

	results := Replay([]Interaction{
		cleanTurn("turn-1", gamestate.ButtonA),
		bannedTurn,
		failingVerify,
	}, DefaultReplayConfig())

	final := gamestate.NewGameState()
	summary := Summarize(results, final)

	if summary.TotalTurns != 3 {
		t.Errorf("expected TotalTurns=3, got %d", summary.TotalTurns)
	}
	if summary.VetoedTurns != 1 {
		t.Errorf("expected VetoedTurns=1, got %d", summary.VetoedTurns)
	}
	if summary.VerifyFailures != 1 {
		t.Errorf("expected VerifyFailures=1, got %d", summary.VerifyFailures)
	}
}

// 8. Deterministic: same inputs produce same outputs.
func TestReplay_Deterministic(t *testing.T) {
	inters := []Interaction{
		cleanTurn("turn-1", gamestate.ButtonA),
		cleanTurn("turn-2", gamestate.ButtonB),
	}
	config := DefaultReplayConfig()

	results1 := Replay(inters, config)
	results2 := Replay(inters, config)

	if len(results1) != len(results2) {
		t.Fatalf("result lengths differ: %d vs %d", len(results1), len(results2))
	}
	for i := range results1 {
		if results1[i].Vetoed != results2[i].Vetoed {
			t.Errorf("turn %d: Vetoed differs", i)
		}
		if len(results1[i].Plan) != len(results2[i].Plan) {
			t.Errorf("turn %d: plan length differs", i)
		}
	}
}
