// Package replay drives recorded decision turns through the gate and
// verify stages outside of a live Loop Coordinator, for regression fixtures
// and offline debugging. Grounded on the teacher's own replay package: same
// iterate-turns-through-the-pipeline shape, retargeted from
// update->gate->eval state-vector commits to gate->verify button-sequence
// execution.
package replay

import (
	"github.com/ardenlabs/playrunner/internal/gamestate"
	"github.com/ardenlabs/playrunner/internal/gate"
	"github.com/ardenlabs/playrunner/internal/verify"
)

// #region types

// Interaction represents a single recorded decision turn for replay.
type Interaction struct {
	TurnID    string
	Steps     []gamestate.SequenceStep
	Stats     gamestate.ButtonStats
	PrevState gamestate.GameState
	NextState gamestate.GameState
}

// ReplayConfig bundles the gate and verify configs for a replay run.
type ReplayConfig struct {
	GateConfig   gate.Config
	VerifyConfig verify.Config
}

// DefaultReplayConfig returns sensible defaults for both stages.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		GateConfig:   gate.DefaultConfig(),
		VerifyConfig: verify.DefaultConfig(),
	}
}

// ReplayResult captures the outcome of replaying one turn through the gate
// and verify stages.
type ReplayResult struct {
	TurnID string
	Plan   []gamestate.Button // executed buttons, in order
	Vetoed bool               // true if the first step itself was vetoed (plan is a WAIT fallback)
	Reason string

	VerifyResult verify.Result
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalTurns     int
	VetoedTurns    int
	VerifyFailures int
	FinalState     gamestate.GameState
}

// #endregion types

// #region replay

// Replay walks interactions in order, deriving an execution plan for each
// turn's proposed sequence via gate.DeriveSequence and then validating the
// turn's recorded state transition via verify.Run. Operates entirely
// in-memory and never mutates the interactions passed in.
func Replay(interactions []Interaction, config ReplayConfig) []ReplayResult {
	g := gate.NewGate(config.GateConfig)
	v := verify.NewHarness(config.VerifyConfig)
	results := make([]ReplayResult, 0, len(interactions))

	for _, inter := range interactions {
		plan := g.DeriveSequence(inter.Steps, inter.Stats)

		firstButton, firstConfidence := inter.Steps[0].Confidences.Argmax()
		decision := g.EvaluateStep(firstButton, firstConfidence, 0, inter.Stats)
		vetoed := decision.Vetoed

		vr := v.Run(inter.PrevState, inter.NextState)

		results = append(results, ReplayResult{
			TurnID:       inter.TurnID,
			Plan:         plan,
			Vetoed:       vetoed,
			Reason:       decision.Reason,
			VerifyResult: vr,
		})
	}

	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult, finalState gamestate.GameState) ReplaySummary {
	s := ReplaySummary{
		TotalTurns: len(results),
		FinalState: finalState,
	}
	for _, r := range results {
		if r.Vetoed {
			s.VetoedTurns++
		}
		if !r.VerifyResult.Passed {
			s.VerifyFailures++
		}
	}
	return s
}

// #endregion replay
