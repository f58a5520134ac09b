package gate

import (
	"fmt"

	"github.com/ardenlabs/playrunner/internal/gamestate"
)

// #region gate

// Gate evaluates whether one step of a proposed button sequence should
// execute. Step 1 is always evaluated only for banned/avoided vetoes (the
// primary button always executes if not banned); steps 2..N additionally
// veto below the sequence threshold.
type Gate struct {
	config Config
}

// NewGate creates a gate with the given configuration.
func NewGate(config Config) *Gate {
	return &Gate{config: config}
}

// EvaluateStep checks hard vetoes first, then computes a soft score for
// logging. stepIndex is 0-based; index 0 is the primary button.
func (g *Gate) EvaluateStep(
	button gamestate.Button,
	confidence float32,
	stepIndex int,
	stats gamestate.ButtonStats,
) Decision {
	var vetoes []VetoSignal

	if _, banned := stats.BannedButtons[button]; banned {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoBanned,
			Reason: fmt.Sprintf("%s is banned for the next %d prompts", button, stats.BannedButtons[button]),
		})
	}

	if stats.ButtonsToAvoid[button] {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoAvoided,
			Reason: fmt.Sprintf("%s is in the avoid set from the no-change penalty", button),
		})
	}

	if stepIndex > 0 && confidence < g.config.SequenceThreshold {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoLowConfidence,
			Reason: fmt.Sprintf("step %d confidence %.2f below threshold %.2f", stepIndex+1, confidence, g.config.SequenceThreshold),
		})
	}

	if len(vetoes) > 0 {
		return Decision{
			Action:      "skip",
			Reason:      vetoes[0].Reason,
			Vetoed:      true,
			VetoSignals: vetoes,
			SoftScore:   0,
		}
	}

	return Decision{
		Action:    "execute",
		Reason:    fmt.Sprintf("passed gate: confidence=%.4f", confidence),
		SoftScore: confidence,
	}
}

// #endregion gate

// #region sequence

// DeriveSequence walks a full confidence-table sequence and returns the
// subset of steps to actually execute, applying the sequence threshold rule
// and the ban/avoid vetoes. The returned plan always has at least one
// element; if step 1 itself is vetoed, a WAIT fallback step is substituted.
func (g *Gate) DeriveSequence(steps []gamestate.SequenceStep, stats gamestate.ButtonStats) []gamestate.Button {
	var plan []gamestate.Button
	for i, step := range steps {
		button, confidence := step.Confidences.Argmax()
		decision := g.EvaluateStep(button, confidence, i, stats)
		if decision.Action != "execute" {
			break
		}
		plan = append(plan, button)
	}
	if len(plan) == 0 {
		plan = []gamestate.Button{gamestate.ButtonWait}
	}
	return plan
}

// #endregion sequence
