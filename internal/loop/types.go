// Package loop implements the per-agent Loop Coordinator: the component
// that owns the mutex, cancellation token, heartbeat, cooldown policy,
// checkpoint cadence, and state publication around one Decision Step call.
// Structurally it follows the teacher's per-turn Orchestrator (pre-call,
// call, post-call, record-outcome) generalized from a single user-facing
// conversation turn to a continuously re-entered agent iteration.
package loop

import (
	"time"

	"github.com/ardenlabs/playrunner/internal/gamestate"
)

// #region config

// Config holds the coordinator's timing constants.
type Config struct {
	IterationPeriod    time.Duration // default cadence between iteration starts
	DialogueCooldown   time.Duration
	DefaultCooldown    time.Duration
	HeartbeatTTL       time.Duration
	HeartbeatCadence   time.Duration
	ClientGoneAfter    time.Duration
	IterationDeadline  time.Duration
	CheckpointEvery    int
}

// DefaultConfig returns the literal timing constants from the component
// design.
func DefaultConfig() Config {
	return Config{
		IterationPeriod:   3 * time.Second,
		DialogueCooldown:  8 * time.Second,
		DefaultCooldown:   500 * time.Millisecond,
		HeartbeatTTL:      60 * time.Second,
		HeartbeatCadence:  10 * time.Second,
		ClientGoneAfter:   30 * time.Second,
		IterationDeadline: 30 * time.Second,
		CheckpointEvery:   100,
	}
}

// Cooldown returns the cooldown duration appropriate for the screen kind a
// decision just observed.
func (c Config) Cooldown(kind gamestate.ScreenKind) time.Duration {
	if kind == gamestate.ScreenDialogue {
		return c.DialogueCooldown
	}
	return c.DefaultCooldown
}

// #endregion config

// #region request-response

// DecideRequest is the input to one iteration, matching the HTTP decide
// body. CommandHistory is passed to the prompt and its latest entry is folded
// into the coordinator's own ButtonStats, which remain the source of truth;
// the avoid and ban hints in the prompt come from those stats, not from the
// caller. PreviousFrames is carried but not read by the coordinator.
type DecideRequest struct {
	AgentID              string
	ModelID              string
	FrameBase64          string
	PreviousFrames       []string
	CommandHistory       []CommandHistoryItem
	PreviousConfidence   gamestate.ConfidenceTable
	PreviousDialogHistory []string
}

// CommandHistoryItem is one client-reported prior button and its effect.
type CommandHistoryItem struct {
	Button       gamestate.Button
	VisualChange gamestate.VisualChange
}

// DecideResponse is the HTTP decide success body.
type DecideResponse struct {
	Success        bool               `json:"success"`
	Decision       gamestate.Decision `json:"decision"`
	GameState      gamestate.GameState `json:"gameState"`
	Cost           float64            `json:"cost"`
	TotalCost      float64            `json:"totalCost"`
	TotalDecisions int                `json:"totalDecisions"`
	TotalTokensIn  int                `json:"totalTokensIn"`
	TotalTokensOut int                `json:"totalTokensOut"`
}

// #endregion request-response

// #region errors

// ErrDecisionInFlight is returned when a caller tries to start an iteration
// while a previous one is still running.
type ErrDecisionInFlight struct{ AgentID string }

func (e ErrDecisionInFlight) Error() string {
	return "loop: decision already in flight for agent " + e.AgentID
}

// ErrClientGone is returned when Decide is called after the heartbeat
// threshold has lapsed; the coordinator has already transitioned to paused.
type ErrClientGone struct{ AgentID string }

func (e ErrClientGone) Error() string {
	return "loop: client heartbeat lost for agent " + e.AgentID
}

// #endregion errors
