// Package modelprovider is the vision-capable Decision Model provider
// client: the two-phase (screen-type, then decision) structured-output call
// the Decision Step makes on every iteration. The transport is HTTP over
// go-openai's chat-completions API; the client-wrapper shape (constructor
// pair, per-method context+error-wrap) follows the teacher's codec client,
// with gRPC swapped for HTTP because this domain's collaborators are
// HTTP/REST-shaped, not an internal RPC service this repository defines.
package modelprovider

import (
	"time"

	"github.com/ardenlabs/playrunner/internal/gamestate"
	"github.com/ardenlabs/playrunner/internal/heuristics"
)

// #region classify

// ClassifyResult is the screen-type phase's structured response.
type ClassifyResult struct {
	ScreenType       gamestate.ScreenKind `json:"screenType"`
	BriefDescription string               `json:"briefDescription"`
}

// #endregion classify

// #region decide-input

// FrameRef pairs a captured frame with its timestamp.
type FrameRef struct {
	ImageBase64 string
	Timestamp   time.Time
}

// CommandHistoryEntry is one formatted history row the prompt includes.
type CommandHistoryEntry struct {
	Button       gamestate.Button
	VisualChange gamestate.VisualChange
}

// DecideInput bundles every input the decision phase prompt is built from.
type DecideInput struct {
	CurrentFrame       FrameRef
	RecentFrames       []FrameRef // up to 2, most recent last
	CommandHistory     []CommandHistoryEntry
	PreviousConfidence gamestate.ConfidenceTable
	DialogHistory      []gamestate.DialogEntry // up to 10
	AvoidHints         map[gamestate.Button]bool
	ButtonsToAvoid     map[gamestate.Button]bool
	BannedButtons      map[gamestate.Button]int
	NotesProjection    string
	PreviousGameState  gamestate.GameState
	PreviousDecisions  []gamestate.DecisionLogEntry // up to 5
	PreAnalyzedScreen  *ClassifyResult
	StuckSignal        heuristics.StuckSignal
	Priority           heuristics.Priority
}

// #endregion decide-input

// #region decide-output

// RawDecision is the decision phase's structured response, before the
// Decision Step's response merger derives the executed button/confidence.
type RawDecision struct {
	GameState struct {
		Area             string `json:"area,omitempty"`
		InBattle         bool   `json:"inBattle,omitempty"`
		InMenu           bool   `json:"inMenu,omitempty"`
		InDialogue       bool   `json:"inDialogue,omitempty"`
		InTextEntry      bool   `json:"inTextEntry,omitempty"`
		PokemonCount     int    `json:"pokemonCount,omitempty"`
		Badges           int    `json:"badges,omitempty"`
		ScreenType       string `json:"screenType,omitempty"`
		EstimatedPartyHP int    `json:"estimatedPartyHP,omitempty"`
		MaxPartyHP       int    `json:"maxPartyHP,omitempty"`
		Levels           int    `json:"levels,omitempty"`
		Milestone        string `json:"milestone,omitempty"`
	} `json:"gameState"`

	Decision struct {
		ScreenAnalysis     string                     `json:"screenAnalysis"`
		Reasoning          string                     `json:"reasoning"`
		PersonalityComment string                     `json:"personality_comment,omitempty"`
		ButtonSequence     []gamestate.SequenceStep   `json:"buttonSequence"`
		ProgressConfidence float32                    `json:"progressConfidence"`
		Notes              gamestate.NotesDelta       `json:"notes"`
	} `json:"decision"`
}

// CallResult wraps a RawDecision with token accounting for cost purposes.
type CallResult struct {
	Decision         RawDecision
	PromptTokens     int
	CompletionTokens int
}

// #endregion decide-output

// #region cost

// ModelCost holds per-1K-token pricing for one model.
type ModelCost struct {
	InputPer1K  float64
	OutputPer1K float64
}

// CostTable maps model id ("vendor/model-name") to pricing.
type CostTable map[string]ModelCost

// DefaultCostTable returns representative pricing for the vendors in the
// retrieval pack's model lineup. Unknown model ids fall back to a
// conservative default in Cost.
var DefaultCostTable = CostTable{
	"openai/gpt-4o":      {InputPer1K: 0.0025, OutputPer1K: 0.01},
	"openai/gpt-4o-mini": {InputPer1K: 0.00015, OutputPer1K: 0.0006},
}

// Cost computes the dollar cost of one call.
func Cost(table CostTable, modelID string, promptTokens, completionTokens int) float64 {
	c, ok := table[modelID]
	if !ok {
		c = ModelCost{InputPer1K: 0.002, OutputPer1K: 0.008}
	}
	return float64(promptTokens)/1000*c.InputPer1K + float64(completionTokens)/1000*c.OutputPer1K
}

// #endregion cost

// #region fallback

// FallbackPromptTokens and FallbackCompletionTokens are the estimated token
// counts charged when a call fails and a fallback decision is substituted,
// so cost accounting is never silently skipped.
const (
	FallbackPromptTokens     = 1500
	FallbackCompletionTokens = 100
)

// Fallback returns the canonical WAIT decision used whenever the model call
// cannot yield a valid structured reply.
func Fallback() gamestate.Decision {
	table := gamestate.ConfidenceTable{}
	for _, b := range gamestate.AllButtons {
		table[b] = 0.05
	}
	table[gamestate.ButtonWait] = 0.5

	return gamestate.Decision{
		Button:           gamestate.ButtonWait,
		Confidence:       0.5,
		ConfidenceScores: table,
		ScreenAnalysis:   "unavailable",
		Reasoning:        "model call failed or returned an invalid structured response",
		ButtonSequence:   []gamestate.SequenceStep{{Confidences: table}},
		IsFallback:       true,
		Timestamp:        time.Now().UTC(),
	}
}

// #endregion fallback
