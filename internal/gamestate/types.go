// Package gamestate defines the shared data model that flows between the
// loop coordinator, the heuristic engine, the model provider, and the
// memory store: agents, game state, decisions, and the bounded history
// records attached to a run.
package gamestate

import "time"

// #region agent

// AgentStatus is the lifecycle state of one agent's decision loop.
type AgentStatus string

const (
	StatusIdle     AgentStatus = "idle"
	StatusThinking AgentStatus = "thinking"
	StatusActing   AgentStatus = "acting"
	StatusPaused   AgentStatus = "paused"
	StatusError    AgentStatus = "error"
)

// Agent is the top-level record for one running instance.
type Agent struct {
	ID        string      `json:"id"`
	ModelID   string      `json:"modelId"`
	Status    AgentStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`

	TotalDecisions  int     `json:"totalDecisions"`
	FallbackCount   int     `json:"fallbackCount"`
	TotalTokensIn   int     `json:"totalTokensIn"`
	TotalTokensOut  int     `json:"totalTokensOut"`
	TotalCost       float64 `json:"totalCost"`
}

// #endregion agent

// #region button

// Button is one of the eleven-entry vocabulary a decision ranks confidence
// over. WAIT is coordinator-only and is never sent to the Frame Source.
type Button string

const (
	ButtonA      Button = "A"
	ButtonB      Button = "B"
	ButtonStart  Button = "START"
	ButtonSelect Button = "SELECT"
	ButtonUp     Button = "UP"
	ButtonDown   Button = "DOWN"
	ButtonLeft   Button = "LEFT"
	ButtonRight  Button = "RIGHT"
	ButtonL      Button = "L"
	ButtonR      Button = "R"
	ButtonWait   Button = "WAIT"
)

// AllButtons enumerates the full confidence-table vocabulary in stable order.
var AllButtons = []Button{
	ButtonA, ButtonB, ButtonStart, ButtonSelect,
	ButtonUp, ButtonDown, ButtonLeft, ButtonRight,
	ButtonL, ButtonR, ButtonWait,
}

// ConfidenceTable maps every button to a 0..1 confidence.
type ConfidenceTable map[Button]float32

// Argmax returns the highest-confidence button in the table. Ties resolve
// to AllButtons order so it is deterministic.
func (t ConfidenceTable) Argmax() (Button, float32) {
	var best Button
	var bestScore float32 = -1
	for _, b := range AllButtons {
		if v, ok := t[b]; ok && v > bestScore {
			best, bestScore = b, v
		}
	}
	return best, bestScore
}

// IsDirectional reports whether b is one of the four movement buttons.
func (b Button) IsDirectional() bool {
	switch b {
	case ButtonUp, ButtonDown, ButtonLeft, ButtonRight:
		return true
	}
	return false
}

// #endregion button

// #region screen

// ScreenKind is the model-inferred category of the current frame.
type ScreenKind string

const (
	ScreenOverworld  ScreenKind = "overworld"
	ScreenBattle     ScreenKind = "battle"
	ScreenMenu       ScreenKind = "menu"
	ScreenDialogue   ScreenKind = "dialogue"
	ScreenTextEntry  ScreenKind = "textEntry"
	ScreenTransition ScreenKind = "transition"
	ScreenUnknown    ScreenKind = "unknown"
)

// #endregion screen

// #region gamestate

// Flags captures the handful of booleans the model and heuristics both key off.
type Flags struct {
	InBattle    bool `json:"inBattle"`
	InMenu      bool `json:"inMenu"`
	InDialogue  bool `json:"inDialogue"`
	InTextEntry bool `json:"inTextEntry"`
}

// PartyHealthSummary summarizes party HP without requiring memory access.
type PartyHealthSummary struct {
	CurrentHP   int `json:"currentHp"`
	MaxHP       int `json:"maxHp"`
	PartyCount  int `json:"partyCount"`
}

// CriticalHP reports whether the party is in a heal/escape priority state.
func (p PartyHealthSummary) CriticalHP() bool {
	if p.MaxHP <= 0 {
		return false
	}
	return float64(p.CurrentHP)/float64(p.MaxHP) < 0.2
}

// GameState is the coordinator's view of where the agent currently is.
type GameState struct {
	Area               string             `json:"area"`
	Flags              Flags              `json:"flags"`
	ScreenKind         ScreenKind         `json:"screenKind"`
	BadgeCount         int                `json:"badgeCount"`
	PartyLevelTotal    int                `json:"partyLevelTotal"`
	PartyHealthSummary PartyHealthSummary `json:"partyHealthSummary"`
	Progress           ProgressMetrics    `json:"progress"`
	LastExecutedInput  Button             `json:"lastExecutedInput"`
}

// NewGameState returns a freshly initialized state for a new or reset agent.
func NewGameState() GameState {
	return GameState{
		ScreenKind: ScreenUnknown,
		Progress:   NewProgressMetrics(),
	}
}

// #endregion gamestate

// #region progress

// ProgressMetrics accumulates reward-relevant totals across a run. Milestones
// and visited areas are monotonically growing; a reset clears them explicitly.
type ProgressMetrics struct {
	Milestones                 []string `json:"milestones"`
	VisitedAreas               []string `json:"visitedAreas"`
	UniqueAreaCount            int      `json:"uniqueAreaCount"`
	NavigationRewardTotal      float64  `json:"navigationRewardTotal"`
	HealingRewardTotal         float64  `json:"healingRewardTotal"`
	LevelRewardTotal           float64  `json:"levelRewardTotal"`
	EventRewardTotal           float64  `json:"eventRewardTotal"`
	ConsecutiveNoChangeCounter int      `json:"consecutiveNoChangeCounter"`
	LastEffectiveAction        Button   `json:"lastEffectiveAction"`

	visited map[string]bool
}

// NewProgressMetrics returns a zeroed metrics record.
func NewProgressMetrics() ProgressMetrics {
	return ProgressMetrics{visited: map[string]bool{}}
}

// HasVisited reports whether area has already been recorded.
func (p *ProgressMetrics) HasVisited(area string) bool {
	if p.visited == nil {
		p.visited = map[string]bool{}
		for _, a := range p.VisitedAreas {
			p.visited[a] = true
		}
	}
	return p.visited[area]
}

// RecordVisit adds area to the visited set if new, returning true if it was new.
func (p *ProgressMetrics) RecordVisit(area string) bool {
	if area == "" || p.HasVisited(area) {
		return false
	}
	p.visited[area] = true
	p.VisitedAreas = append(p.VisitedAreas, area)
	p.UniqueAreaCount = len(p.VisitedAreas)
	return true
}

// HasMilestone reports whether a milestone has already fired this run.
func (p *ProgressMetrics) HasMilestone(name string) bool {
	for _, m := range p.Milestones {
		if m == name {
			return true
		}
	}
	return false
}

// RecordMilestone appends name if it has not already fired, returning true if new.
func (p *ProgressMetrics) RecordMilestone(name string) bool {
	if p.HasMilestone(name) {
		return false
	}
	p.Milestones = append(p.Milestones, name)
	return true
}

// Reset clears milestones and visited areas; called only on an explicit agent reset.
func (p *ProgressMetrics) Reset() {
	*p = NewProgressMetrics()
}

// #endregion progress

// #region decision

// Decision is the merged, executable result of one Decision Step call.
type Decision struct {
	Button              Button          `json:"button"`
	Confidence          float32         `json:"confidence"`
	ConfidenceScores    ConfidenceTable `json:"confidenceScores"`
	ScreenAnalysis      string          `json:"screenAnalysis"`
	Reasoning           string          `json:"reasoning"`
	PersonalityComment  string          `json:"personalityComment,omitempty"`
	ButtonSequence      []SequenceStep  `json:"buttonSequence,omitempty"`
	ProgressConfidence  float32         `json:"progressConfidence"`
	NotesDelta          NotesDelta      `json:"notes"`
	IsFallback          bool            `json:"isFallback"`
	Timestamp           time.Time       `json:"timestamp"`
}

// SequenceStep is one planned button press with its full confidence table.
type SequenceStep struct {
	Confidences ConfidenceTable `json:"confidences"`
}

// #endregion decision

// #region frame-history

// VisualChange classifies how a frame compares to the one before it.
type VisualChange string

const (
	ChangeFirstFrame VisualChange = "first_frame"
	ChangeDetected   VisualChange = "change_detected"
	ChangeNone       VisualChange = "no_change"
)

// FrameHistoryEntry is one bounded record of an executed input and its effect.
type FrameHistoryEntry struct {
	Button          Button       `json:"button"`
	ReasoningBrief  string       `json:"reasoningBrief"`
	Timestamp       time.Time    `json:"timestamp"`
	Fingerprint     uint32       `json:"fingerprint"`
	VisualChange    VisualChange `json:"visualChange"`
}

// MaxFrameHistory is the bound K from the frame history invariant.
const MaxFrameHistory = 25

// #endregion frame-history

// #region notes

// StuckMode is the stuck-recovery mode the decision model records in its
// Notes. The heuristic engine's own detection output is heuristics.StuckSignal.
type StuckMode string

const (
	StuckNone          StuckMode = "none"
	StuckPerimeterScan StuckMode = "perimeter_scan"
	StuckWallHug       StuckMode = "wall_hug"
	StuckBacktrack     StuckMode = "backtrack"
)

// Notes is the agent's structured, persistent scratchpad.
type Notes struct {
	CurrentObjective    string    `json:"currentObjective"`
	LastKnownLocation    string    `json:"lastKnownLocation"`
	ExitFound            bool      `json:"exitFound"`
	StuckMode            StuckMode `json:"stuckMode"`
	FailedAttempts       []string  `json:"failedAttempts"`
	ImportantDiscovery   string    `json:"importantDiscovery"`
	General              string    `json:"general"`
	Legacy               string    `json:"legacy,omitempty"`
}

// NotesDelta mirrors Notes but with every field optional (nil = unset) for merges.
type NotesDelta struct {
	CurrentObjective   *string    `json:"currentObjective,omitempty"`
	LastKnownLocation  *string    `json:"lastKnownLocation,omitempty"`
	ExitFound          *bool      `json:"exitFound,omitempty"`
	StuckMode          *StuckMode `json:"stuckMode,omitempty"`
	FailedAttempt      *string    `json:"failedAttempt,omitempty"`
	ImportantDiscovery *string    `json:"importantDiscovery,omitempty"`
	General            *string    `json:"general,omitempty"`
}

// MaxFailedAttempts bounds the append-truncate failedAttempts list.
const MaxFailedAttempts = 5

// MaxNotesBytes is the on-disk size invariant for a Notes record.
const MaxNotesBytes = 5 * 1024

// MaxNotesProjectionBytes is the prompt-projection size invariant.
const MaxNotesProjectionBytes = 1024

// #endregion notes

// #region decisionlog

// DecisionLogEntry is one append-only row of the bounded decision log.
type DecisionLogEntry struct {
	Step      int       `json:"step"`
	Button    Button    `json:"button"`
	Reasoning string    `json:"reasoning"`
	Timestamp time.Time `json:"timestamp"`
}

// MaxDecisionLog bounds the decision log to the most recent entries.
const MaxDecisionLog = 500

// #endregion decisionlog

// #region buttonstats

// ButtonStats is ephemeral, per-run bookkeeping owned by the loop coordinator.
type ButtonStats struct {
	StartSelectStreak int            `json:"startSelectStreak"`
	WaitStreak        int            `json:"waitStreak"`
	BStreak           int            `json:"bStreak"`
	NoChangeStreak    map[Button]int `json:"noChangeStreak"`
	TotalPresses      map[Button]int `json:"totalPresses"`
	ButtonsToAvoid    map[Button]bool `json:"buttonsToAvoid"`
	BannedButtons     map[Button]int `json:"bannedButtons"` // button -> prompts remaining
}

// NewButtonStats returns a zeroed stats record.
func NewButtonStats() ButtonStats {
	return ButtonStats{
		NoChangeStreak: map[Button]int{},
		TotalPresses:   map[Button]int{},
		ButtonsToAvoid: map[Button]bool{},
		BannedButtons:  map[Button]int{},
	}
}

// #endregion buttonstats

// #region dialog

// DialogEntry is one retained model comment used as Decision Step input.
type DialogEntry struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// MaxDialogHistory bounds the dialog history input.
const MaxDialogHistory = 10

// #endregion dialog
