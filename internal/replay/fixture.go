package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ardenlabs/playrunner/internal/gamestate"
	"github.com/ardenlabs/playrunner/internal/gate"
	"github.com/ardenlabs/playrunner/internal/verify"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Config          FixtureConfig           `json:"config"`
	Interactions    []FixtureInteraction    `json:"interactions"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureGameState is the JSON-serializable subset of gamestate.GameState a
// fixture needs to describe a decision's before/after state.
type FixtureGameState struct {
	Area       string `json:"area"`
	ScreenKind string `json:"screen_kind"`
	BadgeCount int    `json:"badge_count"`
	CurrentHP  int    `json:"current_hp"`
	MaxHP      int    `json:"max_hp"`
	Milestones int    `json:"milestones"` // count only; a fixture doesn't need milestone names
}

// FixtureSequenceStep mirrors gamestate.SequenceStep with JSON tags.
type FixtureSequenceStep struct {
	Confidences map[string]float32 `json:"confidences"`
}

// FixtureButtonStats mirrors the subset of gamestate.ButtonStats a fixture
// needs to drive gate vetoes.
type FixtureButtonStats struct {
	ButtonsToAvoid []string       `json:"buttons_to_avoid"`
	BannedButtons  map[string]int `json:"banned_buttons"`
}

// FixtureInteraction mirrors replay.Interaction with JSON tags.
type FixtureInteraction struct {
	TurnID    string                `json:"turn_id"`
	Steps     []FixtureSequenceStep `json:"steps"`
	Stats     FixtureButtonStats    `json:"stats"`
	PrevState FixtureGameState      `json:"prev_state"`
	NextState FixtureGameState      `json:"next_state"`
}

// FixtureExpectedResult captures the expected outcome for one turn.
type FixtureExpectedResult struct {
	TurnID       string   `json:"turn_id"`
	Plan         []string `json:"plan"`
	Vetoed       bool     `json:"vetoed"`
	VerifyPassed bool     `json:"verify_passed"`
}

// FixtureConfig bundles the gate and verify sub-configs for a replay run.
type FixtureConfig struct {
	GateConfig   FixtureGateConfig   `json:"gate_config"`
	VerifyConfig FixtureVerifyConfig `json:"verify_config"`
}

// FixtureGateConfig mirrors gate.Config with JSON tags.
type FixtureGateConfig struct {
	SequenceThreshold float32 `json:"sequence_threshold"`
}

// FixtureVerifyConfig mirrors verify.Config with JSON tags.
type FixtureVerifyConfig struct {
	MaxBadgeCount int `json:"max_badge_count"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToGameState converts a FixtureGameState to a domain GameState.
func (s *FixtureGameState) ToGameState() gamestate.GameState {
	gs := gamestate.NewGameState()
	gs.Area = s.Area
	gs.ScreenKind = gamestate.ScreenKind(s.ScreenKind)
	gs.BadgeCount = s.BadgeCount
	gs.PartyHealthSummary = gamestate.PartyHealthSummary{CurrentHP: s.CurrentHP, MaxHP: s.MaxHP}
	for i := 0; i < s.Milestones; i++ {
		gs.Progress.Milestones = append(gs.Progress.Milestones, fmt.Sprintf("m%d", i))
	}
	return gs
}

// ToInteraction converts a FixtureInteraction to a domain Interaction.
func (fi *FixtureInteraction) ToInteraction() Interaction {
	steps := make([]gamestate.SequenceStep, len(fi.Steps))
	for i, fs := range fi.Steps {
		table := gamestate.ConfidenceTable{}
		for button, confidence := range fs.Confidences {
			table[gamestate.Button(button)] = confidence
		}
		steps[i] = gamestate.SequenceStep{Confidences: table}
	}

	stats := gamestate.NewButtonStats()
	for _, b := range fi.Stats.ButtonsToAvoid {
		stats.ButtonsToAvoid[gamestate.Button(b)] = true
	}
	for b, remaining := range fi.Stats.BannedButtons {
		stats.BannedButtons[gamestate.Button(b)] = remaining
	}

	return Interaction{
		TurnID:    fi.TurnID,
		Steps:     steps,
		Stats:     stats,
		PrevState: fi.PrevState.ToGameState(),
		NextState: fi.NextState.ToGameState(),
	}
}

// ToReplayConfig converts a FixtureConfig to a domain ReplayConfig.
func (fc *FixtureConfig) ToReplayConfig() ReplayConfig {
	return ReplayConfig{
		GateConfig:   gate.Config{SequenceThreshold: fc.GateConfig.SequenceThreshold},
		VerifyConfig: verify.Config{MaxBadgeCount: fc.VerifyConfig.MaxBadgeCount},
	}
}

// #endregion fixture-loader
