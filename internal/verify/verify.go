// Package verify runs lightweight post-decision validation over GameState
// and ProgressMetrics — informational, non-blocking checks in the same
// shape as the teacher's post-commit eval harness, retargeted at the
// invariants this domain cares about (badge count monotonic, HP in range,
// milestone set only grows).
package verify

import (
	"fmt"

	"github.com/ardenlabs/playrunner/internal/gamestate"
)

// #region config

// Config holds the bounds this harness checks.
type Config struct {
	MaxBadgeCount int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{MaxBadgeCount: 8}
}

// #endregion config

// #region metric

// Metric captures a single validation check result.
type Metric struct {
	Name  string
	Pass  bool
	Note  string
}

// Result is the output of post-decision validation. It never blocks the
// loop; failures are logged for inspection only.
type Result struct {
	Passed  bool
	Metrics []Metric
	Reason  string
}

// #endregion metric

// #region harness

// Harness runs post-decision invariant checks.
type Harness struct {
	config Config
}

// NewHarness creates a verification harness with the given configuration.
func NewHarness(config Config) *Harness {
	return &Harness{config: config}
}

// Run validates the transition from prev to next GameState. Always returns a
// result; callers log it but never roll back on failure — these are
// informational checks, not gates.
func (h *Harness) Run(prev, next gamestate.GameState) Result {
	var metrics []Metric
	passed := true
	var failReasons []string

	badgeOK := next.BadgeCount >= prev.BadgeCount && next.BadgeCount <= h.config.MaxBadgeCount
	metrics = append(metrics, Metric{Name: "badge_count_monotonic", Pass: badgeOK})
	if !badgeOK {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("badge count moved from %d to %d", prev.BadgeCount, next.BadgeCount))
	}

	hp := next.PartyHealthSummary
	hpOK := hp.CurrentHP >= 0 && (hp.MaxHP == 0 || hp.CurrentHP <= hp.MaxHP)
	metrics = append(metrics, Metric{Name: "party_hp_in_range", Pass: hpOK})
	if !hpOK {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("party HP %d/%d out of range", hp.CurrentHP, hp.MaxHP))
	}

	milestonesOK := len(next.Progress.Milestones) >= len(prev.Progress.Milestones)
	metrics = append(metrics, Metric{Name: "milestones_monotonic", Pass: milestonesOK})
	if !milestonesOK {
		passed = false
		failReasons = append(failReasons, "milestone set shrank between decisions")
	}

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("verify failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("verify failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return Result{Passed: passed, Metrics: metrics, Reason: reason}
}

// #endregion harness
