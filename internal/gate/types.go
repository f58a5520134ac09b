// Package gate implements the per-button execution gate: hard vetoes on
// banned/avoided buttons and the sequence threshold rule, then a soft score
// over the remaining candidate for logging — the same hard-veto-then-soft-
// score shape the teacher used for disposition-state commits, retargeted at
// button execution decisions.
package gate

// #region veto-type

// VetoType enumerates hard veto categories for a proposed button press.
type VetoType string

const (
	VetoBanned        VetoType = "banned_button"
	VetoAvoided       VetoType = "avoided_button"
	VetoLowConfidence VetoType = "below_threshold"
)

// #endregion veto-type

// #region veto-signal

// VetoSignal represents one detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region config

// Config holds the sequence-execution threshold.
type Config struct {
	SequenceThreshold float32 // steps 2..N execute only at or above this confidence
}

// DefaultConfig returns the literal threshold from the component design.
func DefaultConfig() Config {
	return Config{SequenceThreshold: 0.85}
}

// #endregion config

// #region decision

// Decision is the output of gating one proposed button press.
type Decision struct {
	Action      string // "execute" | "skip"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal
	SoftScore   float32 // 0-1, informational only
}

// #endregion decision
