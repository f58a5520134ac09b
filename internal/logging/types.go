package logging

import "time"

// #region audit-entry

// AuditEntry is a single durable row in the decision_audit_log table: a
// permanent record of one executed decision, independent of the bounded
// rolling DecisionLog kept in the kv store for prompt context.
type AuditEntry struct {
	AgentID    string
	DecisionID string
	Step       int
	Button     string
	ScreenKind string
	Confidence float32
	IsFallback bool
	Reasoning  string
	CreatedAt  time.Time
}

// #endregion audit-entry
