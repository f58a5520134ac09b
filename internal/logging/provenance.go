// Package logging implements a durable, append-only audit trail of executed
// decisions, separate from the bounded rolling DecisionLog the Memory Store
// keeps for prompt context. Grounded on the teacher's provenance_log
// package: same db.Exec-per-row shape, same nullable-column handling,
// retargeted from a state-version commit ledger to a per-agent decision
// ledger.
package logging

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS decision_audit_log (
	agent_id    TEXT NOT NULL,
	decision_id TEXT NOT NULL,
	step        INTEGER NOT NULL,
	button      TEXT NOT NULL,
	screen_kind TEXT,
	confidence  REAL,
	is_fallback INTEGER NOT NULL DEFAULT 0,
	reasoning   TEXT,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_agent ON decision_audit_log(agent_id, created_at);
`

// OpenAuditDB opens (creating if absent) the audit log database at path.
func OpenAuditDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("logging: open audit db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("logging: pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("logging: migrate: %w", err)
	}
	return db, nil
}

// #endregion schema

// #region log-decision

// LogDecision writes one audit entry.
func LogDecision(db *sql.DB, entry AuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO decision_audit_log
		 (agent_id, decision_id, step, button, screen_kind, confidence, is_fallback, reasoning, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.AgentID,
		entry.DecisionID,
		entry.Step,
		entry.Button,
		nullIfEmpty(entry.ScreenKind),
		entry.Confidence,
		boolToInt(entry.IsFallback),
		nullIfEmpty(entry.Reasoning),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("logging: log decision: %w", err)
	}
	return nil
}

// RecentEntries returns an agent's most recent audit entries, newest first.
func RecentEntries(db *sql.DB, agentID string, limit int) ([]AuditEntry, error) {
	rows, err := db.Query(
		`SELECT decision_id, step, button, screen_kind, confidence, is_fallback, reasoning, created_at
		 FROM decision_audit_log WHERE agent_id = ? ORDER BY created_at DESC LIMIT ?`,
		agentID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("logging: query recent: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var screenKind, reasoning sql.NullString
		var isFallback int
		var createdAt string
		e.AgentID = agentID
		if err := rows.Scan(&e.DecisionID, &e.Step, &e.Button, &screenKind, &e.Confidence, &isFallback, &reasoning, &createdAt); err != nil {
			return nil, fmt.Errorf("logging: scan row: %w", err)
		}
		e.ScreenKind = screenKind.String
		e.Reasoning = reasoning.String
		e.IsFallback = isFallback != 0
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("logging: iterate rows: %w", err)
	}
	return out, nil
}

// #endregion log-decision

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
