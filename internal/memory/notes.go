// Package memory implements the Memory Store: structured per-agent notes,
// the append-only decision log, and the bounded dialog-history projection,
// all layered on the kv.Store interface per the Persistence Layer's key
// namespacing contract.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ardenlabs/playrunner/internal/gamestate"
	"github.com/ardenlabs/playrunner/internal/kv"
)

// #region store

// Store is the Memory Store, backed by any kv.Store implementation.
type Store struct {
	kv kv.Store
}

// NewStore wraps a kv.Store as a Memory Store.
func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

// #endregion store

// #region notes

func notesKey(agentID string) string { return kv.AgentKey(agentID, "memstash") }

// GetNotes reads the agent's notes, returning empty Notes with StuckMode set
// to StuckNone if unset.
func (s *Store) GetNotes(ctx context.Context, agentID string) (gamestate.Notes, error) {
	raw, ok, err := s.kv.Get(ctx, notesKey(agentID))
	if err != nil {
		return gamestate.Notes{}, fmt.Errorf("get notes: %w", err)
	}
	if !ok {
		return gamestate.Notes{StuckMode: gamestate.StuckNone}, nil
	}
	var n gamestate.Notes
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return gamestate.Notes{}, fmt.Errorf("unmarshal notes: %w", err)
	}
	return n, nil
}

// MergeNotes applies delta field-by-field (overwrite semantics), with
// failedAttempts appended then truncated to the last MaxFailedAttempts, and
// persists the result. Merging an all-nil delta is a no-op.
func (s *Store) MergeNotes(ctx context.Context, agentID string, delta gamestate.NotesDelta) (gamestate.Notes, error) {
	current, err := s.GetNotes(ctx, agentID)
	if err != nil {
		return gamestate.Notes{}, err
	}

	if delta.CurrentObjective != nil {
		current.CurrentObjective = *delta.CurrentObjective
	}
	if delta.LastKnownLocation != nil {
		current.LastKnownLocation = *delta.LastKnownLocation
	}
	if delta.ExitFound != nil {
		current.ExitFound = *delta.ExitFound
	}
	if delta.StuckMode != nil {
		current.StuckMode = *delta.StuckMode
	}
	if delta.ImportantDiscovery != nil {
		current.ImportantDiscovery = *delta.ImportantDiscovery
	}
	if delta.General != nil {
		current.General = *delta.General
	}
	if delta.FailedAttempt != nil && *delta.FailedAttempt != "" {
		current.FailedAttempts = append(current.FailedAttempts, *delta.FailedAttempt)
		if len(current.FailedAttempts) > gamestate.MaxFailedAttempts {
			current.FailedAttempts = current.FailedAttempts[len(current.FailedAttempts)-gamestate.MaxFailedAttempts:]
		}
	}

	if err := s.putNotes(ctx, agentID, current); err != nil {
		return gamestate.Notes{}, err
	}
	return current, nil
}

func (s *Store) putNotes(ctx context.Context, agentID string, n gamestate.Notes) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}
	if len(data) > gamestate.MaxNotesBytes {
		// Drop the legacy free-text field first; it is the only field this
		// store never writes to, so trimming it cannot lose structured data.
		n.Legacy = ""
		data, err = json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshal notes: %w", err)
		}
	}
	if err := s.kv.Set(ctx, notesKey(agentID), string(data), kv.TTLAgentState); err != nil {
		return fmt.Errorf("set notes: %w", err)
	}
	return nil
}

// ClearNotes resets notes to empty. Called on agent reset.
func (s *Store) ClearNotes(ctx context.Context, agentID string) error {
	if err := s.kv.Del(ctx, notesKey(agentID)); err != nil {
		return fmt.Errorf("clear notes: %w", err)
	}
	return nil
}

// #endregion notes

// #region projection

// FormatNotesForPrompt renders notes deterministically for the model prompt,
// truncating to limit bytes on a line boundary.
func FormatNotesForPrompt(n gamestate.Notes, limit int) string {
	var b strings.Builder
	writeLine := func(format string, args ...interface{}) {
		b.WriteString(fmt.Sprintf(format, args...))
		b.WriteString("\n")
	}

	if n.CurrentObjective != "" {
		writeLine("Objective: %s", n.CurrentObjective)
	}
	if n.LastKnownLocation != "" {
		writeLine("Last known location: %s", n.LastKnownLocation)
	}
	if n.ExitFound {
		writeLine("Exit found.")
	}
	if n.StuckMode != "" && n.StuckMode != gamestate.StuckNone {
		writeLine("Stuck mode: %s", n.StuckMode)
	}
	for _, f := range n.FailedAttempts {
		writeLine("Failed attempt: %s", f)
	}
	if n.ImportantDiscovery != "" {
		writeLine("Discovery: %s", n.ImportantDiscovery)
	}
	if n.General != "" {
		writeLine("Notes: %s", n.General)
	}

	return truncateOnLine(b.String(), limit)
}

// truncateOnLine truncates s to at most limit bytes, backing off to the
// last newline so only whole lines are kept; when the first line alone is
// longer than limit, it is cut at limit bytes.
func truncateOnLine(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	if idx := strings.LastIndex(cut, "\n"); idx >= 0 {
		return cut[:idx]
	}
	return cut
}

// #endregion projection

// #region reset-stamp

// LastResetAt reads back a marker timestamp for diagnostics; not part of the
// spec's contract, kept small because most callers only need ClearNotes.
func LastResetAt(ctx context.Context, kvs kv.Store, agentID string) (time.Time, bool, error) {
	raw, ok, err := kvs.Get(ctx, kv.AgentKey(agentID, "reset_at"))
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

// #endregion reset-stamp
