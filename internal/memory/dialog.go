package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ardenlabs/playrunner/internal/gamestate"
	"github.com/ardenlabs/playrunner/internal/kv"
)

// #region dialog

// dialogKey stores the bounded comment log under the agent's "decisions" key,
// generalizing the single-row "latest reflection" pattern to a rolling
// window of the last MaxDialogHistory personality comments.
func dialogKey(agentID string) string { return kv.AgentKey(agentID, "decisions") }

// AppendComment records a non-empty personality comment, bounding the log to
// the last MaxDialogHistory entries. Empty comments are a no-op — not every
// decision carries one.
func (s *Store) AppendComment(ctx context.Context, agentID, text string) error {
	if text == "" {
		return nil
	}
	entries, err := s.DialogHistory(ctx, agentID)
	if err != nil {
		return err
	}
	entries = append(entries, gamestate.DialogEntry{Text: text, Timestamp: time.Now().UTC()})
	if len(entries) > gamestate.MaxDialogHistory {
		entries = entries[len(entries)-gamestate.MaxDialogHistory:]
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal dialog history: %w", err)
	}
	if err := s.kv.Set(ctx, dialogKey(agentID), string(data), kv.TTLAgentState); err != nil {
		return fmt.Errorf("set dialog history: %w", err)
	}
	return nil
}

// DialogHistory returns the bounded comment log, oldest first.
func (s *Store) DialogHistory(ctx context.Context, agentID string) ([]gamestate.DialogEntry, error) {
	raw, ok, err := s.kv.Get(ctx, dialogKey(agentID))
	if err != nil {
		return nil, fmt.Errorf("get dialog history: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var entries []gamestate.DialogEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("unmarshal dialog history: %w", err)
	}
	return entries, nil
}

// Latest returns the most recent comment, or false if none exists, mirroring
// the single-reflection read this log generalizes.
func (s *Store) Latest(ctx context.Context, agentID string) (gamestate.DialogEntry, bool, error) {
	entries, err := s.DialogHistory(ctx, agentID)
	if err != nil || len(entries) == 0 {
		return gamestate.DialogEntry{}, false, err
	}
	return entries[len(entries)-1], true, nil
}

// ClearDialogHistory deletes the comment log. Called on agent reset.
func (s *Store) ClearDialogHistory(ctx context.Context, agentID string) error {
	if err := s.kv.Del(ctx, dialogKey(agentID)); err != nil {
		return fmt.Errorf("clear dialog history: %w", err)
	}
	return nil
}

// #endregion dialog
