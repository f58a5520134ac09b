package memory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ardenlabs/playrunner/internal/gamestate"
	"github.com/ardenlabs/playrunner/internal/kv"
)

// #region decisionlog

func decisionLogKey(agentID string) string { return kv.AgentKey(agentID, "decisionlog") }

// AppendDecisionLog appends one entry with a monotonically increasing step
// number, truncating to the most recent MaxDecisionLog entries.
func (s *Store) AppendDecisionLog(ctx context.Context, agentID string, button gamestate.Button, reasoning string) (gamestate.DecisionLogEntry, error) {
	entries, err := s.DecisionLog(ctx, agentID)
	if err != nil {
		return gamestate.DecisionLogEntry{}, err
	}

	step := 1
	if n := len(entries); n > 0 {
		step = entries[n-1].Step + 1
	}
	entry := gamestate.DecisionLogEntry{
		Step:      step,
		Button:    button,
		Reasoning: reasoning,
	}
	entries = append(entries, entry)
	if len(entries) > gamestate.MaxDecisionLog {
		entries = entries[len(entries)-gamestate.MaxDecisionLog:]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return gamestate.DecisionLogEntry{}, fmt.Errorf("marshal decision log: %w", err)
	}
	if err := s.kv.Set(ctx, decisionLogKey(agentID), string(data), kv.TTLAgentState); err != nil {
		return gamestate.DecisionLogEntry{}, fmt.Errorf("set decision log: %w", err)
	}
	return entry, nil
}

// DecisionLog returns the full bounded log, oldest first.
func (s *Store) DecisionLog(ctx context.Context, agentID string) ([]gamestate.DecisionLogEntry, error) {
	raw, ok, err := s.kv.Get(ctx, decisionLogKey(agentID))
	if err != nil {
		return nil, fmt.Errorf("get decision log: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var entries []gamestate.DecisionLogEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("unmarshal decision log: %w", err)
	}
	return entries, nil
}

// ClearDecisionLog deletes the decision log. Called on agent reset.
func (s *Store) ClearDecisionLog(ctx context.Context, agentID string) error {
	if err := s.kv.Del(ctx, decisionLogKey(agentID)); err != nil {
		return fmt.Errorf("clear decision log: %w", err)
	}
	return nil
}

// #endregion decisionlog
