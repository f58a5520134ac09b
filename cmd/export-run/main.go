// Command export-run exports an agent's durable decision audit trail into a
// minimal replay fixture: one step per recorded turn, using the recorded
// button as the sole confidence entry and the recorded screen kind as both
// the previous and next state's screen kind. The audit log has no ban/avoid
// stats or full state snapshots, so the emitted fixture is a starting point
// for hand-filling those fields, not a byte-exact reproduction of the run.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ardenlabs/playrunner/internal/gamestate"
	"github.com/ardenlabs/playrunner/internal/logging"
	"github.com/ardenlabs/playrunner/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the audit db")
	agentID := flag.String("agent", "", "agent ID to export")
	last := flag.Int("last", 20, "number of most recent audit entries to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *agentID == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: export-run --db path/to/audit.db --agent agentId --out path/to/fixture.json [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *agentID, *last, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath, agentID string, last int, outPath string) error {
	db, err := logging.OpenAuditDB(dbPath)
	if err != nil {
		return fmt.Errorf("open audit db: %w", err)
	}
	defer db.Close()

	entries, err := logging.RecentEntries(db, agentID, last)
	if err != nil {
		return fmt.Errorf("recent entries: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no audit entries found for agent %s", agentID)
	}
	reverseChronological(entries)

	fmt.Printf("Found %d audit entries\n", len(entries))

	fixture := buildFixture(agentID, entries)
	return writeFixture(fixture, outPath)
}

// reverseChronological flips RecentEntries' newest-first order to oldest-first,
// the order a replay fixture expects turns in.
func reverseChronological(entries []logging.AuditEntry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}

// #endregion extract

// #region build

func buildFixture(agentID string, entries []logging.AuditEntry) replay.Fixture {
	interactions := make([]replay.FixtureInteraction, len(entries))
	expected := make([]replay.FixtureExpectedResult, len(entries))

	for i, e := range entries {
		state := replay.FixtureGameState{ScreenKind: e.ScreenKind}
		interactions[i] = replay.FixtureInteraction{
			TurnID:    e.DecisionID,
			Steps:     []replay.FixtureSequenceStep{{Confidences: map[string]float32{e.Button: e.Confidence}}},
			Stats:     replay.FixtureButtonStats{},
			PrevState: state,
			NextState: state,
		}
		expected[i] = replay.FixtureExpectedResult{
			TurnID:       e.DecisionID,
			Plan:         []string{e.Button},
			Vetoed:       e.IsFallback && e.Button == string(gamestate.ButtonWait),
			VerifyPassed: true,
		}
	}

	return replay.Fixture{
		Description: fmt.Sprintf("export of %d audit entries for agent %s", len(entries), agentID),
		Config: replay.FixtureConfig{
			GateConfig:   replay.FixtureGateConfig{SequenceThreshold: 0.85},
			VerifyConfig: replay.FixtureVerifyConfig{MaxBadgeCount: 8},
		},
		Interactions:    interactions,
		ExpectedResults: expected,
	}
}

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Printf("Wrote fixture to %s (%d bytes, %d interactions)\n", outPath, len(data), len(fixture.Interactions))
	return nil
}

// #endregion build
