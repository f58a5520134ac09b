package replay

import (
	"os"
	"path/filepath"
	"testing"
)

// #region fixture-tests

// TestFixture_LiveSession loads the live_session fixture, runs Replay(), and
// compares each turn's plan/veto/verify outcome against the expected result.
// This is the primary regression test — if gate/verify parameters change,
// this catches drift.
func TestFixture_LiveSession(t *testing.T) {
	fixturePath := filepath.Join("testdata", "live_session.json")
	f, err := LoadFixture(fixturePath)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	config := f.Config.ToReplayConfig()

	interactions := make([]Interaction, len(f.Interactions))
	for i := range f.Interactions {
		interactions[i] = f.Interactions[i].ToInteraction()
	}

	results := Replay(interactions, config)

	if len(results) != len(f.ExpectedResults) {
		t.Fatalf("expected %d results, got %d", len(f.ExpectedResults), len(results))
	}

	for i, expected := range f.ExpectedResults {
		actual := results[i]
		if actual.TurnID != expected.TurnID {
			t.Errorf("turn %d: expected turn_id=%s, got %s", i, expected.TurnID, actual.TurnID)
		}
		if actual.Vetoed != expected.Vetoed {
			t.Errorf("turn %d (%s): expected vetoed=%v, got %v (reason: %s)",
				i, expected.TurnID, expected.Vetoed, actual.Vetoed, actual.Reason)
		}
		if actual.VerifyResult.Passed != expected.VerifyPassed {
			t.Errorf("turn %d (%s): expected verify_passed=%v, got %v",
				i, expected.TurnID, expected.VerifyPassed, actual.VerifyResult.Passed)
		}
		if len(actual.Plan) != len(expected.Plan) {
			t.Errorf("turn %d (%s): expected plan length %d, got %d", i, expected.TurnID, len(expected.Plan), len(actual.Plan))
			continue
		}
		for j, button := range expected.Plan {
			if string(actual.Plan[j]) != button {
				t.Errorf("turn %d (%s): plan[%d] expected %s, got %s", i, expected.TurnID, j, button, actual.Plan[j])
			}
		}
	}
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

// #endregion fixture-tests
