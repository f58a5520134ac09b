package areamap

import (
	"testing"
	"time"
)

// #region test-record

func TestRecord_FirstCallSetsNoEdge(t *testing.T) {
	m := New()
	m.Record("town")

	if m.IsLooping("town", "town") {
		t.Fatal("a single recorded area should not form a loop")
	}
}

func TestRecord_IncrementsAndCaps(t *testing.T) {
	m := New()

	for i := 0; i < 10; i++ {
		m.Record("town")
		m.Record("cave")
	}

	if m.weightLocked("town", "cave") > 1.0 {
		t.Fatalf("expected weight capped at 1.0, got %.4f", m.weightLocked("town", "cave"))
	}
}

// #endregion test-record

// #region test-loop-detection

func TestIsLooping_DetectsPingPong(t *testing.T) {
	m := New()

	for i := 0; i < 5; i++ {
		m.Record("town")
		m.Record("cave")
	}

	if !m.IsLooping("town", "cave") {
		t.Fatal("expected a repeated ping-pong to be detected as looping")
	}
}

func TestIsLooping_FalseForUnvisitedPair(t *testing.T) {
	m := New()
	m.Record("town")
	m.Record("cave")

	if m.IsLooping("town", "forest") {
		t.Fatal("expected no loop for a pair with no recorded transitions")
	}
}

func TestStrongestLoop_ReturnsHighestScoringPair(t *testing.T) {
	m := New()

	for i := 0; i < 5; i++ {
		m.Record("town")
		m.Record("cave")
	}
	// A weaker, non-looping pair that should not win over the strong loop.
	m.Record("forest")

	a, b, found := m.StrongestLoop()
	if !found {
		t.Fatal("expected a loop to be found")
	}
	if !(a == "town" && b == "cave") && !(a == "cave" && b == "town") {
		t.Fatalf("expected the town/cave pair, got %s/%s", a, b)
	}
}

func TestStrongestLoop_NoneFound(t *testing.T) {
	m := New()
	m.Record("town")
	m.Record("cave")

	_, _, found := m.StrongestLoop()
	if found {
		t.Fatal("expected no loop for a single weak transition")
	}
}

// #endregion test-loop-detection

// #region test-decay

func TestDecay_PrunesWeakEdges(t *testing.T) {
	m := New()
	m.Record("town")
	m.Record("cave")

	// Force the edge's timestamp far enough into the past that decay drops
	// it below the prune floor.
	m.edges["town"]["cave"].UpdatedAt = time.Now().UTC().Add(-10 * DecayHalfLife)

	m.Decay()

	if m.weightLocked("town", "cave") != 0 {
		t.Fatalf("expected the decayed edge to be pruned, got weight %.4f", m.weightLocked("town", "cave"))
	}
}

func TestDecay_FreshEdgeBarelyDecays(t *testing.T) {
	m := New()
	m.Record("town")
	m.Record("cave")

	before := m.weightLocked("town", "cave")
	m.Decay()
	after := m.weightLocked("town", "cave")

	if after > before || after < before*0.9 {
		t.Fatalf("expected a near-fresh edge to barely decay, before=%.4f after=%.4f", before, after)
	}
}

// #endregion test-decay

// #region test-reset

func TestReset_ClearsState(t *testing.T) {
	m := New()
	m.Record("town")
	m.Record("cave")

	m.Reset()

	if m.weightLocked("town", "cave") != 0 {
		t.Fatal("expected no edges after reset")
	}
	m.Record("cave")
	if m.weightLocked("town", "cave") != 0 {
		t.Fatal("expected reset to also clear the last-recorded area so no stale edge forms")
	}
}

// #endregion test-reset
