// Package areamap tracks GameState.Area transitions as a weighted,
// decaying graph so the loop coordinator can detect ping-pong loops between
// a small set of areas — a navigation failure mode the heuristic engine's
// frame-level stuck detection cannot see because the screen legitimately
// changes on every transition. Adapted from the teacher's weighted-edge
// evidence graph: same increment/decay/neighbor shape, held in memory
// because this map is ephemeral per-run state owned by the coordinator,
// not a durable cross-run store.
package areamap

import (
	"math"
	"sync"
	"time"
)

// #region edge

// Edge is one directed area-to-area transition with a decaying weight.
type Edge struct {
	From      string
	To        string
	Weight    float64
	UpdatedAt time.Time
}

// #endregion edge

// #region map

// Map is an in-memory, per-agent record of area transitions.
type Map struct {
	mu    sync.Mutex
	edges map[string]map[string]*Edge
	last  string
}

// New creates an empty area map.
func New() *Map {
	return &Map{edges: map[string]map[string]*Edge{}}
}

// #endregion map

// #region record

// Record notes a transition into area, incrementing the edge from the
// previously recorded area (if any) and capping it at 1.0. The first call
// only sets the current area with no edge.
func (m *Map) Record(area string) {
	if area == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.last != "" && m.last != area {
		m.incrementLocked(m.last, area, 0.2)
	}
	m.last = area
}

func (m *Map) incrementLocked(from, to string, delta float64) {
	row, ok := m.edges[from]
	if !ok {
		row = map[string]*Edge{}
		m.edges[from] = row
	}
	e, ok := row[to]
	if !ok {
		row[to] = &Edge{From: from, To: to, Weight: delta, UpdatedAt: time.Now().UTC()}
		return
	}
	e.Weight += delta
	if e.Weight > 1.0 {
		e.Weight = 1.0
	}
	e.UpdatedAt = time.Now().UTC()
}

// #endregion record

// #region loop-detection

// LoopThreshold is the edge weight at or above which a transition pair is
// considered a detected loop rather than ordinary backtracking.
const LoopThreshold = 0.6

// IsLooping reports whether the edge pair between a and b (in either
// direction) has both members at or above LoopThreshold, meaning the agent has
// bounced between the two areas repeatedly.
func (m *Map) IsLooping(a, b string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.weightLocked(a, b) >= LoopThreshold && m.weightLocked(b, a) >= LoopThreshold
}

func (m *Map) weightLocked(from, to string) float64 {
	row, ok := m.edges[from]
	if !ok {
		return 0
	}
	e, ok := row[to]
	if !ok {
		return 0
	}
	return e.Weight
}

// StrongestLoop scans all recorded areas and returns the pair with the
// highest mutual weight, if any pair qualifies under IsLooping.
func (m *Map) StrongestLoop() (a, b string, found bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var bestScore float64
	for from, row := range m.edges {
		for to, e := range row {
			back := m.weightLocked(to, from)
			if e.Weight < LoopThreshold || back < LoopThreshold {
				continue
			}
			score := e.Weight + back
			if score > bestScore {
				bestScore, a, b, found = score, from, to, true
			}
		}
	}
	return a, b, found
}

// #endregion loop-detection

// #region decay

// DecayHalfLife is how long it takes an edge's weight to halve absent
// further traversal.
const DecayHalfLife = 30 * time.Minute

// Decay applies exponential decay to every edge weight based on elapsed
// time since its last update, pruning edges that fall below 0.01.
func (m *Map) Decay() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	halfLifeSec := DecayHalfLife.Seconds()
	for from, row := range m.edges {
		for to, e := range row {
			elapsed := now.Sub(e.UpdatedAt).Seconds()
			if elapsed <= 0 {
				continue
			}
			e.Weight *= math.Exp(-elapsed * math.Ln2 / halfLifeSec)
			if e.Weight < 0.01 {
				delete(row, to)
			}
		}
		if len(row) == 0 {
			delete(m.edges, from)
		}
	}
}

// #endregion decay

// Reset clears all recorded transitions, called on an explicit agent reset.
func (m *Map) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = map[string]map[string]*Edge{}
	m.last = ""
}
