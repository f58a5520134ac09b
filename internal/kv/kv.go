// Package kv defines the typed key-value interface the Persistence Layer
// exposes to the rest of the system, along with an in-memory implementation
// used for tests and local runs.
package kv

import (
	"context"
	"sync"
	"time"
)

// #region interface

// Store is the typed key-value interface every backend implements.
// Implementations must behave identically for the operations used by the
// memory store and heuristic engine, whether backed by Redis, SQLite, or
// memory alone.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error

	HGet(ctx context.Context, key, field string) (string, bool, error)
	HSet(ctx context.Context, key, field, value string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HDel(ctx context.Context, key, field string) error

	LPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int) error

	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)

	ZAdd(ctx context.Context, key string, member string, score float64) error
	ZRevRange(ctx context.Context, key string, start, stop int) ([]ZMember, error)

	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	IncrByFloat(ctx context.Context, key string, delta float64) (float64, error)

	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// ZMember is one entry of a sorted-set range read.
type ZMember struct {
	Member string
	Score  float64
}

// #endregion interface

// #region ttl-table

// Standard TTLs per the persistence layer's key-naming contract.
const (
	TTLHeartbeat   = 60 * time.Second
	TTLRewardHist  = 1 * time.Hour
	TTLStuckState  = 5 * time.Minute
	TTLAgentState  = 24 * time.Hour
)

// AgentKey namespaces a key under an agent's scope: agent:{id}:<suffix>.
func AgentKey(agentID, suffix string) string {
	return "agent:" + agentID + ":" + suffix
}

// LeaderboardKey namespaces a shared leaderboard key.
func LeaderboardKey(kind string) string {
	return "leaderboard:" + kind
}

// #endregion ttl-table

// #region mem-store

type memEntry struct {
	value   string
	hash    map[string]string
	list    []string
	set     map[string]bool
	zset    map[string]float64
	expires time.Time
}

func (e *memEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// MemStore is an in-process implementation of Store with identical
// observable semantics to the durable backends, used for tests and local
// runs with no external dependency.
type MemStore struct {
	mu      sync.Mutex
	entries map[string]*memEntry
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: map[string]*memEntry{}}
}

func (m *MemStore) get(key string) *memEntry {
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if e.expired(time.Now()) {
		delete(m.entries, key)
		return nil
	}
	return e
}

func (m *MemStore) getOrCreate(key string) *memEntry {
	if e := m.get(key); e != nil {
		return e
	}
	e := &memEntry{}
	m.entries[key] = e
	return e
}

func (m *MemStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get(key)
	if e == nil {
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *MemStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.getOrCreate(key)
	e.value = value
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	} else {
		e.expires = time.Time{}
	}
	return nil
}

func (m *MemStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemStore) HGet(_ context.Context, key, field string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get(key)
	if e == nil || e.hash == nil {
		return "", false, nil
	}
	v, ok := e.hash[field]
	return v, ok, nil
}

func (m *MemStore) HSet(_ context.Context, key, field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.getOrCreate(key)
	if e.hash == nil {
		e.hash = map[string]string{}
	}
	e.hash[field] = value
	return nil
}

func (m *MemStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get(key)
	if e == nil || e.hash == nil {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(e.hash))
	for k, v := range e.hash {
		out[k] = v
	}
	return out, nil
}

func (m *MemStore) HDel(_ context.Context, key, field string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get(key)
	if e != nil && e.hash != nil {
		delete(e.hash, field)
	}
	return nil
}

func (m *MemStore) LPush(_ context.Context, key string, values ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.getOrCreate(key)
	for _, v := range values {
		e.list = append([]string{v}, e.list...)
	}
	return nil
}

func (m *MemStore) LRange(_ context.Context, key string, start, stop int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get(key)
	if e == nil {
		return nil, nil
	}
	return sliceRange(e.list, start, stop), nil
}

func (m *MemStore) LTrim(_ context.Context, key string, start, stop int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get(key)
	if e == nil {
		return nil
	}
	e.list = sliceRange(e.list, start, stop)
	return nil
}

func (m *MemStore) SAdd(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.getOrCreate(key)
	if e.set == nil {
		e.set = map[string]bool{}
	}
	for _, mem := range members {
		e.set[mem] = true
	}
	return nil
}

func (m *MemStore) SMembers(_ context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get(key)
	if e == nil {
		return nil, nil
	}
	out := make([]string, 0, len(e.set))
	for k := range e.set {
		out = append(out, k)
	}
	return out, nil
}

func (m *MemStore) ZAdd(_ context.Context, key string, member string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.getOrCreate(key)
	if e.zset == nil {
		e.zset = map[string]float64{}
	}
	e.zset[member] = score
	return nil
}

func (m *MemStore) ZRevRange(_ context.Context, key string, start, stop int) ([]ZMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get(key)
	if e == nil {
		return nil, nil
	}
	members := make([]ZMember, 0, len(e.zset))
	for k, v := range e.zset {
		members = append(members, ZMember{Member: k, Score: v})
	}
	sortZMembersDesc(members)
	return sliceRangeZ(members, start, stop), nil
}

func (m *MemStore) IncrBy(_ context.Context, key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.getOrCreate(key)
	var cur int64
	if e.value != "" {
		cur = parseInt64(e.value)
	}
	cur += delta
	e.value = formatInt64(cur)
	return cur, nil
}

func (m *MemStore) IncrByFloat(_ context.Context, key string, delta float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.getOrCreate(key)
	var cur float64
	if e.value != "" {
		cur = parseFloat64(e.value)
	}
	cur += delta
	e.value = formatFloat64(cur)
	return cur, nil
}

func (m *MemStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get(key)
	if e == nil {
		return nil
	}
	e.expires = time.Now().Add(ttl)
	return nil
}

// #endregion mem-store
