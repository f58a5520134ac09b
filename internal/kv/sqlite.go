package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema

// SQLiteStore is the local/offline backend of the Persistence Layer. It
// implements the same Store interface as the Redis-backed production store,
// giving local runs and CI a durable fallback with no external service.
const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
	key         TEXT PRIMARY KEY,
	value       TEXT,
	hash_json   TEXT,
	list_json   TEXT,
	set_json    TEXT,
	zset_json   TEXT,
	expires_at  TEXT
);
`

// #endregion schema

// #region store

// SQLiteStore implements Store over a single-file SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens dbPath and ensures the kv_entries table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// #endregion store

// #region row-access

type row struct {
	value      sql.NullString
	hashJSON   sql.NullString
	listJSON   sql.NullString
	setJSON    sql.NullString
	zsetJSON   sql.NullString
	expiresAt  sql.NullString
}

func (s *SQLiteStore) readRow(ctx context.Context, key string) (*row, error) {
	var r row
	err := s.db.QueryRowContext(ctx,
		`SELECT value, hash_json, list_json, set_json, zset_json, expires_at FROM kv_entries WHERE key = ?`, key,
	).Scan(&r.value, &r.hashJSON, &r.listJSON, &r.setJSON, &r.zsetJSON, &r.expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if r.expiresAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, r.expiresAt.String); err == nil && time.Now().After(t) {
			_, _ = s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
			return nil, nil
		}
	}
	return &r, nil
}

func (s *SQLiteStore) upsert(ctx context.Context, key string, mutate func(r *row)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	r, err := s.readRow(ctx, key)
	if err != nil {
		return err
	}
	if r == nil {
		r = &row{}
	}
	mutate(r)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, hash_json, list_json, set_json, zset_json, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   value=excluded.value, hash_json=excluded.hash_json, list_json=excluded.list_json,
		   set_json=excluded.set_json, zset_json=excluded.zset_json, expires_at=excluded.expires_at`,
		key, r.value, r.hashJSON, r.listJSON, r.setJSON, r.zsetJSON, r.expiresAt,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return tx.Commit()
}

// #endregion row-access

// #region string-ops

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	r, err := s.readRow(ctx, key)
	if err != nil || r == nil || !r.value.Valid {
		return "", false, err
	}
	return r.value.String, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.upsert(ctx, key, func(r *row) {
		r.value = sql.NullString{String: value, Valid: true}
		r.expiresAt = expiryField(ttl)
	})
}

func (s *SQLiteStore) Del(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
	return err
}

func (s *SQLiteStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.upsert(ctx, key, func(r *row) {
		r.expiresAt = expiryField(ttl)
	})
}

func expiryField(ttl time.Duration) sql.NullString {
	if ttl <= 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: time.Now().Add(ttl).Format(time.RFC3339Nano), Valid: true}
}

// #endregion string-ops

// #region hash-ops

func (s *SQLiteStore) HGet(ctx context.Context, key, field string) (string, bool, error) {
	m, err := s.readHash(ctx, key)
	if err != nil {
		return "", false, err
	}
	v, ok := m[field]
	return v, ok, nil
}

func (s *SQLiteStore) HSet(ctx context.Context, key, field, value string) error {
	return s.upsert(ctx, key, func(r *row) {
		m := decodeMap(r.hashJSON)
		m[field] = value
		r.hashJSON = encodeMap(m)
	})
}

func (s *SQLiteStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.readHash(ctx, key)
}

func (s *SQLiteStore) HDel(ctx context.Context, key, field string) error {
	return s.upsert(ctx, key, func(r *row) {
		m := decodeMap(r.hashJSON)
		delete(m, field)
		r.hashJSON = encodeMap(m)
	})
}

func (s *SQLiteStore) readHash(ctx context.Context, key string) (map[string]string, error) {
	r, err := s.readRow(ctx, key)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return map[string]string{}, nil
	}
	return decodeMap(r.hashJSON), nil
}

func decodeMap(s sql.NullString) map[string]string {
	m := map[string]string{}
	if s.Valid {
		_ = json.Unmarshal([]byte(s.String), &m)
	}
	return m
}

func encodeMap(m map[string]string) sql.NullString {
	b, _ := json.Marshal(m)
	return sql.NullString{String: string(b), Valid: true}
}

// #endregion hash-ops

// #region list-ops

func (s *SQLiteStore) LPush(ctx context.Context, key string, values ...string) error {
	return s.upsert(ctx, key, func(r *row) {
		list := decodeList(r.listJSON)
		for _, v := range values {
			list = append([]string{v}, list...)
		}
		r.listJSON = encodeList(list)
	})
}

func (s *SQLiteStore) LRange(ctx context.Context, key string, start, stop int) ([]string, error) {
	r, err := s.readRow(ctx, key)
	if err != nil || r == nil {
		return nil, err
	}
	return sliceRange(decodeList(r.listJSON), start, stop), nil
}

func (s *SQLiteStore) LTrim(ctx context.Context, key string, start, stop int) error {
	return s.upsert(ctx, key, func(r *row) {
		r.listJSON = encodeList(sliceRange(decodeList(r.listJSON), start, stop))
	})
}

func decodeList(s sql.NullString) []string {
	var l []string
	if s.Valid {
		_ = json.Unmarshal([]byte(s.String), &l)
	}
	return l
}

func encodeList(l []string) sql.NullString {
	b, _ := json.Marshal(l)
	return sql.NullString{String: string(b), Valid: true}
}

// #endregion list-ops

// #region set-ops

func (s *SQLiteStore) SAdd(ctx context.Context, key string, members ...string) error {
	return s.upsert(ctx, key, func(r *row) {
		set := decodeMap(r.setJSON)
		for _, m := range members {
			set[m] = "1"
		}
		r.setJSON = encodeMap(set)
	})
}

func (s *SQLiteStore) SMembers(ctx context.Context, key string) ([]string, error) {
	r, err := s.readRow(ctx, key)
	if err != nil || r == nil {
		return nil, err
	}
	set := decodeMap(r.setJSON)
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out, nil
}

// #endregion set-ops

// #region zset-ops

func (s *SQLiteStore) ZAdd(ctx context.Context, key string, member string, score float64) error {
	return s.upsert(ctx, key, func(r *row) {
		z := decodeZSet(r.zsetJSON)
		z[member] = score
		r.zsetJSON = encodeZSet(z)
	})
}

func (s *SQLiteStore) ZRevRange(ctx context.Context, key string, start, stop int) ([]ZMember, error) {
	r, err := s.readRow(ctx, key)
	if err != nil || r == nil {
		return nil, err
	}
	z := decodeZSet(r.zsetJSON)
	members := make([]ZMember, 0, len(z))
	for k, v := range z {
		members = append(members, ZMember{Member: k, Score: v})
	}
	sortZMembersDesc(members)
	return sliceRangeZ(members, start, stop), nil
}

func decodeZSet(s sql.NullString) map[string]float64 {
	z := map[string]float64{}
	if s.Valid {
		_ = json.Unmarshal([]byte(s.String), &z)
	}
	return z
}

func encodeZSet(z map[string]float64) sql.NullString {
	b, _ := json.Marshal(z)
	return sql.NullString{String: string(b), Valid: true}
}

// #endregion zset-ops

// #region incr-ops

func (s *SQLiteStore) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	var result int64
	err := s.upsertReturn(ctx, key, func(r *row) {
		cur := parseInt64(r.value.String)
		cur += delta
		r.value = sql.NullString{String: formatInt64(cur), Valid: true}
		result = cur
	})
	return result, err
}

func (s *SQLiteStore) IncrByFloat(ctx context.Context, key string, delta float64) (float64, error) {
	var result float64
	err := s.upsertReturn(ctx, key, func(r *row) {
		cur := parseFloat64(r.value.String)
		cur += delta
		r.value = sql.NullString{String: formatFloat64(cur), Valid: true}
		result = cur
	})
	return result, err
}

func (s *SQLiteStore) upsertReturn(ctx context.Context, key string, mutate func(r *row)) error {
	return s.upsert(ctx, key, mutate)
}

// #endregion incr-ops
