// Package recency remembers which quotes were recently shown in a scope so
// that random selection can avoid repeating them.
package recency

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/quotebook/internal/config"
	"github.com/hpungsan/quotebook/internal/db"
)

// Cache is a per-scope set of quote ids with expiry. Lookups are best effort:
// a backend failure reads as "not recent".
type Cache interface {
	Recent(ctx context.Context, scope string, id int64) bool
	Remember(ctx context.Context, scope string, id int64, ttl time.Duration)
}

// New returns the cache selected by kind. "off" yields nil, which disables
// anti-repetition.
func New(kind string, database *sql.DB) (Cache, error) {
	switch kind {
	case config.RecencyMemory, "":
		return NewMemory(), nil
	case config.RecencySQLite:
		return NewSQLite(database), nil
	case config.RecencyOff:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown recency cache %q", kind)
	}
}

type memoryKey struct {
	scope string
	id    int64
}

// Memory is an in-process cache.
type Memory struct {
	mu      sync.Mutex
	entries map[memoryKey]time.Time
	now     func() time.Time
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[memoryKey]time.Time), now: time.Now}
}

// Recent implements Cache.
func (m *Memory) Recent(_ context.Context, scope string, id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := memoryKey{scope, id}
	exp, ok := m.entries[k]
	if !ok {
		return false
	}
	if !m.now().Before(exp) {
		delete(m.entries, k)
		return false
	}
	return true
}

// Remember implements Cache.
func (m *Memory) Remember(_ context.Context, scope string, id int64, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, exp := range m.entries {
		if !now.Before(exp) {
			delete(m.entries, k)
		}
	}
	m.entries[memoryKey{scope, id}] = now.Add(ttl)
}

// SQLite keeps recency in the recent_sends table so it survives restarts.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite creates a cache backed by database.
func NewSQLite(database *sql.DB) *SQLite {
	return &SQLite{db: database, now: time.Now}
}

// Recent implements Cache.
func (s *SQLite) Recent(ctx context.Context, scope string, id int64) bool {
	recent, err := db.IsRecent(ctx, s.db, scope, id, s.now())
	if err != nil {
		log.Warn().Err(err).Str("scope", scope).Int64("quote_id", id).Msg("recency lookup failed")
		return false
	}
	return recent
}

// Remember implements Cache.
func (s *SQLite) Remember(ctx context.Context, scope string, id int64, ttl time.Duration) {
	now := s.now()
	if _, err := db.PurgeExpiredRecent(ctx, s.db, now); err != nil {
		log.Warn().Err(err).Msg("recency purge failed")
	}
	if err := db.MarkRecent(ctx, s.db, scope, id, now.Add(ttl)); err != nil {
		log.Warn().Err(err).Str("scope", scope).Int64("quote_id", id).Msg("recency update failed")
	}
}
