package service

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the process-local TokenBlacklist and RateLimiter used when
// no redis is configured.
type MemoryStore struct {
	mu       sync.Mutex
	revoked  map[string]time.Time
	counters map[string]memoryWindow
	now      func() time.Time
}

type memoryWindow struct {
	count   int
	resetAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revoked:  make(map[string]time.Time),
		counters: make(map[string]memoryWindow),
		now:      time.Now,
	}
}

func (m *MemoryStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = m.now().Add(ttl)
	return nil
}

func (m *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if m.now().After(until) {
		delete(m.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// Allow counts one hit against key in a fixed window.
func (m *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	w := m.counters[key]
	if now.After(w.resetAt) {
		w = memoryWindow{resetAt: now.Add(window)}
	}
	w.count++
	m.counters[key] = w
	return w.count <= limit, nil
}
