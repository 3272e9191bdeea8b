package repository

import (
	"context"
	"sync"
	"time"
)

// memorySweepInterval bounds how often Set scans for expired entries.
const memorySweepInterval = time.Minute

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is the in-process CacheRepository used when no Redis address is configured.
type MemoryCache struct {
	mu        sync.RWMutex
	data      map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	entry, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if entry.expired(m.now()) {
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

// Set stores value and, at most once per sweep interval, drops every expired
// entry. Keys are rarely read twice, so expiry on Get alone would not bound the map.
func (m *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	now := m.now()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= memorySweepInterval {
		m.sweepLocked(now)
	}
	m.data[key] = entry
	return nil
}

func (m *MemoryCache) sweepLocked(now time.Time) {
	for key, entry := range m.data {
		if entry.expired(now) {
			delete(m.data, key)
		}
	}
	m.lastSweep = now
}

func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
