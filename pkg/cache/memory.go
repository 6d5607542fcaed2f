package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const memoryJanitorInterval = time.Minute

type memoryEntry struct {
	data      []byte
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is the in-process layer of the layered cache. Values are stored
// JSON-encoded so Get semantics match the Redis layer exactly. When the entry
// count exceeds maxEntries the janitor clears the map outright; the layer is a
// read accelerator, so losing it only costs a Redis round trip.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]memoryEntry
	maxEntries int
	stop       chan struct{}
	stopOnce   sync.Once
}

func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	m := &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		stop:       make(chan struct{}),
	}
	go m.janitor()
	return m
}

func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	if len(m.entries) >= m.maxEntries {
		m.entries = make(map[string]memoryEntry)
	}
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || entry.expired(time.Now()) {
		return ErrCacheMiss
	}
	return json.Unmarshal(entry.data, dest)
}

func (m *MemoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	return ok && !entry.expired(time.Now()), nil
}

func (m *MemoryCache) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *MemoryCache) janitor() {
	ticker := time.NewTicker(memoryJanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for k, e := range m.entries {
				if e.expired(now) {
					delete(m.entries, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

var _ Service = (*MemoryCache)(nil)
