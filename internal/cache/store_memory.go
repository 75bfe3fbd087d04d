package cache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	value     []byte
	expiresAt time.Time
	hasTTL    bool
}

func (e memEntry) isExpired(now time.Time) bool {
	return e.hasTTL && now.After(e.expiresAt)
}

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	now     func() time.Time
}

func NewMemoryStore() Store {
	return newMemoryStore(time.Now)
}

func newMemoryStore(now func() time.Time) *memoryStore {
	return &memoryStore{
		entries: make(map[string]memEntry),
		now:     now,
	}
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.hasTTL = true
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[key] = entry
	return nil
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	entry, ok := s.lookup(key)
	if !ok {
		return nil, nil
	}
	return entry.value, nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memoryStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.lookup(key)
	return ok, nil
}

// lookup returns a live entry, evicting it if it has expired.
func (s *memoryStore) lookup(key string) (memEntry, bool) {
	now := s.now()
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return memEntry{}, false
	}
	if entry.isExpired(now) {
		s.mu.Lock()
		if cur, still := s.entries[key]; still && cur.isExpired(now) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return memEntry{}, false
	}
	return entry, true
}
