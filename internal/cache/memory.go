package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value    []byte
	expireAt time.Time
}

// MemoryCache is an in-process Cache bounded by entry count. When full,
// the entry closest to expiry is evicted.
type MemoryCache struct {
	mu      sync.Mutex
	data    map[string]memoryItem
	maxSize int
	now     func() time.Time
}

// NewMemoryCache creates an in-memory cache holding up to maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &MemoryCache{
		data:    make(map[string]memoryItem),
		maxSize: maxSize,
		now:     time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if m.now().After(item.expireAt) {
		delete(m.data, key)
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if _, exists := m.data[key]; !exists && len(m.data) >= m.maxSize {
		m.evict()
	}
	m.data[key] = memoryItem{value: value, expireAt: m.now().Add(ttl)}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *MemoryCache) evict() {
	var (
		victim string
		oldest time.Time
	)
	for k, item := range m.data {
		if victim == "" || item.expireAt.Before(oldest) {
			victim, oldest = k, item.expireAt
		}
	}
	delete(m.data, victim)
}
