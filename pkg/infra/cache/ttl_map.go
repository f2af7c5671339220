package cache

import (
	"sync"
	"time"
)

// TTLEntry represents an entry in TTLMap
type TTLEntry struct {
	Value     interface{}
	ExpiresAt time.Time
}

// TTLMap is a process-local map whose entries expire after TTL. Expired
// entries are dropped lazily on Get or in bulk by Purge.
type TTLMap struct {
	Data map[string]*TTLEntry
	Mu   sync.RWMutex
	TTL  time.Duration
	now  func() time.Time
}

func NewTTLMap(ttl time.Duration) *TTLMap {
	return &TTLMap{
		Data: make(map[string]*TTLEntry),
		TTL:  ttl,
		now:  time.Now,
	}
}

func (m *TTLMap) Get(key string) (interface{}, bool) {
	m.Mu.RLock()
	entry, exists := m.Data[key]
	if !exists {
		m.Mu.RUnlock()
		return nil, false
	}
	isExpired := m.now().After(entry.ExpiresAt)
	value := entry.Value
	m.Mu.RUnlock()

	if isExpired {
		m.Mu.Lock()
		if current, ok := m.Data[key]; ok && m.now().After(current.ExpiresAt) {
			delete(m.Data, key)
		}
		m.Mu.Unlock()
		return nil, false
	}
	return value, true
}

func (m *TTLMap) Set(key string, value interface{}) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Data[key] = &TTLEntry{
		Value:     value,
		ExpiresAt: m.now().Add(m.TTL),
	}
}

func (m *TTLMap) Delete(key string) {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	delete(m.Data, key)
}

func (m *TTLMap) Clear() {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	m.Data = make(map[string]*TTLEntry)
}

// Purge removes every expired entry and returns how many were dropped.
func (m *TTLMap) Purge() int {
	m.Mu.Lock()
	defer m.Mu.Unlock()
	now := m.now()
	dropped := 0
	for k, e := range m.Data {
		if now.After(e.ExpiresAt) {
			delete(m.Data, k)
			dropped++
		}
	}
	return dropped
}

func (m *TTLMap) Len() int {
	m.Mu.RLock()
	defer m.Mu.RUnlock()
	return len(m.Data)
}
