package drafts

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	draft     Draft
	expiresAt time.Time
}

// MemoryStore is the in-process draft store used when no Redis is
// configured. Expired entries are hidden from Get and removed by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, projectID string) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[projectID]
	if !ok || m.expired(e) {
		return nil, ErrNotFound
	}
	d := e.draft
	return &d, nil
}

func (m *MemoryStore) Put(_ context.Context, d *Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	d.UpdatedAt = now.UTC()
	e := memoryEntry{draft: *d}
	if m.ttl > 0 {
		e.expiresAt = now.Add(m.ttl)
	}
	m.entries[d.ProjectID] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, projectID)
	return nil
}

// Sweep drops expired drafts and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, e := range m.entries {
		if m.expired(e) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt)
}
