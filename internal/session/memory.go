package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flight-search/live-search-gateway/internal/domain"
	"github.com/flight-search/live-search-gateway/internal/infrastructure/timeutil"
)

type memoryEntry struct {
	session   domain.SearchSession
	expiresAt time.Time
}

// MemoryStore is an in-process Store with lazy expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	clock   timeutil.Clock
}

// NewMemoryStore creates a MemoryStore. A nil clock uses the system time.
func NewMemoryStore(ttl time.Duration, clock timeutil.Clock) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = timeutil.NewRealClock()
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Save stores the session and starts its TTL. CreatedAt defaults to now.
func (m *MemoryStore) Save(_ context.Context, s domain.SearchSession) error {
	if s.SearchID == "" {
		return fmt.Errorf("%w: empty search id", domain.ErrInvalidRequest)
	}
	now := m.clock.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}

	m.mu.Lock()
	m.entries[s.SearchID] = memoryEntry{session: s, expiresAt: now.Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

// Get returns a copy of the session, or ErrSessionNotFound once it has expired.
func (m *MemoryStore) Get(_ context.Context, searchID string) (*domain.SearchSession, error) {
	m.mu.RLock()
	e, ok := m.entries[searchID]
	m.mu.RUnlock()

	if !ok || !m.clock.Now().Before(e.expiresAt) {
		return nil, domain.ErrSessionNotFound
	}
	s := e.session
	return &s, nil
}

// UpdateWatermark raises the stored watermark and refreshes the TTL.
// A smaller timestamp leaves the watermark unchanged.
func (m *MemoryStore) UpdateWatermark(_ context.Context, searchID string, ts int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[searchID]
	now := m.clock.Now()
	if !ok || !now.Before(e.expiresAt) {
		return domain.ErrSessionNotFound
	}
	if ts > e.session.LastUpdateTimestamp {
		e.session.LastUpdateTimestamp = ts
	}
	e.expiresAt = now.Add(m.ttl)
	m.entries[searchID] = e
	return nil
}

// Delete removes the session. Deleting an unknown ID is not an error.
func (m *MemoryStore) Delete(_ context.Context, searchID string) error {
	m.mu.Lock()
	delete(m.entries, searchID)
	m.mu.Unlock()
	return nil
}

// Sweep removes expired entries and returns how many were dropped.
func (m *MemoryStore) Sweep() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
