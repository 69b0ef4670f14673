// Package workflow drives the token-correlated club creation dialogue:
// the per-token state store and the step machine over it.
package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fanclubkz/consultant/internal/domain"
)

// ErrUnknownConversation is returned when a token has no live state,
// either because it was never issued or because it expired.
var ErrUnknownConversation = errors.New("unknown conversation")

// StateStore keeps in-progress creation states keyed by token.
// Update runs its closure inside the token's critical section, so a
// step transition is atomic even under concurrent requests for the
// same token.
type StateStore interface {
	Create(token string) *domain.ConversationState
	Get(token string) (*domain.ConversationState, bool)
	Update(token string, fn func(*domain.ConversationState) error) error
	Evict(token string)
	Len() int
}

type stateEntry struct {
	mu      sync.Mutex
	state   *domain.ConversationState
	evicted bool
}

// MemoryStore is the in-process StateStore implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*stateEntry
	ttl     time.Duration
}

// NewMemoryStore creates a store whose entries expire after ttl of
// inactivity once the sweeper runs.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*stateEntry),
		ttl:     ttl,
	}
}

// Create installs a fresh state for the token, replacing any existing
// one, and returns a snapshot of it.
func (m *MemoryStore) Create(token string) *domain.ConversationState {
	entry := &stateEntry{state: domain.NewConversationState(token)}
	m.mu.Lock()
	m.entries[token] = entry
	m.mu.Unlock()
	return entry.state.Clone()
}

// Get returns a snapshot of the token's state.
func (m *MemoryStore) Get(token string) (*domain.ConversationState, bool) {
	m.mu.RLock()
	entry, ok := m.entries[token]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.evicted {
		return nil, false
	}
	return entry.state.Clone(), true
}

// Update runs fn on the live state under the token's lock. The error
// from fn is returned unchanged; ErrUnknownConversation is returned
// when the token has no live state.
func (m *MemoryStore) Update(token string, fn func(*domain.ConversationState) error) error {
	m.mu.RLock()
	entry, ok := m.entries[token]
	m.mu.RUnlock()
	if !ok {
		return ErrUnknownConversation
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.evicted {
		return ErrUnknownConversation
	}
	return fn(entry.state)
}

// Evict removes the token's state. Safe to call for unknown tokens.
func (m *MemoryStore) Evict(token string) {
	m.mu.Lock()
	entry, ok := m.entries[token]
	if ok {
		delete(m.entries, token)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	entry.mu.Lock()
	entry.evicted = true
	entry.mu.Unlock()
}

// Len reports the number of live states.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// sweep evicts states whose last update is older than the TTL.
func (m *MemoryStore) sweep() int {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.RLock()
	var expired []string
	for token, entry := range m.entries {
		entry.mu.Lock()
		if !entry.evicted && entry.state.UpdatedAt.Before(cutoff) {
			expired = append(expired, token)
		}
		entry.mu.Unlock()
	}
	m.mu.RUnlock()

	for _, token := range expired {
		m.Evict(token)
	}
	return len(expired)
}

// StartSweeper runs a background goroutine that periodically evicts
// expired conversation states until ctx is canceled.
func (m *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("conversation sweeper started", "interval", interval, "ttl", m.ttl)
		for {
			select {
			case <-ticker.C:
				if n := m.sweep(); n > 0 {
					slog.Info("conversation sweeper evicted expired states", "count", n)
				}
			case <-ctx.Done():
				slog.Info("conversation sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
