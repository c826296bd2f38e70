package auth

import (
	"context"
	"sync"
	"time"
)

// TokenRegistry tracks which refresh tokens are currently honored. Membership
// is keyed by the exact token string; a token that verifies cryptographically
// but is absent here is treated as never issued.
type TokenRegistry interface {
	Register(ctx context.Context, token, userID string, expiresAt time.Time) error
	IsActive(ctx context.Context, token string) (bool, error)
	// Revoke removes the token and reports whether it was registered.
	Revoke(ctx context.Context, token string) (bool, error)
}

// MemoryRegistry is a process-local registry. It does not survive restarts
// and cannot be shared across instances; use the Postgres or Redis backends
// in deployments.
type MemoryRegistry struct {
	mu     sync.Mutex
	expiry map[string]time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{expiry: make(map[string]time.Time)}
}

func (m *MemoryRegistry) Register(_ context.Context, token, _ string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiry[token] = expiresAt
	return nil
}

func (m *MemoryRegistry) IsActive(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiresAt, ok := m.expiry[token]
	if !ok {
		return false, nil
	}
	if time.Now().UTC().After(expiresAt) {
		delete(m.expiry, token)
		return false, nil
	}
	return true, nil
}

func (m *MemoryRegistry) Revoke(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.expiry[token]
	delete(m.expiry, token)
	return ok, nil
}
