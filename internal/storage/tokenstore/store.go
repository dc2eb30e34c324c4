package tokenstore

import (
	"context"
	"sync"

	"github.com/kubecloudsinc/kci-client/internal/core/domain"
)

// Store holds at most one token.
//
// Get reports absence as ok == false with a nil error; a non-nil error
// means the underlying storage failed.
type Store interface {
	Get(ctx context.Context) (token domain.Token, ok bool, err error)
	Set(ctx context.Context, token domain.Token) error
	Clear(ctx context.Context) error
}

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	token domain.Token
	set   bool
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryWith returns a Memory store holding t.
func NewMemoryWith(t domain.Token) *Memory {
	return &Memory{token: t, set: true}
}

// Get returns the held token.
func (m *Memory) Get(ctx context.Context) (domain.Token, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.set, nil
}

// Set replaces the held token.
func (m *Memory) Set(ctx context.Context, t domain.Token) error {
	if t.IsZero() {
		return domain.ErrInvalidArgument.WithDetails("empty token")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.set = t, true
	return nil
}

// Clear drops the held token.
func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.set = "", false
	return nil
}
