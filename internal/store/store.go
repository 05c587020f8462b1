// Package store provides the durable key-value store holding the session
// token and the cross-process session flags. It is the single source of
// truth shared by every agent attached to the same session.
package store

import (
	"context"
	"sync"
)

// Namespaced keys. KeyToken holds the signed session token; KeyCheckSessionFlag
// is the transient flag coordinating the per-minute status check.
const (
	KeyToken            = "capju:jwt_user"
	KeyCheckSessionFlag = "capju:check_session_flag"
)

// Store is a durable key-value store. Get returns an empty string (not an
// error) when the key is absent; Remove of an absent key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Memory is an in-process Store used in tests and single-agent runs.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
