// Package session owns the bearer token and persists it in a durable key/value slot.
package session

import (
	"context"
	"sync"

	"github.com/and161185/socialclient/internal/errs"
)

// Slot is a durable key/value cell. Get returns errs.ErrNotFound for an empty key;
// Delete of an empty key is not an error.
type Slot interface {
	// Get loads the value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key.
	Delete(ctx context.Context, key string) error
}

// Memory is a process-local Slot, used by tests and the "memory" backend.
type Memory struct {
	mu sync.Mutex
	m  map[string][]byte
}

var _ Slot = (*Memory)(nil)

// NewMemory returns an empty in-memory slot.
func NewMemory() *Memory { return &Memory{m: map[string][]byte{}} }

func (s *Memory) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Memory) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = append([]byte(nil), value...)
	return nil
}

func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
