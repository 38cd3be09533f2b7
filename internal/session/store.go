// Package session holds the signed-in identity, persisted across runs, and the
// transient collections the UI renders: the chat transcript and the track list.
package session

import (
	"context"
	"sync"

	"github.com/rcliao/nutricoach/internal/model"
)

// Store persists a Session. Save and Clear replace all fields together.
type Store interface {
	// Load returns the persisted session, or the zero Session if none.
	Load(ctx context.Context) (model.Session, error)

	// Save replaces the persisted session.
	Save(ctx context.Context, s model.Session) error

	// Clear removes every persisted field.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	mu sync.Mutex
	s  model.Session
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(ctx context.Context) (model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s model.Session) error {
	m.mu.Lock()
	m.s = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.s = model.Session{}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
