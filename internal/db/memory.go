package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Nixie-Tech-LLC/doodeurim/internal/model"
)

// memoryStore is an in-memory Store for tests and ephemeral runs. Document
// merges follow the same top-level key replacement as the JSONB || operator.
type memoryStore struct {
	mu    sync.RWMutex
	users map[string]model.User
	docs  map[string]model.Document
}

var _ Store = (*memoryStore)(nil)

func NewMemoryStore() Store {
	return &memoryStore{
		users: make(map[string]model.User),
		docs:  make(map[string]model.Document),
	}
}

func (m *memoryStore) CreateUser(_ context.Context, id string, anonymous bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	u, ok := m.users[id]
	if !ok {
		u = model.User{ID: id, Anonymous: anonymous, CreatedAt: now}
	}
	u.LastSeenAt = now
	m.users[id] = u
	return &u, nil
}

func (m *memoryStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *memoryStore) TouchUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.LastSeenAt = time.Now()
	m.users[id] = u
	return nil
}

func (m *memoryStore) GetDocument(_ context.Context, path string) (*model.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.docs[path]
	if !ok {
		return nil, ErrNotFound
	}
	d.Data = append([]byte(nil), d.Data...)
	return &d, nil
}

func (m *memoryStore) MergeDocument(_ context.Context, path string, patch []byte) error {
	var incoming map[string]json.RawMessage
	if err := json.Unmarshal(patch, &incoming); err != nil {
		return fmt.Errorf("patch must be a JSON object: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current := map[string]json.RawMessage{}
	if d, ok := m.docs[path]; ok {
		if err := json.Unmarshal(d.Data, &current); err != nil {
			return err
		}
	}
	for k, v := range incoming {
		current[k] = v
	}
	data, err := json.Marshal(current)
	if err != nil {
		return err
	}
	m.docs[path] = model.Document{Path: path, Data: data, UpdatedAt: time.Now()}
	return nil
}
