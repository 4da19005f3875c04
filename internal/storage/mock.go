package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/nightfall-games/werewolf-gm/pkg/engine"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
)

// MockStorage is an in-memory implementation of Storage. It backs the
// handler tests, and doubles as the session store when no Redis URL is
// configured.
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*engine.Snapshot
	scenarios map[string]*scenario.Scenario
	pingError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions:  make(map[uuid.UUID]*engine.Snapshot),
		scenarios: make(map[string]*scenario.Scenario),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// AddScenario registers a scenario under its filename
func (m *MockStorage) AddScenario(filename string, s *scenario.Scenario) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenarios[filename] = s
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSession(ctx context.Context, id uuid.UUID, snap *engine.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = snap
	return nil
}

func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*engine.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return snap, nil
}

func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockStorage) ListScenarios(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.scenarios))
	for filename, s := range m.scenarios {
		out[s.Name] = filename
	}
	return out, nil
}

func (m *MockStorage) GetScenario(ctx context.Context, filename string) (*scenario.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scenarios[filename]
	if !ok {
		return nil, errors.New("scenario not found")
	}
	return s, nil
}
