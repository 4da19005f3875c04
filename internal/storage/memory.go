package storage

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nightfall-games/werewolf-gm/pkg/engine"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
)

// MemoryStorage keeps session snapshots in process memory and loads
// scenario catalogs from the filesystem. Sessions do not survive a
// restart; it is the single-host fallback when no Redis is configured.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*engine.Snapshot
	dataDir  string
	logger   *slog.Logger
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage(dataDir string, logger *slog.Logger) *MemoryStorage {
	if dataDir == "" {
		dataDir = "./data/scenarios"
	}
	return &MemoryStorage{
		sessions: make(map[uuid.UUID]*engine.Snapshot),
		dataDir:  dataDir,
		logger:   logger,
	}
}

func (m *MemoryStorage) Ping(ctx context.Context) error { return nil }

func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) SaveSession(ctx context.Context, id uuid.UUID, snap *engine.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = snap
	return nil
}

func (m *MemoryStorage) LoadSession(ctx context.Context, id uuid.UUID) (*engine.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return snap, nil
}

func (m *MemoryStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStorage) ListScenarios(ctx context.Context) (map[string]string, error) {
	return listScenarioFiles(m.dataDir, m.logger)
}

func (m *MemoryStorage) GetScenario(ctx context.Context, filename string) (*scenario.Scenario, error) {
	return loadScenarioFile(m.dataDir, filename)
}
