package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/nightfall-games/werewolf-gm/pkg/engine"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
)

// Storage defines a unified interface for all storage operations.
// Session snapshots are persisted in Redis (or memory); scenario catalogs
// are static files loaded from the data directory.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session snapshot operations
	SaveSession(ctx context.Context, id uuid.UUID, snap *engine.Snapshot) error

	// LoadSession retrieves a session snapshot by UUID.
	// Returns nil if the session doesn't exist.
	LoadSession(ctx context.Context, id uuid.UUID) (*engine.Snapshot, error)

	// DeleteSession removes a session snapshot by UUID.
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Scenario operations (filesystem-backed)
	ListScenarios(ctx context.Context) (map[string]string, error)
	GetScenario(ctx context.Context, filename string) (*scenario.Scenario, error)
}
