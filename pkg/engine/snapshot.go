package engine

import (
	"fmt"
	"log/slog"

	"github.com/nightfall-games/werewolf-gm/pkg/command"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
)

// Snapshot is the lossless serialized form of a session. InitialState is
// the state the game opened with at setup; the full command history since
// then, phase transitions included, travels as descriptors and is replayed
// on import, which reconstructs undo/redo availability exactly.
type Snapshot struct {
	ScenarioFile string               `json:"scenario_file"`
	InitialState state.GameState      `json:"initial_state"`
	Commands     []command.Descriptor `json:"commands,omitempty"`
	Index        int                  `json:"index"`
	Pending      []command.Descriptor `json:"pending,omitempty"`
}

// Snapshot exports the session for persistence.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ScenarioFile: s.inv.State().ScenarioFile,
		InitialState: s.inv.Initial(),
		Commands:     s.inv.History(),
		Index:        s.inv.Index(),
		Pending:      s.Pending(),
	}
}

// Restore reconstructs a session from a snapshot and its scenario
// catalog. The command history is replayed through a fresh factory, so
// the restored session behaves exactly like the exported one, including
// what can be undone and redone.
func Restore(catalog *scenario.Scenario, snap Snapshot, logger *slog.Logger) (*Session, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if catalog.FileName != snap.ScenarioFile {
		return nil, fmt.Errorf("snapshot was taken with scenario %q, got %q",
			snap.ScenarioFile, catalog.FileName)
	}

	factory := command.NewFactory(catalog)

	cmds := make([]command.Command, len(snap.Commands))
	for i, d := range snap.Commands {
		// phase transitions carry no role and are not the factory's to build
		if cmd, ok := phaseCommandFromDescriptor(d); ok {
			cmds[i] = cmd
			continue
		}
		cmd, err := factory.FromDescriptor(d)
		if err != nil {
			return nil, fmt.Errorf("restoring command %d: %w", i, err)
		}
		cmds[i] = cmd
	}

	inv := command.NewInvoker(snap.InitialState)
	if err := inv.Restore(cmds, snap.Index); err != nil {
		return nil, err
	}

	pending := make([]command.Command, len(snap.Pending))
	for i, d := range snap.Pending {
		cmd, err := factory.FromDescriptor(d)
		if err != nil {
			return nil, fmt.Errorf("restoring pending command %d: %w", i, err)
		}
		pending[i] = cmd
	}

	logger.Info("Session restored",
		"session_id", snap.InitialState.ID, "commands", len(cmds), "pending", len(pending))

	return &Session{
		catalog: catalog,
		factory: factory,
		inv:     inv,
		pending: pending,
		logger:  logger,
	}, nil
}
