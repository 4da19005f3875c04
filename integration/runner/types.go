package runner

import (
	"github.com/google/uuid"

	"github.com/nightfall-games/werewolf-gm/pkg/command"
	"github.com/nightfall-games/werewolf-gm/pkg/engine"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
)

// ErrorResponse is the API's error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Session is the API's session envelope.
type Session struct {
	ID       uuid.UUID            `json:"id"`
	Scenario string               `json:"scenario"`
	State    state.GameState      `json:"state"`
	Pending  []command.Descriptor `json:"pending,omitempty"`
	CanUndo  bool                 `json:"can_undo"`
	CanRedo  bool                 `json:"can_redo"`
}

// CommandOutcome is the API's command result envelope. Success false
// arrives with HTTP 409 and is not a transport error.
type CommandOutcome struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
	State    state.GameState   `json:"state"`
}

// NightOutcome aliases the engine result so test steps can assert on it
// without importing the engine package everywhere.
type NightOutcome = engine.NightResult

// DayOutcome aliases the engine's day result.
type DayOutcome = engine.DayResult

// WinOutcome aliases the engine's win result.
type WinOutcome = engine.WinResult

type createSessionRequest struct {
	Scenario string   `json:"scenario"`
	Players  []string `json:"players"`
}

type commandRequest struct {
	Skill     string   `json:"skill"`
	ActorID   string   `json:"actor_id"`
	TargetIDs []string `json:"target_ids"`
}

type executeRequest struct {
	TargetID string `json:"target_id"`
}
