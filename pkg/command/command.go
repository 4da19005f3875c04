// Package command implements the replayable night actions of the game.
// A command is a pure transform over a game state: executing it returns a
// new state, undoing it restores the exact prior state. Failures travel as
// Result values, never panics.
package command

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
)

// Result is the outcome of executing or undoing a command. On failure,
// State is the unchanged input state.
type Result struct {
	Success  bool              `json:"success"`
	State    state.GameState   `json:"-"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func failure(gs state.GameState, format string, args ...any) Result {
	return Result{State: gs, Message: fmt.Sprintf(format, args...)}
}

// Command is one role's night action.
type Command interface {
	ID() uuid.UUID
	CreatedAt() time.Time
	Skill() scenario.SkillType
	ActorID() string
	RoleID() string
	TargetIDs() []string

	// CanExecute reports whether the command would apply cleanly to gs.
	// It is side-effect-free and referentially transparent.
	CanExecute(gs state.GameState) bool

	// Execute re-validates and applies the command. An invalid command
	// returns a failure Result carrying gs unchanged.
	Execute(gs state.GameState) Result

	// Undo reverses a prior successful Execute against gs.
	Undo(gs state.GameState) Result
}

// Descriptor is the serializable identity of a command, enough to rebuild
// it through the factory when a session snapshot is imported.
type Descriptor struct {
	ID        uuid.UUID          `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Skill     scenario.SkillType `json:"skill"`
	ActorID   string             `json:"actor_id"`
	RoleID    string             `json:"role_id"`
	TargetIDs []string           `json:"target_ids,omitempty"`
}

// Describe extracts the serializable identity of a command.
func Describe(c Command) Descriptor {
	return Descriptor{
		ID:        c.ID(),
		CreatedAt: c.CreatedAt(),
		Skill:     c.Skill(),
		ActorID:   c.ActorID(),
		RoleID:    c.RoleID(),
		TargetIDs: append([]string(nil), c.TargetIDs()...),
	}
}

// base carries the shared identity and validation of every skill command.
type base struct {
	id        uuid.UUID
	createdAt time.Time
	actorID   string
	role      scenario.Role
	spec      scenario.Skill
	targetIDs []string
	done      bool
}

func newBase(actorID string, targetIDs []string, role scenario.Role, spec scenario.Skill) base {
	return base{
		id:        uuid.New(),
		createdAt: time.Now().UTC(),
		actorID:   actorID,
		role:      role,
		spec:      spec,
		targetIDs: append([]string(nil), targetIDs...),
	}
}

func (b *base) ID() uuid.UUID             { return b.id }
func (b *base) CreatedAt() time.Time      { return b.createdAt }
func (b *base) Skill() scenario.SkillType { return b.spec.Type }
func (b *base) ActorID() string           { return b.actorID }
func (b *base) RoleID() string            { return b.role.ID }
func (b *base) TargetIDs() []string       { return append([]string(nil), b.targetIDs...) }

// validate checks actor liveness and role, target cardinality, target
// existence and liveness, and the self-target permission.
func (b *base) validate(gs state.GameState) error {
	actor, ok := gs.Player(b.actorID)
	if !ok {
		return fmt.Errorf("actor %q not found", b.actorID)
	}
	if !actor.IsAlive() {
		return fmt.Errorf("%s is dead and cannot act", actor.Name)
	}
	if actor.RoleID != b.role.ID {
		return fmt.Errorf("%s is not a %s", actor.Name, b.role.Name)
	}

	if len(b.targetIDs) != b.spec.TargetCount {
		return fmt.Errorf("%s takes %d target(s), got %d", b.spec.Type, b.spec.TargetCount, len(b.targetIDs))
	}

	for _, id := range b.targetIDs {
		target, ok := gs.Player(id)
		if !ok {
			return fmt.Errorf("target %q not found", id)
		}
		if !b.spec.AllowDeadTargets && !target.IsAlive() {
			return fmt.Errorf("%s is dead and cannot be targeted", target.Name)
		}
		if !b.spec.AllowSelf && id == b.actorID {
			return fmt.Errorf("%s cannot target themselves", target.Name)
		}
	}
	return nil
}
