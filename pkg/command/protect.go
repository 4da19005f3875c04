package command

import (
	"fmt"

	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

// protectCommand shields one living target for the night. A guard may not
// protect the same player on two consecutive nights; the previous target
// is tracked in the actor's metadata and restored on undo.
type protectCommand struct {
	base
	prevTarget player.Player
	prevActor  player.Player
}

func newProtect(actorID string, targetIDs []string, role scenario.Role, spec scenario.Skill) Command {
	return &protectCommand{base: newBase(actorID, targetIDs, role, spec)}
}

func (c *protectCommand) check(gs state.GameState) error {
	if err := c.validate(gs); err != nil {
		return err
	}
	if c.spec.NoRepeatTarget {
		actor, _ := gs.Player(c.actorID)
		if actor.Meta.LastProtectedTargetID == c.targetIDs[0] {
			target, _ := gs.Player(c.targetIDs[0])
			return fmt.Errorf("%s was already protected last night", target.Name)
		}
	}
	return nil
}

func (c *protectCommand) CanExecute(gs state.GameState) bool {
	return c.check(gs) == nil
}

func (c *protectCommand) Execute(gs state.GameState) Result {
	if err := c.check(gs); err != nil {
		return failure(gs, "%s", err)
	}

	targetID := c.targetIDs[0]
	c.prevTarget, _ = gs.Player(targetID)
	c.prevActor, _ = gs.Player(c.actorID)

	ns, err := gs.UpdatePlayer(targetID, func(p player.Player) player.Player {
		return p.AddStatus(status.Protected)
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	ns, err = ns.UpdatePlayer(c.actorID, func(p player.Player) player.Player {
		return p.WithMeta(func(m *player.Metadata) {
			m.LastProtectedTargetID = targetID
		})
	})
	if err != nil {
		return failure(gs, "%s", err)
	}

	c.done = true
	return Result{
		Success: true,
		State:   ns,
		Message: c.role.Name + " protects " + c.prevTarget.Name + " tonight.",
	}
}

func (c *protectCommand) Undo(gs state.GameState) Result {
	if !c.done {
		return failure(gs, "protection was never executed")
	}
	ns, err := gs.UpdatePlayer(c.prevTarget.ID, func(player.Player) player.Player {
		return c.prevTarget
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	ns, err = ns.UpdatePlayer(c.prevActor.ID, func(player.Player) player.Player {
		return c.prevActor
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	c.done = false
	return Result{Success: true, State: ns, Message: "Protection of " + c.prevTarget.Name + " reverted."}
}
