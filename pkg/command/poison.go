package command

import (
	"fmt"

	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

// poisonCommand is the witch's single-use poison. It works on any living
// target, independent of bites or protection.
type poisonCommand struct {
	base
	prevTarget player.Player
	prevActor  player.Player
}

func newPoison(actorID string, targetIDs []string, role scenario.Role, spec scenario.Skill) Command {
	return &poisonCommand{base: newBase(actorID, targetIDs, role, spec)}
}

func (c *poisonCommand) check(gs state.GameState) error {
	if err := c.validate(gs); err != nil {
		return err
	}
	actor, _ := gs.Player(c.actorID)
	if c.spec.OncePerGame && actor.HasStatus(status.UsedPoison) {
		return fmt.Errorf("%s has already used the poison", actor.Name)
	}
	return nil
}

func (c *poisonCommand) CanExecute(gs state.GameState) bool {
	return c.check(gs) == nil
}

func (c *poisonCommand) Execute(gs state.GameState) Result {
	if err := c.check(gs); err != nil {
		return failure(gs, "%s", err)
	}

	targetID := c.targetIDs[0]
	c.prevTarget, _ = gs.Player(targetID)
	c.prevActor, _ = gs.Player(c.actorID)

	ns, err := gs.UpdatePlayer(targetID, func(p player.Player) player.Player {
		return p.AddStatus(status.Poisoned)
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	ns, err = ns.UpdatePlayer(c.actorID, func(p player.Player) player.Player {
		return p.AddStatus(status.UsedPoison)
	})
	if err != nil {
		return failure(gs, "%s", err)
	}

	c.done = true
	return Result{
		Success: true,
		State:   ns,
		Message: c.role.Name + " poisons " + c.prevTarget.Name + ".",
	}
}

func (c *poisonCommand) Undo(gs state.GameState) Result {
	if !c.done {
		return failure(gs, "poison was never executed")
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
	return Result{Success: true, State: ns, Message: "Poisoning of " + c.prevTarget.Name + " reverted."}
}
