package command

import (
	"fmt"

	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

// healCommand is the witch's single-use antidote. It is only legal against
// a bitten player and sets the healed flag on the target together with the
// used-heal marker on the actor, atomically.
type healCommand struct {
	base
	prevTarget player.Player
	prevActor  player.Player
}

func newHeal(actorID string, targetIDs []string, role scenario.Role, spec scenario.Skill) Command {
	return &healCommand{base: newBase(actorID, targetIDs, role, spec)}
}

func (c *healCommand) check(gs state.GameState) error {
	if err := c.validate(gs); err != nil {
		return err
	}
	actor, _ := gs.Player(c.actorID)
	if c.spec.OncePerGame && actor.HasStatus(status.UsedHeal) {
		return fmt.Errorf("%s has already used the healing potion", actor.Name)
	}
	target, _ := gs.Player(c.targetIDs[0])
	if !target.HasStatus(status.Bitten) {
		return fmt.Errorf("%s has not been attacked tonight", target.Name)
	}
	return nil
}

func (c *healCommand) CanExecute(gs state.GameState) bool {
	return c.check(gs) == nil
}

func (c *healCommand) Execute(gs state.GameState) Result {
	if err := c.check(gs); err != nil {
		return failure(gs, "%s", err)
	}

	targetID := c.targetIDs[0]
	c.prevTarget, _ = gs.Player(targetID)
	c.prevActor, _ = gs.Player(c.actorID)

	ns, err := gs.UpdatePlayer(targetID, func(p player.Player) player.Player {
		return p.AddStatus(status.Healed)
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	ns, err = ns.UpdatePlayer(c.actorID, func(p player.Player) player.Player {
		return p.AddStatus(status.UsedHeal)
	})
	if err != nil {
		return failure(gs, "%s", err)
	}

	c.done = true
	return Result{
		Success: true,
		State:   ns,
		Message: c.role.Name + " heals " + c.prevTarget.Name + ".",
	}
}

func (c *healCommand) Undo(gs state.GameState) Result {
	if !c.done {
		return failure(gs, "heal was never executed")
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
	return Result{Success: true, State: ns, Message: "Heal of " + c.prevTarget.Name + " reverted."}
}
