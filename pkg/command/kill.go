package command

import (
	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

// killCommand marks a single living target as bitten. Whether the bite
// kills is decided by the night resolver's death pass, after protective
// effects have had their turn.
type killCommand struct {
	base
	prevTarget player.Player
}

func newKill(actorID string, targetIDs []string, role scenario.Role, spec scenario.Skill) Command {
	return &killCommand{base: newBase(actorID, targetIDs, role, spec)}
}

func (c *killCommand) CanExecute(gs state.GameState) bool {
	return c.validate(gs) == nil
}

func (c *killCommand) Execute(gs state.GameState) Result {
	if err := c.validate(gs); err != nil {
		return failure(gs, "%s", err)
	}

	targetID := c.targetIDs[0]
	c.prevTarget, _ = gs.Player(targetID)

	ns, err := gs.UpdatePlayer(targetID, func(p player.Player) player.Player {
		return p.AddStatus(status.Bitten)
	})
	if err != nil {
		return failure(gs, "%s", err)
	}

	c.done = true
	return Result{
		Success: true,
		State:   ns,
		Message: c.role.Name + " attacks " + c.prevTarget.Name + ".",
	}
}

func (c *killCommand) Undo(gs state.GameState) Result {
	if !c.done {
		return failure(gs, "attack was never executed")
	}
	ns, err := gs.UpdatePlayer(c.prevTarget.ID, func(player.Player) player.Player {
		return c.prevTarget
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	c.done = false
	return Result{Success: true, State: ns, Message: "Attack on " + c.prevTarget.Name + " reverted."}
}
