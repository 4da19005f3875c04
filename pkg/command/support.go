package command

import (
	"fmt"

	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

// blessCommand puts a blessing on a living target. Blessed counts as a
// save against a bite in the death pass, same as protected or healed.
type blessCommand struct {
	base
	prevTarget player.Player
}

func newBless(actorID string, targetIDs []string, role scenario.Role, spec scenario.Skill) Command {
	return &blessCommand{base: newBase(actorID, targetIDs, role, spec)}
}

func (c *blessCommand) CanExecute(gs state.GameState) bool {
	return c.validate(gs) == nil
}

func (c *blessCommand) Execute(gs state.GameState) Result {
	if err := c.validate(gs); err != nil {
		return failure(gs, "%s", err)
	}
	c.prevTarget, _ = gs.Player(c.targetIDs[0])
	ns, err := gs.UpdatePlayer(c.targetIDs[0], func(p player.Player) player.Player {
		return p.AddStatus(status.Blessed)
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	c.done = true
	return Result{Success: true, State: ns, Message: c.role.Name + " blesses " + c.prevTarget.Name + "."}
}

func (c *blessCommand) Undo(gs state.GameState) Result {
	if !c.done {
		return failure(gs, "blessing was never executed")
	}
	ns, err := gs.UpdatePlayer(c.prevTarget.ID, func(player.Player) player.Player {
		return c.prevTarget
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	c.done = false
	return Result{Success: true, State: ns, Message: "Blessing of " + c.prevTarget.Name + " reverted."}
}

// linkLoversCommand is cupid's first-night arrow: both targets gain the
// lover flag and a mutual partner link. If either lover dies, the night
// resolver cascades the death to the partner.
type linkLoversCommand struct {
	base
	prevFirst  player.Player
	prevSecond player.Player
}

func newLinkLovers(actorID string, targetIDs []string, role scenario.Role, spec scenario.Skill) Command {
	return &linkLoversCommand{base: newBase(actorID, targetIDs, role, spec)}
}

func (c *linkLoversCommand) check(gs state.GameState) error {
	if err := c.validate(gs); err != nil {
		return err
	}
	if c.targetIDs[0] == c.targetIDs[1] {
		return fmt.Errorf("lovers must be two distinct players")
	}
	for _, id := range c.targetIDs {
		p, _ := gs.Player(id)
		if p.HasStatus(status.Lover) {
			return fmt.Errorf("%s is already in love", p.Name)
		}
	}
	return nil
}

func (c *linkLoversCommand) CanExecute(gs state.GameState) bool {
	return c.check(gs) == nil
}

func (c *linkLoversCommand) Execute(gs state.GameState) Result {
	if err := c.check(gs); err != nil {
		return failure(gs, "%s", err)
	}

	firstID, secondID := c.targetIDs[0], c.targetIDs[1]
	c.prevFirst, _ = gs.Player(firstID)
	c.prevSecond, _ = gs.Player(secondID)

	link := func(partnerID string) func(player.Player) player.Player {
		return func(p player.Player) player.Player {
			return p.AddStatus(status.Lover).WithMeta(func(m *player.Metadata) {
				m.LoverPartnerID = partnerID
			})
		}
	}

	ns, err := gs.UpdatePlayer(firstID, link(secondID))
	if err != nil {
		return failure(gs, "%s", err)
	}
	ns, err = ns.UpdatePlayer(secondID, link(firstID))
	if err != nil {
		return failure(gs, "%s", err)
	}

	c.done = true
	return Result{
		Success: true,
		State:   ns,
		Message: c.prevFirst.Name + " and " + c.prevSecond.Name + " fall in love.",
	}
}

func (c *linkLoversCommand) Undo(gs state.GameState) Result {
	if !c.done {
		return failure(gs, "lover link was never executed")
	}
	ns, err := gs.UpdatePlayer(c.prevFirst.ID, func(player.Player) player.Player {
		return c.prevFirst
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	ns, err = ns.UpdatePlayer(c.prevSecond.ID, func(player.Player) player.Player {
		return c.prevSecond
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	c.done = false
	return Result{Success: true, State: ns, Message: "Lover link reverted."}
}

// recruitCommand inducts a living target into the cult. The cult leader
// wins once every living player carries the membership flag.
type recruitCommand struct {
	base
	prevTarget player.Player
}

func newRecruit(actorID string, targetIDs []string, role scenario.Role, spec scenario.Skill) Command {
	return &recruitCommand{base: newBase(actorID, targetIDs, role, spec)}
}

func (c *recruitCommand) check(gs state.GameState) error {
	if err := c.validate(gs); err != nil {
		return err
	}
	target, _ := gs.Player(c.targetIDs[0])
	if target.HasStatus(status.CultMember) {
		return fmt.Errorf("%s is already a cult member", target.Name)
	}
	return nil
}

func (c *recruitCommand) CanExecute(gs state.GameState) bool {
	return c.check(gs) == nil
}

func (c *recruitCommand) Execute(gs state.GameState) Result {
	if err := c.check(gs); err != nil {
		return failure(gs, "%s", err)
	}
	c.prevTarget, _ = gs.Player(c.targetIDs[0])
	ns, err := gs.UpdatePlayer(c.targetIDs[0], func(p player.Player) player.Player {
		return p.AddStatus(status.CultMember)
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	c.done = true
	return Result{Success: true, State: ns, Message: c.prevTarget.Name + " joins the cult."}
}

func (c *recruitCommand) Undo(gs state.GameState) Result {
	if !c.done {
		return failure(gs, "recruitment was never executed")
	}
	ns, err := gs.UpdatePlayer(c.prevTarget.ID, func(player.Player) player.Player {
		return c.prevTarget
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	c.done = false
	return Result{Success: true, State: ns, Message: "Recruitment of " + c.prevTarget.Name + " reverted."}
}

// markCommand lets a role tag a target for its personal win condition
// (all marked targets dead while the actor survives). Marks live in the
// actor's metadata, not in the target's flags.
type markCommand struct {
	base
	prevActor player.Player
}

func newMark(actorID string, targetIDs []string, role scenario.Role, spec scenario.Skill) Command {
	return &markCommand{base: newBase(actorID, targetIDs, role, spec)}
}

func (c *markCommand) check(gs state.GameState) error {
	if err := c.validate(gs); err != nil {
		return err
	}
	actor, _ := gs.Player(c.actorID)
	for _, id := range actor.Meta.MarkedTargets {
		if id == c.targetIDs[0] {
			target, _ := gs.Player(id)
			return fmt.Errorf("%s is already marked", target.Name)
		}
	}
	return nil
}

func (c *markCommand) CanExecute(gs state.GameState) bool {
	return c.check(gs) == nil
}

func (c *markCommand) Execute(gs state.GameState) Result {
	if err := c.check(gs); err != nil {
		return failure(gs, "%s", err)
	}
	c.prevActor, _ = gs.Player(c.actorID)
	target, _ := gs.Player(c.targetIDs[0])

	ns, err := gs.UpdatePlayer(c.actorID, func(p player.Player) player.Player {
		return p.WithMeta(func(m *player.Metadata) {
			m.MarkedTargets = append(m.MarkedTargets, target.ID)
		})
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	c.done = true
	return Result{Success: true, State: ns, Message: c.role.Name + " marks " + target.Name + "."}
}

func (c *markCommand) Undo(gs state.GameState) Result {
	if !c.done {
		return failure(gs, "mark was never executed")
	}
	ns, err := gs.UpdatePlayer(c.prevActor.ID, func(player.Player) player.Player {
		return c.prevActor
	})
	if err != nil {
		return failure(gs, "%s", err)
	}
	c.done = false
	return Result{Success: true, State: ns, Message: "Mark reverted."}
}
