package command

import (
	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
)

// investigateCommand is the seer's read-only team reveal. Some roles carry
// a fixed apparent-team override in the catalog (a villager-aligned role
// that reads as werewolf, or the reverse); the reveal honors the override,
// not the true team. State is never changed, so Undo is a no-op.
type investigateCommand struct {
	base
	catalog *scenario.Scenario
}

func newInvestigate(actorID string, targetIDs []string, role scenario.Role, spec scenario.Skill, catalog *scenario.Scenario) Command {
	return &investigateCommand{base: newBase(actorID, targetIDs, role, spec), catalog: catalog}
}

func (c *investigateCommand) CanExecute(gs state.GameState) bool {
	return c.validate(gs) == nil
}

// apparentTeam resolves what the investigation shows for a target.
func (c *investigateCommand) apparentTeam(target player.Player) player.Team {
	if role, ok := c.catalog.Role(target.RoleID); ok && role.ApparentTeam != "" {
		return role.ApparentTeam
	}
	return target.Team
}

func (c *investigateCommand) Execute(gs state.GameState) Result {
	if err := c.validate(gs); err != nil {
		return failure(gs, "%s", err)
	}

	target, _ := gs.Player(c.targetIDs[0])
	apparent := c.apparentTeam(target)

	return Result{
		Success: true,
		State:   gs,
		Message: c.role.Name + " learns that " + target.Name + " appears to side with the " + string(apparent) + "s.",
		Metadata: map[string]string{
			"target_id":     target.ID,
			"apparent_team": string(apparent),
		},
	}
}

func (c *investigateCommand) Undo(gs state.GameState) Result {
	return Result{Success: true, State: gs, Message: "Investigation left no trace."}
}
