package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nightfall-games/werewolf-gm/pkg/command"
	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

// Phase transitions run through the invoker like any night action, so the
// game master can step back a resolved night or an execution with Undo.
// Their skill tags never appear in a scenario catalog; the snapshot import
// recognizes them before consulting the command factory.
const (
	skillCloseNight scenario.SkillType = "close_night"
	skillVerdict    scenario.SkillType = "verdict"
)

// nightFallout is everything the night closure derives from the
// post-execution flags.
type nightFallout struct {
	state  state.GameState
	deaths []DeathRecord
	saved  []SaveRecord
	// deflected players had their bite stopped by a save but died of
	// another cause in the same night; the save is still announced.
	deflected []SaveRecord
}

// nightFall applies the death pass over the post-execution flags, cascades
// lover/twin deaths one level, clears night-transient flags and opens the
// day.
func nightFall(gs state.GameState) nightFallout {
	var out nightFallout

	for _, p := range gs.AlivePlayers() {
		switch {
		case p.HasStatus(status.Poisoned):
			// poison is not blockable by protection, heal or blessing
			out.deaths = append(out.deaths, DeathRecord{PlayerID: p.ID, Name: p.Name, Cause: player.CausePoison})
			if p.HasStatus(status.Bitten) {
				if reasons := saveReasons(p); len(reasons) > 0 {
					out.deflected = append(out.deflected, SaveRecord{PlayerID: p.ID, Name: p.Name, Reasons: reasons})
				}
			}
		case p.HasStatus(status.Bitten):
			reasons := saveReasons(p)
			if len(reasons) == 0 {
				out.deaths = append(out.deaths, DeathRecord{PlayerID: p.ID, Name: p.Name, Cause: player.CauseBite})
			} else {
				out.saved = append(out.saved, SaveRecord{PlayerID: p.ID, Name: p.Name, Reasons: reasons})
			}
		}
	}
	for _, d := range out.deaths {
		gs = kill(gs, d.PlayerID, d.Cause)
	}

	cascade := cascadeDeaths(gs, out.deaths)
	for _, d := range cascade {
		gs = kill(gs, d.PlayerID, d.Cause)
	}
	out.deaths = append(out.deaths, cascade...)

	out.state = gs.NormalizeNight().AdvancePhase()
	return out
}

// closeNightCommand ends the night: death pass, cascades, flag
// normalization and the phase flip to day. Undo restores the exact
// pre-closure state, reopening the night.
type closeNightCommand struct {
	id        uuid.UUID
	createdAt time.Time
	prev      state.GameState
	fallout   nightFallout
	done      bool
}

func newCloseNight() *closeNightCommand {
	return &closeNightCommand{id: uuid.New(), createdAt: time.Now().UTC()}
}

func (c *closeNightCommand) ID() uuid.UUID             { return c.id }
func (c *closeNightCommand) CreatedAt() time.Time      { return c.createdAt }
func (c *closeNightCommand) Skill() scenario.SkillType { return skillCloseNight }
func (c *closeNightCommand) ActorID() string           { return "" }
func (c *closeNightCommand) RoleID() string            { return "" }
func (c *closeNightCommand) TargetIDs() []string       { return nil }

func (c *closeNightCommand) CanExecute(gs state.GameState) bool {
	return gs.Phase == state.PhaseNight
}

func (c *closeNightCommand) Execute(gs state.GameState) command.Result {
	if gs.Phase != state.PhaseNight {
		return command.Result{State: gs, Message: "the night is already closed"}
	}
	c.prev = gs
	c.fallout = nightFall(gs)
	c.done = true
	return command.Result{
		Success: true,
		State:   c.fallout.state,
		Message: fmt.Sprintf("Night %d ends.", gs.Cycle),
	}
}

func (c *closeNightCommand) Undo(gs state.GameState) command.Result {
	if !c.done {
		return command.Result{State: gs, Message: "the night was never closed"}
	}
	c.done = false
	return command.Result{
		Success: true,
		State:   c.prev,
		Message: fmt.Sprintf("The morning is rolled back; night %d is open again.", c.prev.Cycle),
	}
}

// verdictCommand carries out the day vote: the target is exiled and
// executed, lover/twin partners follow, day-transient flags are cleared
// and the next night opens. Undo restores the exact pre-verdict state.
type verdictCommand struct {
	id        uuid.UUID
	createdAt time.Time
	targetID  string
	prev      state.GameState
	deaths    []DeathRecord
	done      bool
}

func newVerdict(targetID string) *verdictCommand {
	return &verdictCommand{id: uuid.New(), createdAt: time.Now().UTC(), targetID: targetID}
}

func (c *verdictCommand) ID() uuid.UUID             { return c.id }
func (c *verdictCommand) CreatedAt() time.Time      { return c.createdAt }
func (c *verdictCommand) Skill() scenario.SkillType { return skillVerdict }
func (c *verdictCommand) ActorID() string           { return "" }
func (c *verdictCommand) RoleID() string            { return "" }
func (c *verdictCommand) TargetIDs() []string       { return []string{c.targetID} }

func (c *verdictCommand) CanExecute(gs state.GameState) bool {
	if gs.Phase != state.PhaseDay {
		return false
	}
	target, ok := gs.Player(c.targetID)
	return ok && target.IsAlive()
}

func (c *verdictCommand) Execute(gs state.GameState) command.Result {
	if gs.Phase != state.PhaseDay {
		return command.Result{State: gs, Message: fmt.Sprintf("cannot execute: session is in the %s phase", gs.Phase)}
	}
	target, ok := gs.Player(c.targetID)
	if !ok {
		return command.Result{State: gs, Message: fmt.Sprintf("player %q not found", c.targetID)}
	}
	if !target.IsAlive() {
		return command.Result{State: gs, Message: target.Name + " is already dead"}
	}

	ns, err := gs.UpdatePlayer(c.targetID, func(p player.Player) player.Player {
		return p.AddStatus(status.Exiled).Kill(player.CauseExecution)
	})
	if err != nil {
		return command.Result{State: gs, Message: err.Error()}
	}

	deaths := []DeathRecord{{PlayerID: target.ID, Name: target.Name, Cause: player.CauseExecution}}
	cascade := cascadeDeaths(ns, deaths)
	for _, d := range cascade {
		ns = kill(ns, d.PlayerID, d.Cause)
	}
	deaths = append(deaths, cascade...)

	c.prev = gs
	c.deaths = deaths
	c.done = true
	return command.Result{
		Success: true,
		State:   ns.NormalizeDay().AdvancePhase(),
		Message: target.Name + " is executed by the village.",
	}
}

func (c *verdictCommand) Undo(gs state.GameState) command.Result {
	if !c.done {
		return command.Result{State: gs, Message: "the verdict was never carried out"}
	}
	name := c.targetID
	if target, ok := c.prev.Player(c.targetID); ok {
		name = target.Name
	}
	c.done = false
	return command.Result{
		Success: true,
		State:   c.prev,
		Message: "The execution of " + name + " is rolled back.",
	}
}

// phaseCommandFromDescriptor rebuilds a phase transition from its
// serialized identity. ok is false for ordinary skill descriptors, which
// go through the factory instead.
func phaseCommandFromDescriptor(d command.Descriptor) (command.Command, bool) {
	switch d.Skill {
	case skillCloseNight:
		c := newCloseNight()
		c.id, c.createdAt = d.ID, d.CreatedAt
		return c, true
	case skillVerdict:
		if len(d.TargetIDs) != 1 {
			return nil, false
		}
		c := newVerdict(d.TargetIDs[0])
		c.id, c.createdAt = d.ID, d.CreatedAt
		return c, true
	}
	return nil, false
}
