// Package engine orchestrates night resolution, day executions and win
// checks for a session. It is single-threaded and synchronous: every call
// runs to completion, and concurrent use is the caller's job to serialize.
package engine

import (
	"log/slog"

	"github.com/nightfall-games/werewolf-gm/pkg/command"
	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

// DeathRecord is one death produced by a resolution.
type DeathRecord struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Cause    string `json:"cause"`
}

// SaveRecord is a player who was attacked but survived, with one reason
// per save mechanism that applied.
type SaveRecord struct {
	PlayerID string   `json:"player_id"`
	Name     string   `json:"name"`
	Reasons  []string `json:"reasons"`
}

// InvestigationRecord is the private reveal owed to an investigator.
type InvestigationRecord struct {
	ActorID      string `json:"actor_id"`
	TargetID     string `json:"target_id"`
	ApparentTeam string `json:"apparent_team"`
}

// Effect is one entry of the resolution log.
type Effect struct {
	Kind     string `json:"kind"` // "action", "rejected", "death", "saved"
	PlayerID string `json:"player_id,omitempty"`
	Detail   string `json:"detail"`
}

// NightResult is everything a game master needs to narrate the morning.
type NightResult struct {
	State          state.GameState       `json:"state"`
	Deaths         []DeathRecord         `json:"deaths"`
	Saved          []SaveRecord          `json:"saved"`
	Investigations []InvestigationRecord `json:"investigations,omitempty"`
	Effects        []Effect              `json:"effects"`
	Messages       []string              `json:"messages"`
}

// Resolver runs the night state machine: ordered command execution, the
// death pass, cascade deaths and flag normalization.
type Resolver struct {
	catalog *scenario.Scenario
	logger  *slog.Logger
}

// NewResolver creates a resolver bound to one scenario catalog.
func NewResolver(catalog *scenario.Scenario, logger *slog.Logger) *Resolver {
	return &Resolver{catalog: catalog, logger: logger}
}

// Resolve executes the pending commands in the scenario calling order for
// the given night, then closes the night through the same invoker: deaths
// and saves are derived from the resulting flags, lover/twin deaths
// cascade one level, night-transient flags are cleared and the day opens.
// A command the invoker rejects is logged and skipped; it never aborts the
// rest of the night. Because the closure is itself a command, Undo after
// Resolve reopens the night.
func (r *Resolver) Resolve(inv *command.Invoker, pending []command.Command, night int) NightResult {
	var out NightResult

	// 1. ordered execution
	for _, cmd := range r.order(pending, night) {
		res := inv.Execute(cmd)
		if !res.Success {
			r.logger.Warn("Night command rejected",
				"skill", cmd.Skill(), "actor", cmd.ActorID(), "reason", res.Message)
			out.Effects = append(out.Effects, Effect{Kind: "rejected", PlayerID: cmd.ActorID(), Detail: res.Message})
			continue
		}
		out.Effects = append(out.Effects, Effect{Kind: "action", PlayerID: cmd.ActorID(), Detail: res.Message})
		if cmd.Skill() == scenario.SkillInvestigate {
			out.Investigations = append(out.Investigations, InvestigationRecord{
				ActorID:      cmd.ActorID(),
				TargetID:     res.Metadata["target_id"],
				ApparentTeam: res.Metadata["apparent_team"],
			})
		}
	}

	// 2. close the night through the invoker: death pass, cascades,
	// normalization and the phase flip, all undoable as one step
	closure := newCloseNight()
	if res := inv.Execute(closure); !res.Success {
		r.logger.Warn("Night closure rejected", "night", night, "reason", res.Message)
		out.Effects = append(out.Effects, Effect{Kind: "rejected", Detail: res.Message})
		out.State = inv.State()
		return out
	}
	out.State = inv.State()
	out.Deaths = closure.fallout.deaths
	out.Saved = closure.fallout.saved

	// 3. messaging
	for _, d := range out.Deaths {
		out.Effects = append(out.Effects, Effect{Kind: "death", PlayerID: d.PlayerID, Detail: deathMessage(d)})
		out.Messages = append(out.Messages, deathMessage(d))
	}
	for _, s := range out.Saved {
		out.Effects = append(out.Effects, Effect{Kind: "saved", PlayerID: s.PlayerID, Detail: saveMessage(s)})
		out.Messages = append(out.Messages, saveMessage(s))
	}
	// a save that could not stop a death by another cause is still owed
	// its announcement
	for _, s := range closure.fallout.deflected {
		out.Effects = append(out.Effects, Effect{Kind: "saved", PlayerID: s.PlayerID, Detail: deflectMessage(s)})
		out.Messages = append(out.Messages, deflectMessage(s))
	}
	if len(out.Deaths) == 0 {
		out.Messages = append(out.Messages, peacefulNightMessage)
	}

	r.logger.Info("Night resolved",
		"night", night, "deaths", len(out.Deaths), "saved", len(out.Saved))
	return out
}

// order sorts pending commands into the scenario calling order for the
// night, grouped by actor role with submission order preserved inside a
// group. Commands of roles absent from the calling order run last.
func (r *Resolver) order(pending []command.Command, night int) []command.Command {
	byRole := make(map[string][]command.Command)
	for _, cmd := range pending {
		byRole[cmd.RoleID()] = append(byRole[cmd.RoleID()], cmd)
	}

	var out []command.Command
	called := make(map[string]bool)
	for _, roleID := range r.catalog.CallingOrder(night) {
		out = append(out, byRole[roleID]...)
		called[roleID] = true
	}
	for _, cmd := range pending {
		if !called[cmd.RoleID()] {
			r.logger.Warn("Command role missing from calling order, running last",
				"role", cmd.RoleID(), "night", night)
			out = append(out, cmd)
		}
	}
	return out
}

func saveReasons(p player.Player) []string {
	var reasons []string
	if p.HasStatus(status.Protected) {
		reasons = append(reasons, "protected")
	}
	if p.HasStatus(status.Healed) {
		reasons = append(reasons, "healed")
	}
	if p.HasStatus(status.Blessed) {
		reasons = append(reasons, "blessed")
	}
	return reasons
}

// cascadeDeaths returns the partner deaths implied by deaths. Only the
// original death list is scanned; a partner's death does not re-cascade
// within the same resolution.
func cascadeDeaths(gs state.GameState, deaths []DeathRecord) []DeathRecord {
	var cascade []DeathRecord
	gone := make(map[string]bool)
	for _, d := range deaths {
		gone[d.PlayerID] = true
	}

	for _, d := range deaths {
		p, ok := gs.Player(d.PlayerID)
		if !ok {
			continue
		}
		links := []struct {
			partnerID string
			cause     string
		}{
			{p.Meta.LoverPartnerID, player.CauseHeartache},
			{p.Meta.TwinPartnerID, player.CauseTwinBond},
		}
		for _, l := range links {
			if l.partnerID == "" || gone[l.partnerID] {
				continue
			}
			partner, ok := gs.Player(l.partnerID)
			if !ok || !partner.IsAlive() {
				continue
			}
			gone[l.partnerID] = true
			cascade = append(cascade, DeathRecord{PlayerID: partner.ID, Name: partner.Name, Cause: l.cause})
		}
	}
	return cascade
}

func kill(gs state.GameState, id, cause string) state.GameState {
	ns, err := gs.UpdatePlayer(id, func(p player.Player) player.Player {
		return p.Kill(cause)
	})
	if err != nil {
		return gs
	}
	return ns
}
