// Package player holds the immutable player entity for a game session.
package player

import (
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

// Team is a player's true alignment.
type Team string

const (
	TeamVillager Team = "villager"
	TeamWerewolf Team = "werewolf"
	TeamVampire  Team = "vampire"
	TeamNeutral  Team = "neutral"
)

// Death causes recorded in Metadata.KilledBy.
const (
	CauseBite      = "bite"
	CausePoison    = "poison"
	CauseExecution = "execution"
	CauseHeartache = "heartache"
	CauseTwinBond  = "twin_bond"
)

// Metadata is the relational/contextual bag attached to a player.
// Facts that matter to game rules get their own field; Vars is the open
// extension point for scenario-specific values and display-only data.
type Metadata struct {
	LastProtectedTargetID string            `json:"last_protected_target_id,omitempty"`
	LoverPartnerID        string            `json:"lover_partner_id,omitempty"`
	TwinPartnerID         string            `json:"twin_partner_id,omitempty"`
	MarkedTargets         []string          `json:"marked_targets,omitempty"`
	KilledBy              string            `json:"killed_by,omitempty"`
	Color                 string            `json:"color,omitempty"`
	Vars                  map[string]string `json:"vars,omitempty"`
}

func (m Metadata) clone() Metadata {
	out := m
	if m.MarkedTargets != nil {
		out.MarkedTargets = append([]string(nil), m.MarkedTargets...)
	}
	if m.Vars != nil {
		out.Vars = make(map[string]string, len(m.Vars))
		for k, v := range m.Vars {
			out.Vars[k] = v
		}
	}
	return out
}

// Player is a single seat at the table. It is a value type: every mutator
// returns a new Player and never touches the receiver, so a Player held in
// one GameState snapshot is never changed by a later one.
type Player struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	RoleID   string      `json:"role_id"`
	Team     Team        `json:"team"`
	Status   status.Flag `json:"status"`
	Position int         `json:"position"`
	Meta     Metadata    `json:"meta,omitempty"`
}

// New creates a living player.
func New(id, name, roleID string, team Team, position int) Player {
	return Player{
		ID:       id,
		Name:     name,
		RoleID:   roleID,
		Team:     team,
		Status:   status.Alive,
		Position: position,
	}
}

// HasStatus reports whether all bits of f are set.
func (p Player) HasStatus(f status.Flag) bool {
	return status.Has(p.Status, f)
}

// IsAlive reports whether the player still holds the alive flag.
func (p Player) IsAlive() bool {
	return p.HasStatus(status.Alive)
}

// AddStatus returns a copy of p with the bits of f set.
func (p Player) AddStatus(f status.Flag) Player {
	p.Meta = p.Meta.clone()
	p.Status = status.Add(p.Status, f)
	return p
}

// RemoveStatus returns a copy of p with the bits of f cleared.
func (p Player) RemoveStatus(f status.Flag) Player {
	p.Meta = p.Meta.clone()
	p.Status = status.Remove(p.Status, f)
	return p
}

// WithStatus returns a copy of p with the status mask replaced wholesale.
// Reserved for normalization and undo restores; game logic goes through
// AddStatus/RemoveStatus.
func (p Player) WithStatus(mask status.Flag) Player {
	p.Meta = p.Meta.clone()
	p.Status = mask
	return p
}

// WithMeta returns a copy of p with fn applied to a private copy of the
// metadata bag.
func (p Player) WithMeta(fn func(*Metadata)) Player {
	p.Meta = p.Meta.clone()
	fn(&p.Meta)
	return p
}

// Kill returns a copy of p with the alive flag cleared and the cause of
// death recorded. Dead players stay in the game state.
func (p Player) Kill(cause string) Player {
	p = p.RemoveStatus(status.Alive)
	p.Meta.KilledBy = cause
	return p
}
