// Package scenario holds the read-only role catalog for a game setup.
// Scenarios are authored as JSON files and loaded by storage; the engine
// consumes them as an opaque handle.
package scenario

import (
	"fmt"

	"github.com/nightfall-games/werewolf-gm/pkg/player"
)

// SkillType identifies a night ability. The set of built-in skills is
// closed; unknown values are rejected by the command factory unless a
// custom constructor is registered for them.
type SkillType string

const (
	SkillKill        SkillType = "kill"
	SkillProtect     SkillType = "protect"
	SkillHeal        SkillType = "heal"
	SkillPoison      SkillType = "poison"
	SkillInvestigate SkillType = "investigate"
	SkillBless       SkillType = "bless"
	SkillLinkLovers  SkillType = "link_lovers"
	SkillRecruit     SkillType = "recruit"
	SkillMark        SkillType = "mark"
)

// Win condition tags carried by roles.
const (
	WinDieByExecution = "die_by_execution"
	WinMarkedAllDead  = "marked_all_dead"
	WinLoneWolf       = "lone_wolf"
)

// Skill describes one role's night ability.
type Skill struct {
	Type             SkillType `json:"type"`
	TargetCount      int       `json:"target_count"`
	AllowSelf        bool      `json:"allow_self,omitempty"`
	AllowDeadTargets bool      `json:"allow_dead_targets,omitempty"`
	OncePerGame      bool      `json:"once_per_game,omitempty"`
	FirstNightOnly   bool      `json:"first_night_only,omitempty"`
	NoRepeatTarget   bool      `json:"no_repeat_target,omitempty"`
}

// Role is one entry of the catalog. A role may carry several night
// skills (the witch holds both the heal and the poison).
type Role struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Team     player.Team `json:"team"`
	Quantity int         `json:"quantity"`
	Skills   []Skill     `json:"skills,omitempty"`

	// ApparentTeam overrides what an investigation reveals for this role.
	// Empty means the investigation shows the true team.
	ApparentTeam player.Team `json:"apparent_team,omitempty"`

	// WinCondition is an individual victory tag, empty for roles that only
	// win with their team.
	WinCondition string `json:"win_condition,omitempty"`
}

// Scenario is a complete game setup for a fixed player count.
type Scenario struct {
	Name        string `json:"name"`
	FileName    string `json:"file_name"`
	PlayerCount int    `json:"player_count"`
	Roles       []Role `json:"roles"`

	// Calling orders are ordered lists of role IDs. The first night often
	// includes setup roles (cupid, twins) that never act again.
	FirstNightOrder []string `json:"first_night_order"`
	NightOrder      []string `json:"night_order"`
}

// SkillOf returns the role's skill of the given type.
func (r Role) SkillOf(t SkillType) (Skill, bool) {
	for _, sk := range r.Skills {
		if sk.Type == t {
			return sk, true
		}
	}
	return Skill{}, false
}

// HasSkill reports whether the role carries a skill of the given type.
func (r Role) HasSkill(t SkillType) bool {
	_, ok := r.SkillOf(t)
	return ok
}

// Role returns the catalog entry for a role ID.
func (s *Scenario) Role(id string) (Role, bool) {
	for _, r := range s.Roles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}

// CallingOrder returns the role call order for the given night number
// (1-based).
func (s *Scenario) CallingOrder(night int) []string {
	if night <= 1 {
		return s.FirstNightOrder
	}
	return s.NightOrder
}

// Validate checks internal consistency: role quantities must sum to the
// player count, and both calling orders may only reference declared roles.
func (s *Scenario) Validate() error {
	if s.PlayerCount <= 0 {
		return fmt.Errorf("scenario %q: player count must be positive", s.Name)
	}

	total := 0
	seen := make(map[string]bool, len(s.Roles))
	for _, r := range s.Roles {
		if r.ID == "" {
			return fmt.Errorf("scenario %q: role with empty id", s.Name)
		}
		if seen[r.ID] {
			return fmt.Errorf("scenario %q: duplicate role %q", s.Name, r.ID)
		}
		seen[r.ID] = true
		if r.Quantity <= 0 {
			return fmt.Errorf("scenario %q: role %q has non-positive quantity", s.Name, r.ID)
		}
		for _, sk := range r.Skills {
			if sk.TargetCount < 0 {
				return fmt.Errorf("scenario %q: role %q has negative target count", s.Name, r.ID)
			}
		}
		total += r.Quantity
	}
	if total != s.PlayerCount {
		return fmt.Errorf("scenario %q: role quantities sum to %d, want %d", s.Name, total, s.PlayerCount)
	}

	for _, order := range [][]string{s.FirstNightOrder, s.NightOrder} {
		for _, id := range order {
			if !seen[id] {
				return fmt.Errorf("scenario %q: calling order references unknown role %q", s.Name, id)
			}
		}
	}
	return nil
}
