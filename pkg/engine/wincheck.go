package engine

import (
	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

// WinKind classifies who a victory belongs to.
type WinKind string

const (
	WinIndividual WinKind = "individual"
	WinGroup      WinKind = "group"
	WinTeam       WinKind = "team"
)

// WinResult is the outcome of a win-condition check. When Ended is false
// the other fields are zero and Reason reads "no winner yet".
type WinResult struct {
	Ended     bool        `json:"ended"`
	Kind      WinKind     `json:"kind,omitempty"`
	Team      player.Team `json:"team,omitempty"`
	WinnerIDs []string    `json:"winner_ids,omitempty"`
	Reason    string      `json:"reason"`
}

func noWinner() WinResult {
	return WinResult{Reason: "no winner yet"}
}

// CheckWinConditions evaluates terminal conditions over the current player
// set. Precedence: individual conditions (scanned over dead and alive
// players, since some trigger on death), then group wins, then team wins.
// The check is a pure query and may be repeated after every death.
func CheckWinConditions(gs state.GameState, catalog *scenario.Scenario) WinResult {
	if res, ok := checkIndividual(gs, catalog); ok {
		return res
	}
	if res, ok := checkGroup(gs, catalog); ok {
		return res
	}
	if res, ok := checkTeam(gs, catalog); ok {
		return res
	}
	return noWinner()
}

func checkIndividual(gs state.GameState, catalog *scenario.Scenario) (WinResult, bool) {
	for _, p := range gs.AllPlayers() {
		role, ok := catalog.Role(p.RoleID)
		if !ok {
			continue
		}
		switch role.WinCondition {
		case scenario.WinDieByExecution:
			if !p.IsAlive() && p.Meta.KilledBy == player.CauseExecution {
				return WinResult{
					Ended:     true,
					Kind:      WinIndividual,
					WinnerIDs: []string{p.ID},
					Reason:    p.Name + " tricked the village into executing them",
				}, true
			}
		case scenario.WinMarkedAllDead:
			if p.IsAlive() && len(p.Meta.MarkedTargets) > 0 && allDead(gs, p.Meta.MarkedTargets) {
				return WinResult{
					Ended:     true,
					Kind:      WinIndividual,
					WinnerIDs: []string{p.ID},
					Reason:    p.Name + " outlived every marked target",
				}, true
			}
		}
	}
	return WinResult{}, false
}

func checkGroup(gs state.GameState, catalog *scenario.Scenario) (WinResult, bool) {
	// cult: a living recruiter whose flock covers every living player
	for _, p := range gs.AlivePlayers() {
		role, ok := catalog.Role(p.RoleID)
		if !ok || !role.HasSkill(scenario.SkillRecruit) {
			continue
		}
		complete := true
		winners := []string{}
		for _, q := range gs.AlivePlayers() {
			if q.ID != p.ID && !q.HasStatus(status.CultMember) {
				complete = false
				break
			}
			winners = append(winners, q.ID)
		}
		if complete {
			return WinResult{
				Ended:     true,
				Kind:      WinGroup,
				WinnerIDs: winners,
				Reason:    "the cult has absorbed every survivor",
			}, true
		}
	}

	alive := gs.AlivePlayers()
	if len(alive) == 2 {
		a, b := alive[0], alive[1]
		if a.HasStatus(status.Lover) && b.HasStatus(status.Lover) &&
			a.Meta.LoverPartnerID == b.ID && b.Meta.LoverPartnerID == a.ID &&
			a.Team != b.Team {
			return WinResult{
				Ended:     true,
				Kind:      WinGroup,
				WinnerIDs: []string{a.ID, b.ID},
				Reason:    "the lovers defied their teams and stand alone",
			}, true
		}
		if a.HasStatus(status.Twin) && b.HasStatus(status.Twin) &&
			a.Meta.TwinPartnerID == b.ID && b.Meta.TwinPartnerID == a.ID {
			return WinResult{
				Ended:     true,
				Kind:      WinGroup,
				WinnerIDs: []string{a.ID, b.ID},
				Reason:    "the twins are the last ones standing",
			}, true
		}
	}
	return WinResult{}, false
}

func checkTeam(gs state.GameState, catalog *scenario.Scenario) (WinResult, bool) {
	wolves := gs.AliveCount(player.TeamWerewolf)
	vampires := gs.AliveCount(player.TeamVampire)
	villagers := gs.AliveCount(player.TeamVillager)
	others := len(gs.AlivePlayers()) - wolves

	if vampires > 0 && wolves == 0 && villagers == 0 {
		return WinResult{
			Ended:  true,
			Kind:   WinTeam,
			Team:   player.TeamVampire,
			Reason: "the vampires have purged the village",
		}, true
	}

	if wolves > 0 && wolves >= others {
		// lone-wolf variant: a single surviving wolf of the lone-wolf
		// sub-role claims the victory alone
		if wolves == 1 {
			for _, p := range gs.AlivePlayers() {
				if p.Team != player.TeamWerewolf {
					continue
				}
				if role, ok := catalog.Role(p.RoleID); ok && role.WinCondition == scenario.WinLoneWolf {
					return WinResult{
						Ended:     true,
						Kind:      WinIndividual,
						WinnerIDs: []string{p.ID},
						Reason:    p.Name + " devoured friend and foe alike",
					}, true
				}
			}
		}
		return WinResult{
			Ended:  true,
			Kind:   WinTeam,
			Team:   player.TeamWerewolf,
			Reason: "the werewolves match the rest of the village",
		}, true
	}

	if wolves == 0 && vampires == 0 && villagers > 0 {
		return WinResult{
			Ended:  true,
			Kind:   WinTeam,
			Team:   player.TeamVillager,
			Reason: "the village has driven out every monster",
		}, true
	}
	return WinResult{}, false
}

func allDead(gs state.GameState, ids []string) bool {
	for _, id := range ids {
		if p, ok := gs.Player(id); !ok || p.IsAlive() {
			return false
		}
	}
	return true
}
