// Package state holds the immutable snapshot of a game session.
package state

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

// Phase marks which half of the cycle the session is in.
type Phase string

const (
	PhaseNight Phase = "night"
	PhaseDay   Phase = "day"
)

// GameState is one snapshot of a session. It is a value type: mutators
// return a new GameState with a fresh player map, the Player values
// themselves are shared between snapshots. The set of player IDs is fixed
// for the session's lifetime; players are marked dead, never removed.
type GameState struct {
	ID           uuid.UUID                `json:"id"`
	ScenarioFile string                   `json:"scenario_file"`
	Phase        Phase                    `json:"phase"`
	Cycle        int                      `json:"cycle"` // 1-based night/day number
	Players      map[string]player.Player `json:"players"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at,omitempty"`
}

// NewGameState starts a session at night 1.
func NewGameState(scenarioFile string, players []player.Player) GameState {
	m := make(map[string]player.Player, len(players))
	for _, p := range players {
		m[p.ID] = p
	}
	return GameState{
		ID:           uuid.New(),
		ScenarioFile: scenarioFile,
		Phase:        PhaseNight,
		Cycle:        1,
		Players:      m,
		CreatedAt:    time.Now().UTC(),
	}
}

func (gs GameState) clonePlayers() map[string]player.Player {
	m := make(map[string]player.Player, len(gs.Players))
	for id, p := range gs.Players {
		m[id] = p
	}
	return m
}

// Player looks up one player by ID.
func (gs GameState) Player(id string) (player.Player, bool) {
	p, ok := gs.Players[id]
	return p, ok
}

// UpdatePlayer returns a new state with exactly one player replaced by
// fn's result. All other entries are shared with the receiver.
func (gs GameState) UpdatePlayer(id string, fn func(player.Player) player.Player) (GameState, error) {
	p, ok := gs.Players[id]
	if !ok {
		return gs, fmt.Errorf("player %q not found", id)
	}
	m := gs.clonePlayers()
	m[id] = fn(p)
	gs.Players = m
	return gs, nil
}

// MapPlayers returns a new state with fn applied to every player.
func (gs GameState) MapPlayers(fn func(player.Player) player.Player) GameState {
	m := make(map[string]player.Player, len(gs.Players))
	for id, p := range gs.Players {
		m[id] = fn(p)
	}
	gs.Players = m
	return gs
}

// AllPlayers returns every player ordered by table position.
func (gs GameState) AllPlayers() []player.Player {
	out := make([]player.Player, 0, len(gs.Players))
	for _, p := range gs.Players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// AlivePlayers returns the living players ordered by table position.
func (gs GameState) AlivePlayers() []player.Player {
	var out []player.Player
	for _, p := range gs.AllPlayers() {
		if p.IsAlive() {
			out = append(out, p)
		}
	}
	return out
}

// AliveCount returns how many living players belong to the given team.
func (gs GameState) AliveCount(team player.Team) int {
	n := 0
	for _, p := range gs.Players {
		if p.IsAlive() && p.Team == team {
			n++
		}
	}
	return n
}

// NormalizeNight clears the night-transient flags from every player.
// Idempotent; permanent flags are untouched.
func (gs GameState) NormalizeNight() GameState {
	return gs.MapPlayers(func(p player.Player) player.Player {
		return p.WithStatus(status.ClearNight(p.Status))
	})
}

// NormalizeDay clears the day-transient flags from every player.
func (gs GameState) NormalizeDay() GameState {
	return gs.MapPlayers(func(p player.Player) player.Player {
		return p.WithStatus(status.ClearDay(p.Status))
	})
}

// AdvancePhase flips night to day, or day to the next night.
func (gs GameState) AdvancePhase() GameState {
	gs.Players = gs.clonePlayers()
	if gs.Phase == PhaseNight {
		gs.Phase = PhaseDay
	} else {
		gs.Phase = PhaseNight
		gs.Cycle++
	}
	return gs
}
