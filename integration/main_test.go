//go:build integration
// +build integration

// Package integration plays complete games against a live API instance.
// Start the API first (docker-compose up -d), then:
//
//	go test -tags=integration ./integration/
package integration

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightfall-games/werewolf-gm/integration/runner"
	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
)

var villageNames = []string{
	"Anna", "Ben", "Clara", "David", "Elsa", "Felix", "Greta", "Hugo",
}

func apiBaseURL() string {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func TestMain(m *testing.M) {
	fmt.Printf("Running integration tests against %s\n", apiBaseURL())
	os.Exit(m.Run())
}

func newRunner(t *testing.T) *runner.Runner {
	t.Helper()
	r := runner.NewRunner(apiBaseURL())
	r.Logger = t.Logf
	if !r.Healthy() {
		t.Skip("API is not reachable, skipping integration tests")
	}
	return r
}

// byRole returns the players holding a role, in seating order.
func byRole(gs state.GameState, roleID string) []player.Player {
	var out []player.Player
	for _, p := range gs.Players {
		if p.RoleID == roleID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func TestScenarioCatalog(t *testing.T) {
	r := newRunner(t)

	scenarios, err := r.ListScenarios()
	require.NoError(t, err)
	assert.Equal(t, "classic_village.json", scenarios["Classic Village"])
}

// TestFullGame plays Classic Village to a villager win: two nights of
// wolf kills, two executions taking out both wolves.
func TestFullGame(t *testing.T) {
	r := newRunner(t)

	session, err := r.CreateSession("classic_village.json", villageNames)
	require.NoError(t, err)
	defer func() {
		_, _ = r.DeleteSession(session.ID)
	}()

	gs := session.State
	wolves := byRole(gs, "werewolf")
	villagers := byRole(gs, "villager")
	guard := byRole(gs, "guard")[0]
	seer := byRole(gs, "seer")[0]
	witch := byRole(gs, "witch")[0]
	require.Len(t, wolves, 2)
	require.Len(t, villagers, 3)

	// Night 1. The witch queues a poison and withdraws it again.
	out, err := r.Submit(session.ID, "poison", witch.ID, villagers[2].ID)
	require.NoError(t, err)
	require.True(t, out.Success, out.Message)

	session, err = r.Unsubmit(session.ID, witch.ID)
	require.NoError(t, err)
	assert.Empty(t, session.Pending)

	out, err = r.Submit(session.ID, "protect", guard.ID, villagers[1].ID)
	require.NoError(t, err)
	require.True(t, out.Success, out.Message)

	out, err = r.Submit(session.ID, "kill", wolves[0].ID, villagers[0].ID)
	require.NoError(t, err)
	require.True(t, out.Success, out.Message)

	out, err = r.Submit(session.ID, "investigate", seer.ID, wolves[0].ID)
	require.NoError(t, err)
	require.True(t, out.Success, out.Message)

	night, err := r.Resolve(session.ID)
	require.NoError(t, err)
	require.Len(t, night.Deaths, 1)
	assert.Equal(t, villagers[0].ID, night.Deaths[0].PlayerID)
	assert.Equal(t, player.CauseBite, night.Deaths[0].Cause)
	require.Len(t, night.Investigations, 1)
	assert.Equal(t, string(player.TeamWerewolf), night.Investigations[0].ApparentTeam)
	assert.Equal(t, state.PhaseDay, night.State.Phase)

	// The resolution can be stepped back and replayed.
	out, err = r.Undo(session.ID)
	require.NoError(t, err)
	require.True(t, out.Success, out.Message)
	assert.Equal(t, state.PhaseNight, out.State.Phase)
	out, err = r.Redo(session.ID)
	require.NoError(t, err)
	require.True(t, out.Success, out.Message)
	assert.Equal(t, state.PhaseDay, out.State.Phase)

	// Day 1: the village lynches the first wolf.
	day, err := r.Execute(session.ID, wolves[0].ID)
	require.NoError(t, err)
	require.Len(t, day.Deaths, 1)
	assert.Equal(t, player.CauseExecution, day.Deaths[0].Cause)
	assert.Equal(t, state.PhaseNight, day.State.Phase)
	assert.Equal(t, 2, day.State.Cycle)

	// Night 2: the remaining wolf takes the second villager.
	out, err = r.Submit(session.ID, "kill", wolves[1].ID, villagers[1].ID)
	require.NoError(t, err)
	require.True(t, out.Success, out.Message)

	night, err = r.Resolve(session.ID)
	require.NoError(t, err)
	require.Len(t, night.Deaths, 1)
	assert.Equal(t, villagers[1].ID, night.Deaths[0].PlayerID)

	// Day 2: the second wolf hangs, the village wins.
	_, err = r.Execute(session.ID, wolves[1].ID)
	require.NoError(t, err)

	win, err := r.Win(session.ID)
	require.NoError(t, err)
	require.True(t, win.Ended, win.Reason)
	assert.Equal(t, player.TeamVillager, win.Team)
}

func TestSessionLifecycle(t *testing.T) {
	r := newRunner(t)

	session, err := r.CreateSession("classic_village.json", villageNames)
	require.NoError(t, err)

	got, err := r.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, state.PhaseNight, got.State.Phase)

	code, err := r.DeleteSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, code)

	_, err = r.GetSession(session.ID)
	require.Error(t, err)
}
