package engine

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

var sessionNames = []string{
	"Anna", "Ben", "Clara", "David", "Emma",
	"Felix", "Greta", "Hugo", "Ida", "Jonas",
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(engineCatalog(), sessionNames, testLogger())
	require.NoError(t, err)
	return s
}

// byRole finds the first living player holding the given role.
func byRole(t *testing.T, s *Session, roleID string) player.Player {
	t.Helper()
	for _, p := range s.State().AlivePlayers() {
		if p.RoleID == roleID {
			return p
		}
	}
	t.Fatalf("no living player with role %q", roleID)
	return player.Player{}
}

// otherThan finds a living player whose ID is in none of the given sets.
func otherThan(t *testing.T, s *Session, exclude ...string) player.Player {
	t.Helper()
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	for _, p := range s.State().AlivePlayers() {
		if !skip[p.ID] {
			return p
		}
	}
	t.Fatalf("no living player outside %v", exclude)
	return player.Player{}
}

func TestNewSessionDealsEveryRole(t *testing.T) {
	s := newTestSession(t)
	gs := s.State()

	assert.Equal(t, state.PhaseNight, gs.Phase)
	assert.Equal(t, 1, gs.Cycle)
	assert.Len(t, gs.Players, 10)

	counts := make(map[string]int)
	for _, p := range gs.AllPlayers() {
		assert.True(t, p.IsAlive())
		assert.NotEmpty(t, p.Meta.Color)
		counts[p.RoleID]++
	}
	for _, r := range engineCatalog().Roles {
		assert.Equal(t, r.Quantity, counts[r.ID], "role %s", r.ID)
	}
}

func TestNewSessionLinksTwins(t *testing.T) {
	s := newTestSession(t)

	var twins []player.Player
	for _, p := range s.State().AllPlayers() {
		if p.RoleID == "twin" {
			twins = append(twins, p)
		}
	}
	require.Len(t, twins, 2)
	a, b := twins[0], twins[1]
	assert.True(t, a.HasStatus(status.Twin))
	assert.True(t, b.HasStatus(status.Twin))
	assert.Equal(t, b.ID, a.Meta.TwinPartnerID)
	assert.Equal(t, a.ID, b.Meta.TwinPartnerID)
}

func TestNewSessionWrongPlayerCount(t *testing.T) {
	_, err := NewSession(engineCatalog(), []string{"Anna", "Ben"}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs 10 players")
}

func TestSubmitRejectsUnknownActor(t *testing.T) {
	s := newTestSession(t)
	res := s.Submit(scenario.SkillKill, "ghost", []string{"p1"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "not found")
}

func TestSubmitRejectsSkillTheRoleLacks(t *testing.T) {
	s := newTestSession(t)
	villager := byRole(t, s, "villager")
	res := s.Submit(scenario.SkillKill, villager.ID, []string{"p1"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "has no kill skill")
}

func TestSubmitRejectsDuplicateSkill(t *testing.T) {
	s := newTestSession(t)
	wolf := byRole(t, s, "werewolf")
	target := otherThan(t, s, wolf.ID)

	res := s.Submit(scenario.SkillKill, wolf.ID, []string{target.ID})
	require.True(t, res.Success, res.Message)

	res = s.Submit(scenario.SkillKill, wolf.ID, []string{target.ID})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "pending")
	assert.Len(t, s.Pending(), 1)
}

func TestSubmitAllowsSecondSkillOfSameActor(t *testing.T) {
	s := newTestSession(t)
	witch := byRole(t, s, "witch")
	a := otherThan(t, s, witch.ID)
	b := otherThan(t, s, witch.ID, a.ID)

	res := s.Submit(scenario.SkillHeal, witch.ID, []string{a.ID})
	require.True(t, res.Success, res.Message)
	res = s.Submit(scenario.SkillPoison, witch.ID, []string{b.ID})
	require.True(t, res.Success, res.Message)
	assert.Len(t, s.Pending(), 2)
}

func TestSubmitRejectsFirstNightSkillLater(t *testing.T) {
	s := newTestSession(t)

	// burn through night 1 and the first day to reach night 2
	_, err := s.ResolveNight()
	require.NoError(t, err)
	victim := byRole(t, s, "villager")
	_, err = s.Execute(victim.ID)
	require.NoError(t, err)
	require.Equal(t, 2, s.State().Cycle)

	cupid := byRole(t, s, "cupid")
	a := otherThan(t, s, cupid.ID)
	b := otherThan(t, s, cupid.ID, a.ID)
	res := s.Submit(scenario.SkillLinkLovers, cupid.ID, []string{a.ID, b.ID})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "first night")
}

func TestSubmitRejectsDuringDay(t *testing.T) {
	s := newTestSession(t)
	_, err := s.ResolveNight()
	require.NoError(t, err)
	require.Equal(t, state.PhaseDay, s.State().Phase)

	wolf := byRole(t, s, "werewolf")
	target := otherThan(t, s, wolf.ID)
	res := s.Submit(scenario.SkillKill, wolf.ID, []string{target.ID})
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "night")
}

func TestUnsubmitDropsPending(t *testing.T) {
	s := newTestSession(t)
	wolf := byRole(t, s, "werewolf")
	target := otherThan(t, s, wolf.ID)
	require.True(t, s.Submit(scenario.SkillKill, wolf.ID, []string{target.ID}).Success)

	assert.True(t, s.Unsubmit(wolf.ID))
	assert.Empty(t, s.Pending())
	assert.False(t, s.Unsubmit(wolf.ID))
}

func TestResolveNightAdvancesToDay(t *testing.T) {
	s := newTestSession(t)
	wolf := byRole(t, s, "werewolf")
	victim := byRole(t, s, "villager")
	require.True(t, s.Submit(scenario.SkillKill, wolf.ID, []string{victim.ID}).Success)

	res, err := s.ResolveNight()
	require.NoError(t, err)

	require.Len(t, res.Deaths, 1)
	assert.Equal(t, victim.ID, res.Deaths[0].PlayerID)
	assert.Equal(t, player.CauseBite, res.Deaths[0].Cause)

	gs := s.State()
	assert.Equal(t, state.PhaseDay, gs.Phase)
	assert.Equal(t, 1, gs.Cycle)
	assert.Empty(t, s.Pending())

	// the closure sits on the history, ready to be stepped back
	assert.True(t, s.CanUndo())
	assert.False(t, s.CanRedo())

	_, err = s.ResolveNight()
	assert.Error(t, err, "resolving during the day must fail")
}

func TestUndoReopensResolvedNight(t *testing.T) {
	s := newTestSession(t)
	wolf := byRole(t, s, "werewolf")
	victim := byRole(t, s, "villager")
	require.True(t, s.Submit(scenario.SkillKill, wolf.ID, []string{victim.ID}).Success)

	_, err := s.ResolveNight()
	require.NoError(t, err)
	require.Equal(t, state.PhaseDay, s.State().Phase)

	// first undo steps back the closure: the night is open again, the
	// victim is alive and still marked for death
	res := s.Undo()
	require.True(t, res.Success, res.Message)
	gs := s.State()
	assert.Equal(t, state.PhaseNight, gs.Phase)
	p, ok := gs.Player(victim.ID)
	require.True(t, ok)
	assert.True(t, p.IsAlive())
	assert.True(t, p.HasStatus(status.Bitten))

	// second undo unwinds the bite itself
	res = s.Undo()
	require.True(t, res.Success, res.Message)
	p, ok = s.State().Player(victim.ID)
	require.True(t, ok)
	assert.False(t, p.HasStatus(status.Bitten))

	// redo twice lands back on the same morning
	require.True(t, s.Redo().Success)
	require.True(t, s.Redo().Success)
	gs = s.State()
	assert.Equal(t, state.PhaseDay, gs.Phase)
	p, ok = gs.Player(victim.ID)
	require.True(t, ok)
	assert.False(t, p.IsAlive())
	assert.False(t, s.CanRedo())
}

func TestUndoAfterReopeningAllowsDifferentNight(t *testing.T) {
	s := newTestSession(t)
	wolf := byRole(t, s, "werewolf")
	victim := byRole(t, s, "villager")
	require.True(t, s.Submit(scenario.SkillKill, wolf.ID, []string{victim.ID}).Success)
	_, err := s.ResolveNight()
	require.NoError(t, err)

	// step all the way back and let the night end without a kill
	require.True(t, s.Undo().Success)
	require.True(t, s.Undo().Success)
	res, err := s.ResolveNight()
	require.NoError(t, err)

	assert.Empty(t, res.Deaths)
	assert.Contains(t, res.Messages, peacefulNightMessage)
	p, ok := s.State().Player(victim.ID)
	require.True(t, ok)
	assert.True(t, p.IsAlive())
	assert.False(t, s.CanRedo(), "a new resolution discards the redo tail")
}

func TestUndoRollsBackExecution(t *testing.T) {
	s := newTestSession(t)
	_, err := s.ResolveNight()
	require.NoError(t, err)

	victim := byRole(t, s, "villager")
	_, err = s.Execute(victim.ID)
	require.NoError(t, err)
	require.Equal(t, 2, s.State().Cycle)

	res := s.Undo()
	require.True(t, res.Success, res.Message)
	gs := s.State()
	assert.Equal(t, state.PhaseDay, gs.Phase)
	assert.Equal(t, 1, gs.Cycle)
	p, ok := gs.Player(victim.ID)
	require.True(t, ok)
	assert.True(t, p.IsAlive())
	assert.False(t, p.HasStatus(status.Exiled))
}

func TestExecuteRunsTheDayVerdict(t *testing.T) {
	s := newTestSession(t)
	_, err := s.ResolveNight()
	require.NoError(t, err)

	victim := byRole(t, s, "villager")
	res, err := s.Execute(victim.ID)
	require.NoError(t, err)

	require.NotEmpty(t, res.Deaths)
	assert.Equal(t, victim.ID, res.Deaths[0].PlayerID)
	assert.Equal(t, player.CauseExecution, res.Deaths[0].Cause)

	p, ok := res.State.Player(victim.ID)
	require.True(t, ok)
	assert.False(t, p.IsAlive())
	assert.Equal(t, player.CauseExecution, p.Meta.KilledBy)

	gs := s.State()
	assert.Equal(t, state.PhaseNight, gs.Phase)
	assert.Equal(t, 2, gs.Cycle)

	_, err = s.Execute(victim.ID)
	assert.Error(t, err, "executing the dead must fail")
}

func TestExecuteTakesTheTwinAlong(t *testing.T) {
	s := newTestSession(t)
	_, err := s.ResolveNight()
	require.NoError(t, err)

	twin := byRole(t, s, "twin")
	res, err := s.Execute(twin.ID)
	require.NoError(t, err)

	require.Len(t, res.Deaths, 2)
	assert.Equal(t, player.CauseTwinBond, res.Deaths[1].Cause)
	partner, ok := res.State.Player(twin.Meta.TwinPartnerID)
	require.True(t, ok)
	assert.False(t, partner.IsAlive())
}

func TestExecuteOnlyDuringDay(t *testing.T) {
	s := newTestSession(t)
	victim := byRole(t, s, "villager")
	_, err := s.Execute(victim.ID)
	assert.Error(t, err)
}

func TestCheckWinOnFreshSession(t *testing.T) {
	s := newTestSession(t)
	res := s.CheckWin()
	assert.False(t, res.Ended)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestSession(t)
	wolf := byRole(t, s, "werewolf")
	guard := byRole(t, s, "guard")
	victim := byRole(t, s, "villager")
	require.True(t, s.Submit(scenario.SkillKill, wolf.ID, []string{victim.ID}).Success)
	require.True(t, s.Submit(scenario.SkillProtect, guard.ID, []string{victim.ID}).Success)

	snap := s.Snapshot()
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored, err := Restore(engineCatalog(), decoded, testLogger())
	require.NoError(t, err)

	assert.Equal(t, s.State().ID, restored.State().ID)
	assert.True(t, reflect.DeepEqual(s.State().Players, restored.State().Players))
	require.Len(t, restored.Pending(), 2)
	// compare pending queues through JSON: decoding strips the monotonic
	// clock reading from the timestamps
	origPending, err := json.Marshal(s.Pending())
	require.NoError(t, err)
	restoredPending, err := json.Marshal(restored.Pending())
	require.NoError(t, err)
	assert.JSONEq(t, string(origPending), string(restoredPending))
	assert.Equal(t, s.CanUndo(), restored.CanUndo())
	assert.Equal(t, s.CanRedo(), restored.CanRedo())

	// both copies must resolve the night identically
	orig, err := s.ResolveNight()
	require.NoError(t, err)
	replayed, err := restored.ResolveNight()
	require.NoError(t, err)
	assert.Equal(t, orig.Deaths, replayed.Deaths)
	assert.Equal(t, orig.Saved, replayed.Saved)
	assert.True(t, reflect.DeepEqual(orig.State.Players, replayed.State.Players))
}

func TestSnapshotCarriesResolvedHistory(t *testing.T) {
	s := newTestSession(t)
	wolf := byRole(t, s, "werewolf")
	victim := byRole(t, s, "villager")
	require.True(t, s.Submit(scenario.SkillKill, wolf.ID, []string{victim.ID}).Success)
	_, err := s.ResolveNight()
	require.NoError(t, err)
	accused := byRole(t, s, "villager")
	_, err = s.Execute(accused.ID)
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Commands, 3, "bite, night closure, verdict")
	assert.Equal(t, 2, snap.Index)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored, err := Restore(engineCatalog(), decoded, testLogger())
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(s.State().Players, restored.State().Players))
	assert.Equal(t, 2, restored.State().Cycle)

	// the replayed history stays undoable: the verdict rolls back
	require.True(t, restored.CanUndo())
	require.True(t, restored.Undo().Success)
	gs := restored.State()
	assert.Equal(t, state.PhaseDay, gs.Phase)
	p, ok := gs.Player(accused.ID)
	require.True(t, ok)
	assert.True(t, p.IsAlive())
}

func TestRestoreRejectsScenarioMismatch(t *testing.T) {
	s := newTestSession(t)
	snap := s.Snapshot()

	other := engineCatalog()
	other.FileName = "other_village.json"
	_, err := Restore(other, snap, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot was taken with scenario")
}
