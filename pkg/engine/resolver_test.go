package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/nightfall-games/werewolf-gm/pkg/command"
	"github.com/nightfall-games/werewolf-gm/pkg/player"
	"github.com/nightfall-games/werewolf-gm/pkg/scenario"
	"github.com/nightfall-games/werewolf-gm/pkg/state"
	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func engineCatalog() *scenario.Scenario {
	return &scenario.Scenario{
		Name:        "Full Moon",
		FileName:    "full_moon.json",
		PlayerCount: 10,
		Roles: []scenario.Role{
			{ID: "werewolf", Name: "Werewolf", Team: player.TeamWerewolf, Quantity: 1,
				Skills: []scenario.Skill{{Type: scenario.SkillKill, TargetCount: 1}}},
			{ID: "guard", Name: "Guard", Team: player.TeamVillager, Quantity: 1,
				Skills: []scenario.Skill{{Type: scenario.SkillProtect, TargetCount: 1, NoRepeatTarget: true}}},
			{ID: "witch", Name: "Witch", Team: player.TeamVillager, Quantity: 1,
				Skills: []scenario.Skill{
					{Type: scenario.SkillHeal, TargetCount: 1, OncePerGame: true, AllowDeadTargets: true},
					{Type: scenario.SkillPoison, TargetCount: 1, OncePerGame: true},
				}},
			{ID: "seer", Name: "Seer", Team: player.TeamVillager, Quantity: 1,
				Skills: []scenario.Skill{{Type: scenario.SkillInvestigate, TargetCount: 1}}},
			{ID: "cupid", Name: "Cupid", Team: player.TeamVillager, Quantity: 1,
				Skills: []scenario.Skill{{Type: scenario.SkillLinkLovers, TargetCount: 2, FirstNightOnly: true}}},
			{ID: "lycan", Name: "Lycan", Team: player.TeamVillager, Quantity: 1,
				ApparentTeam: player.TeamWerewolf},
			{ID: "twin", Name: "Twin", Team: player.TeamVillager, Quantity: 2},
			{ID: "villager", Name: "Villager", Team: player.TeamVillager, Quantity: 2},
		},
		FirstNightOrder: []string{"cupid", "guard", "werewolf", "witch", "seer"},
		NightOrder:      []string{"guard", "werewolf", "witch", "seer"},
	}
}

// engineState deals the catalog's roles to a fixed seating order so tests
// can address players by ID.
func engineState() state.GameState {
	players := []player.Player{
		player.New("wolf", "Wolfgang", "werewolf", player.TeamWerewolf, 0),
		player.New("guard", "Greta", "guard", player.TeamVillager, 1),
		player.New("witch", "Wanda", "witch", player.TeamVillager, 2),
		player.New("seer", "Selma", "seer", player.TeamVillager, 3),
		player.New("cupid", "Carl", "cupid", player.TeamVillager, 4),
		player.New("lycan", "Lyle", "lycan", player.TeamVillager, 5),
		player.New("twin1", "Tara", "twin", player.TeamVillager, 6),
		player.New("twin2", "Tess", "twin", player.TeamVillager, 7),
		player.New("v1", "Anna", "villager", player.TeamVillager, 8),
		player.New("v2", "Ben", "villager", player.TeamVillager, 9),
	}
	linkTwins(players)
	return state.NewGameState("full_moon.json", players)
}

func queue(t *testing.T, cat *scenario.Scenario, f *command.Factory, skill scenario.SkillType, roleID, actorID string, targets ...string) command.Command {
	t.Helper()
	role, ok := cat.Role(roleID)
	if !ok {
		t.Fatalf("unknown role %q", roleID)
	}
	cmd, err := f.New(skill, actorID, targets, role)
	if err != nil {
		t.Fatalf("failed to build %s command: %v", skill, err)
	}
	return cmd
}

func resolve(t *testing.T, gs state.GameState, night int, build func(*scenario.Scenario, *command.Factory) []command.Command) NightResult {
	t.Helper()
	cat := engineCatalog()
	f := command.NewFactory(cat)
	pending := build(cat, f)
	return NewResolver(cat, testLogger()).Resolve(command.NewInvoker(gs), pending, night)
}

func TestResolveBiteKills(t *testing.T) {
	res := resolve(t, engineState(), 2, func(cat *scenario.Scenario, f *command.Factory) []command.Command {
		return []command.Command{queue(t, cat, f, scenario.SkillKill, "werewolf", "wolf", "v1")}
	})

	if len(res.Deaths) != 1 || res.Deaths[0].PlayerID != "v1" || res.Deaths[0].Cause != player.CauseBite {
		t.Fatalf("expected v1 dead by bite, got %+v", res.Deaths)
	}
	v1, _ := res.State.Player("v1")
	if v1.IsAlive() {
		t.Error("v1 should be dead")
	}
	if v1.Meta.KilledBy != player.CauseBite {
		t.Errorf("expected KilledBy %q, got %q", player.CauseBite, v1.Meta.KilledBy)
	}
	if v1.HasStatus(status.Bitten) {
		t.Error("bitten flag should be cleared by normalization")
	}

	want := "Anna was torn apart by werewolves."
	found := false
	for _, m := range res.Messages {
		if m == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected message %q in %v", want, res.Messages)
	}
}

func TestResolveProtectSaves(t *testing.T) {
	res := resolve(t, engineState(), 2, func(cat *scenario.Scenario, f *command.Factory) []command.Command {
		return []command.Command{
			queue(t, cat, f, scenario.SkillProtect, "guard", "guard", "v1"),
			queue(t, cat, f, scenario.SkillKill, "werewolf", "wolf", "v1"),
		}
	})

	if len(res.Deaths) != 0 {
		t.Fatalf("expected no deaths, got %+v", res.Deaths)
	}
	if len(res.Saved) != 1 || res.Saved[0].PlayerID != "v1" {
		t.Fatalf("expected v1 saved, got %+v", res.Saved)
	}
	if len(res.Saved[0].Reasons) != 1 || res.Saved[0].Reasons[0] != "protected" {
		t.Errorf("expected save reason [protected], got %v", res.Saved[0].Reasons)
	}

	v1, _ := res.State.Player("v1")
	if !v1.IsAlive() {
		t.Error("v1 should have survived")
	}
	if v1.HasStatus(status.Protected) || v1.HasStatus(status.Bitten) {
		t.Error("night-transient flags should be cleared after resolution")
	}

	peaceful := false
	for _, m := range res.Messages {
		if m == peacefulNightMessage {
			peaceful = true
		}
	}
	if !peaceful {
		t.Errorf("a night with no deaths should report as peaceful, got %v", res.Messages)
	}
}

// Commands run in the scenario's calling order, not submission order; a
// heal queued before the kill still lands on an already-bitten target.
func TestResolveOrdersByCallingOrder(t *testing.T) {
	res := resolve(t, engineState(), 2, func(cat *scenario.Scenario, f *command.Factory) []command.Command {
		return []command.Command{
			queue(t, cat, f, scenario.SkillHeal, "witch", "witch", "v1"),
			queue(t, cat, f, scenario.SkillKill, "werewolf", "wolf", "v1"),
		}
	})

	if len(res.Deaths) != 0 {
		t.Fatalf("expected the heal to save v1, got deaths %+v", res.Deaths)
	}
	if len(res.Saved) != 1 || res.Saved[0].Reasons[0] != "healed" {
		t.Fatalf("expected v1 saved by heal, got %+v", res.Saved)
	}
	witch, _ := res.State.Player("witch")
	if !witch.HasStatus(status.UsedHeal) {
		t.Error("witch should have spent her heal")
	}
}

func TestResolveRejectedCommandDoesNotAbortNight(t *testing.T) {
	// the heal has no bitten target and is rejected; the kill still runs
	res := resolve(t, engineState(), 2, func(cat *scenario.Scenario, f *command.Factory) []command.Command {
		return []command.Command{
			queue(t, cat, f, scenario.SkillHeal, "witch", "witch", "v2"),
			queue(t, cat, f, scenario.SkillKill, "werewolf", "wolf", "v1"),
		}
	})

	rejected := false
	for _, e := range res.Effects {
		if e.Kind == "rejected" && e.PlayerID == "witch" {
			rejected = true
		}
	}
	if !rejected {
		t.Errorf("expected a rejected effect for the witch, got %+v", res.Effects)
	}
	if len(res.Deaths) != 1 || res.Deaths[0].PlayerID != "v1" {
		t.Fatalf("the kill should still resolve, got %+v", res.Deaths)
	}
	witch, _ := res.State.Player("witch")
	if witch.HasStatus(status.UsedHeal) {
		t.Error("a rejected heal must not consume the witch's single use")
	}
}

func TestResolvePoisonIgnoresProtection(t *testing.T) {
	res := resolve(t, engineState(), 2, func(cat *scenario.Scenario, f *command.Factory) []command.Command {
		return []command.Command{
			queue(t, cat, f, scenario.SkillProtect, "guard", "guard", "v1"),
			queue(t, cat, f, scenario.SkillPoison, "witch", "witch", "v1"),
		}
	})

	if len(res.Deaths) != 1 || res.Deaths[0].Cause != player.CausePoison {
		t.Fatalf("poison should kill through protection, got %+v", res.Deaths)
	}
	if len(res.Saved) != 0 {
		t.Errorf("a poisoned player is not saved, got %+v", res.Saved)
	}
	v1, _ := res.State.Player("v1")
	if v1.IsAlive() {
		t.Error("v1 should be dead")
	}
}

// A player both poisoned and bitten-but-protected dies of the poison, yet
// the guard's save against the wolves is still announced.
func TestResolvePoisonedAndProtectedLogsBothOutcomes(t *testing.T) {
	res := resolve(t, engineState(), 2, func(cat *scenario.Scenario, f *command.Factory) []command.Command {
		return []command.Command{
			queue(t, cat, f, scenario.SkillProtect, "guard", "guard", "v1"),
			queue(t, cat, f, scenario.SkillKill, "werewolf", "wolf", "v1"),
			queue(t, cat, f, scenario.SkillPoison, "witch", "witch", "v1"),
		}
	})

	if len(res.Deaths) != 1 || res.Deaths[0].Cause != player.CausePoison {
		t.Fatalf("expected v1 dead by poison, got %+v", res.Deaths)
	}
	if len(res.Saved) != 0 {
		t.Errorf("the saved list holds survivors only, got %+v", res.Saved)
	}

	saved := false
	for _, e := range res.Effects {
		if e.Kind == "saved" && e.PlayerID == "v1" {
			saved = true
		}
	}
	if !saved {
		t.Errorf("expected a saved effect for the deflected bite, got %+v", res.Effects)
	}
	want := "Anna was shielded from the werewolves (Protected), but it could not stop the poison."
	found := false
	for _, m := range res.Messages {
		if m == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected message %q in %v", want, res.Messages)
	}
}

func TestResolveCascadeIsOneLevel(t *testing.T) {
	gs := engineState()
	// v1 and v2 are lovers; v2 is also twinned with Tara. Killing v1 takes
	// v2 with it, but v2's own death must not cascade further to Tara.
	gs, _ = gs.UpdatePlayer("v1", func(p player.Player) player.Player {
		return p.AddStatus(status.Lover).WithMeta(func(m *player.Metadata) { m.LoverPartnerID = "v2" })
	})
	gs, _ = gs.UpdatePlayer("v2", func(p player.Player) player.Player {
		return p.AddStatus(status.Lover).WithMeta(func(m *player.Metadata) {
			m.LoverPartnerID = "v1"
			m.TwinPartnerID = "twin1"
		})
	})

	res := resolve(t, gs, 2, func(cat *scenario.Scenario, f *command.Factory) []command.Command {
		return []command.Command{queue(t, cat, f, scenario.SkillKill, "werewolf", "wolf", "v1")}
	})

	if len(res.Deaths) != 2 {
		t.Fatalf("expected v1 and v2 dead, got %+v", res.Deaths)
	}
	if res.Deaths[1].PlayerID != "v2" || res.Deaths[1].Cause != player.CauseHeartache {
		t.Errorf("expected v2 to die of heartache, got %+v", res.Deaths[1])
	}
	tara, _ := res.State.Player("twin1")
	if !tara.IsAlive() {
		t.Error("the cascade must stop after one level")
	}

	want := "Ben died of a broken heart."
	found := false
	for _, m := range res.Messages {
		if m == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected message %q in %v", want, res.Messages)
	}
}

func TestResolveTwinFollowsTwin(t *testing.T) {
	res := resolve(t, engineState(), 2, func(cat *scenario.Scenario, f *command.Factory) []command.Command {
		return []command.Command{queue(t, cat, f, scenario.SkillKill, "werewolf", "wolf", "twin1")}
	})

	if len(res.Deaths) != 2 {
		t.Fatalf("expected both twins dead, got %+v", res.Deaths)
	}
	if res.Deaths[1].PlayerID != "twin2" || res.Deaths[1].Cause != player.CauseTwinBond {
		t.Errorf("expected twin2 to follow twin1, got %+v", res.Deaths[1])
	}
}

func TestResolveInvestigationReportsApparentTeam(t *testing.T) {
	res := resolve(t, engineState(), 2, func(cat *scenario.Scenario, f *command.Factory) []command.Command {
		return []command.Command{queue(t, cat, f, scenario.SkillInvestigate, "seer", "seer", "lycan")}
	})

	if len(res.Investigations) != 1 {
		t.Fatalf("expected one investigation, got %+v", res.Investigations)
	}
	got := res.Investigations[0]
	if got.ActorID != "seer" || got.TargetID != "lycan" || got.ApparentTeam != string(player.TeamWerewolf) {
		t.Errorf("the lycan should investigate as a werewolf, got %+v", got)
	}
	if len(res.Deaths) != 0 {
		t.Errorf("an investigation must not kill anyone, got %+v", res.Deaths)
	}
}

func TestResolvePeacefulNight(t *testing.T) {
	res := resolve(t, engineState(), 2, func(*scenario.Scenario, *command.Factory) []command.Command {
		return nil
	})
	if len(res.Deaths) != 0 || len(res.Saved) != 0 {
		t.Fatalf("empty night should change nothing, got %+v / %+v", res.Deaths, res.Saved)
	}
	if len(res.Messages) != 1 || res.Messages[0] != peacefulNightMessage {
		t.Errorf("expected only the peaceful message, got %v", res.Messages)
	}
}
