package player

import (
	"testing"

	"github.com/nightfall-games/werewolf-gm/pkg/status"
)

func TestNewPlayerIsAlive(t *testing.T) {
	p := New("p1", "Anna", "villager", TeamVillager, 0)
	if !p.IsAlive() {
		t.Error("new player should be alive")
	}
	if p.HasStatus(status.Bitten) {
		t.Error("new player should carry only the alive flag")
	}
}

func TestAddStatusDoesNotMutateOriginal(t *testing.T) {
	p := New("p1", "Anna", "villager", TeamVillager, 0)
	bitten := p.AddStatus(status.Bitten)

	if p.HasStatus(status.Bitten) {
		t.Error("original player must not be mutated")
	}
	if !bitten.HasStatus(status.Bitten) || !bitten.IsAlive() {
		t.Error("copy should carry both bitten and alive")
	}
}

func TestWithMetaDoesNotShareBag(t *testing.T) {
	p := New("p1", "Anna", "raven", TeamVillager, 0)
	marked := p.WithMeta(func(m *Metadata) {
		m.MarkedTargets = append(m.MarkedTargets, "p2")
	})
	marked2 := marked.WithMeta(func(m *Metadata) {
		m.MarkedTargets = append(m.MarkedTargets, "p3")
	})

	if len(p.Meta.MarkedTargets) != 0 {
		t.Error("original metadata must be untouched")
	}
	if len(marked.Meta.MarkedTargets) != 1 {
		t.Errorf("first copy should hold one mark, got %v", marked.Meta.MarkedTargets)
	}
	if len(marked2.Meta.MarkedTargets) != 2 {
		t.Errorf("second copy should hold two marks, got %v", marked2.Meta.MarkedTargets)
	}
}

func TestWithMetaVarsAreCopied(t *testing.T) {
	p := New("p1", "Anna", "villager", TeamVillager, 0).WithMeta(func(m *Metadata) {
		m.Vars = map[string]string{"mood": "calm"}
	})
	q := p.WithMeta(func(m *Metadata) {
		m.Vars["mood"] = "worried"
	})

	if p.Meta.Vars["mood"] != "calm" {
		t.Errorf("original vars mutated: %v", p.Meta.Vars)
	}
	if q.Meta.Vars["mood"] != "worried" {
		t.Errorf("copy vars not updated: %v", q.Meta.Vars)
	}
}

func TestKillRecordsCause(t *testing.T) {
	p := New("p1", "Anna", "villager", TeamVillager, 0)
	dead := p.Kill(CauseBite)

	if dead.IsAlive() {
		t.Error("killed player should not be alive")
	}
	if dead.Meta.KilledBy != CauseBite {
		t.Errorf("expected cause %q, got %q", CauseBite, dead.Meta.KilledBy)
	}
	if !p.IsAlive() {
		t.Error("original player must not be mutated by Kill")
	}
}

func TestKillKeepsOtherFlags(t *testing.T) {
	p := New("p1", "Anna", "witch", TeamVillager, 0).AddStatus(status.UsedHeal | status.Lover)
	dead := p.Kill(CausePoison)
	if !dead.HasStatus(status.UsedHeal) || !dead.HasStatus(status.Lover) {
		t.Error("kill must only clear the alive flag")
	}
}
