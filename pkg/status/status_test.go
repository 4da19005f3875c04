package status

import "testing"

func TestAddAndHas(t *testing.T) {
	m := Add(0, Alive)
	if !Has(m, Alive) {
		t.Error("expected alive flag to be set")
	}
	if Has(m, Bitten) {
		t.Error("bitten should not be set")
	}

	m = Add(m, Bitten|Protected)
	if !Has(m, Bitten) || !Has(m, Protected) {
		t.Error("expected bitten and protected to be set")
	}
	if !Has(m, Alive) {
		t.Error("adding flags must not clear existing ones")
	}
}

func TestAddIsIdempotent(t *testing.T) {
	m := Add(0, Poisoned)
	if Add(m, Poisoned) != m {
		t.Error("adding the same flag twice must be a no-op")
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	m := Add(Add(0, Alive), Bitten)
	m = Remove(m, Bitten)
	if Has(m, Bitten) {
		t.Error("bitten should be cleared")
	}
	if !Has(m, Alive) {
		t.Error("removing bitten must not clear alive")
	}
	if Remove(m, Bitten) != m {
		t.Error("removing an absent flag must be a no-op")
	}
}

func TestToggle(t *testing.T) {
	m := Toggle(0, Silenced)
	if !Has(m, Silenced) {
		t.Error("toggle should set an unset flag")
	}
	m = Toggle(m, Silenced)
	if Has(m, Silenced) {
		t.Error("toggle should clear a set flag")
	}
}

func TestHasAnyAndHasAll(t *testing.T) {
	m := Alive | Lover
	if !HasAny(m, Bitten|Lover) {
		t.Error("expected HasAny to match lover")
	}
	if HasAny(m, Bitten|Poisoned) {
		t.Error("HasAny should be false when no bits overlap")
	}
	if !HasAll(m, Alive|Lover) {
		t.Error("expected HasAll to match alive|lover")
	}
	if HasAll(m, Alive|Twin) {
		t.Error("HasAll should require every bit")
	}
}

func TestClearNightKeepsPermanentFlags(t *testing.T) {
	m := Alive | Bitten | Protected | Healed | Poisoned | UsedHeal | Lover
	cleared := ClearNight(m)

	for _, f := range []Flag{Bitten, Protected, Healed, Poisoned} {
		if Has(cleared, f) {
			t.Errorf("night-transient flag %s should be cleared", f)
		}
	}
	for _, f := range []Flag{Alive, UsedHeal, Lover} {
		if !Has(cleared, f) {
			t.Errorf("permanent flag %s must survive normalization", f)
		}
	}

	if ClearNight(cleared) != cleared {
		t.Error("ClearNight must be idempotent")
	}
}

func TestClearDay(t *testing.T) {
	m := Alive | Silenced | Exiled | UsedPoison
	cleared := ClearDay(m)
	if Has(cleared, Silenced) || Has(cleared, Exiled) {
		t.Error("day-transient flags should be cleared")
	}
	if !Has(cleared, Alive) || !Has(cleared, UsedPoison) {
		t.Error("permanent flags must survive day normalization")
	}
	if ClearDay(cleared) != cleared {
		t.Error("ClearDay must be idempotent")
	}
}

func TestNames(t *testing.T) {
	m := Alive | UsedHeal
	names := Names(m)
	if len(names) != 2 || names[0] != "alive" || names[1] != "used_heal" {
		t.Errorf("unexpected names: %v", names)
	}

	if Flag(0).String() != "none" {
		t.Errorf("zero mask should render as none, got %q", Flag(0).String())
	}
	if (Alive | Bitten).String() != "alive|bitten" {
		t.Errorf("unexpected string: %q", (Alive | Bitten).String())
	}
}
