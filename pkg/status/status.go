// Package status defines the bitmask vocabulary for player conditions.
// Every flag is an independent bit; flags are combined with Add/Remove
// rather than assignment so unrelated conditions never interfere.
package status

import "strings"

// Flag is a set of player condition bits.
type Flag uint32

const (
	Alive Flag = 1 << iota
	Bitten
	Protected
	Healed
	Poisoned
	Blessed
	Silenced
	Exiled
	UsedHeal
	UsedPoison
	Lover
	Twin
	CultMember
)

// NightTransient flags are meaningful only within one night and are
// cleared when the night resolves.
const NightTransient = Bitten | Protected | Healed | Poisoned

// DayTransient flags are meaningful only within one day phase.
const DayTransient = Silenced | Exiled

var flagNames = map[Flag]string{
	Alive:      "alive",
	Bitten:     "bitten",
	Protected:  "protected",
	Healed:     "healed",
	Poisoned:   "poisoned",
	Blessed:    "blessed",
	Silenced:   "silenced",
	Exiled:     "exiled",
	UsedHeal:   "used_heal",
	UsedPoison: "used_poison",
	Lover:      "lover",
	Twin:       "twin",
	CultMember: "cult_member",
}

// Has reports whether all bits of f are set in m.
func Has(m, f Flag) bool {
	return m&f == f
}

// HasAny reports whether at least one bit of f is set in m.
func HasAny(m, f Flag) bool {
	return m&f != 0
}

// HasAll is an alias of Has for multi-bit queries; it reads better at
// call sites that pass a combined mask.
func HasAll(m, f Flag) bool {
	return Has(m, f)
}

// Add returns m with all bits of f set. Idempotent.
func Add(m, f Flag) Flag {
	return m | f
}

// Remove returns m with all bits of f cleared. Idempotent.
func Remove(m, f Flag) Flag {
	return m &^ f
}

// Toggle returns m with the bits of f flipped.
func Toggle(m, f Flag) Flag {
	return m ^ f
}

// ClearNight clears the night-transient flags, leaving permanent flags
// untouched.
func ClearNight(m Flag) Flag {
	return Remove(m, NightTransient)
}

// ClearDay clears the day-transient flags.
func ClearDay(m Flag) Flag {
	return Remove(m, DayTransient)
}

// Names returns the lowercase names of the flags set in m, in bit order.
func Names(m Flag) []string {
	var names []string
	for f := Alive; f <= CultMember; f <<= 1 {
		if Has(m, f) {
			names = append(names, flagNames[f])
		}
	}
	return names
}

// String renders m as a pipe-joined list of flag names.
func (m Flag) String() string {
	names := Names(m)
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
