package core

import "strings"

// Modifier is a named rule toggle recorded with a match.
type Modifier int

// Modifier ids as they appear in the replay settings.
const (
	ModifierLeapfrog Modifier = iota
	ModifierCityState
	ModifierMistyVeil
	ModifierCrystalClear
	ModifierSilentWar
	ModifierDefenseless
	ModifierWatchtower
	ModifierTorus
)

var modifierNames = map[Modifier]string{
	ModifierLeapfrog:     "leapfrog",
	ModifierCityState:    "city_state",
	ModifierMistyVeil:    "misty_veil",
	ModifierCrystalClear: "crystal_clear",
	ModifierSilentWar:    "silent_war",
	ModifierDefenseless:  "defenseless",
	ModifierWatchtower:   "watchtower",
	ModifierTorus:        "torus",
}

func (m Modifier) String() string {
	if name, ok := modifierNames[m]; ok {
		return name
	}
	return "unknown"
}

// ModifierSet is the set of modifiers active for a match. The zero value is empty.
type ModifierSet uint32

// NewModifierSet builds a set from modifier ids; ids outside the known range are ignored.
func NewModifierSet(mods ...Modifier) ModifierSet {
	var s ModifierSet
	for _, m := range mods {
		s = s.With(m)
	}
	return s
}

// With returns a copy of the set with m enabled.
func (s ModifierSet) With(m Modifier) ModifierSet {
	if m < 0 || m > ModifierTorus {
		return s
	}
	return s | 1<<uint(m)
}

// Has reports whether m is active.
func (s ModifierSet) Has(m Modifier) bool {
	if m < 0 || m > ModifierTorus {
		return false
	}
	return s&(1<<uint(m)) != 0
}

func (s ModifierSet) String() string {
	var names []string
	for m := ModifierLeapfrog; m <= ModifierTorus; m++ {
		if s.Has(m) {
			names = append(names, m.String())
		}
	}
	return strings.Join(names, ",")
}
