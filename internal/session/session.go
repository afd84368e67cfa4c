// Package session defines the boundary to the game-session host. The engine
// only consumes these interfaces; the host implementation lives with the
// server integration.
package session

import (
	"github.com/weaponpaints/extension/internal/loadout"
)

// PlayerRef identifies a connected session. The slot is process-local and
// reused after disconnect; only the SteamID survives across sessions and is
// what the durable store is keyed by. Refs are borrowed per call and never
// retained.
type PlayerRef struct {
	Slot    int
	SteamID string
	Name    string
	Address string
}

// Category names one of the cosmetic equipment kinds.
type Category int

const (
	CategoryWeapons Category = iota
	CategoryKnife
	CategoryGloves
	CategoryAgent
	CategoryMusic
	CategoryPin
)

func (c Category) String() string {
	switch c {
	case CategoryWeapons:
		return "weapons"
	case CategoryKnife:
		return "knife"
	case CategoryGloves:
		return "gloves"
	case CategoryAgent:
		return "agent"
	case CategoryMusic:
		return "music"
	case CategoryPin:
		return "pin"
	default:
		return "unknown"
	}
}

// Visual carries the attributes the host needs to re-equip one category.
type Visual struct {
	Weapons    map[int]loadout.WeaponAttributes
	Knife      string
	Glove      int
	AgentModel string
	MusicKit   int
	Pin        int
}

// Host is the live game session. ApplyVisual must be idempotent: re-equipping
// currently-held items is safe to call repeatedly.
type Host interface {
	IsValid(p PlayerRef) bool
	CurrentSide(p PlayerRef) loadout.Team
	ApplyVisual(p PlayerRef, c Category, v Visual)
	Print(p PlayerRef, msg string)
}
