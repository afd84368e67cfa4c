// Package catalog holds the immutable lookup tables of selectable cosmetic
// items. Catalogs are loaded once at startup and never mutated afterwards, so
// reads need no synchronization.
package catalog

import (
	"strings"

	"github.com/weaponpaints/extension/internal/loadout"
)

// Skin is one paint for one weapon class.
type Skin struct {
	Weapon   string
	DefIndex int
	Paint    int
	Name     string
	Image    string
}

// Glove is one glove finish. The definition index identifies the glove model,
// the paint the finish on it.
type Glove struct {
	Name     string
	DefIndex int
	Paint    int
	Image    string
}

// Agent is one character model for one side.
type Agent struct {
	Name  string
	Team  loadout.Team
	Model string
	Image string
}

// Music is one music kit.
type Music struct {
	Name  string
	ID    int
	Image string
}

// Pin is one collectible pin.
type Pin struct {
	Name  string
	ID    int
	Image string
}

// Weapon maps a weapon class name to its display name and definition index.
type Weapon struct {
	Class       string
	DisplayName string
	DefIndex    int
}

// Catalogs bundles every lookup table plus the indexes the selection pipeline
// queries per event.
type Catalogs struct {
	Skins   []Skin
	Gloves  []Glove
	Agents  []Agent
	Music   []Music
	Pins    []Pin
	Weapons []Weapon

	skinsByWeapon map[string][]Skin
	skinByPaint   map[string]map[int]*Skin
	gloveByName   map[string]*Glove
	agentByName   map[agentKey]*Agent
	musicByName   map[string]*Music
	pinByName     map[string]*Pin
	weaponByClass map[string]*Weapon
}

type agentKey struct {
	name string
	team loadout.Team
}

func (c *Catalogs) index() {
	c.skinsByWeapon = make(map[string][]Skin)
	c.skinByPaint = make(map[string]map[int]*Skin)
	for i := range c.Skins {
		s := &c.Skins[i]
		c.skinsByWeapon[s.Weapon] = append(c.skinsByWeapon[s.Weapon], *s)
		byPaint, ok := c.skinByPaint[s.Weapon]
		if !ok {
			byPaint = make(map[int]*Skin)
			c.skinByPaint[s.Weapon] = byPaint
		}
		byPaint[s.Paint] = s
	}

	c.gloveByName = make(map[string]*Glove, len(c.Gloves))
	for i := range c.Gloves {
		c.gloveByName[c.Gloves[i].Name] = &c.Gloves[i]
	}

	c.agentByName = make(map[agentKey]*Agent, len(c.Agents))
	for i := range c.Agents {
		a := &c.Agents[i]
		c.agentByName[agentKey{a.Name, a.Team}] = a
	}

	c.musicByName = make(map[string]*Music, len(c.Music))
	for i := range c.Music {
		c.musicByName[c.Music[i].Name] = &c.Music[i]
	}

	c.pinByName = make(map[string]*Pin, len(c.Pins))
	for i := range c.Pins {
		c.pinByName[c.Pins[i].Name] = &c.Pins[i]
	}

	c.weaponByClass = make(map[string]*Weapon, len(c.Weapons))
	for i := range c.Weapons {
		c.weaponByClass[c.Weapons[i].Class] = &c.Weapons[i]
	}
}

// SkinsForWeapon returns every known paint for the weapon class.
func (c *Catalogs) SkinsForWeapon(class string) []Skin {
	return c.skinsByWeapon[class]
}

// SkinByWeaponPaint resolves one paint for one weapon class, or nil if the
// catalog no longer contains it.
func (c *Catalogs) SkinByWeaponPaint(class string, paint int) *Skin {
	byPaint, ok := c.skinByPaint[class]
	if !ok {
		return nil
	}
	return byPaint[paint]
}

// GloveByName resolves a glove finish by its display name.
func (c *Catalogs) GloveByName(name string) *Glove {
	return c.gloveByName[name]
}

// AgentByName resolves an agent by display name for a specific side.
func (c *Catalogs) AgentByName(name string, team loadout.Team) *Agent {
	return c.agentByName[agentKey{name, team}]
}

// AgentsForTeam returns the agents selectable on the given side.
func (c *Catalogs) AgentsForTeam(team loadout.Team) []Agent {
	out := make([]Agent, 0)
	for _, a := range c.Agents {
		if a.Team == team {
			out = append(out, a)
		}
	}
	return out
}

// MusicByName resolves a music kit by display name.
func (c *Catalogs) MusicByName(name string) *Music {
	return c.musicByName[name]
}

// PinByName resolves a pin by display name.
func (c *Catalogs) PinByName(name string) *Pin {
	return c.pinByName[name]
}

// WeaponByClass resolves a weapon class name.
func (c *Catalogs) WeaponByClass(class string) *Weapon {
	return c.weaponByClass[class]
}

// IsKnifeClass reports whether the class names a knife model.
func IsKnifeClass(class string) bool {
	return strings.HasPrefix(class, "weapon_knife") || strings.HasPrefix(class, "weapon_bayonet")
}

// Knives returns the knife entries of the weapon table.
func (c *Catalogs) Knives() []Weapon {
	out := make([]Weapon, 0)
	for _, w := range c.Weapons {
		if IsKnifeClass(w.Class) {
			out = append(out, w)
		}
	}
	return out
}

// NonKnifeWeapons returns the paintable weapon entries, i.e. everything that
// is not a knife model.
func (c *Catalogs) NonKnifeWeapons() []Weapon {
	out := make([]Weapon, 0)
	for _, w := range c.Weapons {
		if !IsKnifeClass(w.Class) {
			out = append(out, w)
		}
	}
	return out
}
