package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/weaponpaints/extension/internal/loadout"
)

// Raw file schemas. Upstream item dumps are inconsistent about whether
// numeric ids arrive as numbers or strings, so every id field goes through
// json.Number.
type rawSkin struct {
	Weapon   string      `json:"weapon_name"`
	DefIndex json.Number `json:"weapon_defindex"`
	Paint    json.Number `json:"paint"`
	Name     string      `json:"paint_name"`
	Image    string      `json:"image"`
}

type rawGlove struct {
	Name     string      `json:"paint_name"`
	DefIndex json.Number `json:"weapon_defindex"`
	Paint    json.Number `json:"paint"`
	Image    string      `json:"image"`
}

type rawAgent struct {
	Name  string      `json:"agent_name"`
	Team  json.Number `json:"team"`
	Model string      `json:"model"`
	Image string      `json:"image"`
}

type rawMusic struct {
	Name  string      `json:"name"`
	ID    json.Number `json:"id"`
	Image string      `json:"image"`
}

type rawPin struct {
	Name  string      `json:"name"`
	ID    json.Number `json:"id"`
	Image string      `json:"image"`
}

type rawWeapon struct {
	Class       string      `json:"weapon_name"`
	DisplayName string      `json:"display_name"`
	DefIndex    json.Number `json:"weapon_defindex"`
}

// Load reads every catalog file from dir. A missing or malformed file is
// logged and leaves that table empty; selection against an empty table simply
// finds nothing, the process keeps running.
func Load(dir string, log zerolog.Logger) *Catalogs {
	c := &Catalogs{}

	var skins []rawSkin
	if loadFile(dir, "skins.json", log, &skins) {
		for _, r := range skins {
			c.Skins = append(c.Skins, Skin{
				Weapon:   r.Weapon,
				DefIndex: toInt(r.DefIndex),
				Paint:    toInt(r.Paint),
				Name:     r.Name,
				Image:    r.Image,
			})
		}
	}

	var gloves []rawGlove
	if loadFile(dir, "gloves.json", log, &gloves) {
		for _, r := range gloves {
			c.Gloves = append(c.Gloves, Glove{
				Name:     r.Name,
				DefIndex: toInt(r.DefIndex),
				Paint:    toInt(r.Paint),
				Image:    r.Image,
			})
		}
	}

	var agents []rawAgent
	if loadFile(dir, "agents.json", log, &agents) {
		for _, r := range agents {
			c.Agents = append(c.Agents, Agent{
				Name:  r.Name,
				Team:  loadout.Team(toInt(r.Team)),
				Model: r.Model,
				Image: r.Image,
			})
		}
	}

	var music []rawMusic
	if loadFile(dir, "music.json", log, &music) {
		for _, r := range music {
			c.Music = append(c.Music, Music{
				Name:  r.Name,
				ID:    toInt(r.ID),
				Image: r.Image,
			})
		}
	}

	var pins []rawPin
	if loadFile(dir, "pins.json", log, &pins) {
		for _, r := range pins {
			c.Pins = append(c.Pins, Pin{
				Name:  r.Name,
				ID:    toInt(r.ID),
				Image: r.Image,
			})
		}
	}

	var weapons []rawWeapon
	if loadFile(dir, "weapons.json", log, &weapons) {
		for _, r := range weapons {
			c.Weapons = append(c.Weapons, Weapon{
				Class:       r.Class,
				DisplayName: r.DisplayName,
				DefIndex:    toInt(r.DefIndex),
			})
		}
	}

	c.index()

	log.Info().
		Int("skins", len(c.Skins)).
		Int("gloves", len(c.Gloves)).
		Int("agents", len(c.Agents)).
		Int("music", len(c.Music)).
		Int("pins", len(c.Pins)).
		Int("weapons", len(c.Weapons)).
		Msg("Catalogs loaded")

	return c
}

func loadFile(dir, name string, log zerolog.Logger, out any) bool {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("Catalog file unavailable")
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("Catalog file malformed")
		return false
	}
	return true
}

func toInt(n json.Number) int {
	v, err := n.Int64()
	if err != nil {
		return 0
	}
	return int(v)
}
