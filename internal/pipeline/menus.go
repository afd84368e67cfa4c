package pipeline

import (
	"github.com/weaponpaints/extension/internal/loadout"
	"github.com/weaponpaints/extension/internal/session"
)

// MenuItem is one selectable row. Payload is the stable identifier handed
// back to OnSelect, never the display label.
type MenuItem struct {
	Label    string
	Payload  string
	OnSelect func(p session.PlayerRef, payload string)
}

// Menu renders item lists to the player. The host integration provides the
// actual implementation (chat menu, center menu, whatever the server uses).
type Menu interface {
	Show(p session.PlayerRef, title string, items []MenuItem)
}

// ShowWeaponsMenu lists every paintable weapon, each opening a skin submenu.
func (p *Pipeline) ShowWeaponsMenu(menu Menu, player session.PlayerRef) {
	weapons := p.cats.NonKnifeWeapons()
	items := make([]MenuItem, 0, len(weapons))
	for _, w := range weapons {
		items = append(items, MenuItem{
			Label:   w.DisplayName,
			Payload: w.Class,
			OnSelect: func(pl session.PlayerRef, class string) {
				p.ShowSkinsMenu(menu, pl, class)
			},
		})
	}
	menu.Show(player, "Weapons", items)
}

// ShowSkinsMenu lists the paints for one weapon class.
func (p *Pipeline) ShowSkinsMenu(menu Menu, player session.PlayerRef, weaponClass string) {
	skins := p.cats.SkinsForWeapon(weaponClass)
	items := make([]MenuItem, 0, len(skins))
	for _, s := range skins {
		s := s
		items = append(items, MenuItem{
			Label:   s.Name,
			Payload: s.Name,
			OnSelect: func(pl session.PlayerRef, _ string) {
				p.SelectSkin(pl, weaponClass, s.Paint)
			},
		})
	}
	title := "Skins"
	if w := p.cats.WeaponByClass(weaponClass); w != nil {
		title = w.DisplayName
	}
	menu.Show(player, title, items)
}

// ShowKnifeMenu lists the knife models, with the default knife first.
func (p *Pipeline) ShowKnifeMenu(menu Menu, player session.PlayerRef) {
	knives := p.cats.Knives()
	items := make([]MenuItem, 0, len(knives)+1)
	items = append(items, MenuItem{
		Label:   "Default",
		Payload: "",
		OnSelect: func(pl session.PlayerRef, payload string) {
			p.SelectKnife(pl, payload)
		},
	})
	for _, k := range knives {
		items = append(items, MenuItem{
			Label:   k.DisplayName,
			Payload: k.Class,
			OnSelect: func(pl session.PlayerRef, payload string) {
				p.SelectKnife(pl, payload)
			},
		})
	}
	menu.Show(player, "Knives", items)
}

// ShowGlovesMenu lists the glove finishes, with default gloves first.
func (p *Pipeline) ShowGlovesMenu(menu Menu, player session.PlayerRef) {
	gloves := p.cats.Gloves
	items := make([]MenuItem, 0, len(gloves)+1)
	items = append(items, MenuItem{
		Label:   "Default",
		Payload: "",
		OnSelect: func(pl session.PlayerRef, payload string) {
			p.SelectGlove(pl, payload)
		},
	})
	for _, g := range gloves {
		items = append(items, MenuItem{
			Label:   g.Name,
			Payload: g.Name,
			OnSelect: func(pl session.PlayerRef, payload string) {
				p.SelectGlove(pl, payload)
			},
		})
	}
	menu.Show(player, "Gloves", items)
}

// ShowAgentsMenu lists the agents for the side the player is currently on.
// Spectators get nothing, there is no side to dress up.
func (p *Pipeline) ShowAgentsMenu(menu Menu, player session.PlayerRef) {
	side := p.host.CurrentSide(player)
	if side != loadout.TeamT && side != loadout.TeamCT {
		p.host.Print(player, "Join a team to pick an agent.")
		return
	}

	agents := p.cats.AgentsForTeam(side)
	items := make([]MenuItem, 0, len(agents)+1)
	items = append(items, MenuItem{
		Label:   "Default",
		Payload: "",
		OnSelect: func(pl session.PlayerRef, payload string) {
			p.SelectAgent(pl, payload)
		},
	})
	for _, a := range agents {
		items = append(items, MenuItem{
			Label:   a.Name,
			Payload: a.Name,
			OnSelect: func(pl session.PlayerRef, payload string) {
				p.SelectAgent(pl, payload)
			},
		})
	}
	menu.Show(player, "Agents", items)
}

// ShowMusicMenu lists the music kits with "None" first.
func (p *Pipeline) ShowMusicMenu(menu Menu, player session.PlayerRef) {
	kits := p.cats.Music
	items := make([]MenuItem, 0, len(kits)+1)
	items = append(items, MenuItem{
		Label:   "None",
		Payload: "",
		OnSelect: func(pl session.PlayerRef, payload string) {
			p.SelectMusic(pl, payload)
		},
	})
	for _, m := range kits {
		items = append(items, MenuItem{
			Label:   m.Name,
			Payload: m.Name,
			OnSelect: func(pl session.PlayerRef, payload string) {
				p.SelectMusic(pl, payload)
			},
		})
	}
	menu.Show(player, "Music Kits", items)
}

// ShowPinsMenu lists the pins with "None" first.
func (p *Pipeline) ShowPinsMenu(menu Menu, player session.PlayerRef) {
	pins := p.cats.Pins
	items := make([]MenuItem, 0, len(pins)+1)
	items = append(items, MenuItem{
		Label:   "None",
		Payload: "",
		OnSelect: func(pl session.PlayerRef, payload string) {
			p.SelectPin(pl, payload)
		},
	})
	for _, pin := range pins {
		items = append(items, MenuItem{
			Label:   pin.Name,
			Payload: pin.Name,
			OnSelect: func(pl session.PlayerRef, payload string) {
				p.SelectPin(pl, payload)
			},
		})
	}
	menu.Show(player, "Pins", items)
}
