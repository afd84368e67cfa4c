package pipeline

import (
	"context"

	"github.com/weaponpaints/extension/internal/cooldown"
	"github.com/weaponpaints/extension/internal/dispatcher"
	"github.com/weaponpaints/extension/internal/session"
)

// RegisterCommands wires the command surface onto the dispatcher. Menu-open
// commands share the command cooldown so players cannot spam menu rebuilds.
func (p *Pipeline) RegisterCommands(d *dispatcher.Dispatcher, menu Menu) {
	d.Register("ws", func(e dispatcher.Event) (any, error) {
		return nil, p.Info(e.Player)
	}, dispatcher.Logged())

	d.Register("refresh", func(e dispatcher.Event) (any, error) {
		return nil, p.Refresh(e.Player)
	}, dispatcher.Logged())

	d.Register("stattrak", func(e dispatcher.Event) (any, error) {
		def, ok := p.heldCustomWeapon(e.Player)
		if !ok {
			p.host.Print(e.Player, "This weapon has no custom paint to track.")
			return nil, ErrNotFound
		}
		return nil, p.ToggleStatTrak(e.Player, def)
	}, dispatcher.Logged())

	type menuCommand struct {
		name    string
		enabled bool
		open    func(session.PlayerRef)
	}

	cmds := []menuCommand{
		{"skins", p.features.Skins, func(pl session.PlayerRef) { p.ShowWeaponsMenu(menu, pl) }},
		{"knife", p.features.Knives, func(pl session.PlayerRef) { p.ShowKnifeMenu(menu, pl) }},
		{"gloves", p.features.Gloves, func(pl session.PlayerRef) { p.ShowGlovesMenu(menu, pl) }},
		{"agents", p.features.Agents, func(pl session.PlayerRef) { p.ShowAgentsMenu(menu, pl) }},
		{"music", p.features.Music, func(pl session.PlayerRef) { p.ShowMusicMenu(menu, pl) }},
		{"pins", p.features.Pins, func(pl session.PlayerRef) { p.ShowPinsMenu(menu, pl) }},
	}

	for _, c := range cmds {
		if !c.enabled {
			continue
		}
		open := c.open
		d.Register(c.name, func(e dispatcher.Event) (any, error) {
			if !p.host.IsValid(e.Player) {
				return nil, ErrSessionGone
			}
			if !p.gate.TryAcquire(cooldown.KindCommand, e.Player.Slot, p.now()) {
				p.printWait(e.Player, cooldown.KindCommand)
				return nil, ErrThrottled
			}
			open(e.Player)
			return nil, nil
		})
	}
}

// heldCustomWeapon finds a weapon with an existing paint entry to toggle
// StatTrak on. The host cannot tell us what is in the player's hands, so the
// most recent customization wins; with one entry it is unambiguous.
func (p *Pipeline) heldCustomWeapon(player session.PlayerRef) (int, bool) {
	snap, ok := p.store.Snapshot(player.Slot, p.host.CurrentSide(player))
	if !ok || len(snap.Weapons) == 0 {
		return 0, false
	}
	best := -1
	for def := range snap.Weapons {
		if def > best {
			best = def
		}
	}
	return best, true
}

// OnConnect hydrates the player's stored loadout and applies it. Runs the
// storage read off the foreground path; visuals are applied only after the
// store is populated.
func (p *Pipeline) OnConnect(player session.PlayerRef) {
	go func() {
		if _, err := p.engine.Hydrate(context.Background(), player); err != nil {
			p.log.Warn().Err(err).
				Str("steamid", player.SteamID).
				Int("slot", player.Slot).
				Msg("Hydration failed, player starts with defaults")
			return
		}
		p.ApplyAll(player)
	}()
}

// OnDisconnect drops all per-slot state. Slots are reused, nothing may leak
// to the next occupant. Already enqueued persistence jobs still complete.
func (p *Pipeline) OnDisconnect(player session.PlayerRef) {
	p.store.ClearPlayer(player.Slot)
	p.gate.Clear(player.Slot)
	if p.preview != nil {
		p.preview.Clear(player.Slot)
	}
}

// OnMapChange cancels every outstanding preview early.
func (p *Pipeline) OnMapChange() {
	if p.preview != nil {
		p.preview.ClearAll()
	}
}

// HotReload clears all in-memory state and re-hydrates every connected
// player, same as the initial connect path.
func (p *Pipeline) HotReload(players []session.PlayerRef) {
	p.store.ClearAll()
	for _, pl := range players {
		p.OnConnect(pl)
	}
}
