// Package pipeline turns a player's catalog choice into a validated, applied
// and persisted loadout mutation. Every selection runs the same sequence:
// session check, cooldown, catalog resolve, side resolution, store mutation,
// preview, visual re-application, persistence enqueue. Only the last step
// leaves the foreground path.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/weaponpaints/extension/internal/catalog"
	"github.com/weaponpaints/extension/internal/cooldown"
	"github.com/weaponpaints/extension/internal/loadout"
	"github.com/weaponpaints/extension/internal/preview"
	"github.com/weaponpaints/extension/internal/session"
	"github.com/weaponpaints/extension/internal/syncer"
)

// ErrThrottled is returned while a cooldown window is still open. The player
// got a wait message; nothing was mutated.
var ErrThrottled = fmt.Errorf("cooldown active")

// ErrNotFound is returned when the chosen item is missing from the catalog,
// usually a stale menu after a catalog reload.
var ErrNotFound = fmt.Errorf("item not in catalog")

// ErrSessionGone is returned when the player disconnected between event
// dispatch and pipeline execution. Not an error condition, just a no-op.
var ErrSessionGone = fmt.Errorf("session no longer valid")

// Features switches categories on and off.
type Features struct {
	Skins  bool
	Knives bool
	Gloves bool
	Agents bool
	Music  bool
	Pins   bool
}

// Dependencies holds everything the pipeline needs.
type Dependencies struct {
	Store    *loadout.Store
	Gate     *cooldown.Gate
	Catalogs *catalog.Catalogs
	Host     session.Host
	Preview  *preview.Registry
	Engine   *syncer.Engine
	Logger   zerolog.Logger
	Features Features

	PreviewEnabled bool

	// Now is the clock used for cooldown checks, overridable in tests.
	Now func() time.Time
}

// Pipeline is the selection pipeline plus its command surface.
type Pipeline struct {
	store   *loadout.Store
	gate    *cooldown.Gate
	cats    *catalog.Catalogs
	host    session.Host
	preview *preview.Registry
	engine  *syncer.Engine
	log     zerolog.Logger

	features       Features
	previewEnabled bool
	now            func() time.Time
}

// New creates a pipeline.
func New(deps Dependencies) *Pipeline {
	p := &Pipeline{
		store:          deps.Store,
		gate:           deps.Gate,
		cats:           deps.Catalogs,
		host:           deps.Host,
		preview:        deps.Preview,
		engine:         deps.Engine,
		log:            deps.Logger,
		features:       deps.Features,
		previewEnabled: deps.PreviewEnabled,
		now:            deps.Now,
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// begin runs the shared pipeline preamble: session check, cooldown gate and
// side resolution. No state is touched when it fails.
func (p *Pipeline) begin(player session.PlayerRef, kind cooldown.Kind) ([]loadout.Team, error) {
	if !p.host.IsValid(player) {
		return nil, ErrSessionGone
	}
	if !p.gate.TryAcquire(kind, player.Slot, p.now()) {
		p.printWait(player, kind)
		return nil, ErrThrottled
	}
	return loadout.ResolveTargets(p.host.CurrentSide(player)), nil
}

func (p *Pipeline) printWait(player session.PlayerRef, kind cooldown.Kind) {
	rem := p.gate.Remaining(kind, player.Slot, p.now())
	secs := int(rem.Seconds()) + 1
	p.host.Print(player, fmt.Sprintf("Please wait %d seconds before using this again.", secs))
}

// SelectSkin applies one paint to one weapon class for the player's target
// side(s). A new pick always resets wear, seed and the StatTrak flag.
func (p *Pipeline) SelectSkin(player session.PlayerRef, weaponClass string, paint int) error {
	teams, err := p.begin(player, cooldown.KindSelection)
	if err != nil {
		return err
	}

	skin := p.cats.SkinByWeaponPaint(weaponClass, paint)
	if skin == nil {
		p.log.Debug().
			Str("weapon", weaponClass).
			Int("paint", paint).
			Int("slot", player.Slot).
			Msg("Skin not in catalog")
		return ErrNotFound
	}

	p.store.UpsertWeapon(player.Slot, teams, skin.DefIndex, func(w *loadout.WeaponAttributes) {
		w.Paint = skin.Paint
		w.Wear = loadout.FreshWear
		w.Seed = 0
		w.StatTrak = false
	})

	p.showPreview(player, skin.Image)
	p.applyWeapons(player)

	attr, _ := p.store.Weapon(player.Slot, teams[0], skin.DefIndex)
	for _, t := range teams {
		p.engine.Enqueue(player.SteamID, syncer.Job{
			Category: session.CategoryWeapons,
			Team:     t,
			DefIndex: skin.DefIndex,
			Attr:     attr,
		})
	}

	p.host.Print(player, fmt.Sprintf("Selected %s.", skin.Name))
	return nil
}

// SelectKnife swaps the knife model, empty class restores the default knife.
func (p *Pipeline) SelectKnife(player session.PlayerRef, class string) error {
	teams, err := p.begin(player, cooldown.KindSelection)
	if err != nil {
		return err
	}

	name := "Default"
	if class != "" {
		w := p.cats.WeaponByClass(class)
		if w == nil || !catalog.IsKnifeClass(class) {
			p.log.Debug().Str("class", class).Int("slot", player.Slot).Msg("Knife not in catalog")
			return ErrNotFound
		}
		name = w.DisplayName
	}

	p.store.SetKnife(player.Slot, teams, class)
	p.applyCategory(player, session.CategoryKnife)

	for _, t := range teams {
		p.engine.Enqueue(player.SteamID, syncer.Job{
			Category: session.CategoryKnife,
			Team:     t,
			Knife:    class,
		})
	}

	p.host.Print(player, fmt.Sprintf("Knife set to %s.", name))
	return nil
}

// SelectGlove applies a glove finish. The finish also lands as a paint entry
// keyed by the glove's definition index, that is what the session applies.
// An empty name clears the gloves back to default.
func (p *Pipeline) SelectGlove(player session.PlayerRef, name string) error {
	teams, err := p.begin(player, cooldown.KindSelection)
	if err != nil {
		return err
	}

	if name == "" {
		p.store.SetGlove(player.Slot, teams, 0)
		p.applyCategory(player, session.CategoryGloves)
		for _, t := range teams {
			p.engine.Enqueue(player.SteamID, syncer.Job{
				Category: session.CategoryGloves,
				Team:     t,
				Glove:    0,
			})
		}
		p.host.Print(player, "Gloves restored to default.")
		return nil
	}

	g := p.cats.GloveByName(name)
	if g == nil {
		p.log.Debug().Str("glove", name).Int("slot", player.Slot).Msg("Glove not in catalog")
		return ErrNotFound
	}

	p.store.SetGlove(player.Slot, teams, g.DefIndex)
	p.store.UpsertWeapon(player.Slot, teams, g.DefIndex, func(w *loadout.WeaponAttributes) {
		w.Paint = g.Paint
		w.Wear = 0
		w.Seed = 0
		w.StatTrak = false
	})

	p.showPreview(player, g.Image)
	p.applyCategory(player, session.CategoryGloves)

	attr, _ := p.store.Weapon(player.Slot, teams[0], g.DefIndex)
	for _, t := range teams {
		p.engine.Enqueue(player.SteamID, syncer.Job{
			Category: session.CategoryGloves,
			Team:     t,
			Glove:    g.DefIndex,
		})
		p.engine.Enqueue(player.SteamID, syncer.Job{
			Category: session.CategoryWeapons,
			Team:     t,
			DefIndex: g.DefIndex,
			Attr:     attr,
		})
	}

	p.host.Print(player, fmt.Sprintf("Selected %s.", g.Name))
	return nil
}

// SelectAgent picks the character model for the side the player is currently
// on. Other-side selections are untouched. An empty name clears this side.
func (p *Pipeline) SelectAgent(player session.PlayerRef, name string) error {
	if _, err := p.begin(player, cooldown.KindSelection); err != nil {
		return err
	}

	side := p.host.CurrentSide(player)
	if side != loadout.TeamT && side != loadout.TeamCT {
		return ErrNotFound
	}

	model := ""
	label := "Default"
	if name != "" {
		a := p.cats.AgentByName(name, side)
		if a == nil {
			p.log.Debug().Str("agent", name).Int("slot", player.Slot).Msg("Agent not in catalog")
			return ErrNotFound
		}
		model = a.Model
		label = a.Name
		p.showPreview(player, a.Image)
	}

	p.store.SetAgent(player.Slot, side, model)
	p.applyCategory(player, session.CategoryAgent)

	p.engine.Enqueue(player.SteamID, syncer.Job{
		Category: session.CategoryAgent,
		Agent:    p.store.Agent(player.Slot),
	})

	p.host.Print(player, fmt.Sprintf("Agent set to %s.", label))
	return nil
}

// SelectMusic picks a music kit, empty name means "None". "None" is stored
// explicitly so a reconnect does not revive old kits.
func (p *Pipeline) SelectMusic(player session.PlayerRef, name string) error {
	teams, err := p.begin(player, cooldown.KindSelection)
	if err != nil {
		return err
	}

	id := 0
	label := "None"
	if name != "" {
		m := p.cats.MusicByName(name)
		if m == nil {
			p.log.Debug().Str("music", name).Int("slot", player.Slot).Msg("Music kit not in catalog")
			return ErrNotFound
		}
		id = m.ID
		label = m.Name
		p.showPreview(player, m.Image)
	}

	p.store.SetMusic(player.Slot, teams, id)
	p.applyCategory(player, session.CategoryMusic)

	for _, t := range teams {
		p.engine.Enqueue(player.SteamID, syncer.Job{
			Category: session.CategoryMusic,
			Team:     t,
			Value:    id,
		})
	}

	p.host.Print(player, fmt.Sprintf("Music kit set to %s.", label))
	return nil
}

// SelectPin picks a pin, empty name means "None".
func (p *Pipeline) SelectPin(player session.PlayerRef, name string) error {
	teams, err := p.begin(player, cooldown.KindSelection)
	if err != nil {
		return err
	}

	id := 0
	label := "None"
	if name != "" {
		pin := p.cats.PinByName(name)
		if pin == nil {
			p.log.Debug().Str("pin", name).Int("slot", player.Slot).Msg("Pin not in catalog")
			return ErrNotFound
		}
		id = pin.ID
		label = pin.Name
		p.showPreview(player, pin.Image)
	}

	p.store.SetPin(player.Slot, teams, id)
	p.applyCategory(player, session.CategoryPin)

	for _, t := range teams {
		p.engine.Enqueue(player.SteamID, syncer.Job{
			Category: session.CategoryPin,
			Team:     t,
			Value:    id,
		})
	}

	p.host.Print(player, fmt.Sprintf("Pin set to %s.", label))
	return nil
}

// ToggleStatTrak flips the StatTrak flag on an already painted weapon. Gated
// by the command cooldown only, the selection window stays untouched.
func (p *Pipeline) ToggleStatTrak(player session.PlayerRef, defIndex int) error {
	teams, err := p.begin(player, cooldown.KindCommand)
	if err != nil {
		return err
	}

	on, ok := p.store.ToggleStatTrak(player.Slot, teams, defIndex)
	if !ok {
		p.host.Print(player, "This weapon has no custom paint to track.")
		return ErrNotFound
	}

	p.applyWeapons(player)

	for _, t := range teams {
		attr, found := p.store.Weapon(player.Slot, t, defIndex)
		if !found {
			continue
		}
		p.engine.Enqueue(player.SteamID, syncer.Job{
			Category: session.CategoryWeapons,
			Team:     t,
			DefIndex: defIndex,
			Attr:     attr,
		})
	}

	if on {
		p.host.Print(player, "StatTrak enabled.")
	} else {
		p.host.Print(player, "StatTrak disabled.")
	}
	return nil
}

// Refresh re-reads the player's stored loadout and re-applies every category.
// The storage read happens off the foreground path.
func (p *Pipeline) Refresh(player session.PlayerRef) error {
	if !p.host.IsValid(player) {
		return ErrSessionGone
	}
	if !p.gate.TryAcquire(cooldown.KindCommand, player.Slot, p.now()) {
		p.printWait(player, cooldown.KindCommand)
		return ErrThrottled
	}

	go func() {
		p.store.ClearPlayer(player.Slot)
		if _, err := p.engine.Hydrate(context.Background(), player); err != nil {
			p.log.Warn().Err(err).Int("slot", player.Slot).Msg("Refresh hydration failed")
			return
		}
		p.ApplyAll(player)
		p.host.Print(player, "Loadout refreshed.")
	}()
	return nil
}

// Info prints the enabled categories.
func (p *Pipeline) Info(player session.PlayerRef) error {
	if !p.host.IsValid(player) {
		return ErrSessionGone
	}

	items := []struct {
		on   bool
		name string
	}{
		{p.features.Skins, "skins"},
		{p.features.Knives, "knives"},
		{p.features.Gloves, "gloves"},
		{p.features.Agents, "agents"},
		{p.features.Music, "music kits"},
		{p.features.Pins, "pins"},
	}

	enabled := make([]string, 0, len(items))
	for _, it := range items {
		if it.on {
			enabled = append(enabled, it.name)
		}
	}
	if len(enabled) == 0 {
		p.host.Print(player, "No customization is enabled on this server.")
		return nil
	}

	msg := "Customize your " + enabled[0]
	for i := 1; i < len(enabled); i++ {
		msg += ", " + enabled[i]
	}
	p.host.Print(player, msg+".")
	return nil
}

// ApplyAll re-applies every enabled category from the store to the live
// session, used after hydration and refresh.
func (p *Pipeline) ApplyAll(player session.PlayerRef) {
	if !p.host.IsValid(player) {
		return
	}
	if p.features.Gloves {
		p.applyCategory(player, session.CategoryGloves)
	}
	if p.features.Skins {
		p.applyWeapons(player)
	}
	if p.features.Knives {
		p.applyCategory(player, session.CategoryKnife)
	}
	if p.features.Agents {
		p.applyCategory(player, session.CategoryAgent)
	}
	if p.features.Music {
		p.applyCategory(player, session.CategoryMusic)
	}
	if p.features.Pins {
		p.applyCategory(player, session.CategoryPin)
	}
}

func (p *Pipeline) showPreview(player session.PlayerRef, image string) {
	if !p.previewEnabled || p.preview == nil {
		return
	}
	p.preview.Show(player.Slot, image)
}

func (p *Pipeline) applyWeapons(player session.PlayerRef) {
	p.applyCategory(player, session.CategoryWeapons)
}

// applyCategory pushes the current side's stored values back onto the live
// session. Visual application is idempotent on the host side.
func (p *Pipeline) applyCategory(player session.PlayerRef, c session.Category) {
	side := p.host.CurrentSide(player)
	snap, ok := p.store.Snapshot(player.Slot, side)
	agent := p.store.Agent(player.Slot)
	if !ok && c != session.CategoryAgent {
		return
	}

	v := session.Visual{}
	switch c {
	case session.CategoryWeapons:
		v.Weapons = make(map[int]loadout.WeaponAttributes, len(snap.Weapons))
		for def, attr := range snap.Weapons {
			v.Weapons[def] = *attr
		}
	case session.CategoryKnife:
		v.Knife = snap.Knife
	case session.CategoryGloves:
		v.Glove = snap.Glove
	case session.CategoryAgent:
		v.AgentModel = agent.ForTeam(side)
	case session.CategoryMusic:
		v.MusicKit = snap.Music
	case session.CategoryPin:
		v.Pin = snap.Pin
	}

	p.host.ApplyVisual(player, c, v)
}
