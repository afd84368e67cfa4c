package main

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/weaponpaints/extension/internal/config"
	"github.com/weaponpaints/extension/internal/dispatcher"
	"github.com/weaponpaints/extension/internal/loadout"
	"github.com/weaponpaints/extension/internal/pipeline"
	"github.com/weaponpaints/extension/internal/session"
)

// demoHost is a stand-in session host that logs every visual application.
// It lets the full stack run without a live game server attached.
type demoHost struct {
	log  zerolog.Logger
	side loadout.Team
}

func newDemoHost(log zerolog.Logger) *demoHost {
	return &demoHost{log: log, side: loadout.TeamT}
}

func (h *demoHost) IsValid(p session.PlayerRef) bool             { return true }
func (h *demoHost) CurrentSide(p session.PlayerRef) loadout.Team { return h.side }

func (h *demoHost) ApplyVisual(p session.PlayerRef, c session.Category, v session.Visual) {
	h.log.Info().
		Int("slot", p.Slot).
		Str("category", c.String()).
		Interface("visual", v).
		Msg("Applying visual")
}

func (h *demoHost) Print(p session.PlayerRef, msg string) {
	h.log.Info().Int("slot", p.Slot).Str("chat", msg).Msg("Player message")
}

// consoleMenu renders menus to the log instead of a game UI.
type consoleMenu struct {
	log zerolog.Logger
}

func newConsoleMenu(log zerolog.Logger) *consoleMenu {
	return &consoleMenu{log: log}
}

func (m *consoleMenu) Show(p session.PlayerRef, title string, items []pipeline.MenuItem) {
	labels := make([]string, 0, len(items))
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	m.log.Info().
		Int("slot", p.Slot).
		Str("menu", title).
		Strs("items", labels).
		Msg("Menu shown")
}

// runDemo walks one synthetic player through the whole flow: connect,
// selections across every category, a StatTrak toggle and a refresh.
func runDemo(log zerolog.Logger, pipe *pipeline.Pipeline, disp *dispatcher.Dispatcher, host *demoHost) {
	player := session.PlayerRef{
		Slot:    1,
		SteamID: "76561198000000001",
		Name:    "demo player",
	}

	log.Info().Msg("Running demo session")

	pipe.OnConnect(player)
	time.Sleep(200 * time.Millisecond)

	if _, err := disp.Dispatch(dispatcher.Event{Command: "ws", Player: player, Timestamp: time.Now()}); err != nil {
		log.Warn().Err(err).Msg("info command failed")
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"skin", func() error { return pipe.SelectSkin(player, "weapon_ak47", 44) }},
		{"knife", func() error { return pipe.SelectKnife(player, "weapon_knife_karambit") }},
		{"glove", func() error { return pipe.SelectGlove(player, "Sport Gloves | Pandora's Box") }},
		{"agent", func() error { return pipe.SelectAgent(player, "Sir Bloody Miami Darryl") }},
		{"music", func() error { return pipe.SelectMusic(player, "Desert Fire") }},
		{"pin", func() error { return pipe.SelectPin(player, "Guardian Elite Pin") }},
		{"stattrak", func() error { return pipe.ToggleStatTrak(player, 7) }},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			log.Warn().Err(err).Str("step", step.name).Msg("Demo step skipped")
		}
		// respect the selection cooldown between picks
		time.Sleep(config.SelectionCooldown() + 100*time.Millisecond)
	}
	time.Sleep(config.CommandCooldown())

	if err := pipe.Refresh(player); err != nil {
		log.Warn().Err(err).Msg("refresh failed")
	}
	time.Sleep(500 * time.Millisecond)

	pipe.OnDisconnect(player)
	log.Info().Msg("Demo session complete")
}
