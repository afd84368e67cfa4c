package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weaponpaints/extension/internal/catalog"
	"github.com/weaponpaints/extension/internal/cooldown"
	"github.com/weaponpaints/extension/internal/loadout"
	"github.com/weaponpaints/extension/internal/preview"
	"github.com/weaponpaints/extension/internal/session"
	"github.com/weaponpaints/extension/internal/storage"
	"github.com/weaponpaints/extension/internal/syncer"
)

// fakeHost records everything the pipeline pushes at the session.
type fakeHost struct {
	mu      sync.Mutex
	valid   bool
	side    loadout.Team
	prints  []string
	applied []session.Category
	visuals []session.Visual
}

func (h *fakeHost) IsValid(p session.PlayerRef) bool          { return h.valid }
func (h *fakeHost) CurrentSide(p session.PlayerRef) loadout.Team { return h.side }

func (h *fakeHost) ApplyVisual(p session.PlayerRef, c session.Category, v session.Visual) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.applied = append(h.applied, c)
	h.visuals = append(h.visuals, v)
}

func (h *fakeHost) Print(p session.PlayerRef, msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prints = append(h.prints, msg)
}

func (h *fakeHost) printed() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.prints))
	copy(out, h.prints)
	return out
}

func (h *fakeHost) appliedCategories() []session.Category {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]session.Category, len(h.applied))
	copy(out, h.applied)
	return out
}

// recordingBackend collects persistence calls for assertions.
type recordingBackend struct {
	mu     sync.Mutex
	writes []string
	record *storage.Record
}

var _ storage.Backend = (*recordingBackend)(nil)

func (b *recordingBackend) Init() error  { return nil }
func (b *recordingBackend) Close() error { return nil }

func (b *recordingBackend) ReadLoadout(ctx context.Context, steamID string) (*storage.Record, error) {
	if b.record != nil {
		return b.record, nil
	}
	return &storage.Record{Teams: map[loadout.Team]*loadout.TeamLoadout{}}, nil
}

func (b *recordingBackend) add(s string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes = append(b.writes, s)
}

func (b *recordingBackend) WriteWeapon(ctx context.Context, steamID string, team loadout.Team, defIndex int, attr loadout.WeaponAttributes) error {
	b.add(fmt.Sprintf("weapon:%d:%d:%d:%v", team, defIndex, attr.Paint, attr.StatTrak))
	return nil
}

func (b *recordingBackend) WriteKnife(ctx context.Context, steamID string, team loadout.Team, knife string) error {
	b.add(fmt.Sprintf("knife:%d:%s", team, knife))
	return nil
}

func (b *recordingBackend) WriteGlove(ctx context.Context, steamID string, team loadout.Team, defIndex int) error {
	b.add(fmt.Sprintf("glove:%d:%d", team, defIndex))
	return nil
}

func (b *recordingBackend) WriteAgent(ctx context.Context, steamID string, sel loadout.AgentSelection) error {
	b.add(fmt.Sprintf("agent:%s:%s", sel.T, sel.CT))
	return nil
}

func (b *recordingBackend) WriteMusic(ctx context.Context, steamID string, team loadout.Team, musicID int) error {
	b.add(fmt.Sprintf("music:%d:%d", team, musicID))
	return nil
}

func (b *recordingBackend) WritePin(ctx context.Context, steamID string, team loadout.Team, pinID int) error {
	b.add(fmt.Sprintf("pin:%d:%d", team, pinID))
	return nil
}

func (b *recordingBackend) log() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.writes))
	copy(out, b.writes)
	return out
}

// recordingMenu captures menu renders.
type recordingMenu struct {
	titles []string
	items  [][]MenuItem
}

func (m *recordingMenu) Show(p session.PlayerRef, title string, items []MenuItem) {
	m.titles = append(m.titles, title)
	m.items = append(m.items, items)
}

func testCatalogs(t *testing.T) *catalog.Catalogs {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"skins.json": `[
			{"weapon_name":"weapon_ak47","weapon_defindex":7,"paint":44,"paint_name":"AK-47 | Fire Serpent","image":"https://img/fs.png"},
			{"weapon_name":"weapon_ak47","weapon_defindex":7,"paint":180,"paint_name":"AK-47 | Redline","image":""}
		]`,
		"gloves.json": `[
			{"paint_name":"Sport Gloves | Pandora's Box","weapon_defindex":5030,"paint":10037,"image":""}
		]`,
		"agents.json": `[
			{"agent_name":"Sir Bloody Miami Darryl","team":2,"model":"characters/models/tm_balkan/tm_balkan_variantk.vmdl","image":""},
			{"agent_name":"Cmdr. Mae Jamison","team":3,"model":"characters/models/ctm_swat/ctm_swat_variante.vmdl","image":""}
		]`,
		"music.json":   `[{"name":"Desert Fire","id":39,"image":""}]`,
		"pins.json":    `[{"name":"Guardian Elite Pin","id":960,"image":""}]`,
		"weapons.json": `[
			{"weapon_name":"weapon_ak47","display_name":"AK-47","weapon_defindex":7},
			{"weapon_name":"weapon_knife_karambit","display_name":"Karambit","weapon_defindex":507}
		]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return catalog.Load(dir, zerolog.Nop())
}

type fixture struct {
	pipeline *Pipeline
	host     *fakeHost
	backend  *recordingBackend
	engine   *syncer.Engine
	store    *loadout.Store
	clock    *time.Time
	player   session.PlayerRef
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	host := &fakeHost{valid: true, side: loadout.TeamT}
	backend := &recordingBackend{}
	store := loadout.NewStore()

	engine, err := syncer.NewEngine(syncer.Dependencies{
		Backend:    backend,
		Store:      store,
		Logger:     zerolog.Nop(),
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &now

	p := New(Dependencies{
		Store:          store,
		Gate:           cooldown.NewGate(30*time.Second, 5*time.Second),
		Catalogs:       testCatalogs(t),
		Host:           host,
		Preview:        preview.NewRegistry(50 * time.Millisecond),
		Engine:         engine,
		Logger:         zerolog.Nop(),
		Features:       Features{Skins: true, Knives: true, Gloves: true, Agents: true, Music: true, Pins: true},
		PreviewEnabled: true,
		Now:            func() time.Time { return *clock },
	})

	return &fixture{
		pipeline: p,
		host:     host,
		backend:  backend,
		engine:   engine,
		store:    store,
		clock:    clock,
		player:   session.PlayerRef{Slot: 3, SteamID: "76561198000000001", Name: "tester"},
	}
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

// drain closes the engine so every enqueued write lands, then checks the log.
func (f *fixture) drain() []string {
	f.engine.Close()
	return f.backend.log()
}

func TestSelectSkinBroadcastsToBothSidesWhenUnassigned(t *testing.T) {
	f := newFixture(t)
	f.host.side = loadout.TeamNone

	require.NoError(t, f.pipeline.SelectSkin(f.player, "weapon_ak47", 44))

	for _, team := range []loadout.Team{loadout.TeamT, loadout.TeamCT} {
		attr, ok := f.store.Weapon(f.player.Slot, team, 7)
		require.True(t, ok, "side %v missing", team)
		assert.Equal(t, 44, attr.Paint)
		assert.Equal(t, loadout.FreshWear, attr.Wear)
		assert.Zero(t, attr.Seed)
		assert.False(t, attr.StatTrak)
	}

	writes := f.drain()
	assert.Len(t, writes, 2)
}

func TestSelectSkinSingleSideWhenOnTeam(t *testing.T) {
	f := newFixture(t)
	f.host.side = loadout.TeamCT

	require.NoError(t, f.pipeline.SelectSkin(f.player, "weapon_ak47", 44))

	_, ok := f.store.Weapon(f.player.Slot, loadout.TeamT, 7)
	assert.False(t, ok, "T side must stay untouched")
	attr, ok := f.store.Weapon(f.player.Slot, loadout.TeamCT, 7)
	require.True(t, ok)
	assert.Equal(t, 44, attr.Paint)
}

func TestReskinResetsWearSeedStatTrak(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pipeline.SelectSkin(f.player, "weapon_ak47", 44))
	f.advance(6 * time.Second)
	f.advance(31 * time.Second)
	require.NoError(t, f.pipeline.ToggleStatTrak(f.player, 7))

	attr, _ := f.store.Weapon(f.player.Slot, loadout.TeamT, 7)
	require.True(t, attr.StatTrak)

	f.advance(6 * time.Second)
	require.NoError(t, f.pipeline.SelectSkin(f.player, "weapon_ak47", 180))

	attr, _ = f.store.Weapon(f.player.Slot, loadout.TeamT, 7)
	assert.Equal(t, 180, attr.Paint)
	assert.Equal(t, loadout.FreshWear, attr.Wear)
	assert.Zero(t, attr.Seed)
	assert.False(t, attr.StatTrak, "new skin pick must clear StatTrak")
}

func TestSelectionCooldownThrottles(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pipeline.SelectSkin(f.player, "weapon_ak47", 44))
	err := f.pipeline.SelectSkin(f.player, "weapon_ak47", 180)
	assert.ErrorIs(t, err, ErrThrottled)

	// the rejected pick must not have touched state
	attr, _ := f.store.Weapon(f.player.Slot, loadout.TeamT, 7)
	assert.Equal(t, 44, attr.Paint)

	prints := f.host.printed()
	require.NotEmpty(t, prints)
	assert.Contains(t, prints[len(prints)-1], "wait")

	// after the window it works again
	f.advance(6 * time.Second)
	require.NoError(t, f.pipeline.SelectSkin(f.player, "weapon_ak47", 180))
}

func TestUnknownSkinAborts(t *testing.T) {
	f := newFixture(t)

	err := f.pipeline.SelectSkin(f.player, "weapon_ak47", 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok := f.store.Weapon(f.player.Slot, loadout.TeamT, 7)
	assert.False(t, ok)
	assert.Empty(t, f.drain())
}

func TestSessionGoneIsSilent(t *testing.T) {
	f := newFixture(t)
	f.host.valid = false

	err := f.pipeline.SelectSkin(f.player, "weapon_ak47", 44)
	assert.ErrorIs(t, err, ErrSessionGone)
	assert.Empty(t, f.host.printed())
	assert.Empty(t, f.drain())
}

func TestSelectKnifeEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.host.side = loadout.TeamNone

	require.NoError(t, f.pipeline.SelectKnife(f.player, "weapon_knife_karambit"))

	for _, team := range []loadout.Team{loadout.TeamT, loadout.TeamCT} {
		snap, ok := f.store.Snapshot(f.player.Slot, team)
		require.True(t, ok)
		assert.Equal(t, "weapon_knife_karambit", snap.Knife)
	}

	assert.Contains(t, f.host.appliedCategories(), session.CategoryKnife)

	prints := f.host.printed()
	require.NotEmpty(t, prints)
	assert.Contains(t, prints[len(prints)-1], "Karambit")

	writes := f.drain()
	require.Len(t, writes, 2)
	assert.Contains(t, writes, "knife:2:weapon_knife_karambit")
	assert.Contains(t, writes, "knife:3:weapon_knife_karambit")
}

func TestSelectKnifeUnknownClass(t *testing.T) {
	f := newFixture(t)

	// a real weapon that is not a knife must not pass
	err := f.pipeline.SelectKnife(f.player, "weapon_ak47")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSelectGloveSeedsPaintEntry(t *testing.T) {
	f := newFixture(t)
	f.host.side = loadout.TeamT

	require.NoError(t, f.pipeline.SelectGlove(f.player, "Sport Gloves | Pandora's Box"))

	snap, ok := f.store.Snapshot(f.player.Slot, loadout.TeamT)
	require.True(t, ok)
	assert.Equal(t, 5030, snap.Glove)

	attr, ok := f.store.Weapon(f.player.Slot, loadout.TeamT, 5030)
	require.True(t, ok, "glove finish must land as a paint entry too")
	assert.Equal(t, 10037, attr.Paint)
	assert.Zero(t, attr.Wear)

	writes := f.drain()
	assert.Contains(t, writes, "glove:2:5030")
	assert.Contains(t, writes, "weapon:2:5030:10037:false")
}

func TestSelectGloveDefaultClears(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pipeline.SelectGlove(f.player, "Sport Gloves | Pandora's Box"))
	f.advance(6 * time.Second)
	require.NoError(t, f.pipeline.SelectGlove(f.player, ""))

	snap, _ := f.store.Snapshot(f.player.Slot, loadout.TeamT)
	assert.Zero(t, snap.Glove)

	writes := f.drain()
	assert.Contains(t, writes, "glove:2:0")
}

func TestSelectAgentOnlyCurrentSide(t *testing.T) {
	f := newFixture(t)
	f.host.side = loadout.TeamCT

	require.NoError(t, f.pipeline.SelectAgent(f.player, "Cmdr. Mae Jamison"))

	sel := f.store.Agent(f.player.Slot)
	assert.Equal(t, "characters/models/ctm_swat/ctm_swat_variante.vmdl", sel.CT)
	assert.Empty(t, sel.T, "other side selection must stay untouched")

	writes := f.drain()
	require.Len(t, writes, 1)
	assert.Equal(t, "agent::characters/models/ctm_swat/ctm_swat_variante.vmdl", writes[0])
}

func TestSelectAgentWrongSideName(t *testing.T) {
	f := newFixture(t)
	f.host.side = loadout.TeamCT

	// a T-only agent cannot be picked while on CT
	err := f.pipeline.SelectAgent(f.player, "Sir Bloody Miami Darryl")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSelectAgentAsSpectator(t *testing.T) {
	f := newFixture(t)
	f.host.side = loadout.TeamSpectator

	err := f.pipeline.SelectAgent(f.player, "Cmdr. Mae Jamison")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSelectMusicNoneStoresExplicitZero(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pipeline.SelectMusic(f.player, "Desert Fire"))
	f.advance(6 * time.Second)
	require.NoError(t, f.pipeline.SelectMusic(f.player, ""))

	snap, _ := f.store.Snapshot(f.player.Slot, loadout.TeamT)
	assert.True(t, snap.MusicSet, "None must be stored, not removed")
	assert.Zero(t, snap.Music)

	writes := f.drain()
	assert.Contains(t, writes, "music:2:39")
	assert.Contains(t, writes, "music:2:0")
}

func TestSelectPinNone(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pipeline.SelectPin(f.player, "Guardian Elite Pin"))
	f.advance(6 * time.Second)
	require.NoError(t, f.pipeline.SelectPin(f.player, ""))

	snap, _ := f.store.Snapshot(f.player.Slot, loadout.TeamT)
	assert.True(t, snap.PinSet)
	assert.Zero(t, snap.Pin)
}

func TestStatTrakUsesCommandGateNotSelectionGate(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pipeline.SelectSkin(f.player, "weapon_ak47", 44))

	// selection window still open, command window is separate
	require.NoError(t, f.pipeline.ToggleStatTrak(f.player, 7))
	attr, _ := f.store.Weapon(f.player.Slot, loadout.TeamT, 7)
	assert.True(t, attr.StatTrak)

	// second toggle inside the command window is throttled
	err := f.pipeline.ToggleStatTrak(f.player, 7)
	assert.ErrorIs(t, err, ErrThrottled)

	f.advance(31 * time.Second)
	require.NoError(t, f.pipeline.ToggleStatTrak(f.player, 7))
	attr, _ = f.store.Weapon(f.player.Slot, loadout.TeamT, 7)
	assert.False(t, attr.StatTrak)
}

func TestStatTrakWithoutPaintEntry(t *testing.T) {
	f := newFixture(t)

	err := f.pipeline.ToggleStatTrak(f.player, 7)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInfoListsEnabledCategories(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pipeline.Info(f.player))
	prints := f.host.printed()
	require.Len(t, prints, 1)
	assert.Contains(t, prints[0], "skins")
	assert.Contains(t, prints[0], "pins")
}

func TestRefreshRehydratesAndReapplies(t *testing.T) {
	f := newFixture(t)
	f.backend.record = &storage.Record{
		Teams: map[loadout.Team]*loadout.TeamLoadout{
			loadout.TeamT: {
				Weapons: map[int]*loadout.WeaponAttributes{7: {Paint: 180, Wear: loadout.FreshWear}},
			},
		},
	}

	require.NoError(t, f.pipeline.Refresh(f.player))

	require.Eventually(t, func() bool {
		attr, ok := f.store.Weapon(f.player.Slot, loadout.TeamT, 7)
		return ok && attr.Paint == 180
	}, time.Second, 5*time.Millisecond)

	assert.NotEmpty(t, f.host.appliedCategories())
}

func TestOnConnectHydratesBeforeApplying(t *testing.T) {
	f := newFixture(t)
	f.backend.record = &storage.Record{
		Teams: map[loadout.Team]*loadout.TeamLoadout{
			loadout.TeamT: {Knife: "weapon_knife_karambit", Weapons: map[int]*loadout.WeaponAttributes{}},
		},
	}

	f.pipeline.OnConnect(f.player)

	require.Eventually(t, func() bool {
		snap, ok := f.store.Snapshot(f.player.Slot, loadout.TeamT)
		return ok && snap.Knife == "weapon_knife_karambit"
	}, time.Second, 5*time.Millisecond)
}

func TestOnDisconnectClearsSlotState(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pipeline.SelectSkin(f.player, "weapon_ak47", 44))
	f.pipeline.OnDisconnect(f.player)

	assert.False(t, f.store.Has(f.player.Slot))

	// cooldown fell with the slot: the next occupant selects immediately
	require.NoError(t, f.pipeline.SelectSkin(f.player, "weapon_ak47", 180))
}

func TestHotReloadClearsAndRehydrates(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.pipeline.SelectSkin(f.player, "weapon_ak47", 44))
	f.backend.record = &storage.Record{
		Teams: map[loadout.Team]*loadout.TeamLoadout{
			loadout.TeamT: {Weapons: map[int]*loadout.WeaponAttributes{7: {Paint: 180}}},
		},
	}

	f.pipeline.HotReload([]session.PlayerRef{f.player})

	require.Eventually(t, func() bool {
		attr, ok := f.store.Weapon(f.player.Slot, loadout.TeamT, 7)
		return ok && attr.Paint == 180
	}, time.Second, 5*time.Millisecond)
}
