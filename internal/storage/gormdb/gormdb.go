// Package gormdb persists player loadouts through GORM. It works against
// MySQL, Postgres and SQLite; every write is an upsert keyed on the player
// and side so repeating a write after a retry is harmless.
package gormdb

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/weaponpaints/extension/internal/loadout"
	"github.com/weaponpaints/extension/internal/model"
	"github.com/weaponpaints/extension/internal/storage"
)

func init() {
	storage.Register("gorm", func(db *gorm.DB) storage.Backend {
		return New(db)
	})
}

// Backend implements storage.Backend over a GORM handle.
type Backend struct {
	db *gorm.DB
}

// New creates a backend over an already open database handle.
func New(db *gorm.DB) *Backend {
	return &Backend{db: db}
}

// Init migrates the loadout schema.
func (b *Backend) Init() error {
	if b.db == nil {
		return fmt.Errorf("no database handle")
	}
	return b.db.AutoMigrate(model.DatabaseModels...)
}

// Close is a no-op, the connection pool belongs to the database manager.
func (b *Backend) Close() error {
	return nil
}

// ReadLoadout assembles everything stored for one player. Missing rows leave
// the corresponding fields at their defaults.
func (b *Backend) ReadLoadout(ctx context.Context, steamID string) (*storage.Record, error) {
	rec := &storage.Record{
		Teams: make(map[loadout.Team]*loadout.TeamLoadout),
	}

	teamFor := func(team int) *loadout.TeamLoadout {
		t := loadout.Team(team)
		tl, ok := rec.Teams[t]
		if !ok {
			tl = loadout.NewTeamLoadout()
			rec.Teams[t] = tl
		}
		return tl
	}

	var skins []model.PlayerSkin
	if err := b.db.WithContext(ctx).Where("steamid = ?", steamID).Find(&skins).Error; err != nil {
		return nil, fmt.Errorf("read skins: %w", err)
	}
	for _, s := range skins {
		teamFor(s.WeaponTeam).Weapons[s.WeaponDefIndex] = &loadout.WeaponAttributes{
			Paint:    s.WeaponPaintID,
			Wear:     s.WeaponWear,
			Seed:     s.WeaponSeed,
			StatTrak: s.WeaponStatTrak,
		}
	}

	var knives []model.PlayerKnife
	if err := b.db.WithContext(ctx).Where("steamid = ?", steamID).Find(&knives).Error; err != nil {
		return nil, fmt.Errorf("read knives: %w", err)
	}
	for _, k := range knives {
		teamFor(k.WeaponTeam).Knife = k.Knife
	}

	var gloves []model.PlayerGlove
	if err := b.db.WithContext(ctx).Where("steamid = ?", steamID).Find(&gloves).Error; err != nil {
		return nil, fmt.Errorf("read gloves: %w", err)
	}
	for _, g := range gloves {
		teamFor(g.WeaponTeam).Glove = g.WeaponDefIndex
	}

	var agent model.PlayerAgent
	err := b.db.WithContext(ctx).Where("steamid = ?", steamID).First(&agent).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("read agents: %w", err)
	}
	if err == nil {
		rec.Agent = loadout.AgentSelection{T: agent.AgentT, CT: agent.AgentCT}
	}

	var music []model.PlayerMusic
	if err := b.db.WithContext(ctx).Where("steamid = ?", steamID).Find(&music).Error; err != nil {
		return nil, fmt.Errorf("read music: %w", err)
	}
	for _, m := range music {
		tl := teamFor(m.WeaponTeam)
		tl.Music = m.MusicID
		tl.MusicSet = true
	}

	var pins []model.PlayerPin
	if err := b.db.WithContext(ctx).Where("steamid = ?", steamID).Find(&pins).Error; err != nil {
		return nil, fmt.Errorf("read pins: %w", err)
	}
	for _, p := range pins {
		tl := teamFor(p.WeaponTeam)
		tl.Pin = p.PinID
		tl.PinSet = true
	}

	return rec, nil
}

func (b *Backend) WriteWeapon(ctx context.Context, steamID string, team loadout.Team, defIndex int, attr loadout.WeaponAttributes) error {
	row := model.PlayerSkin{
		SteamID:        steamID,
		WeaponTeam:     int(team),
		WeaponDefIndex: defIndex,
		WeaponPaintID:  attr.Paint,
		WeaponWear:     attr.Wear,
		WeaponSeed:     attr.Seed,
		WeaponStatTrak: attr.StatTrak,
	}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "steamid"}, {Name: "weapon_team"}, {Name: "weapon_defindex"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"weapon_paint_id", "weapon_wear", "weapon_seed", "weapon_stattrak",
		}),
	}).Create(&row).Error
}

// WriteKnife stores the knife choice. An empty model means the player went
// back to the default knife, which is stored as no row at all.
func (b *Backend) WriteKnife(ctx context.Context, steamID string, team loadout.Team, knife string) error {
	if knife == "" {
		return b.db.WithContext(ctx).
			Where("steamid = ? AND weapon_team = ?", steamID, int(team)).
			Delete(&model.PlayerKnife{}).Error
	}
	row := model.PlayerKnife{SteamID: steamID, WeaponTeam: int(team), Knife: knife}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "steamid"}, {Name: "weapon_team"}},
		DoUpdates: clause.AssignmentColumns([]string{"knife"}),
	}).Create(&row).Error
}

// WriteGlove stores the glove choice, zero clears it.
func (b *Backend) WriteGlove(ctx context.Context, steamID string, team loadout.Team, defIndex int) error {
	if defIndex == 0 {
		return b.db.WithContext(ctx).
			Where("steamid = ? AND weapon_team = ?", steamID, int(team)).
			Delete(&model.PlayerGlove{}).Error
	}
	row := model.PlayerGlove{SteamID: steamID, WeaponTeam: int(team), WeaponDefIndex: defIndex}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "steamid"}, {Name: "weapon_team"}},
		DoUpdates: clause.AssignmentColumns([]string{"weapon_defindex"}),
	}).Create(&row).Error
}

// WriteAgent stores both side models in one row.
func (b *Backend) WriteAgent(ctx context.Context, steamID string, sel loadout.AgentSelection) error {
	if sel.T == "" && sel.CT == "" {
		return b.db.WithContext(ctx).
			Where("steamid = ?", steamID).
			Delete(&model.PlayerAgent{}).Error
	}
	row := model.PlayerAgent{SteamID: steamID, AgentT: sel.T, AgentCT: sel.CT}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "steamid"}},
		DoUpdates: clause.AssignmentColumns([]string{"agent_t", "agent_ct"}),
	}).Create(&row).Error
}

// WriteMusic stores the music kit choice. Zero is a real choice of no kit
// and is kept as a row so hydration can tell it apart from never chosen.
func (b *Backend) WriteMusic(ctx context.Context, steamID string, team loadout.Team, musicID int) error {
	row := model.PlayerMusic{SteamID: steamID, WeaponTeam: int(team), MusicID: musicID}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "steamid"}, {Name: "weapon_team"}},
		DoUpdates: clause.AssignmentColumns([]string{"music_id"}),
	}).Create(&row).Error
}

// WritePin stores the pin choice, same zero convention as music.
func (b *Backend) WritePin(ctx context.Context, steamID string, team loadout.Team, pinID int) error {
	row := model.PlayerPin{SteamID: steamID, WeaponTeam: int(team), PinID: pinID}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "steamid"}, {Name: "weapon_team"}},
		DoUpdates: clause.AssignmentColumns([]string{"id"}),
	}).Create(&row).Error
}
