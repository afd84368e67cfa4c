package model

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&PlayerSkin{},
	&PlayerKnife{},
	&PlayerGlove{},
	&PlayerAgent{},
	&PlayerMusic{},
	&PlayerPin{},
}

// PlayerSkin is one painted weapon for one player on one side
type PlayerSkin struct {
	SteamID        string  `json:"steamid" gorm:"column:steamid;primaryKey;size:64"`
	WeaponTeam     int     `json:"weapon_team" gorm:"column:weapon_team;primaryKey"`
	WeaponDefIndex int     `json:"weapon_defindex" gorm:"column:weapon_defindex;primaryKey"`
	WeaponPaintID  int     `json:"weapon_paint_id" gorm:"column:weapon_paint_id"`
	WeaponWear     float64 `json:"weapon_wear" gorm:"column:weapon_wear;default:0.0001"`
	WeaponSeed     int     `json:"weapon_seed" gorm:"column:weapon_seed;default:0"`
	WeaponStatTrak bool    `json:"weapon_stattrak" gorm:"column:weapon_stattrak;default:false"`
}

func (*PlayerSkin) TableName() string {
	return "wp_player_skins"
}

// PlayerKnife is the knife model choice for one player on one side
type PlayerKnife struct {
	SteamID    string `json:"steamid" gorm:"column:steamid;primaryKey;size:64"`
	WeaponTeam int    `json:"weapon_team" gorm:"column:weapon_team;primaryKey"`
	Knife      string `json:"knife" gorm:"column:knife;size:64"`
}

func (*PlayerKnife) TableName() string {
	return "wp_player_knife"
}

// PlayerGlove is the glove choice for one player on one side
type PlayerGlove struct {
	SteamID        string `json:"steamid" gorm:"column:steamid;primaryKey;size:64"`
	WeaponTeam     int    `json:"weapon_team" gorm:"column:weapon_team;primaryKey"`
	WeaponDefIndex int    `json:"weapon_defindex" gorm:"column:weapon_defindex"`
}

func (*PlayerGlove) TableName() string {
	return "wp_player_gloves"
}

// PlayerAgent holds both side models for one player in a single row
type PlayerAgent struct {
	SteamID string `json:"steamid" gorm:"column:steamid;primaryKey;size:64"`
	AgentCT string `json:"agent_ct" gorm:"column:agent_ct;size:255"`
	AgentT  string `json:"agent_t" gorm:"column:agent_t;size:255"`
}

func (*PlayerAgent) TableName() string {
	return "wp_player_agents"
}

// PlayerMusic is the music kit choice for one player on one side.
// A zero MusicID is a stored choice of no kit, distinct from a missing row.
type PlayerMusic struct {
	SteamID    string `json:"steamid" gorm:"column:steamid;primaryKey;size:64"`
	WeaponTeam int    `json:"weapon_team" gorm:"column:weapon_team;primaryKey"`
	MusicID    int    `json:"music_id" gorm:"column:music_id"`
}

func (*PlayerMusic) TableName() string {
	return "wp_player_music"
}

// PlayerPin is the pin choice for one player. Same zero convention as music.
type PlayerPin struct {
	SteamID    string `json:"steamid" gorm:"column:steamid;primaryKey;size:64"`
	WeaponTeam int    `json:"weapon_team" gorm:"column:weapon_team;primaryKey"`
	PinID      int    `json:"id" gorm:"column:id"`
}

func (*PlayerPin) TableName() string {
	return "wp_player_pins"
}
