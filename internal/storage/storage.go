// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/weaponpaints/extension/internal/loadout"
)

// Record is everything persisted for one player.
type Record struct {
	Teams map[loadout.Team]*loadout.TeamLoadout
	Agent loadout.AgentSelection
}

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Hydration
	ReadLoadout(ctx context.Context, steamID string) (*Record, error)

	// Selection persistence. Each write covers one side of one category and
	// must be safe to repeat (upsert semantics).
	WriteWeapon(ctx context.Context, steamID string, team loadout.Team, defIndex int, attr loadout.WeaponAttributes) error
	WriteKnife(ctx context.Context, steamID string, team loadout.Team, knife string) error
	WriteGlove(ctx context.Context, steamID string, team loadout.Team, defIndex int) error
	WriteAgent(ctx context.Context, steamID string, sel loadout.AgentSelection) error
	WriteMusic(ctx context.Context, steamID string, team loadout.Team, musicID int) error
	WritePin(ctx context.Context, steamID string, team loadout.Team, pinID int) error
}
