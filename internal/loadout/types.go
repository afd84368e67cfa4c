package loadout

// Team identifies a match side. Values match the game's team numbers.
type Team int8

const (
	TeamNone      Team = 0
	TeamSpectator Team = 1
	TeamT         Team = 2
	TeamCT        Team = 3
)

func (t Team) String() string {
	switch t {
	case TeamSpectator:
		return "spectator"
	case TeamT:
		return "T"
	case TeamCT:
		return "CT"
	default:
		return "none"
	}
}

// FreshWear is the wear value applied when a skin is newly picked.
const FreshWear = 0.01

// WeaponAttributes holds the per-weapon customization state.
type WeaponAttributes struct {
	Paint    int
	Wear     float64
	Seed     int
	StatTrak bool
}

// TeamLoadout is one player's equipment for a single side. An absent weapon
// entry means "use the default skin". MusicSet/PinSet distinguish an explicit
// "None" pick (stored zero) from "never selected".
type TeamLoadout struct {
	Weapons  map[int]*WeaponAttributes
	Knife    string
	Glove    int
	Music    int
	MusicSet bool
	Pin      int
	PinSet   bool
}

// NewTeamLoadout returns an empty loadout with an initialized weapon map.
func NewTeamLoadout() *TeamLoadout {
	return &TeamLoadout{Weapons: make(map[int]*WeaponAttributes)}
}

// clone returns a deep copy safe to hand out to callers.
func (l *TeamLoadout) clone() TeamLoadout {
	out := *l
	out.Weapons = make(map[int]*WeaponAttributes, len(l.Weapons))
	for def, attr := range l.Weapons {
		a := *attr
		out.Weapons[def] = &a
	}
	return out
}

// AgentSelection is a player's character model pick per side. Empty string
// means no selection for that side. Agents are keyed directly by side because
// an agent pick only ever targets one side's slot.
type AgentSelection struct {
	T  string
	CT string
}

// ForTeam returns the model selected for the given side.
func (a AgentSelection) ForTeam(t Team) string {
	switch t {
	case TeamT:
		return a.T
	case TeamCT:
		return a.CT
	default:
		return ""
	}
}

// ResolveTargets decides which side-scoped slots a selection event writes to.
// A player with a fixed match side writes to that side only; an unassigned or
// spectating player broadcasts to both sides so later side assignment needs no
// backfill.
func ResolveTargets(side Team) []Team {
	if side == TeamT || side == TeamCT {
		return []Team{side}
	}
	return []Team{TeamT, TeamCT}
}
