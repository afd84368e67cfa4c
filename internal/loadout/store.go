package loadout

import (
	"sync"
)

// Store is the authoritative in-memory map of every connected player's
// per-team equipment. It is keyed by the player's process-local slot; the
// durable mirror is keyed by account id and handled elsewhere.
//
// Locking is per player: the outer mutex only guards the slot map, every
// mutation then serializes on the player's own mutex so concurrent events for
// different players never block each other.
type Store struct {
	mu      sync.RWMutex
	players map[int]*playerEntry
}

type playerEntry struct {
	mu    sync.Mutex
	teams map[Team]*TeamLoadout
	agent AgentSelection
}

// NewStore creates an empty loadout store.
func NewStore() *Store {
	return &Store{players: make(map[int]*playerEntry)}
}

func (s *Store) entry(slot int, create bool) *playerEntry {
	s.mu.RLock()
	e, ok := s.players[slot]
	s.mu.RUnlock()
	if ok || !create {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.players[slot]; ok {
		return e
	}
	e = &playerEntry{teams: make(map[Team]*TeamLoadout)}
	s.players[slot] = e
	return e
}

func (e *playerEntry) team(t Team) *TeamLoadout {
	l, ok := e.teams[t]
	if !ok {
		l = NewTeamLoadout()
		e.teams[t] = l
	}
	return l
}

// GetOrCreate returns a copy of the player's loadout for the given team,
// creating an empty one if the player has never customized anything.
func (s *Store) GetOrCreate(slot int, t Team) TeamLoadout {
	e := s.entry(slot, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.team(t).clone()
}

// Snapshot returns a copy of the player's loadout for the given team without
// creating an entry. The second return reports whether any entry existed.
func (s *Store) Snapshot(slot int, t Team) (TeamLoadout, bool) {
	e := s.entry(slot, false)
	if e == nil {
		return TeamLoadout{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.teams[t]
	if !ok {
		return TeamLoadout{}, false
	}
	return l.clone(), true
}

// Has reports whether any in-memory state exists for the slot.
func (s *Store) Has(slot int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.players[slot]
	return ok
}

// UpsertWeapon applies mutate to the weapon entry for every target team,
// creating entries as needed. All target teams are mutated under the same
// player lock so the write lands atomically for that player.
func (s *Store) UpsertWeapon(slot int, teams []Team, defIndex int, mutate func(*WeaponAttributes)) {
	e := s.entry(slot, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range teams {
		l := e.team(t)
		attr, ok := l.Weapons[defIndex]
		if !ok {
			attr = &WeaponAttributes{Wear: FreshWear}
			l.Weapons[defIndex] = attr
		}
		mutate(attr)
	}
}

// ToggleStatTrak flips the stat-track flag on an existing weapon entry for
// every target team. Entries are never created: toggling only makes sense for
// a weapon the player has already painted. Returns the new flag value and
// whether any entry was toggled.
func (s *Store) ToggleStatTrak(slot int, teams []Team, defIndex int) (bool, bool) {
	e := s.entry(slot, false)
	if e == nil {
		return false, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	var state, found bool
	for _, t := range teams {
		l, ok := e.teams[t]
		if !ok {
			continue
		}
		attr, ok := l.Weapons[defIndex]
		if !ok {
			continue
		}
		attr.StatTrak = !attr.StatTrak
		state = attr.StatTrak
		found = true
	}
	return state, found
}

// Weapon returns a copy of the weapon entry, if the player customized it.
func (s *Store) Weapon(slot int, t Team, defIndex int) (WeaponAttributes, bool) {
	e := s.entry(slot, false)
	if e == nil {
		return WeaponAttributes{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.teams[t]
	if !ok {
		return WeaponAttributes{}, false
	}
	attr, ok := l.Weapons[defIndex]
	if !ok {
		return WeaponAttributes{}, false
	}
	return *attr, true
}

// SetKnife stores the knife class for every target team. Empty string resets
// to the default knife.
func (s *Store) SetKnife(slot int, teams []Team, class string) {
	e := s.entry(slot, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range teams {
		e.team(t).Knife = class
	}
}

// SetGlove stores the glove definition index for every target team. Zero
// clears the selection.
func (s *Store) SetGlove(slot int, teams []Team, defIndex int) {
	e := s.entry(slot, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range teams {
		e.team(t).Glove = defIndex
	}
}

// SetMusic stores the music kit id for every target team. Zero is stored
// explicitly (the "None" pick) rather than removing the entry.
func (s *Store) SetMusic(slot int, teams []Team, id int) {
	e := s.entry(slot, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range teams {
		l := e.team(t)
		l.Music = id
		l.MusicSet = true
	}
}

// SetPin stores the collectible pin id for every target team. Zero is stored
// explicitly, same as music.
func (s *Store) SetPin(slot int, teams []Team, id int) {
	e := s.entry(slot, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range teams {
		l := e.team(t)
		l.Pin = id
		l.PinSet = true
	}
}

// SetAgent stores the character model for a single side. Empty string clears
// that side's selection; the sibling side is left untouched.
func (s *Store) SetAgent(slot int, side Team, model string) {
	e := s.entry(slot, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	switch side {
	case TeamT:
		e.agent.T = model
	case TeamCT:
		e.agent.CT = model
	}
}

// Agent returns the player's agent selection.
func (s *Store) Agent(slot int) AgentSelection {
	e := s.entry(slot, false)
	if e == nil {
		return AgentSelection{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.agent
}

// ImportIfAbsent populates the player's state from a durable record. It is a
// no-op returning false when any in-memory entry already exists: the live
// session state is authoritative and hydration must not clobber it.
func (s *Store) ImportIfAbsent(slot int, teams map[Team]*TeamLoadout, agent AgentSelection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[slot]; ok {
		return false
	}
	e := &playerEntry{teams: make(map[Team]*TeamLoadout, len(teams)), agent: agent}
	for t, l := range teams {
		c := l.clone()
		e.teams[t] = &c
	}
	s.players[slot] = e
	return true
}

// ClearPlayer removes all in-memory state for the slot. Called on disconnect
// so slot reuse never observes the previous occupant's loadout.
func (s *Store) ClearPlayer(slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, slot)
}

// ClearAll wipes every player. Used on hot reload before re-hydration.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = make(map[int]*playerEntry)
}
