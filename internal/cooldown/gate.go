// Package cooldown rate-limits command and selection events per player.
package cooldown

import (
	"sync"
	"time"
)

// Kind selects one of the two independent cooldown keyspaces: command
// invocation and selection commit are gated separately.
type Kind int

const (
	KindCommand Kind = iota
	KindSelection

	kindCount
)

func (k Kind) String() string {
	if k == KindCommand {
		return "command"
	}
	return "selection"
}

// Gate tracks the earliest-next-allowed timestamp per player and kind.
// TryAcquire is an atomic check-and-set so two rapid events can never both
// observe an expired cooldown. Failure is the normal "still cooling down"
// outcome, not an error.
type Gate struct {
	mu        sync.Mutex
	deadlines [kindCount]map[int]time.Time
	durations [kindCount]time.Duration
}

// NewGate creates a gate with the configured per-kind durations.
func NewGate(command, selection time.Duration) *Gate {
	g := &Gate{}
	g.durations[KindCommand] = command
	g.durations[KindSelection] = selection
	for k := range g.deadlines {
		g.deadlines[k] = make(map[int]time.Time)
	}
	return g
}

// TryAcquire succeeds and arms the next deadline iff the player's cooldown of
// the given kind has elapsed. On failure no state changes.
func (g *Gate) TryAcquire(k Kind, slot int, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if deadline, ok := g.deadlines[k][slot]; ok && now.Before(deadline) {
		return false
	}
	g.deadlines[k][slot] = now.Add(g.durations[k])
	return true
}

// Remaining returns the time left until the player's next allowed attempt.
// Zero means the gate is open.
func (g *Gate) Remaining(k Kind, slot int, now time.Time) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	deadline, ok := g.deadlines[k][slot]
	if !ok || !now.Before(deadline) {
		return 0
	}
	return deadline.Sub(now)
}

// Clear drops all deadlines for the slot. Called on disconnect so a reused
// slot starts clean.
func (g *Gate) Clear(slot int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for k := range g.deadlines {
		delete(g.deadlines[k], slot)
	}
}
