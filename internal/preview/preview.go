// Package preview holds the short-lived skin image shown after a selection.
package preview

import (
	"sync"
	"time"
)

// Registry maps player slots to a preview image that expires on its own timer
// or on map change, whichever comes first.
type Registry struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int]string
	timers  map[int]*time.Timer
}

// NewRegistry creates a registry whose entries expire after ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:     ttl,
		entries: make(map[int]string),
		timers:  make(map[int]*time.Timer),
	}
}

// Show registers the image for the slot and arms the expiry timer, replacing
// any previous entry and its timer.
func (r *Registry) Show(slot int, image string) {
	if image == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[slot]; ok {
		t.Stop()
	}
	r.entries[slot] = image
	r.timers[slot] = time.AfterFunc(r.ttl, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.entries, slot)
		delete(r.timers, slot)
	})
}

// Get returns the slot's current preview image, if one is still live.
func (r *Registry) Get(slot int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.entries[slot]
	return img, ok
}

// Clear drops the slot's entry and cancels its timer.
func (r *Registry) Clear(slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[slot]; ok {
		t.Stop()
		delete(r.timers, slot)
	}
	delete(r.entries, slot)
}

// ClearAll cancels every timer and drops every entry. Fired on map change.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.timers {
		t.Stop()
	}
	r.entries = make(map[int]string)
	r.timers = make(map[int]*time.Timer)
}
