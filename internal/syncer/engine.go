// Package syncer moves loadout changes to storage without ever blocking the
// caller. Each player gets a dedicated worker goroutine fed by an unbounded
// queue, so writes for one player land in the order they were made while
// different players proceed independently.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/weaponpaints/extension/internal/loadout"
	"github.com/weaponpaints/extension/internal/queue"
	"github.com/weaponpaints/extension/internal/session"
	"github.com/weaponpaints/extension/internal/storage"
)

// Job is one pending write for one player. Category decides which fields
// carry the payload.
type Job struct {
	Category session.Category
	Team     loadout.Team
	DefIndex int
	Attr     loadout.WeaponAttributes
	Knife    string
	Glove    int
	Agent    loadout.AgentSelection
	Value    int
}

// Dependencies holds everything the engine needs.
type Dependencies struct {
	Backend storage.Backend
	Store   *loadout.Store
	Logger  zerolog.Logger

	// MaxRetries bounds attempts per job before it is dropped. RetryDelay is
	// the base backoff, doubled per attempt. Zero values pick defaults.
	MaxRetries int
	RetryDelay time.Duration
}

// Stats is a point-in-time view of engine load.
type Stats struct {
	Workers int
	Pending int
	Written uint64
	Dropped uint64
}

// Engine owns the per-player workers.
type Engine struct {
	backend storage.Backend
	store   *loadout.Store
	log     zerolog.Logger

	maxRetries int
	retryDelay time.Duration

	mu      sync.Mutex
	workers map[string]*playerWorker
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup

	statsMu sync.Mutex
	written uint64
	dropped uint64

	pendingGauge metric.Int64ObservableGauge
	writtenCount metric.Int64Counter
	droppedCount metric.Int64Counter
}

type playerWorker struct {
	steamID string
	jobs    *queue.Queue[Job]
}

// NewEngine creates the engine and its metric instruments. Uses the global
// OTel meter (no-op if not configured).
func NewEngine(deps Dependencies) (*Engine, error) {
	e := &Engine{
		backend:    deps.Backend,
		store:      deps.Store,
		log:        deps.Logger,
		maxRetries: deps.MaxRetries,
		retryDelay: deps.RetryDelay,
		workers:    make(map[string]*playerWorker),
		done:       make(chan struct{}),
	}
	if e.maxRetries <= 0 {
		e.maxRetries = 3
	}
	if e.retryDelay <= 0 {
		e.retryDelay = 250 * time.Millisecond
	}

	m := meter()

	var err error
	e.pendingGauge, err = m.Int64ObservableGauge(
		"syncer.jobs.pending",
		metric.WithDescription("Writes queued but not yet persisted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pending gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			e.mu.Lock()
			defer e.mu.Unlock()
			for steamID, w := range e.workers {
				o.ObserveInt64(e.pendingGauge, int64(w.jobs.Len()),
					metric.WithAttributes(attribute.String("steamid", steamID)))
			}
			return nil
		},
		e.pendingGauge,
	)
	if err != nil {
		return nil, fmt.Errorf("registering pending callback: %w", err)
	}

	e.writtenCount, err = m.Int64Counter(
		"syncer.jobs.written",
		metric.WithDescription("Writes persisted successfully"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating written counter: %w", err)
	}

	e.droppedCount, err = m.Int64Counter(
		"syncer.jobs.dropped",
		metric.WithDescription("Writes dropped after exhausting retries"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return e, nil
}

// Enqueue hands a job to the player's worker and returns immediately. Jobs
// enqueued after Close are dropped.
func (e *Engine) Enqueue(steamID string, job Job) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.log.Warn().Str("steamid", steamID).Msg("Engine closed, dropping write")
		return
	}
	w, ok := e.workers[steamID]
	if !ok {
		w = &playerWorker{steamID: steamID, jobs: queue.New[Job]()}
		e.workers[steamID] = w
		e.wg.Add(1)
		go e.run(w)
	}
	e.mu.Unlock()

	w.jobs.Push(job)
}

// Hydrate loads the stored record for a player and seeds the in-memory state
// with it. Returns false when the player already had live state, which wins
// over storage.
func (e *Engine) Hydrate(ctx context.Context, p session.PlayerRef) (bool, error) {
	rec, err := e.backend.ReadLoadout(ctx, p.SteamID)
	if err != nil {
		return false, fmt.Errorf("hydrate %s: %w", p.SteamID, err)
	}

	imported := e.store.ImportIfAbsent(p.Slot, rec.Teams, rec.Agent)
	if imported {
		e.log.Debug().
			Str("steamid", p.SteamID).
			Int("slot", p.Slot).
			Int("sides", len(rec.Teams)).
			Msg("Hydrated player loadout")
	}
	return imported, nil
}

// Stats reports current engine load.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	s := Stats{Workers: len(e.workers)}
	for _, w := range e.workers {
		s.Pending += w.jobs.Len()
	}
	e.mu.Unlock()

	e.statsMu.Lock()
	s.Written = e.written
	s.Dropped = e.dropped
	e.statsMu.Unlock()
	return s
}

// Close stops accepting work, drains every queue and waits for the workers.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	close(e.done)
	e.wg.Wait()
}

func (e *Engine) run(w *playerWorker) {
	defer e.wg.Done()

	for {
		job, ok := w.jobs.TryPop()
		if ok {
			e.process(w.steamID, job)
			continue
		}

		select {
		case <-w.jobs.Wait():
		case <-e.done:
			// drain whatever arrived before shutdown
			for {
				job, ok := w.jobs.TryPop()
				if !ok {
					return
				}
				e.process(w.steamID, job)
			}
		}
	}
}

// process writes one job, retrying with backoff. Retrying here inside the
// worker keeps later jobs for the same player behind the failing one.
func (e *Engine) process(steamID string, job Job) {
	var err error
	delay := e.retryDelay

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		err = e.write(steamID, job)
		if err == nil {
			e.statsMu.Lock()
			e.written++
			e.statsMu.Unlock()
			e.writtenCount.Add(context.Background(), 1,
				metric.WithAttributes(attribute.String("category", job.Category.String())))
			return
		}

		if attempt < e.maxRetries {
			e.log.Debug().Err(err).
				Str("steamid", steamID).
				Str("category", job.Category.String()).
				Int("attempt", attempt).
				Msg("Write failed, retrying")
			time.Sleep(delay)
			delay *= 2
		}
	}

	e.statsMu.Lock()
	e.dropped++
	e.statsMu.Unlock()
	e.droppedCount.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("category", job.Category.String())))
	e.log.Warn().Err(err).
		Str("steamid", steamID).
		Str("category", job.Category.String()).
		Int("attempts", e.maxRetries).
		Msg("Write dropped after exhausting retries")
}

func (e *Engine) write(steamID string, job Job) error {
	ctx := context.Background()

	switch job.Category {
	case session.CategoryWeapons:
		return e.backend.WriteWeapon(ctx, steamID, job.Team, job.DefIndex, job.Attr)
	case session.CategoryKnife:
		return e.backend.WriteKnife(ctx, steamID, job.Team, job.Knife)
	case session.CategoryGloves:
		return e.backend.WriteGlove(ctx, steamID, job.Team, job.Glove)
	case session.CategoryAgent:
		return e.backend.WriteAgent(ctx, steamID, job.Agent)
	case session.CategoryMusic:
		return e.backend.WriteMusic(ctx, steamID, job.Team, job.Value)
	case session.CategoryPin:
		return e.backend.WritePin(ctx, steamID, job.Team, job.Value)
	default:
		return fmt.Errorf("unknown job category %d", job.Category)
	}
}
