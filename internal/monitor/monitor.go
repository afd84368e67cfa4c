// Package monitor samples the synchronization engine periodically and ships
// the numbers to the metrics backend.
package monitor

import (
	"context"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/rs/zerolog"

	"github.com/weaponpaints/extension/internal/metrics"
	"github.com/weaponpaints/extension/internal/syncer"
)

const perfBucket = "loadout_performance"

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Engine   *syncer.Engine
	Metrics  *metrics.Manager
	Logger   zerolog.Logger
	Interval time.Duration
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Logger.Debug().Msg("Starting status monitor goroutine")

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.report()
			}
		}
	}()

	return nil
}

// Stop stops the status monitor
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}

func (s *Service) report() {
	stats := s.deps.Engine.Stats()

	point := influxdb2.NewPointWithMeasurement("sync_engine").
		AddField("workers", stats.Workers).
		AddField("pending", stats.Pending).
		AddField("written", int64(stats.Written)).
		AddField("dropped", int64(stats.Dropped)).
		SetTime(time.Now())

	if err := s.deps.Metrics.WritePoint(context.Background(), perfBucket, point); err != nil {
		s.deps.Logger.Error().Err(err).Msg("Error writing engine stats point")
	}
}
