/*
 * Copyright 2026 The termatlas Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package heartbeat drives the local terminal's presence state machine: a
// user-triggered join/exit pair and two independent periodic loops, one
// pulling the shared registry for display and one re-announcing liveness
// while the terminal is online. The loops are deliberately not mutually
// exclusive; a pull and a heartbeat mutate may overlap in flight.
package heartbeat

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/termatlas/termatlas/pkg/geo"
	"github.com/termatlas/termatlas/pkg/logger"
	"github.com/termatlas/termatlas/pkg/models"
	"github.com/termatlas/termatlas/pkg/presence"
	"github.com/termatlas/termatlas/pkg/sysinfo"
)

// State is the local terminal's lifecycle state.
type State int32

const (
	StateOffline State = iota
	StateOnline
)

func (s State) String() string {
	if s == StateOnline {
		return "online"
	}

	return "offline"
}

// Scheduler owns the presence state machine and the periodic loops.
type Scheduler struct {
	config Config
	engine Syncer
	geo    geo.Provider
	labels sysinfo.Labels
	clock  Clock
	logger logger.Logger

	state atomic.Int32

	// Per-loop in-flight guards; a tick is skipped while the previous
	// invocation of the same loop has not completed.
	pullBusy      atomic.Bool
	heartbeatBusy atomic.Bool

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a scheduler. A nil clock defaults to the real clock.
func New(config *Config, engine Syncer, geoProvider geo.Provider, labels sysinfo.Labels, clock Clock, log logger.Logger) *Scheduler {
	if clock == nil {
		clock = realClock{}
	}

	if geoProvider == nil {
		geoProvider = geo.Disabled{}
	}

	return &Scheduler{
		config: *config,
		engine: engine,
		geo:    geoProvider,
		labels: labels,
		clock:  clock,
		logger: log,
		done:   make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Start runs the pull and heartbeat loops until the context is cancelled or
// Stop is called. The pull loop runs regardless of Online/Offline; the
// heartbeat loop fires only while Online.
func (s *Scheduler) Start(ctx context.Context) error {
	pullInterval := time.Duration(s.config.PullInterval)
	heartbeatInterval := time.Duration(s.config.HeartbeatInterval)

	pullTicker := s.clock.Ticker(pullInterval)
	defer pullTicker.Stop()

	heartbeatTicker := s.clock.Ticker(heartbeatInterval)
	defer heartbeatTicker.Stop()

	s.logger.Info().
		Dur("pull_interval", pullInterval).
		Dur("heartbeat_interval", heartbeatInterval).
		Msg("Starting presence scheduler")

	s.wg.Add(1)
	defer s.wg.Done()

	s.tickPull(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-pullTicker.Chan():
			s.tickPull(ctx)
		case <-heartbeatTicker.Chan():
			s.tickHeartbeat(ctx)
		}
	}
}

// Stop tears the loops down. Timers are cancelled; in-flight network calls
// are left to resolve and their results discarded.
func (s *Scheduler) Stop(_ context.Context) error {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	s.wg.Wait()

	return nil
}

// Join announces this terminal as online. Valid from any state. A failed
// geolocation lookup degrades to a record without coordinates; a failed
// mutate leaves the state unchanged and surfaces the error.
func (s *Scheduler) Join(ctx context.Context) error {
	coords, ok := s.geo.Fetch(ctx)
	if !ok {
		s.logger.Debug().Msg("Joining without coordinates")
	}

	rec := s.ownRecord(coords)

	_, err := s.engine.Mutate(ctx, func(doc models.Document) models.Document {
		doc.Terminals[s.config.TerminalID] = rec
		return doc
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Join failed")
		return err
	}

	s.state.Store(int32(StateOnline))
	s.logger.Info().Str("terminal_id", s.config.TerminalID).Msg("Joined registry")

	return nil
}

// Exit soft-marks this terminal offline. Valid from any state. If the
// terminal has no entry the transform is an identity and no push happens.
func (s *Scheduler) Exit(ctx context.Context) error {
	_, err := s.engine.Mutate(ctx, func(doc models.Document) models.Document {
		rec, ok := doc.Terminals[s.config.TerminalID]
		if !ok {
			return doc
		}

		rec.Status = models.StatusOffline
		rec.LastUpdate = s.timestamp()
		doc.Terminals[s.config.TerminalID] = rec

		return doc
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Exit failed")
		return err
	}

	s.state.Store(int32(StateOffline))
	s.logger.Info().Str("terminal_id", s.config.TerminalID).Msg("Marked terminal offline")

	return nil
}

func (s *Scheduler) tickPull(ctx context.Context) {
	if !s.pullBusy.CompareAndSwap(false, true) {
		s.logger.Debug().Msg("Previous pull still in flight, skipping tick")
		return
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer s.pullBusy.Store(false)

		doc, err := s.engine.Pull(ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("Registry pull failed")
			return
		}

		online := presence.OnlineCount(doc, time.Duration(s.config.OnlineTimeout), s.clock.Now())
		s.logger.Debug().
			Int("terminals", len(doc.Terminals)).
			Int("online", online).
			Msg("Registry refreshed")
	}()
}

func (s *Scheduler) tickHeartbeat(ctx context.Context) {
	if s.State() != StateOnline {
		return
	}

	if !s.heartbeatBusy.CompareAndSwap(false, true) {
		s.logger.Debug().Msg("Previous heartbeat still in flight, skipping tick")
		return
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer s.heartbeatBusy.Store(false)

		s.heartbeat(ctx)
	}()
}

// heartbeat re-announces liveness. The state stays Online even when the
// mutate fails: the last successful join is trusted until exit.
func (s *Scheduler) heartbeat(ctx context.Context) {
	coords, refreshed := s.geo.Fetch(ctx)

	_, err := s.engine.Mutate(ctx, func(doc models.Document) models.Document {
		rec, ok := doc.Terminals[s.config.TerminalID]
		if !ok {
			rec = s.ownRecord(coords)
		}

		if refreshed {
			rec.Coordinates = coords
		}

		rec.Status = models.StatusOnline
		rec.LastUpdate = s.timestamp()
		doc.Terminals[s.config.TerminalID] = rec

		return doc
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Heartbeat failed, staying online until exit")
	}
}

// ownRecord builds this terminal's registry entry from the collected device
// labels.
func (s *Scheduler) ownRecord(coords *models.Coordinates) models.TerminalRecord {
	return models.TerminalRecord{
		TerminalID:  s.config.TerminalID,
		Platform:    s.labels.Platform,
		Model:       s.labels.Model,
		CPU:         s.labels.CPU,
		Memory:      s.labels.Memory,
		Coordinates: coords,
		Status:      models.StatusOnline,
		LastUpdate:  s.timestamp(),
	}
}

func (s *Scheduler) timestamp() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}
