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

// Package agent wires identity, device metadata, geolocation, the remote
// store and the sync engine into one runnable presence client.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/termatlas/termatlas/pkg/geo"
	"github.com/termatlas/termatlas/pkg/heartbeat"
	"github.com/termatlas/termatlas/pkg/identity"
	"github.com/termatlas/termatlas/pkg/logger"
	"github.com/termatlas/termatlas/pkg/models"
	"github.com/termatlas/termatlas/pkg/store"
	"github.com/termatlas/termatlas/pkg/sync"
	"github.com/termatlas/termatlas/pkg/sysinfo"
)

// Agent is the composed presence client. It implements lifecycle.Service.
type Agent struct {
	config     Config
	logger     logger.Logger
	remote     store.RemoteStore
	engine     *sync.Engine
	scheduler  *heartbeat.Scheduler
	terminalID string
}

// New builds an agent from configuration. The terminal ID is created on
// first use and reused on every restart of the same installation.
func New(ctx context.Context, cfg *Config, log logger.Logger) (*Agent, error) {
	terminalID, err := identity.GetOrCreateID(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to establish terminal identity: %w", err)
	}

	labels := sysinfo.Collect(ctx)

	remote, err := buildStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	cache := store.NewFileCache(cfg.StateDir)
	engine := sync.New(remote, cache, log)

	schedulerConfig := heartbeat.Config{
		TerminalID:        terminalID,
		PullInterval:      cfg.PullInterval,
		HeartbeatInterval: cfg.HeartbeatInterval,
		OnlineTimeout:     cfg.OnlineTimeout,
	}

	if err := schedulerConfig.Validate(); err != nil {
		return nil, err
	}

	scheduler := heartbeat.New(&schedulerConfig, engine, buildGeoProvider(cfg, log), labels, nil, log)

	log.Info().
		Str("terminal_id", terminalID).
		Str("store_backend", cfg.Store.Backend).
		Str("platform", labels.Platform).
		Msg("Agent initialized")

	return &Agent{
		config:     *cfg,
		logger:     log,
		remote:     remote,
		engine:     engine,
		scheduler:  scheduler,
		terminalID: terminalID,
	}, nil
}

// TerminalID returns this installation's stable identifier.
func (a *Agent) TerminalID() string {
	return a.terminalID
}

// Snapshot returns the last successfully applied registry document.
func (a *Agent) Snapshot() models.Document {
	return a.engine.Snapshot()
}

// OnlineTimeout returns the configured presence timeout.
func (a *Agent) OnlineTimeout() time.Duration {
	return time.Duration(a.config.OnlineTimeout)
}

// Start joins the registry and runs the scheduler until the context is
// cancelled. A failed join is surfaced in the log but does not abort the
// agent: the pull loop still runs, and the user can be brought online by a
// later restart. No automatic rejoin is attempted.
func (a *Agent) Start(ctx context.Context) error {
	if err := a.scheduler.Join(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Initial join failed, continuing with pull only")
	}

	return a.scheduler.Start(ctx)
}

// Stop marks the terminal offline, then tears the loops down.
func (a *Agent) Stop(ctx context.Context) error {
	if err := a.scheduler.Exit(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to mark terminal offline during shutdown")
	}

	if err := a.scheduler.Stop(ctx); err != nil {
		return err
	}

	return a.remote.Close()
}

func buildStore(ctx context.Context, cfg *Config, log logger.Logger) (store.RemoteStore, error) {
	switch cfg.Store.Backend {
	case StoreBackendNats:
		return store.NewNatsStore(ctx, cfg.Store.Nats)
	default:
		return store.NewGiteeStore(cfg.Store.Gitee, log), nil
	}
}

// buildGeoProvider never fails the agent: an unusable mmdb backend degrades
// to the HTTP provider, and an unknown backend to no coordinates.
func buildGeoProvider(cfg *Config, log logger.Logger) geo.Provider {
	switch cfg.Geo.Backend {
	case "off":
		return geo.Disabled{}
	case "mmdb":
		provider, err := geo.NewMMDBProvider(cfg.Geo, log)
		if err != nil {
			log.Warn().Err(err).Msg("mmdb geolocation unavailable, falling back to HTTP lookup")
			return geo.NewHTTPProvider(cfg.Geo, log)
		}

		return provider
	default:
		return geo.NewHTTPProvider(cfg.Geo, log)
	}
}
