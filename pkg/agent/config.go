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

package agent

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/termatlas/termatlas/pkg/geo"
	"github.com/termatlas/termatlas/pkg/logger"
	"github.com/termatlas/termatlas/pkg/models"
	"github.com/termatlas/termatlas/pkg/store"
)

const (
	// StoreBackendGitee keeps the registry in a Gitee gist file.
	StoreBackendGitee = "gitee"
	// StoreBackendNats keeps the registry in a NATS JetStream KV bucket.
	StoreBackendNats = "nats"
)

var errUnknownStoreBackend = fmt.Errorf("unknown store backend")

// StoreConfig selects and configures the remote document store.
type StoreConfig struct {
	Backend string            `json:"backend"`
	Gitee   store.GiteeConfig `json:"gitee"`
	Nats    store.NatsConfig  `json:"nats"`
}

// Config is the full agent configuration.
type Config struct {
	StateDir          string          `json:"state_dir"`
	Store             StoreConfig     `json:"store"`
	Geo               geo.Config      `json:"geo"`
	PullInterval      models.Duration `json:"pull_interval"`
	HeartbeatInterval models.Duration `json:"heartbeat_interval"`
	OnlineTimeout     models.Duration `json:"online_timeout"`
	Logging           *logger.Config  `json:"logging,omitempty"`
}

// Validate implements config.Validator. Interval and timeout defaults are
// applied by the scheduler's own config validation.
func (c *Config) Validate() error {
	if c.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("state_dir not set and home directory unavailable: %w", err)
		}

		c.StateDir = filepath.Join(home, ".termatlas")
	}

	if c.Store.Backend == "" {
		c.Store.Backend = StoreBackendGitee
	}

	if c.Store.Backend != StoreBackendGitee && c.Store.Backend != StoreBackendNats {
		return fmt.Errorf("%w: %s (expected '%s' or '%s')",
			errUnknownStoreBackend, c.Store.Backend, StoreBackendGitee, StoreBackendNats)
	}

	return nil
}
