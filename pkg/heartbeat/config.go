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

package heartbeat

import (
	"fmt"
	"time"

	"github.com/termatlas/termatlas/pkg/models"
)

var errTerminalIDRequired = fmt.Errorf("terminal id is required")

const (
	defaultPullInterval      = 10 * time.Second
	defaultHeartbeatInterval = 30 * time.Second
	defaultOnlineTimeout     = 2 * time.Minute
)

// Config tunes the scheduler for one terminal.
type Config struct {
	TerminalID        string          `json:"terminal_id"`
	PullInterval      models.Duration `json:"pull_interval"`
	HeartbeatInterval models.Duration `json:"heartbeat_interval"`

	// OnlineTimeout is how long a record's claimed online status is trusted
	// after its last update.
	OnlineTimeout models.Duration `json:"online_timeout"`
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	if c.TerminalID == "" {
		return errTerminalIDRequired
	}

	if time.Duration(c.PullInterval) == 0 {
		c.PullInterval = models.Duration(defaultPullInterval)
	}

	if time.Duration(c.HeartbeatInterval) == 0 {
		c.HeartbeatInterval = models.Duration(defaultHeartbeatInterval)
	}

	if time.Duration(c.OnlineTimeout) == 0 {
		c.OnlineTimeout = models.Duration(defaultOnlineTimeout)
	}

	return nil
}
