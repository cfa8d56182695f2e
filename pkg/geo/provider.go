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

// Package geo resolves the terminal's approximate coordinates. Lookups are
// bounded by a timeout and fail open: a provider never returns an error to
// the caller, it degrades to "no coordinates".
package geo

import (
	"context"
	"time"

	"github.com/termatlas/termatlas/pkg/models"
)

const defaultTimeout = 5 * time.Second

// Provider produces coordinates for the local terminal. The boolean reports
// whether coordinates were obtained within the provider's timeout.
type Provider interface {
	Fetch(ctx context.Context) (*models.Coordinates, bool)
}

// Disabled is a Provider that always reports no coordinates. Used when
// geolocation is turned off in configuration.
type Disabled struct{}

func (Disabled) Fetch(_ context.Context) (*models.Coordinates, bool) {
	return nil, false
}

// Config selects and tunes the geolocation backend.
type Config struct {
	// Backend is "http", "mmdb", or "off".
	Backend string `json:"backend"`

	// Endpoint is the geo-IP JSON endpoint for the http backend.
	Endpoint string `json:"endpoint,omitempty"`

	// DatabasePath points at a MaxMind City database for the mmdb backend.
	DatabasePath string `json:"database_path,omitempty"`

	// EchoEndpoint returns the caller's public IP as plain text; used by the
	// mmdb backend to pick the lookup address.
	EchoEndpoint string `json:"echo_endpoint,omitempty"`

	Timeout models.Duration `json:"timeout,omitempty"`
}

func (c *Config) timeout() time.Duration {
	if d := time.Duration(c.Timeout); d > 0 {
		return d
	}

	return defaultTimeout
}
