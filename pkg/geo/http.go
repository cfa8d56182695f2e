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

package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/termatlas/termatlas/pkg/logger"
	"github.com/termatlas/termatlas/pkg/models"
)

const defaultGeoEndpoint = "http://ip-api.com/json"

// HTTPProvider asks a geo-IP JSON endpoint for the terminal's coordinates.
type HTTPProvider struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	logger   logger.Logger
}

func NewHTTPProvider(config Config, log logger.Logger) *HTTPProvider {
	endpoint := config.Endpoint
	if endpoint == "" {
		endpoint = defaultGeoEndpoint
	}

	return &HTTPProvider{
		endpoint: endpoint,
		timeout:  config.timeout(),
		client:   &http.Client{},
		logger:   log,
	}
}

func (p *HTTPProvider) Fetch(ctx context.Context) (*models.Coordinates, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, http.NoBody)
	if err != nil {
		return nil, false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug().Err(err).Msg("Geolocation lookup failed")
		return nil, false
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		p.logger.Debug().Int("status", resp.StatusCode).Msg("Geolocation endpoint returned non-OK status")
		return nil, false
	}

	// ip-api.com shape; "lng" is accepted as an alias for "lon".
	var payload struct {
		Status string   `json:"status"`
		Lat    *float64 `json:"lat"`
		Lon    *float64 `json:"lon"`
		Lng    *float64 `json:"lng"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		p.logger.Debug().Err(err).Msg("Failed to decode geolocation response")
		return nil, false
	}

	if payload.Status != "" && payload.Status != "success" {
		return nil, false
	}

	lon := payload.Lon
	if lon == nil {
		lon = payload.Lng
	}

	if payload.Lat == nil || lon == nil {
		return nil, false
	}

	return &models.Coordinates{Lat: *payload.Lat, Lng: *lon}, true
}
