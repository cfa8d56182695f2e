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
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/termatlas/termatlas/pkg/logger"
	"github.com/termatlas/termatlas/pkg/models"
)

const defaultEchoEndpoint = "https://api.ipify.org"

// MMDBProvider resolves coordinates from a local MaxMind City database,
// keyed by the terminal's public IP as reported by a plain-text echo
// endpoint. Useful where outbound geo-IP APIs are blocked but a database
// file can be shipped with the client.
type MMDBProvider struct {
	reader       *maxminddb.Reader
	echoEndpoint string
	timeout      time.Duration
	client       *http.Client
	logger       logger.Logger
}

func NewMMDBProvider(config Config, log logger.Logger) (*MMDBProvider, error) {
	reader, err := maxminddb.Open(config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open mmdb %s: %w", config.DatabasePath, err)
	}

	echo := config.EchoEndpoint
	if echo == "" {
		echo = defaultEchoEndpoint
	}

	return &MMDBProvider{
		reader:       reader,
		echoEndpoint: echo,
		timeout:      config.timeout(),
		client:       &http.Client{},
		logger:       log,
	}, nil
}

func (p *MMDBProvider) Fetch(ctx context.Context) (*models.Coordinates, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ip, ok := p.publicIP(ctx)
	if !ok {
		return nil, false
	}

	var record struct {
		Location struct {
			Latitude  float64 `maxminddb:"latitude"`
			Longitude float64 `maxminddb:"longitude"`
		} `maxminddb:"location"`
	}

	if err := p.reader.Lookup(ip, &record); err != nil {
		p.logger.Debug().Err(err).Str("ip", ip.String()).Msg("mmdb lookup failed")
		return nil, false
	}

	if record.Location.Latitude == 0 && record.Location.Longitude == 0 {
		return nil, false
	}

	return &models.Coordinates{Lat: record.Location.Latitude, Lng: record.Location.Longitude}, true
}

func (p *MMDBProvider) Close() error {
	return p.reader.Close()
}

func (p *MMDBProvider) publicIP(ctx context.Context) (net.IP, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.echoEndpoint, http.NoBody)
	if err != nil {
		return nil, false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug().Err(err).Msg("Public IP discovery failed")
		return nil, false
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return nil, false
	}

	ip := net.ParseIP(strings.TrimSpace(string(body)))
	if ip == nil {
		return nil, false
	}

	return ip, true
}
