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

// Package models defines the shared wire types for the terminal registry.
package models

import "time"

// Terminal status values as written into the shared document. The stored
// status is advisory only; effective presence is recomputed from LastUpdate.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Coordinates is an optional lat/lng pair reported by a terminal.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TerminalRecord is a single terminal's entry in the shared registry document.
type TerminalRecord struct {
	TerminalID  string       `json:"terminal_id"`
	Platform    string       `json:"platform"`
	Model       string       `json:"model"`
	CPU         string       `json:"cpu"`
	Memory      string       `json:"memory"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Status      string       `json:"status"`
	LastUpdate  string       `json:"last_update"`
}

// LastUpdateTime parses the record's timestamp. The zero time and false are
// returned when the stored value does not parse.
func (r *TerminalRecord) LastUpdateTime() (time.Time, bool) {
	ts, err := time.Parse(time.RFC3339, r.LastUpdate)
	if err != nil {
		return time.Time{}, false
	}

	return ts, true
}

// Document is the entire shared registry: one record per terminal ID.
// The remote store holds exactly one Document as an opaque blob.
type Document struct {
	Terminals map[string]TerminalRecord `json:"terminals"`
}
