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

// Package presence derives the effective online/offline state of a terminal
// from its record. The stored status is what the writer last claimed; it is
// only trusted while the record's timestamp is fresher than the configured
// timeout.
package presence

import (
	"time"

	"github.com/termatlas/termatlas/pkg/models"
)

// IsOnline reports whether a record reads as online at the given instant.
// A record is offline when its claimed status is not "online", when its
// timestamp does not parse, or when the timestamp is older than timeout.
func IsOnline(rec models.TerminalRecord, timeout time.Duration, now time.Time) bool {
	if rec.Status != models.StatusOnline {
		return false
	}

	ts, ok := rec.LastUpdateTime()
	if !ok {
		return false
	}

	return now.Sub(ts) <= timeout
}

// OnlineIDs returns the IDs of all terminals reading as online.
func OnlineIDs(doc models.Document, timeout time.Duration, now time.Time) []string {
	ids := make([]string, 0, len(doc.Terminals))

	for id, rec := range doc.Terminals {
		if IsOnline(rec, timeout, now) {
			ids = append(ids, id)
		}
	}

	return ids
}

// OnlineCount returns the number of terminals reading as online.
func OnlineCount(doc models.Document, timeout time.Duration, now time.Time) int {
	return len(OnlineIDs(doc, timeout, now))
}
