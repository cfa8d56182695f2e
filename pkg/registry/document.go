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

// Package registry handles encoding, decoding and copying of the shared
// registry document. Malformed remote content is never an error here: a
// payload that fails the shape check decodes to an empty document, because
// a brand-new or hand-edited document must not block any client.
package registry

import (
	"encoding/json"

	"github.com/termatlas/termatlas/pkg/models"
)

// Empty returns a registry document with no terminals.
func Empty() models.Document {
	return models.Document{Terminals: make(map[string]models.TerminalRecord)}
}

// Decode parses raw remote content into a Document. The second return value
// reports whether the payload satisfied the required shape: a JSON object
// carrying a "terminals" mapping. On any failure the result is Empty().
func Decode(data []byte) (models.Document, bool) {
	var probe struct {
		Terminals map[string]models.TerminalRecord `json:"terminals"`
	}

	if err := json.Unmarshal(data, &probe); err != nil {
		return Empty(), false
	}

	if probe.Terminals == nil {
		return Empty(), false
	}

	return models.Document{Terminals: probe.Terminals}, true
}

// Encode serializes a document for the remote store. Map keys are emitted in
// sorted order, so equal documents always encode to equal bytes.
func Encode(doc models.Document) ([]byte, error) {
	if doc.Terminals == nil {
		doc = Empty()
	}

	return json.Marshal(doc)
}

// Clone returns a deep copy of the document. Mutate transforms operate on a
// copy so a failed push never leaves a half-modified snapshot behind.
func Clone(doc models.Document) models.Document {
	out := models.Document{Terminals: make(map[string]models.TerminalRecord, len(doc.Terminals))}

	for id, rec := range doc.Terminals {
		if rec.Coordinates != nil {
			coords := *rec.Coordinates
			rec.Coordinates = &coords
		}

		out.Terminals[id] = rec
	}

	return out
}
