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

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termatlas/termatlas/pkg/models"
)

func TestDecode_ValidDocument(t *testing.T) {
	data := []byte(`{
		"terminals": {
			"term-1": {
				"terminal_id": "term-1",
				"platform": "linux 6.8 (amd64)",
				"status": "online",
				"last_update": "2026-03-01T12:00:00Z"
			}
		}
	}`)

	doc, ok := Decode(data)
	require.True(t, ok)
	require.Len(t, doc.Terminals, 1)
	assert.Equal(t, models.StatusOnline, doc.Terminals["term-1"].Status)
	assert.Equal(t, "linux 6.8 (amd64)", doc.Terminals["term-1"].Platform)
}

func TestDecode_MalformedFallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not json", []byte(`{{{`)},
		{"empty input", nil},
		{"json array", []byte(`[1, 2, 3]`)},
		{"json string", []byte(`"hello"`)},
		{"object without terminals", []byte(`{"foo": "bar"}`)},
		{"null terminals", []byte(`{"terminals": null}`)},
		{"terminals wrong type", []byte(`{"terminals": "yes"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, ok := Decode(tt.data)
			assert.False(t, ok)
			require.NotNil(t, doc.Terminals)
			assert.Empty(t, doc.Terminals)
		})
	}
}

func TestDecode_EmptyTerminalsMapIsValid(t *testing.T) {
	doc, ok := Decode([]byte(`{"terminals": {}}`))
	assert.True(t, ok)
	assert.Empty(t, doc.Terminals)
}

func TestEncode_Deterministic(t *testing.T) {
	doc := models.Document{Terminals: map[string]models.TerminalRecord{
		"b": {TerminalID: "b", Status: models.StatusOnline},
		"a": {TerminalID: "a", Status: models.StatusOffline},
		"c": {TerminalID: "c", Status: models.StatusOnline},
	}}

	first, err := Encode(doc)
	require.NoError(t, err)

	second, err := Encode(Clone(doc))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEncode_NilMap(t *testing.T) {
	data, err := Encode(models.Document{})
	require.NoError(t, err)

	doc, ok := Decode(data)
	assert.True(t, ok)
	assert.Empty(t, doc.Terminals)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	doc := models.Document{Terminals: map[string]models.TerminalRecord{
		"term-1": {
			TerminalID:  "term-1",
			Platform:    "darwin 15.1 (arm64)",
			Model:       "workstation",
			CPU:         "Apple M4 x10",
			Memory:      "32.0 GB",
			Coordinates: &models.Coordinates{Lat: 52.52, Lng: 13.405},
			Status:      models.StatusOnline,
			LastUpdate:  "2026-03-01T12:00:00Z",
		},
	}}

	data, err := Encode(doc)
	require.NoError(t, err)

	decoded, ok := Decode(data)
	require.True(t, ok)
	assert.Equal(t, doc, decoded)
}

func TestClone_DeepCopy(t *testing.T) {
	original := models.Document{Terminals: map[string]models.TerminalRecord{
		"term-1": {
			TerminalID:  "term-1",
			Coordinates: &models.Coordinates{Lat: 1, Lng: 2},
			Status:      models.StatusOnline,
		},
	}}

	clone := Clone(original)

	clone.Terminals["term-2"] = models.TerminalRecord{TerminalID: "term-2"}
	clone.Terminals["term-1"].Coordinates.Lat = 99

	assert.Len(t, original.Terminals, 1)
	assert.Equal(t, float64(1), original.Terminals["term-1"].Coordinates.Lat)
}
