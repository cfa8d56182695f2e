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

// Package sync owns the read-merge-write protocol against the shared remote
// document. The remote store offers no locking or conditional writes, so
// every mutate is fetch, transform, push-whole-document: edits by other
// terminals that land inside one mutate's fetch-to-push window are lost
// (last write wins). Centralizing the discipline here keeps the race window
// in one place, so a store with versioned writes can shrink it later
// without touching callers.
package sync

import (
	"bytes"
	"context"
	"sync"

	"github.com/termatlas/termatlas/pkg/logger"
	"github.com/termatlas/termatlas/pkg/models"
	"github.com/termatlas/termatlas/pkg/registry"
	"github.com/termatlas/termatlas/pkg/store"
)

// Transform rewrites the registry document during a mutate. A transform must
// only add or modify the calling terminal's own entry; entries belonging to
// other terminals pass through untouched.
type Transform func(models.Document) models.Document

// Engine synchronizes the local view of the registry with the remote store.
// It holds the only long-lived in-process copy of the document: the display
// snapshot, updated after each successful pull or mutate.
type Engine struct {
	remote store.RemoteStore
	cache  store.LocalCache
	logger logger.Logger

	mu       sync.RWMutex
	snapshot models.Document
}

// New creates an engine. The snapshot is seeded from the local cache so the
// first paint does not wait for the network.
func New(remote store.RemoteStore, cache store.LocalCache, log logger.Logger) *Engine {
	e := &Engine{
		remote:   remote,
		cache:    cache,
		logger:   log,
		snapshot: registry.Empty(),
	}

	if cache != nil {
		if data, ok := cache.Get(); ok {
			if doc, ok := registry.Decode(data); ok {
				e.snapshot = doc
				log.Debug().Int("terminals", len(doc.Terminals)).Msg("Seeded registry snapshot from local cache")
			}
		}
	}

	return e
}

// Snapshot returns a copy of the last successfully applied document.
func (e *Engine) Snapshot() models.Document {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return registry.Clone(e.snapshot)
}

// Pull refreshes the snapshot from the remote store. Absent or malformed
// remote content substitutes an empty document; only transport failures and
// missing configuration surface as errors.
func (e *Engine) Pull(ctx context.Context) (models.Document, error) {
	doc, _, err := e.fetch(ctx)
	if err != nil {
		return models.Document{}, err
	}

	e.apply(doc)

	return registry.Clone(doc), nil
}

// Mutate fetches the latest document, applies the transform, and pushes the
// whole result back. The fetch happens immediately before the transform so
// that edits by other terminals completed by then are preserved. When the
// transform leaves the document unchanged the push is skipped entirely.
// On any failure no local state changes; no retry is scheduled here.
func (e *Engine) Mutate(ctx context.Context, transform Transform) (models.Document, error) {
	doc, _, err := e.fetch(ctx)
	if err != nil {
		return models.Document{}, err
	}

	next := transform(registry.Clone(doc))

	before, err := registry.Encode(doc)
	if err != nil {
		return models.Document{}, err
	}

	payload, err := registry.Encode(next)
	if err != nil {
		return models.Document{}, err
	}

	if bytes.Equal(payload, before) {
		e.logger.Debug().Msg("Mutate transform was an identity, skipping push")
		e.apply(doc)

		return registry.Clone(doc), nil
	}

	if err := e.remote.Put(ctx, payload); err != nil {
		return models.Document{}, err
	}

	e.apply(next)

	return registry.Clone(next), nil
}

// fetch reads the remote document, mapping absent and malformed content to
// an empty document.
func (e *Engine) fetch(ctx context.Context) (models.Document, bool, error) {
	data, found, err := e.remote.Get(ctx)
	if err != nil {
		return models.Document{}, false, err
	}

	if !found {
		return registry.Empty(), false, nil
	}

	doc, ok := registry.Decode(data)
	if !ok {
		e.logger.Warn().Int("bytes", len(data)).Msg("Remote document is malformed, treating as empty")
	}

	return doc, ok, nil
}

// apply installs a document as the display snapshot and writes it through to
// the local cache.
func (e *Engine) apply(doc models.Document) {
	e.mu.Lock()
	e.snapshot = registry.Clone(doc)
	e.mu.Unlock()

	if e.cache == nil {
		return
	}

	data, err := registry.Encode(doc)
	if err != nil {
		e.logger.Error().Err(err).Msg("Failed to encode document for cache")
		return
	}

	if err := e.cache.Set(data); err != nil {
		e.logger.Warn().Err(err).Msg("Failed to write local cache")
	}
}
