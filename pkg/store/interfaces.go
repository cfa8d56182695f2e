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

// Package store provides the remote document store and the local cache the
// sync engine reads and writes. The remote store is a whole-blob replace
// endpoint: callers are responsible for read-before-write merging.
package store

import "context"

// RemoteStore is the shared remote document endpoint.
type RemoteStore interface {
	// Get retrieves the current document blob. The boolean reports whether a
	// document exists; transport failures wrap ErrRemoteUnavailable.
	Get(ctx context.Context) ([]byte, bool, error)

	// Put replaces the whole document blob. Never a partial patch.
	Put(ctx context.Context, data []byte) error

	// Close releases any held connections.
	Close() error
}

// LocalCache is a synchronous last-known-document fallback, used for the
// initial paint before the first pull completes.
type LocalCache interface {
	Get() ([]byte, bool)
	Set(data []byte) error
}
