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

package store

import (
	"os"
	"path/filepath"
	"sync"
)

const cacheFileName = "registry.json"

// FileCache persists the last successfully applied document under the state
// directory so a restarting client can paint immediately.
type FileCache struct {
	mu   sync.Mutex
	path string
}

func NewFileCache(stateDir string) *FileCache {
	return &FileCache{path: filepath.Join(stateDir, cacheFileName)}
}

func (f *FileCache) Get() ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, false
	}

	return data, true
}

func (f *FileCache) Set(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}

	// Write-then-rename keeps a crash from truncating the cache.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tmp, f.path)
}

var _ LocalCache = (*FileCache)(nil)
