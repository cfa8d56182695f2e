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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileCache_MissingFile(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	data, ok := cache.Get()
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestFileCache_RoundTrip(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	require.NoError(t, cache.Set([]byte(`{"terminals":{}}`)))

	data, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, `{"terminals":{}}`, string(data))
}

func TestFileCache_SetOverwrites(t *testing.T) {
	cache := NewFileCache(t.TempDir())

	require.NoError(t, cache.Set([]byte(`first`)))
	require.NoError(t, cache.Set([]byte(`second`)))

	data, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, `second`, string(data))
}

func TestFileCache_CreatesStateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	cache := NewFileCache(dir)

	require.NoError(t, cache.Set([]byte(`{}`)))

	info, err := os.Stat(filepath.Join(dir, "registry.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileCache_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(dir)

	require.NoError(t, cache.Set([]byte(`{}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "registry.json", entries[0].Name())
}
