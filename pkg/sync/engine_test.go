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

package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termatlas/termatlas/pkg/logger"
	"github.com/termatlas/termatlas/pkg/models"
	"github.com/termatlas/termatlas/pkg/registry"
	"github.com/termatlas/termatlas/pkg/store"
)

type fakeRemote struct {
	data    []byte
	found   bool
	getErr  error
	putErr  error
	gets    int
	puts    int
	lastPut []byte
}

func (f *fakeRemote) Get(_ context.Context) ([]byte, bool, error) {
	f.gets++

	if f.getErr != nil {
		return nil, false, f.getErr
	}

	return f.data, f.found, nil
}

func (f *fakeRemote) Put(_ context.Context, data []byte) error {
	f.puts++

	if f.putErr != nil {
		return f.putErr
	}

	f.lastPut = data
	f.data = data
	f.found = true

	return nil
}

func (f *fakeRemote) Close() error { return nil }

type fakeCache struct {
	data   []byte
	ok     bool
	setErr error
	sets   int
}

func (f *fakeCache) Get() ([]byte, bool) { return f.data, f.ok }

func (f *fakeCache) Set(data []byte) error {
	f.sets++

	if f.setErr != nil {
		return f.setErr
	}

	f.data = data
	f.ok = true

	return nil
}

func encodeDoc(t *testing.T, doc models.Document) []byte {
	t.Helper()

	data, err := registry.Encode(doc)
	require.NoError(t, err)

	return data
}

func onlineRecord(id string) models.TerminalRecord {
	return models.TerminalRecord{
		TerminalID: id,
		Status:     models.StatusOnline,
		LastUpdate: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}
}

func TestEngine_SnapshotSeededFromCache(t *testing.T) {
	doc := models.Document{Terminals: map[string]models.TerminalRecord{
		"term-1": onlineRecord("term-1"),
	}}
	cache := &fakeCache{data: encodeDoc(t, doc), ok: true}

	engine := New(&fakeRemote{}, cache, logger.NewTestLogger())

	snap := engine.Snapshot()
	require.Len(t, snap.Terminals, 1)
	assert.Equal(t, "term-1", snap.Terminals["term-1"].TerminalID)
}

func TestEngine_SnapshotEmptyWithoutCache(t *testing.T) {
	engine := New(&fakeRemote{}, nil, logger.NewTestLogger())

	snap := engine.Snapshot()
	require.NotNil(t, snap.Terminals)
	assert.Empty(t, snap.Terminals)
}

func TestEngine_PullAbsentRemote(t *testing.T) {
	remote := &fakeRemote{found: false}
	engine := New(remote, nil, logger.NewTestLogger())

	doc, err := engine.Pull(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Terminals)
}

func TestEngine_PullMalformedRemote(t *testing.T) {
	remote := &fakeRemote{data: []byte(`{{not json`), found: true}
	engine := New(remote, nil, logger.NewTestLogger())

	doc, err := engine.Pull(context.Background())
	require.NoError(t, err)
	require.NotNil(t, doc.Terminals)
	assert.Empty(t, doc.Terminals)
}

func TestEngine_PullTransportErrorKeepsSnapshot(t *testing.T) {
	doc := models.Document{Terminals: map[string]models.TerminalRecord{
		"term-1": onlineRecord("term-1"),
	}}
	cache := &fakeCache{data: encodeDoc(t, doc), ok: true}
	remote := &fakeRemote{getErr: store.ErrRemoteUnavailable}

	engine := New(remote, cache, logger.NewTestLogger())

	_, err := engine.Pull(context.Background())
	require.ErrorIs(t, err, store.ErrRemoteUnavailable)

	// Last applied snapshot survives the failed refresh.
	assert.Len(t, engine.Snapshot().Terminals, 1)
}

func TestEngine_PullIsIdempotent(t *testing.T) {
	doc := models.Document{Terminals: map[string]models.TerminalRecord{
		"term-1": onlineRecord("term-1"),
		"term-2": onlineRecord("term-2"),
	}}
	remote := &fakeRemote{data: encodeDoc(t, doc), found: true}

	engine := New(remote, nil, logger.NewTestLogger())

	first, err := engine.Pull(context.Background())
	require.NoError(t, err)

	second, err := engine.Pull(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, engine.Snapshot())
}

func TestEngine_PullWritesThroughCache(t *testing.T) {
	doc := models.Document{Terminals: map[string]models.TerminalRecord{
		"term-1": onlineRecord("term-1"),
	}}
	remote := &fakeRemote{data: encodeDoc(t, doc), found: true}
	cache := &fakeCache{}

	engine := New(remote, cache, logger.NewTestLogger())

	_, err := engine.Pull(context.Background())
	require.NoError(t, err)

	cached, ok := cache.Get()
	require.True(t, ok)

	decoded, ok := registry.Decode(cached)
	require.True(t, ok)
	assert.Len(t, decoded.Terminals, 1)
}

func TestEngine_PullCacheWriteFailureIsAbsorbed(t *testing.T) {
	doc := models.Document{Terminals: map[string]models.TerminalRecord{
		"term-1": onlineRecord("term-1"),
	}}
	remote := &fakeRemote{data: encodeDoc(t, doc), found: true}
	cache := &fakeCache{setErr: assert.AnError}

	engine := New(remote, cache, logger.NewTestLogger())

	got, err := engine.Pull(context.Background())
	require.NoError(t, err)
	assert.Len(t, got.Terminals, 1)
}

func TestEngine_MutateInsertsIntoEmptyRemote(t *testing.T) {
	remote := &fakeRemote{found: false}
	engine := New(remote, nil, logger.NewTestLogger())

	got, err := engine.Mutate(context.Background(), func(doc models.Document) models.Document {
		doc.Terminals["term-1"] = onlineRecord("term-1")
		return doc
	})
	require.NoError(t, err)

	require.Len(t, got.Terminals, 1)
	assert.Equal(t, 1, remote.puts)

	pushed, ok := registry.Decode(remote.lastPut)
	require.True(t, ok)
	assert.Len(t, pushed.Terminals, 1)
}

func TestEngine_MutatePreservesOtherEntries(t *testing.T) {
	other := onlineRecord("term-b")
	doc := models.Document{Terminals: map[string]models.TerminalRecord{
		"term-b": other,
	}}
	remote := &fakeRemote{data: encodeDoc(t, doc), found: true}

	engine := New(remote, nil, logger.NewTestLogger())

	got, err := engine.Mutate(context.Background(), func(doc models.Document) models.Document {
		doc.Terminals["term-a"] = onlineRecord("term-a")
		return doc
	})
	require.NoError(t, err)

	require.Len(t, got.Terminals, 2)
	assert.Equal(t, other, got.Terminals["term-b"])

	pushed, ok := registry.Decode(remote.lastPut)
	require.True(t, ok)
	assert.Equal(t, other, pushed.Terminals["term-b"])
}

func TestEngine_MutateIdentitySkipsPush(t *testing.T) {
	doc := models.Document{Terminals: map[string]models.TerminalRecord{
		"term-b": onlineRecord("term-b"),
	}}
	remote := &fakeRemote{data: encodeDoc(t, doc), found: true}

	engine := New(remote, nil, logger.NewTestLogger())

	// Flipping an absent entry offline touches nothing.
	got, err := engine.Mutate(context.Background(), func(doc models.Document) models.Document {
		if rec, ok := doc.Terminals["term-a"]; ok {
			rec.Status = models.StatusOffline
			doc.Terminals["term-a"] = rec
		}

		return doc
	})
	require.NoError(t, err)

	assert.Equal(t, 0, remote.puts)
	assert.Len(t, got.Terminals, 1)
}

func TestEngine_MutateFetchErrorLeavesStateUntouched(t *testing.T) {
	remote := &fakeRemote{getErr: store.ErrRemoteUnavailable}
	cache := &fakeCache{}
	engine := New(remote, cache, logger.NewTestLogger())

	_, err := engine.Mutate(context.Background(), func(doc models.Document) models.Document {
		doc.Terminals["term-1"] = onlineRecord("term-1")
		return doc
	})
	require.ErrorIs(t, err, store.ErrRemoteUnavailable)

	assert.Equal(t, 0, remote.puts)
	assert.Equal(t, 0, cache.sets)
	assert.Empty(t, engine.Snapshot().Terminals)
}

func TestEngine_MutatePushErrorLeavesStateUntouched(t *testing.T) {
	remote := &fakeRemote{found: false, putErr: store.ErrRemoteUnavailable}
	cache := &fakeCache{}
	engine := New(remote, cache, logger.NewTestLogger())

	_, err := engine.Mutate(context.Background(), func(doc models.Document) models.Document {
		doc.Terminals["term-1"] = onlineRecord("term-1")
		return doc
	})
	require.ErrorIs(t, err, store.ErrRemoteUnavailable)

	assert.Equal(t, 0, cache.sets)
	assert.Empty(t, engine.Snapshot().Terminals)
}

func TestEngine_MutateOverMalformedRemoteStartsEmpty(t *testing.T) {
	remote := &fakeRemote{data: []byte(`"scribbles"`), found: true}
	engine := New(remote, nil, logger.NewTestLogger())

	got, err := engine.Mutate(context.Background(), func(doc models.Document) models.Document {
		doc.Terminals["term-1"] = onlineRecord("term-1")
		return doc
	})
	require.NoError(t, err)

	assert.Len(t, got.Terminals, 1)
	assert.Equal(t, 1, remote.puts)
}
