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
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsConfig identifies one JetStream KV entry as the registry document.
type NatsConfig struct {
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// NatsStore keeps the registry document in a NATS JetStream KV bucket, for
// deployments that self-host the shared store instead of using a gist.
// Semantics are identical: one opaque blob, whole-document replace.
type NatsStore struct {
	nc  *nats.Conn
	kv  jetstream.KeyValue
	key string
}

func NewNatsStore(ctx context.Context, config NatsConfig) (*NatsStore, error) {
	if strings.TrimSpace(config.URL) == "" || strings.TrimSpace(config.Bucket) == "" {
		return nil, fmt.Errorf("%w: nats url and bucket are required", ErrConfigMissing)
	}

	key := config.Key
	if key == "" {
		key = "registry"
	}

	nc, err := nats.Connect(config.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to NATS: %w", ErrRemoteUnavailable, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("%w: failed to create JetStream context: %w", ErrRemoteUnavailable, err)
	}

	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: config.Bucket})
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("%w: failed to create KV bucket: %w", ErrRemoteUnavailable, err)
	}

	return &NatsStore{nc: nc, kv: kv, key: key}, nil
}

func (n *NatsStore) Get(ctx context.Context) ([]byte, bool, error) {
	entry, err := n.kv.Get(ctx, n.key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to get key %s: %w", ErrRemoteUnavailable, n.key, err)
	}

	return entry.Value(), true, nil
}

func (n *NatsStore) Put(ctx context.Context, data []byte) error {
	if _, err := n.kv.Put(ctx, n.key, data); err != nil {
		return fmt.Errorf("%w: failed to put key %s: %w", ErrRemoteUnavailable, n.key, err)
	}

	return nil
}

func (n *NatsStore) Close() error {
	n.nc.Close()

	return nil
}

var _ RemoteStore = (*NatsStore)(nil)
var _ RemoteStore = (*GiteeStore)(nil)
