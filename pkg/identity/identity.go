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

// Package identity manages the stable per-installation terminal ID.
package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const idFileName = "terminal_id"

// GetOrCreateID returns the terminal ID stored under the state directory,
// generating and persisting one on first use. The ID is stable across
// restarts of the same installation.
func GetOrCreateID(stateDir string) (string, error) {
	path := filepath.Join(stateDir, idFileName)

	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}

	id := uuid.NewString()

	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create state dir: %w", err)
	}

	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to persist terminal id: %w", err)
	}

	return id, nil
}
