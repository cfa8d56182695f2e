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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/termatlas/termatlas/pkg/logger"
	"github.com/termatlas/termatlas/pkg/models"
)

const (
	defaultGiteeBaseURL = "https://gitee.com/api/v5"
	defaultGiteeTimeout = 15 * time.Second
	maxErrorBodyBytes   = 2048
)

// GiteeConfig identifies one gist file as the shared registry document.
type GiteeConfig struct {
	BaseURL     string          `json:"base_url,omitempty"`
	GistID      string          `json:"gist_id"`
	FileName    string          `json:"file_name"`
	AccessToken string          `json:"access_token"`
	Timeout     models.Duration `json:"timeout,omitempty"`
}

// GiteeStore stores the registry document as the content of a single file
// inside a Gitee gist. Writes replace the file content wholesale.
type GiteeStore struct {
	config GiteeConfig
	client *http.Client
	logger logger.Logger
}

func NewGiteeStore(config GiteeConfig, log logger.Logger) *GiteeStore {
	if config.BaseURL == "" {
		config.BaseURL = defaultGiteeBaseURL
	}

	timeout := time.Duration(config.Timeout)
	if timeout == 0 {
		timeout = defaultGiteeTimeout
	}

	return &GiteeStore{
		config: config,
		client: &http.Client{Timeout: timeout},
		logger: log,
	}
}

// checkConfig fails fast before any network call when the document target or
// credential is missing.
func (g *GiteeStore) checkConfig() error {
	if strings.TrimSpace(g.config.GistID) == "" {
		return fmt.Errorf("%w: gist_id is required", ErrConfigMissing)
	}

	if strings.TrimSpace(g.config.FileName) == "" {
		return fmt.Errorf("%w: file_name is required", ErrConfigMissing)
	}

	if strings.TrimSpace(g.config.AccessToken) == "" {
		return fmt.Errorf("%w: access_token is required", ErrConfigMissing)
	}

	return nil
}

func (g *GiteeStore) gistURL() string {
	return fmt.Sprintf("%s/gists/%s?access_token=%s",
		g.config.BaseURL, strings.TrimSpace(g.config.GistID), strings.TrimSpace(g.config.AccessToken))
}

// Get fetches the gist and extracts the registry file content. A gist or
// file that does not exist yet reads as absent, not as an error.
func (g *GiteeStore) Get(ctx context.Context) ([]byte, bool, error) {
	if err := g.checkConfig(); err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.gistURL(), http.NoBody)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	defer g.closeResponse(resp)

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, false, g.statusError("GET gist", resp)
	}

	var gist struct {
		Files map[string]struct {
			Content *string `json:"content"`
		} `json:"files"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&gist); err != nil {
		return nil, false, fmt.Errorf("%w: decoding gist response: %w", ErrRemoteUnavailable, err)
	}

	file, ok := gist.Files[g.config.FileName]
	if !ok || file.Content == nil {
		return nil, false, nil
	}

	return []byte(*file.Content), true, nil
}

// Put replaces the registry file content. Gitee accepts PATCH for gist
// updates; some deployments answer 405, in which case the write is retried
// once as PUT.
func (g *GiteeStore) Put(ctx context.Context, data []byte) error {
	if err := g.checkConfig(); err != nil {
		return err
	}

	body, err := json.Marshal(map[string]interface{}{
		"files": map[string]interface{}{
			g.config.FileName: map[string]string{"content": string(data)},
		},
	})
	if err != nil {
		return fmt.Errorf("encoding gist update: %w", err)
	}

	resp, err := g.send(ctx, http.MethodPatch, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusMethodNotAllowed {
		g.closeResponse(resp)

		resp, err = g.send(ctx, http.MethodPut, body)
		if err != nil {
			return err
		}
	}

	defer g.closeResponse(resp)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return g.statusError("update gist", resp)
	}

	return nil
}

func (g *GiteeStore) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

func (g *GiteeStore) send(ctx context.Context, method string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.gistURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}

	return resp, nil
}

// statusError builds a RemoteUnavailable error carrying the response status
// and a body excerpt. The access token never appears unredacted.
func (g *GiteeStore) statusError(op string, resp *http.Response) error {
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	return fmt.Errorf("%w: %s failed: status=%d token=%s body=%s",
		ErrRemoteUnavailable, op, resp.StatusCode,
		redactToken(g.config.AccessToken), string(excerpt))
}

func (g *GiteeStore) closeResponse(resp *http.Response) {
	if err := resp.Body.Close(); err != nil && g.logger != nil {
		g.logger.Warn().Err(err).Msg("Failed to close response body")
	}
}

// redactToken keeps the first and last four characters of a token for log
// correlation and hides the rest.
func redactToken(token string) string {
	if token == "" {
		return "<empty>"
	}

	if len(token) <= 8 {
		return "<redacted>"
	}

	return token[:4] + "…" + token[len(token)-4:]
}
