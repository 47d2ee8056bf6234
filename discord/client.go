// Copyright 2026 The Gatekeeper Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// defaultBaseURL is the production Discord REST API base.
const defaultBaseURL = "https://discord.com/api/v10"

// userAgent identifies the bot per the Discord API terms.
const userAgent = "DiscordBot (https://github.com/moldova-rp/gatekeeper, 1.0)"

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// Token is the bot token, without the "Bot " prefix.
	Token string
	// BaseURL overrides the API base URL. Empty uses production.
	// Tests point this at an httptest server.
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// Client is an authenticated Discord bot client over the REST API.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Discord REST client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("discord: Token is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	// Validate the URL structure; store the string form with the
	// trailing slash stripped and build request URLs by direct
	// concatenation.
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("discord: invalid BaseURL %q: %w", baseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// doRequest performs an HTTP request against the API and returns the
// response body. On 2xx, returns the body (which may be empty for 204
// responses). On 4xx/5xx, returns a *APIError.
//
// auditReason, when non-empty, is sent as the X-Audit-Log-Reason
// header so that mutations show up attributed in the guild audit log.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any, auditReason string) ([]byte, error) {
	requestURL := c.baseURL + path

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("discord: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("discord: failed to create request: %w", err)
	}

	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Authorization", "Bot "+c.token)
	request.Header.Set("User-Agent", userAgent)
	if auditReason != "" {
		request.Header.Set("X-Audit-Log-Reason", url.PathEscape(auditReason))
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("discord: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("discord: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	// All Discord error responses share the same JSON shape.
	var apiErr APIError
	if jsonErr := json.Unmarshal(responseBody, &apiErr); jsonErr != nil {
		// Non-JSON error body. Should not happen against the real
		// API, but fail loud with the raw body.
		return nil, fmt.Errorf("discord: unexpected %d response from %s %s: %s",
			response.StatusCode, method, path, string(responseBody))
	}
	apiErr.StatusCode = response.StatusCode

	return nil, &apiErr
}
