package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL    = "https://api.notion.com/v1"
	defaultAPIVersion = "2022-06-28"

	defaultTimeout     = 30 * time.Second
	defaultPageSize    = 100
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// TokenProvider supplies the integration token. Storage and encryption of
// the token live behind this boundary.
type TokenProvider interface {
	NotionToken() string
}

// StaticToken is a TokenProvider for a token already held in memory.
type StaticToken string

func (t StaticToken) NotionToken() string { return string(t) }

// Client interfaces with the Notion REST API
type Client struct {
	httpClient *http.Client
	tokens     TokenProvider
	baseURL    string
	apiVersion string
}

// NewClient creates a new Notion API client
func NewClient(tokens TokenProvider) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		tokens:     tokens,
		baseURL:    defaultBaseURL,
		apiVersion: defaultAPIVersion,
	}
}

// NewClientWithBaseURL creates a client against a non-default endpoint.
// Used by tests to point at an httptest server.
func NewClientWithBaseURL(tokens TokenProvider, baseURL string) *Client {
	c := NewClient(tokens)
	c.baseURL = baseURL
	return c
}

// SetAPIVersion overrides the Notion-Version header value.
func (c *Client) SetAPIVersion(version string) {
	if version != "" {
		c.apiVersion = version
	}
}

// GetPage fetches a single page object.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	path := fmt.Sprintf("/pages/%s", NormalizeID(pageID))
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetBlockChildren fetches one page of children for a block. An empty cursor
// requests the first page.
func (c *Client) GetBlockChildren(ctx context.Context, blockID, cursor string) (*BlockListResponse, error) {
	path := fmt.Sprintf("/blocks/%s/children?page_size=%d", NormalizeID(blockID), defaultPageSize)
	if cursor != "" {
		path += "&start_cursor=" + cursor
	}
	var resp BlockListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetDatabase fetches a database object including its schema.
func (c *Client) GetDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	path := fmt.Sprintf("/databases/%s", NormalizeID(databaseID))
	if err := c.do(ctx, http.MethodGet, path, nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}

// QueryDatabase fetches one page of rows from a database. An empty cursor
// requests the first page.
func (c *Client) QueryDatabase(ctx context.Context, databaseID, cursor string) (*QueryResponse, error) {
	body := map[string]any{"page_size": defaultPageSize}
	if cursor != "" {
		body["start_cursor"] = cursor
	}
	var resp QueryResponse
	path := fmt.Sprintf("/databases/%s/query", NormalizeID(databaseID))
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search lists pages shared with the integration, most recently edited first.
func (c *Client) Search(ctx context.Context, limit int) (*SearchResponse, error) {
	if limit <= 0 || limit > defaultPageSize {
		limit = defaultPageSize
	}
	body := map[string]any{
		"page_size": limit,
		"filter":    map[string]string{"property": "object", "value": "page"},
		"sort":      map[string]string{"direction": "descending", "timestamp": "last_edited_time"},
	}
	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, "/search", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do performs one API call with retry on rate limits and server errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateRetryDelay(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = c.doOnce(ctx, method, path, body, out)
		if lastErr == nil {
			return nil
		}

		// Only retry on rate limits or server errors
		if !isRetryableError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.tokens.NotionToken())
	req.Header.Set("Notion-Version", c.apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrInvalidToken
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		payload, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(payload))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func calculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if err == ErrRateLimited {
		return true
	}
	if _, ok := err.(*ServerError); ok {
		return true
	}
	return false
}
