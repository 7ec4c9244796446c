// Package wordpress writes synced documents into a WordPress site over its
// REST API. Everything is created as a draft: publishing is an editorial
// decision, never the syncer's.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// ErrUnauthorized indicates the application password was rejected
var ErrUnauthorized = errors.New("wordpress credentials rejected")

// ErrPostNotFound indicates the requested post does not exist
var ErrPostNotFound = errors.New("wordpress post not found")

// APIError represents a non-2xx response from the WordPress REST API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("WordPress API error: HTTP %d: %s", e.StatusCode, e.Message)
}

// Post is the slice of a WordPress post the syncer cares about. Content is
// the raw (edit-context) block markup when available.
type Post struct {
	ID      int64
	Title   string
	Content string
	Status  string
	Slug    string
	Link    string
}

// Store is the target document store. The REST client implements it in
// production; tests substitute an in-memory fake.
type Store interface {
	CreatePost(ctx context.Context, title, content string) (*Post, error)
	UpdatePost(ctx context.Context, id int64, title, content string) (*Post, error)
	GetPost(ctx context.Context, id int64) (*Post, error)
}

// Client interfaces with the WordPress REST API using an application
// password.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	username    string
	appPassword string
}

// NewClient creates a WordPress client for the site at baseURL.
func NewClient(baseURL, username, appPassword string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		username:    username,
		appPassword: appPassword,
	}
}

type postPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status,omitempty"`
}

type postResponse struct {
	ID      int64  `json:"id"`
	Status  string `json:"status"`
	Slug    string `json:"slug"`
	Link    string `json:"link"`
	Title   field  `json:"title"`
	Content field  `json:"content"`
}

type field struct {
	Rendered string `json:"rendered"`
	Raw      string `json:"raw"`
}

// CreatePost creates a new draft post.
func (c *Client) CreatePost(ctx context.Context, title, content string) (*Post, error) {
	return c.writePost(ctx, http.MethodPost, "/wp-json/wp/v2/posts", postPayload{
		Title:   title,
		Content: content,
		Status:  "draft",
	})
}

// UpdatePost replaces the title and content of an existing post. The post's
// current publish status is left alone.
func (c *Client) UpdatePost(ctx context.Context, id int64, title, content string) (*Post, error) {
	path := fmt.Sprintf("/wp-json/wp/v2/posts/%d", id)
	return c.writePost(ctx, http.MethodPost, path, postPayload{
		Title:   title,
		Content: content,
	})
}

// GetPost fetches a post by ID.
func (c *Client) GetPost(ctx context.Context, id int64) (*Post, error) {
	path := fmt.Sprintf("/wp-json/wp/v2/posts/%d?context=edit", id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.appPassword)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodePost(resp)
}

func (c *Client) writePost(ctx context.Context, method, path string, payload postPayload) (*Post, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.appPassword)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodePost(resp)
}

func decodePost(resp *http.Response) (*Post, error) {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrPostNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var decoded postResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	title := decoded.Title.Raw
	if title == "" {
		title = decoded.Title.Rendered
	}
	content := decoded.Content.Raw
	if content == "" {
		content = decoded.Content.Rendered
	}

	return &Post{
		ID:      decoded.ID,
		Title:   title,
		Content: content,
		Status:  decoded.Status,
		Slug:    decoded.Slug,
		Link:    decoded.Link,
	}, nil
}
