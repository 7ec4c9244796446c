package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("expected Authorization header 'Bearer test-token', got %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Notion-Version") != defaultAPIVersion {
			t.Errorf("expected Notion-Version header %s, got %s", defaultAPIVersion, r.Header.Get("Notion-Version"))
		}
		if r.URL.Path != "/pages/7f1a9c2e3b4d5e6f7a8b9c0d1e2f3a4b" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object":           "page",
			"id":               "7f1a9c2e-3b4d-5e6f-7a8b-9c0d1e2f3a4b",
			"last_edited_time": "2024-03-01T10:00:00.000Z",
			"url":              "https://www.notion.so/Test-7f1a9c2e3b4d5e6f7a8b9c0d1e2f3a4b",
		})
	}))
	defer server.Close()

	client := NewClientWithBaseURL(StaticToken("test-token"), server.URL)

	// Dashed input must hit the normalized path
	page, err := client.GetPage(context.Background(), "7f1a9c2e-3b4d-5e6f-7a8b-9c0d1e2f3a4b")
	require.NoError(t, err)
	assert.Equal(t, "7f1a9c2e-3b4d-5e6f-7a8b-9c0d1e2f3a4b", page.ID)
	assert.Equal(t, 2024, page.LastEditedTime.Year())
}

func TestClient_GetBlockChildren_Cursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("start_cursor") == "" {
			json.NewEncoder(w).Encode(map[string]any{
				"results":     []map[string]any{{"id": "block-1", "type": "paragraph"}},
				"has_more":    true,
				"next_cursor": "cursor-2",
			})
			return
		}

		assert.Equal(t, "cursor-2", r.URL.Query().Get("start_cursor"))
		json.NewEncoder(w).Encode(map[string]any{
			"results":  []map[string]any{{"id": "block-2", "type": "paragraph"}},
			"has_more": false,
		})
	}))
	defer server.Close()

	client := NewClientWithBaseURL(StaticToken("test-token"), server.URL)
	ctx := context.Background()

	first, err := client.GetBlockChildren(ctx, "7f1a9c2e3b4d5e6f7a8b9c0d1e2f3a4b", "")
	require.NoError(t, err)
	require.True(t, first.HasMore)
	require.NotNil(t, first.NextCursor)

	second, err := client.GetBlockChildren(ctx, "7f1a9c2e3b4d5e6f7a8b9c0d1e2f3a4b", *first.NextCursor)
	require.NoError(t, err)
	assert.False(t, second.HasMore)
	require.Len(t, second.Results, 1)
	assert.Equal(t, "block-2", second.Results[0].ID)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{name: "unauthorized", statusCode: http.StatusUnauthorized, wantErr: ErrInvalidToken},
		{name: "not found", statusCode: http.StatusNotFound, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := NewClientWithBaseURL(StaticToken("bad-token"), server.URL)
			_, err := client.GetPage(context.Background(), "7f1a9c2e3b4d5e6f7a8b9c0d1e2f3a4b")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_RetriesRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"object": "page", "id": "7f1a9c2e3b4d5e6f7a8b9c0d1e2f3a4b"})
	}))
	defer server.Close()

	client := NewClientWithBaseURL(StaticToken("test-token"), server.URL)
	page, err := client.GetPage(context.Background(), "7f1a9c2e3b4d5e6f7a8b9c0d1e2f3a4b")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.NotEmpty(t, page.ID)
}

func TestCalculateRetryDelay(t *testing.T) {
	assert.Equal(t, 1*time.Second, calculateRetryDelay(0))
	assert.Equal(t, 2*time.Second, calculateRetryDelay(1))
	assert.Equal(t, 4*time.Second, calculateRetryDelay(2))
	assert.Equal(t, maxRetryDelay, calculateRetryDelay(20))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(ErrRateLimited))
	assert.True(t, isRetryableError(&ServerError{StatusCode: 503}))
	assert.False(t, isRetryableError(ErrInvalidToken))
	assert.False(t, isRetryableError(ErrNotFound))
}
