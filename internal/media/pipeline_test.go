package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	mediadb "github.com/thevgergroup/notion-wp-sub002/internal/database/media"
	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
)

const (
	testBlockID = "9b8c7d6e5f4a3b2c1d0e9f8a7b6c5d4e"
	testPageID  = "7f1a9c2e3b4d5e6f7a8b9c0d1e2f3a4b"
)

func setupPipeline(t *testing.T) (*Pipeline, *mediadb.Repository, func()) {
	dbPath := "./test_media_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.MediaAsset{})
	require.NoError(t, err)

	registry := mediadb.NewRepository(db)
	dir := t.TempDir()
	pipeline, err := NewPipeline(registry, dir, "http://localhost:8166/media")
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return pipeline, registry, cleanup
}

func TestShouldMirror(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "notion static", url: "https://s3.us-west-2.amazonaws.com/secure.notion-static.com/a/b.png?sig=1", want: true},
		{name: "file.notion.so", url: "https://file.notion.so/f/a/b.png?expirationTimestamp=1", want: true},
		{name: "prod files secure", url: "https://prod-files-secure.s3.us-west-2.amazonaws.com/a/b.png", want: true},
		{name: "plain s3 bucket", url: "https://my-bucket.s3.amazonaws.com/b.png", want: false},
		{name: "third party", url: "https://example.com/pic.png", want: false},
		{name: "relative", url: "/media/pic.png", want: false},
		{name: "empty", url: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldMirror(tt.url))
		})
	}
}

func TestPipeline_Reference_StableURLPassthrough(t *testing.T) {
	pipeline, registry, cleanup := setupPipeline(t)
	defer cleanup()

	ref := pipeline.Reference(testBlockID, testPageID, "https://example.com/pic.png")
	assert.Equal(t, "https://example.com/pic.png", ref)

	// Stable URLs are never registered
	asset, err := registry.Find(testBlockID)
	require.NoError(t, err)
	assert.Nil(t, asset)
}

func TestPipeline_Reference_RegistersExpiringAsset(t *testing.T) {
	pipeline, registry, cleanup := setupPipeline(t)
	defer cleanup()

	var deferred []string
	pipeline.SetDeferFunc(func(sourceBlockID string) {
		deferred = append(deferred, sourceBlockID)
	})

	sourceURL := "https://file.notion.so/f/a/pic.png?expirationTimestamp=1"
	ref := pipeline.Reference(testBlockID, testPageID, sourceURL)

	// Placeholder state: source URL while the download is pending
	assert.Equal(t, sourceURL, ref)
	assert.Equal(t, []string{testBlockID}, deferred)

	asset, err := registry.Find(testBlockID)
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, entities.MediaStatusPending, asset.Status)
}

func TestPipeline_Reference_ReturnsLocalURLWhenStored(t *testing.T) {
	pipeline, registry, cleanup := setupPipeline(t)
	defer cleanup()

	require.NoError(t, registry.RegisterPending(testBlockID, testPageID, "https://file.notion.so/f/a/pic.png"))
	require.NoError(t, registry.MarkStored(testBlockID, "/tmp/x.png", "http://localhost:8166/media/x.png"))

	ref := pipeline.Reference(testBlockID, testPageID, "https://file.notion.so/f/a/pic.png?sig=rotated")
	assert.Equal(t, "http://localhost:8166/media/x.png", ref)
}

func TestPipeline_Download(t *testing.T) {
	pipeline, registry, cleanup := setupPipeline(t)
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	require.NoError(t, registry.RegisterPending(testBlockID, testPageID, server.URL+"/pic.png"))
	require.NoError(t, pipeline.Download(context.Background(), testBlockID))

	asset, err := registry.Find(testBlockID)
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, entities.MediaStatusStored, asset.Status)
	assert.Contains(t, asset.LocalURL, "http://localhost:8166/media/")

	data, err := os.ReadFile(asset.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestPipeline_Download_AlreadyStoredIsNoop(t *testing.T) {
	pipeline, registry, cleanup := setupPipeline(t)
	defer cleanup()

	// Source URL is unreachable; a stored asset must not be re-fetched
	require.NoError(t, registry.RegisterPending(testBlockID, testPageID, "http://127.0.0.1:1/pic.png"))
	require.NoError(t, registry.MarkStored(testBlockID, "/tmp/x.png", "http://localhost:8166/media/x.png"))

	assert.NoError(t, pipeline.Download(context.Background(), testBlockID))
}

func TestPipeline_Download_FailureMarksAsset(t *testing.T) {
	pipeline, registry, cleanup := setupPipeline(t)
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	require.NoError(t, registry.RegisterPending(testBlockID, testPageID, server.URL+"/gone.png"))
	require.Error(t, pipeline.Download(context.Background(), testBlockID))

	asset, err := registry.Find(testBlockID)
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, entities.MediaStatusFailed, asset.Status)
	assert.NotEmpty(t, asset.Error)
}

func TestPipeline_Download_Unregistered(t *testing.T) {
	pipeline, _, cleanup := setupPipeline(t)
	defer cleanup()

	assert.Error(t, pipeline.Download(context.Background(), testBlockID))
}

func TestPipeline_RewriteContent(t *testing.T) {
	pipeline, registry, cleanup := setupPipeline(t)
	defer cleanup()

	require.NoError(t, registry.RegisterPending(testBlockID, testPageID, "https://file.notion.so/f/a/pic.png?sig=1"))
	require.NoError(t, registry.MarkStored(testBlockID, "/tmp/x.png", "http://localhost:8166/media/x.png"))

	content := `<figure class="wp-block-image"><img src="https://file.notion.so/f/a/pic.png?sig=1" alt="" data-notion-block="` + testBlockID + `"/></figure>`

	rewritten, changed := pipeline.RewriteContent(testPageID, content)
	assert.True(t, changed)
	assert.Contains(t, rewritten, `src="http://localhost:8166/media/x.png"`)
	assert.NotContains(t, rewritten, "file.notion.so")
	// The marker survives for future rewrites
	assert.Contains(t, rewritten, `data-notion-block="`+testBlockID+`"`)
}

func TestPipeline_RewriteContent_PendingUnchanged(t *testing.T) {
	pipeline, registry, cleanup := setupPipeline(t)
	defer cleanup()

	require.NoError(t, registry.RegisterPending(testBlockID, testPageID, "https://file.notion.so/f/a/pic.png"))

	content := `<img src="https://file.notion.so/f/a/pic.png" data-notion-block="` + testBlockID + `"/>`
	rewritten, changed := pipeline.RewriteContent(testPageID, content)
	assert.False(t, changed)
	assert.Equal(t, content, rewritten)
}

func TestAssetFilename_IgnoresRotatingSignature(t *testing.T) {
	a := assetFilename(testBlockID, "https://file.notion.so/f/a/pic.png?sig=1")
	b := assetFilename(testBlockID, "https://file.notion.so/f/a/pic.png?sig=2")
	assert.Equal(t, a, b)
	assert.Equal(t, ".png", filepath.Ext(a))
}
