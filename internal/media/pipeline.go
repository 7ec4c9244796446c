// Package media mirrors Notion-hosted assets into local storage.
//
// Notion file URLs are time-limited (roughly an hour), so assets must be
// captured during sync or they are lost; stable third-party URLs are left
// as direct links. The asset registry keyed by source block ID makes every
// download idempotent across repeated syncs of the same page.
package media

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	mediadb "github.com/thevgergroup/notion-wp-sub002/internal/database/media"
	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// DeferFunc enqueues a background download for an asset already registered
// as pending.
type DeferFunc func(sourceBlockID string)

// Pipeline resolves media references during conversion and performs the
// actual downloads, either inline or from a background task.
type Pipeline struct {
	registry   *mediadb.Repository
	dir        string
	baseURL    string
	httpClient *http.Client
	deferFn    DeferFunc
}

// NewPipeline creates a media pipeline storing files under dir, served
// publicly under baseURL.
func NewPipeline(registry *mediadb.Repository, dir, baseURL string) (*Pipeline, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}

	return &Pipeline{
		registry: registry,
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SetDeferFunc installs the background enqueue hook. Without one, pending
// assets simply keep their source URL until a later sync.
func (p *Pipeline) SetDeferFunc(fn DeferFunc) {
	p.deferFn = fn
}

// ShouldMirror reports whether a URL points at Notion-hosted storage and
// therefore expires. Third-party URLs are stable and not mirrored.
func ShouldMirror(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}

	host := strings.ToLower(parsed.Host)
	switch {
	case strings.HasSuffix(host, "secure.notion-static.com"):
		return true
	case host == "file.notion.so":
		return true
	case strings.HasSuffix(host, "amazonaws.com"):
		return strings.Contains(rawURL, "notion-static") ||
			strings.Contains(host, "prod-files-secure")
	}
	return false
}

// Reference implements convert.MediaResolver. It returns a local URL for
// already-mirrored assets; for expiring assets not yet mirrored it
// registers them, defers a download and returns the source URL as the
// placeholder state. Conversion never blocks on a download.
func (p *Pipeline) Reference(blockID, pageID, sourceURL string) string {
	if sourceURL == "" || !ShouldMirror(sourceURL) {
		return sourceURL
	}

	asset, err := p.registry.Find(blockID)
	if err != nil {
		log.Printf("Media registry lookup failed for block %s: %v", blockID, err)
		return sourceURL
	}
	if asset != nil && asset.Status == entities.MediaStatusStored {
		return asset.LocalURL
	}

	if err := p.registry.RegisterPending(blockID, pageID, sourceURL); err != nil {
		log.Printf("Failed to register media asset for block %s: %v", blockID, err)
		return sourceURL
	}
	if p.deferFn != nil {
		p.deferFn(notion.NormalizeID(blockID))
	}
	return sourceURL
}

// Download fetches the registered asset for a block and stores it locally.
// Already-stored assets return immediately; this is the property that makes
// background retries safe. The returned error is left for the scheduler's
// retry policy.
func (p *Pipeline) Download(ctx context.Context, sourceBlockID string) error {
	asset, err := p.registry.Find(sourceBlockID)
	if err != nil {
		return fmt.Errorf("media registry lookup: %w", err)
	}
	if asset == nil {
		return fmt.Errorf("no media asset registered for block %s", sourceBlockID)
	}
	if asset.Status == entities.MediaStatusStored {
		return nil
	}

	filename := assetFilename(asset.SourceBlockID, asset.SourceURL)
	localPath := filepath.Join(p.dir, filename)

	if err := p.fetchToFile(ctx, asset.SourceURL, localPath); err != nil {
		if markErr := p.registry.MarkFailed(asset.SourceBlockID, err.Error()); markErr != nil {
			log.Printf("Failed to record media failure for block %s: %v", asset.SourceBlockID, markErr)
		}
		return fmt.Errorf("download media for block %s: %w", asset.SourceBlockID, err)
	}

	localURL := p.baseURL + "/" + filename
	if err := p.registry.MarkStored(asset.SourceBlockID, localPath, localURL); err != nil {
		return fmt.Errorf("record stored media for block %s: %w", asset.SourceBlockID, err)
	}
	return nil
}

// RewriteContent replaces source URLs with local URLs for every stored
// asset of a page, matching fragments by their embedded block ID marker.
// Content for assets still pending is returned unchanged.
func (p *Pipeline) RewriteContent(sourcePageID, content string) (string, bool) {
	assets, err := p.registry.ForPage(sourcePageID)
	if err != nil {
		log.Printf("Media registry scan failed for page %s: %v", sourcePageID, err)
		return content, false
	}

	changed := false
	for _, asset := range assets {
		if asset.Status != entities.MediaStatusStored || asset.LocalURL == "" {
			continue
		}
		marker := `data-notion-block="` + asset.SourceBlockID + `"`
		if !strings.Contains(content, marker) {
			continue
		}
		pattern := regexp.MustCompile(`src="[^"]*"([^>]*` + regexp.QuoteMeta(marker) + `)`)
		rewritten := pattern.ReplaceAllString(content, `src="`+escapeAttr(asset.LocalURL)+`"$1`)
		if rewritten != content {
			content = rewritten
			changed = true
		}
	}
	return content, changed
}

// escapeAttr matches the attribute escaping used at conversion time.
func escapeAttr(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&#34;", "'", "&#39;")
	return replacer.Replace(s)
}

// assetFilename builds a stable unique filename from the block ID and a
// hash of the URL path (ignoring its rotating query signature).
func assetFilename(blockID, sourceURL string) string {
	base := sourceURL
	if parsed, err := url.Parse(sourceURL); err == nil {
		base = parsed.Host + parsed.Path
	}
	hash := sha256.Sum256([]byte(base))

	ext := path.Ext(base)
	if len(ext) > 10 || strings.ContainsAny(ext, "%&?=") {
		ext = ""
	}
	return fmt.Sprintf("media_%s_%x%s", blockID, hash[:8], ext)
}

func (p *Pipeline) fetchToFile(ctx context.Context, rawURL, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch media: status %d", resp.StatusCode)
	}

	// Write to a temp file in the same directory for an atomic rename
	tmpFile, err := os.CreateTemp(p.dir, "media_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return err
	}
	tmpFile.Close()

	return os.Rename(tmpPath, localPath)
}
