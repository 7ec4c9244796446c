package media

import (
	"context"
	"fmt"
	"log"

	mediadb "github.com/thevgergroup/notion-wp-sub002/internal/database/media"
	"github.com/thevgergroup/notion-wp-sub002/internal/database/syncindex"
	"github.com/thevgergroup/notion-wp-sub002/internal/wordpress"
)

// Refresher completes the two-phase media design: download the asset, then
// swap the stored local reference into the post that still embeds the
// expiring source URL.
type Refresher struct {
	pipeline  *Pipeline
	registry  *mediadb.Repository
	syncIndex *syncindex.Repository
	store     wordpress.Store
}

// NewRefresher creates a media refresher.
func NewRefresher(pipeline *Pipeline, registry *mediadb.Repository, syncIndex *syncindex.Repository, store wordpress.Store) *Refresher {
	return &Refresher{
		pipeline:  pipeline,
		registry:  registry,
		syncIndex: syncIndex,
		store:     store,
	}
}

// MirrorAndRefresh downloads one asset and rewrites the referencing post's
// content. Safe to retry: the download is idempotent and the rewrite is a
// no-op once the local reference is in place.
func (r *Refresher) MirrorAndRefresh(ctx context.Context, sourceBlockID string) error {
	if err := r.pipeline.Download(ctx, sourceBlockID); err != nil {
		return err
	}

	asset, err := r.registry.Find(sourceBlockID)
	if err != nil {
		return fmt.Errorf("media registry lookup: %w", err)
	}
	if asset == nil || asset.SourcePageID == "" {
		return nil
	}

	record, err := r.syncIndex.Find(asset.SourcePageID)
	if err != nil {
		return fmt.Errorf("sync record lookup: %w", err)
	}
	if record == nil {
		// Page never finished syncing; the next sync picks up the
		// stored asset directly.
		return nil
	}

	post, err := r.store.GetPost(ctx, record.PostID)
	if err != nil {
		return fmt.Errorf("fetch post %d: %w", record.PostID, err)
	}

	content, changed := r.pipeline.RewriteContent(asset.SourcePageID, post.Content)
	if !changed {
		return nil
	}

	if _, err := r.store.UpdatePost(ctx, post.ID, post.Title, content); err != nil {
		return fmt.Errorf("update post %d: %w", post.ID, err)
	}

	log.Printf("Refreshed media references in post %d for page %s", post.ID, asset.SourcePageID)
	return nil
}
