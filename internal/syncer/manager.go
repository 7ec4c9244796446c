// Package syncer orchestrates single-page syncs: fetch, convert, duplicate
// detection and the create-or-update write into WordPress.
//
// SyncPage is the "never throw past the boundary" point of the pipeline:
// whatever goes wrong inside, callers always get a structured Result, so
// batch code can drive hundreds of syncs in a tight loop without guarding
// each one.
package syncer

import (
	"context"
	"log"

	"github.com/thevgergroup/notion-wp-sub002/internal/convert"
	linksdb "github.com/thevgergroup/notion-wp-sub002/internal/database/links"
	"github.com/thevgergroup/notion-wp-sub002/internal/database/syncindex"
	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
	"github.com/thevgergroup/notion-wp-sub002/internal/fetcher"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
	"github.com/thevgergroup/notion-wp-sub002/internal/wordpress"
)

// Manager drives page syncs end to end.
type Manager struct {
	content   *fetcher.ContentFetcher
	registry  *convert.Registry
	links     *linksdb.Repository
	syncIndex *syncindex.Repository
	store     wordpress.Store
	resolver  convert.LinkResolver
	media     convert.MediaResolver
}

// NewManager wires a sync manager from its collaborators.
func NewManager(
	content *fetcher.ContentFetcher,
	registry *convert.Registry,
	links *linksdb.Repository,
	syncIndex *syncindex.Repository,
	store wordpress.Store,
	linkResolver convert.LinkResolver,
	mediaResolver convert.MediaResolver,
) *Manager {
	return &Manager{
		content:   content,
		registry:  registry,
		links:     links,
		syncIndex: syncIndex,
		store:     store,
		resolver:  linkResolver,
		media:     mediaResolver,
	}
}

// SyncPage syncs one Notion page into WordPress. The second sync of the
// same page updates the post created by the first; posts are always
// written as drafts.
func (m *Manager) SyncPage(ctx context.Context, pageID string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC during sync of page %s: %v", pageID, r)
			result = failure(ErrorKindInternal, "Internal error during sync")
		}
	}()

	if !notion.ValidID(pageID) {
		return failure(ErrorKindValidation, "Invalid page ID")
	}
	id := notion.NormalizeID(pageID)

	props, err := m.content.PageProperties(ctx, id)
	if err != nil {
		log.Printf("Sync of page %s failed at fetch: %v", id, err)
		return failure(ErrorKindFetch, "Failed to fetch page properties")
	}

	// An empty block list is a valid empty page here; a missing page
	// already failed above.
	blocks := m.content.PageBlocks(ctx, id)

	title := props.Title
	if title == "" {
		title = "Untitled"
	}

	// Register discovery before converting so self-references resolve.
	if err := m.links.RegisterPending(id, title, entities.SourceTypePage); err != nil {
		log.Printf("Failed to register page %s in link registry: %v", id, err)
	}

	existing, err := m.syncIndex.Find(id)
	if err != nil {
		log.Printf("Sync of page %s failed at duplicate detection: %v", id, err)
		return failure(ErrorKindWrite, "Failed to query sync records")
	}

	content, err := m.registry.ConvertAll(blocks, &convert.Context{
		PageID: id,
		Links:  m.resolver,
		Media:  m.media,
	})
	if err != nil {
		log.Printf("Sync of page %s failed at conversion: %v", id, err)
		m.markError(id)
		return failure(ErrorKindConversion, "Failed to convert page content")
	}

	var post *wordpress.Post
	created := false
	if existing != nil {
		post, err = m.store.UpdatePost(ctx, existing.PostID, title, content)
	} else {
		post, err = m.store.CreatePost(ctx, title, content)
		created = true
	}
	if err != nil {
		log.Printf("Sync of page %s failed at write: %v", id, err)
		m.markError(id)
		return failure(ErrorKindWrite, "Failed to write post")
	}

	if err := m.syncIndex.Upsert(id, post.ID, props.LastEditedTime); err != nil {
		log.Printf("Sync of page %s failed persisting sync record: %v", id, err)
		m.markError(id)
		return failure(ErrorKindWrite, "Failed to persist sync record")
	}

	if err := m.links.MarkSynced(id, title, entities.SourceTypePage, post.ID, "post", post.Slug); err != nil {
		log.Printf("Failed to mark page %s synced in link registry: %v", id, err)
	}

	return Result{Success: true, PostID: post.ID, Created: created}
}

// Status reports whether a page has been synced and where, without
// touching the source API.
func (m *Manager) Status(sourcePageID string) (Status, error) {
	record, err := m.syncIndex.Find(sourcePageID)
	if err != nil {
		return Status{}, err
	}
	if record == nil {
		return Status{}, nil
	}
	lastSynced := record.LastSyncedAt
	return Status{
		IsSynced:     true,
		PostID:       record.PostID,
		LastSyncedAt: &lastSynced,
	}, nil
}

func (m *Manager) markError(id string) {
	if err := m.links.MarkError(id); err != nil {
		log.Printf("Failed to mark link entry %s errored: %v", id, err)
	}
}
