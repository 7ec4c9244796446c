// Package resolver turns Notion document IDs into site URLs using the link
// registry.
//
// Resolution happens at conversion time. Links to documents that are not
// yet synced resolve to this service's stable /go/<source_id> redirect
// route instead of a final permalink; the route answers live from the
// registry, so referring documents never need re-conversion when their
// target syncs later.
package resolver

import (
	"fmt"
	"log"
	"strings"

	linksdb "github.com/thevgergroup/notion-wp-sub002/internal/database/links"
	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// Resolver resolves source document IDs against the link registry.
type Resolver struct {
	registry   *linksdb.Repository
	siteURL    string
	serviceURL string
}

// NewResolver creates a resolver. siteURL is the WordPress base URL,
// serviceURL the public base of this service (for the /go redirect route).
func NewResolver(registry *linksdb.Repository, siteURL, serviceURL string) *Resolver {
	return &Resolver{
		registry:   registry,
		siteURL:    strings.TrimRight(siteURL, "/"),
		serviceURL: strings.TrimRight(serviceURL, "/"),
	}
}

// Resolve implements convert.LinkResolver. Synced documents get their real
// permalink; pending ones get the stable redirect route. Registry failures
// degrade to the redirect route as well.
func (r *Resolver) Resolve(sourceID string) string {
	id := notion.NormalizeID(sourceID)
	if id == "" {
		return ""
	}

	entry, err := r.registry.Get(id)
	if err != nil {
		log.Printf("Link registry lookup failed for %s: %v", id, err)
		return r.pendingURL(id)
	}
	if entry == nil || entry.SyncStatus != entities.LinkStatusSynced {
		return r.pendingURL(id)
	}
	return r.PermalinkFor(entry)
}

// PermalinkFor builds the WordPress URL of a synced entry: the slug path
// when a slug is known, the post-ID query form otherwise.
func (r *Resolver) PermalinkFor(entry *entities.LinkEntry) string {
	if entry.Slug != nil && *entry.Slug != "" {
		return r.siteURL + "/" + *entry.Slug + "/"
	}
	if entry.PostID != nil {
		return fmt.Sprintf("%s/?p=%d", r.siteURL, *entry.PostID)
	}
	return r.pendingURL(entry.SourceID)
}

// Lookup returns the registry entry for a source ID, nil when unknown.
func (r *Resolver) Lookup(sourceID string) (*entities.LinkEntry, error) {
	return r.registry.Get(sourceID)
}

func (r *Resolver) pendingURL(id string) string {
	return r.serviceURL + "/go/" + id
}
