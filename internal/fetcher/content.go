// Package fetcher turns the raw Notion API surface into flat, fully
// paginated content: page metadata, ordered block lists and normalized
// database rows.
package fetcher

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

const (
	// maxFetchIterations bounds the pagination loop. At 100 blocks per
	// call this allows roughly 5,000 blocks per page; anything beyond
	// that is treated as API misbehavior rather than real content.
	maxFetchIterations = 50

	maxPagesList = 100
)

// SourceAPI is the slice of the Notion client the fetchers need.
type SourceAPI interface {
	GetPage(ctx context.Context, pageID string) (*notion.Page, error)
	GetBlockChildren(ctx context.Context, blockID, cursor string) (*notion.BlockListResponse, error)
	GetDatabase(ctx context.Context, databaseID string) (*notion.Database, error)
	QueryDatabase(ctx context.Context, databaseID, cursor string) (*notion.QueryResponse, error)
	Search(ctx context.Context, limit int) (*notion.SearchResponse, error)
}

// PageProperties is the metadata of one page, with the title already
// extracted from its title-typed property.
type PageProperties struct {
	ID             string
	Title          string
	IconEmoji      string
	IconURL        string
	CoverURL       string
	URL            string
	CreatedTime    time.Time
	LastEditedTime time.Time
}

// PageSummary is one entry of the recent-pages listing.
type PageSummary struct {
	ID             string
	Title          string
	URL            string
	LastEditedTime time.Time
}

// ContentFetcher fetches page metadata and flattens block trees.
type ContentFetcher struct {
	api SourceAPI
}

// NewContentFetcher creates a content fetcher over the given API client.
func NewContentFetcher(api SourceAPI) *ContentFetcher {
	return &ContentFetcher{api: api}
}

// PageProperties fetches a page's metadata. Unlike block fetching this
// fails explicitly: a missing page must be distinguishable from an empty
// one.
func (f *ContentFetcher) PageProperties(ctx context.Context, pageID string) (*PageProperties, error) {
	page, err := f.api.GetPage(ctx, notion.NormalizeID(pageID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page properties: %w", err)
	}

	props := &PageProperties{
		ID:             notion.NormalizeID(page.ID),
		Title:          extractTitle(page.Properties),
		URL:            page.URL,
		CreatedTime:    page.CreatedTime,
		LastEditedTime: page.LastEditedTime,
	}
	if page.Icon != nil {
		props.IconEmoji = page.Icon.Emoji
		props.IconURL = page.Icon.URL()
	}
	if page.Cover != nil {
		props.CoverURL = page.Cover.URL()
	}
	return props, nil
}

// PageBlocks fetches all top-level blocks of a page in order, following the
// continuation cursor until exhaustion. Fetch failures degrade to whatever
// was collected so far; the iteration cap stops cyclic or endless
// pagination.
func (f *ContentFetcher) PageBlocks(ctx context.Context, pageID string) []notion.Block {
	var blocks []notion.Block
	var cursor string

	for i := 0; ; i++ {
		if i >= maxFetchIterations {
			log.Printf("WARNING: block fetch for page %s stopped after %d iterations (%d blocks); possible pagination loop",
				pageID, maxFetchIterations, len(blocks))
			break
		}

		resp, err := f.api.GetBlockChildren(ctx, pageID, cursor)
		if err != nil {
			log.Printf("Failed to fetch blocks for page %s: %v", pageID, err)
			break
		}

		blocks = append(blocks, resp.Results...)

		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		cursor = *resp.NextCursor
	}

	return blocks
}

// ListPages returns up to limit recently edited pages, newest first.
// Failures degrade to an empty list.
func (f *ContentFetcher) ListPages(ctx context.Context, limit int) []PageSummary {
	if limit <= 0 || limit > maxPagesList {
		limit = maxPagesList
	}

	resp, err := f.api.Search(ctx, limit)
	if err != nil {
		log.Printf("Failed to list pages: %v", err)
		return nil
	}

	summaries := make([]PageSummary, 0, len(resp.Results))
	for _, page := range resp.Results {
		summaries = append(summaries, PageSummary{
			ID:             notion.NormalizeID(page.ID),
			Title:          extractTitle(page.Properties),
			URL:            page.URL,
			LastEditedTime: page.LastEditedTime,
		})
	}
	return summaries
}

// extractTitle pulls the plain text of the title-typed property.
func extractTitle(props map[string]notion.PropertyValue) string {
	for _, value := range props {
		if value.Type == "title" {
			return notion.PlainText(value.Title)
		}
	}
	return ""
}
