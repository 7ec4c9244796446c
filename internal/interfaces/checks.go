package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/thevgergroup/notion-wp-sub002/internal/batch"
	"github.com/thevgergroup/notion-wp-sub002/internal/convert"
	"github.com/thevgergroup/notion-wp-sub002/internal/fetcher"
	"github.com/thevgergroup/notion-wp-sub002/internal/http"
	"github.com/thevgergroup/notion-wp-sub002/internal/media"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
	"github.com/thevgergroup/notion-wp-sub002/internal/resolver"
	"github.com/thevgergroup/notion-wp-sub002/internal/syncer"
	"github.com/thevgergroup/notion-wp-sub002/internal/tasks"
	"github.com/thevgergroup/notion-wp-sub002/internal/wordpress"
)

// =============================================================================
// Source and Destination Clients
// =============================================================================

// SourceAPI implementations
var _ fetcher.SourceAPI = (*notion.Client)(nil)

// TokenProvider implementations
var _ notion.TokenProvider = notion.StaticToken("")

// Store implementations
var _ wordpress.Store = (*wordpress.Client)(nil)

// =============================================================================
// Conversion
// =============================================================================

// LinkResolver implementations
var _ convert.LinkResolver = (*resolver.Resolver)(nil)

// MediaResolver implementations
var _ convert.MediaResolver = (*media.Pipeline)(nil)

// =============================================================================
// HTTP Layer
// =============================================================================

// PageSyncer implementations
var _ http.PageSyncer = (*syncer.Manager)(nil)

// PageLister implementations
var _ http.PageLister = (*fetcher.ContentFetcher)(nil)

// BatchService implementations
var _ http.BatchService = (*batch.Processor)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

// BatchRunner implementations
var _ tasks.BatchRunner = (*batch.Processor)(nil)

// MediaMirrorer implementations
var _ tasks.MediaMirrorer = (*media.Refresher)(nil)
