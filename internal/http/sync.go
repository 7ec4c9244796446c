package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thevgergroup/notion-wp-sub002/internal/fetcher"
	"github.com/thevgergroup/notion-wp-sub002/internal/syncer"
)

// PageSyncer defines the sync operations this controller exposes.
type PageSyncer interface {
	SyncPage(ctx context.Context, pageID string) syncer.Result
	Status(sourcePageID string) (syncer.Status, error)
}

// PageLister lists recently edited source pages.
type PageLister interface {
	ListPages(ctx context.Context, limit int) []fetcher.PageSummary
}

type SyncController struct {
	syncer PageSyncer
	lister PageLister
}

func NewSyncController(syncer PageSyncer, lister PageLister) *SyncController {
	return &SyncController{syncer: syncer, lister: lister}
}

// SyncPage syncs one Notion page into WordPress
// POST /api/sync/pages/:id
func (sc *SyncController) SyncPage(c *gin.Context) {
	result := sc.syncer.SyncPage(c.Request.Context(), c.Param("id"))
	if !result.Success {
		status := http.StatusBadGateway
		if result.ErrorKind == syncer.ErrorKindValidation {
			status = http.StatusBadRequest
		}
		c.JSON(status, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PageStatus reports whether a page has been synced
// GET /api/sync/pages/:id/status
func (sc *SyncController) PageStatus(c *gin.Context) {
	status, err := sc.syncer.Status(c.Param("id"))
	if err != nil {
		respondInternalError(c, err, "page status lookup")
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListPages lists recently edited source pages
// GET /api/pages
func (sc *SyncController) ListPages(c *gin.Context) {
	limit := 100
	pages := sc.lister.ListPages(c.Request.Context(), limit)
	c.JSON(http.StatusOK, gin.H{"pages": pages, "count": len(pages)})
}
