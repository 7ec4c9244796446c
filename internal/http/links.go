package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
	"github.com/thevgergroup/notion-wp-sub002/internal/resolver"
)

type LinksController struct {
	resolver *resolver.Resolver
}

func NewLinksController(r *resolver.Resolver) *LinksController {
	return &LinksController{resolver: r}
}

// Go redirects a source document ID to its synced WordPress URL. This is
// the stable route internal links resolve to while their target is still
// pending.
// GET /go/:source_id
func (lc *LinksController) Go(c *gin.Context) {
	entry, err := lc.resolver.Lookup(c.Param("source_id"))
	if err != nil {
		respondInternalError(c, err, "link lookup")
		return
	}
	if entry == nil {
		respondNotFound(c, "Unknown document")
		return
	}
	if entry.SyncStatus != entities.LinkStatusSynced {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Document not yet synced",
			Code:  "pending",
		})
		return
	}
	c.Redirect(http.StatusFound, lc.resolver.PermalinkFor(entry))
}
