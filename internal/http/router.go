package http

import (
	"github.com/gin-gonic/gin"

	"github.com/thevgergroup/notion-wp-sub002/internal/database"
	"github.com/thevgergroup/notion-wp-sub002/internal/resolver"
)

// RouterConfig carries the dependencies of every controller. Passing them
// as one struct keeps NewRouter testable and its signature stable.
type RouterConfig struct {
	DB       *database.Database
	Syncer   PageSyncer
	Lister   PageLister
	Batches  BatchService
	Resolver *resolver.Resolver
	MediaDir string
	Version  string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthController := NewHealthController(cfg.DB, cfg.MediaDir, cfg.Version)
	syncController := NewSyncController(cfg.Syncer, cfg.Lister)
	batchController := NewBatchController(cfg.Batches)
	linksController := NewLinksController(cfg.Resolver)

	router.GET("/health", healthController.Status)

	// Public link-resolver route; internal links in converted content
	// point here until their target is synced.
	router.GET("/go/:source_id", linksController.Go)

	// Mirrored media files
	if cfg.MediaDir != "" {
		router.Static("/media", cfg.MediaDir)
	}

	api := router.Group("/api")
	{
		api.GET("/pages", syncController.ListPages)
		api.POST("/sync/pages/:id", syncController.SyncPage)
		api.GET("/sync/pages/:id/status", syncController.PageStatus)
		api.POST("/sync/databases/:id", batchController.SyncDatabase)
		api.GET("/batches/:parent_id", batchController.Status)
		api.DELETE("/batches/:batch_id", batchController.Cancel)
	}

	return router
}
