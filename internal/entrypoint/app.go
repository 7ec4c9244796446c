package entrypoint

import (
	"fmt"

	"github.com/thevgergroup/notion-wp-sub002/internal/batch"
	"github.com/thevgergroup/notion-wp-sub002/internal/config"
	"github.com/thevgergroup/notion-wp-sub002/internal/convert"
	"github.com/thevgergroup/notion-wp-sub002/internal/database"
	batchesdb "github.com/thevgergroup/notion-wp-sub002/internal/database/batches"
	linksdb "github.com/thevgergroup/notion-wp-sub002/internal/database/links"
	mediadb "github.com/thevgergroup/notion-wp-sub002/internal/database/media"
	rowsdb "github.com/thevgergroup/notion-wp-sub002/internal/database/rows"
	"github.com/thevgergroup/notion-wp-sub002/internal/database/syncindex"
	"github.com/thevgergroup/notion-wp-sub002/internal/fetcher"
	"github.com/thevgergroup/notion-wp-sub002/internal/media"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
	"github.com/thevgergroup/notion-wp-sub002/internal/resolver"
	"github.com/thevgergroup/notion-wp-sub002/internal/syncer"
	"github.com/thevgergroup/notion-wp-sub002/internal/wordpress"
)

// App holds the wired core components shared by the HTTP server and the
// CLI commands.
type App struct {
	Config *config.Config
	DB     *database.Database

	SyncIndex *syncindex.Repository
	Links     *linksdb.Repository
	Rows      *rowsdb.Repository
	MediaRepo *mediadb.Repository
	Batches   *batchesdb.Repository

	Notion    *notion.Client
	Content   *fetcher.ContentFetcher
	Databases *fetcher.DatabaseFetcher
	Store     wordpress.Store

	Pipeline  *media.Pipeline
	Refresher *media.Refresher
	Resolver  *resolver.Resolver
	Registry  *convert.Registry
	Manager   *syncer.Manager
	Processor *batch.Processor
}

// BuildApp wires the core pipeline from configuration. The task queue and
// HTTP layer are attached separately by the server entrypoint; CLI
// commands drive the components directly.
func BuildApp(cfg *config.Config) (*App, error) {
	if cfg.Notion.Token == "" {
		return nil, fmt.Errorf("NOTION_TOKEN is not set")
	}
	if cfg.WordPress.URL == "" {
		return nil, fmt.Errorf("WORDPRESS_URL is not set")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := &App{
		Config:    cfg,
		DB:        db,
		SyncIndex: syncindex.NewRepository(db.DB),
		Links:     linksdb.NewRepository(db.DB),
		Rows:      rowsdb.NewRepository(db.DB),
		MediaRepo: mediadb.NewRepository(db.DB),
		Batches:   batchesdb.NewRepository(db.DB),
	}

	app.Notion = notion.NewClient(notion.StaticToken(cfg.Notion.Token))
	app.Notion.SetAPIVersion(cfg.Notion.APIVersion)
	app.Content = fetcher.NewContentFetcher(app.Notion)
	app.Databases = fetcher.NewDatabaseFetcher(app.Notion)
	app.Store = wordpress.NewClient(cfg.WordPress.URL, cfg.WordPress.Username, cfg.WordPress.AppPassword)

	mediaBase := cfg.Media.BaseURL
	if mediaBase == "" || mediaBase[0] == '/' {
		mediaBase = cfg.Global.PublicBaseURL + cfg.Media.BaseURL
	}
	app.Pipeline, err = media.NewPipeline(app.MediaRepo, cfg.Media.Dir, mediaBase)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize media pipeline: %w", err)
	}
	app.Refresher = media.NewRefresher(app.Pipeline, app.MediaRepo, app.SyncIndex, app.Store)

	app.Resolver = resolver.NewResolver(app.Links, cfg.WordPress.URL, cfg.Global.PublicBaseURL)
	app.Registry = convert.NewRegistry()
	app.Manager = syncer.NewManager(app.Content, app.Registry, app.Links, app.SyncIndex, app.Store, app.Resolver, app.Pipeline)
	app.Processor = batch.NewProcessor(app.Databases, app.Rows, app.Batches, app.Links, cfg.Batch.Size)

	return app, nil
}

// Close releases the app's resources.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
