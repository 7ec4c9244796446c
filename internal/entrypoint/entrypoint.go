package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thevgergroup/notion-wp-sub002/internal/config"
	http_controllers "github.com/thevgergroup/notion-wp-sub002/internal/http"
	"github.com/thevgergroup/notion-wp-sub002/internal/scheduler"
	"github.com/thevgergroup/notion-wp-sub002/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	// Wait for interrupt signal to gracefully shutdown the server with
	// a timeout of 1 second.
	quit := make(chan os.Signal, 1)
	// kill (no param) default send syscanll.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall. SIGKILL but can"t be catch, so don't need add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting notion-wp sync v%s", version)

	app, err := BuildApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewSyncBatchQueue(app.Processor),
			tasks.NewMirrorMediaQueue(app.Refresher),
		)

		// Route batch continuations and media downloads through the queue
		app.Processor.SetEnqueuer(func(batchID, parentDocumentID string, batchNumber, totalBatches int) error {
			_, err := taskClient.Add(tasks.SyncBatchTask{
				BatchID:          batchID,
				ParentDocumentID: parentDocumentID,
				BatchNumber:      batchNumber,
				TotalBatches:     totalBatches,
			}).Save()
			return err
		})
		app.Pipeline.SetDeferFunc(func(sourceBlockID string) {
			if _, err := taskClient.Add(tasks.MirrorMediaTask{SourceBlockID: sourceBlockID}).Save(); err != nil {
				log.Printf("Failed to enqueue media download for block %s: %v", sourceBlockID, err)
			}
		})

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	} else {
		// Without the queue, media assets stay pending and batch syncs run
		// their first batch inline
		app.Processor.SetEnqueuer(func(batchID, parentDocumentID string, batchNumber, totalBatches int) error {
			go func() {
				if err := app.Processor.ProcessBatch(context.Background(), batchID, parentDocumentID, batchNumber, totalBatches); err != nil {
					log.Printf("Batch %d/%d for %s failed: %v", batchNumber, totalBatches, parentDocumentID, err)
				}
			}()
			return nil
		})
	}

	// Scheduled re-sync of already-synced pages
	resync := scheduler.NewResyncScheduler(app.Manager, app.SyncIndex, app.Content, cfg.Resync.Schedule, cfg.Resync.Enabled)
	if err := resync.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start re-sync scheduler: %v", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		DB:       app.DB,
		Syncer:   app.Manager,
		Lister:   app.Content,
		Batches:  app.Processor,
		Resolver: app.Resolver,
		MediaDir: cfg.Media.Dir,
		Version:  version,
	})

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		resync.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
