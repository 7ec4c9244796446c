package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/thevgergroup/notion-wp-sub002/internal/config"
	"github.com/thevgergroup/notion-wp-sub002/internal/entrypoint"
)

// SyncDatabaseCommand syncs all rows of a Notion database into the local
// row store, running the batches inline instead of on the queue.
type SyncDatabaseCommand struct {
	DatabaseID string
	Verbose    bool
}

// NewSyncDatabaseCommand creates a new SyncDatabaseCommand
func NewSyncDatabaseCommand() *SyncDatabaseCommand {
	return &SyncDatabaseCommand{}
}

// ParseFlags parses command line flags
func (cmd *SyncDatabaseCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync-database", flag.ExitOnError)

	fs.StringVar(&cmd.DatabaseID, "database", "", "Notion database ID to sync (required)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync-database [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Sync all rows of a Notion database into the local row store.\n\n")
		fmt.Fprintf(os.Stderr, "This command:\n")
		fmt.Fprintf(os.Stderr, "  1. Fetches the database schema and registers it for link resolution\n")
		fmt.Fprintf(os.Stderr, "  2. Queries every row through cursor pagination\n")
		fmt.Fprintf(os.Stderr, "  3. Upserts rows batch by batch, tracking progress like the server does\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sync-database -database 1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync-database -database 1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.DatabaseID == "" {
		fs.Usage()
		return fmt.Errorf("-database is required")
	}

	return nil
}

// Run executes the database sync command
func (cmd *SyncDatabaseCommand) Run() error {
	fmt.Println("🗄️  Database Sync")
	fmt.Println("================")

	cfg := config.NewConfig()
	app, err := entrypoint.BuildApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()

	// Batches run inline: each enqueue call processes its batch before
	// returning, so the chain unwinds synchronously in order.
	app.Processor.SetEnqueuer(func(batchID, parentDocumentID string, batchNumber, totalBatches int) error {
		if cmd.Verbose {
			fmt.Printf("  🔄 Batch %d/%d...\n", batchNumber, totalBatches)
		}
		return app.Processor.ProcessBatch(ctx, batchID, parentDocumentID, batchNumber, totalBatches)
	})

	fmt.Printf("🔍 Fetching database %s...\n", cmd.DatabaseID)

	batchID, totalItems, err := app.Processor.SyncDatabase(ctx, cmd.DatabaseID)
	if err != nil {
		return err
	}

	if totalItems == 0 {
		fmt.Println("ℹ️  Database has no rows")
		return nil
	}

	job, err := app.Processor.Status(cmd.DatabaseID)
	if err != nil {
		return fmt.Errorf("failed to read batch status: %w", err)
	}
	if job != nil && job.BatchID == batchID {
		fmt.Printf("💾 Synced %d/%d rows (%s)\n", job.ProcessedItems, job.TotalItems, job.Status)
	}

	fmt.Println("\n✅ Sync complete!")
	return nil
}
