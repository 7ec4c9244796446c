package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/thevgergroup/notion-wp-sub002/internal/config"
	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
	"github.com/thevgergroup/notion-wp-sub002/internal/entrypoint"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// SyncPageCommand syncs a single Notion page into WordPress
type SyncPageCommand struct {
	PageID    string
	SkipMedia bool
	Verbose   bool
}

// NewSyncPageCommand creates a new SyncPageCommand
func NewSyncPageCommand() *SyncPageCommand {
	return &SyncPageCommand{}
}

// ParseFlags parses command line flags
func (cmd *SyncPageCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("sync-page", flag.ExitOnError)

	fs.StringVar(&cmd.PageID, "page", "", "Notion page ID or URL suffix to sync (required)")
	fs.BoolVar(&cmd.SkipMedia, "skip-media", false, "Leave media pointing at source URLs instead of mirroring")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s sync-page [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Sync one Notion page into WordPress as a draft post.\n\n")
		fmt.Fprintf(os.Stderr, "This command:\n")
		fmt.Fprintf(os.Stderr, "  1. Fetches the page and all its top-level blocks\n")
		fmt.Fprintf(os.Stderr, "  2. Converts them to Gutenberg block markup\n")
		fmt.Fprintf(os.Stderr, "  3. Creates or updates the matching WordPress post\n")
		fmt.Fprintf(os.Stderr, "  4. Mirrors referenced media locally and refreshes the post\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s sync-page -page 7f1a9c2e3b4d5e6f7a8b9c0d1e2f3a4b\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s sync-page -page 7f1a9c2e-3b4d-5e6f-7a8b-9c0d1e2f3a4b -skip-media\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.PageID == "" {
		fs.Usage()
		return fmt.Errorf("-page is required")
	}

	return nil
}

// Run executes the sync command
func (cmd *SyncPageCommand) Run() error {
	fmt.Println("📄 Page Sync")
	fmt.Println("============")

	cfg := config.NewConfig()
	app, err := entrypoint.BuildApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	pageID := notion.NormalizeID(cmd.PageID)

	fmt.Printf("🔄 Syncing page %s...\n", pageID)

	result := app.Manager.SyncPage(ctx, cmd.PageID)
	if !result.Success {
		return fmt.Errorf("sync failed (%s): %s", result.ErrorKind, result.Error)
	}

	action := "Updated"
	if result.Created {
		action = "Created"
	}
	fmt.Printf("✅ %s WordPress post %d\n", action, result.PostID)

	if cmd.SkipMedia {
		fmt.Println("⏭️  Skipping media mirroring (-skip-media)")
		return nil
	}

	return cmd.mirrorMedia(ctx, app, pageID)
}

// mirrorMedia downloads every pending asset the sync registered and
// rewrites the post in place of the background queue.
func (cmd *SyncPageCommand) mirrorMedia(ctx context.Context, app *entrypoint.App, pageID string) error {
	assets, err := app.MediaRepo.ForPage(pageID)
	if err != nil {
		return fmt.Errorf("failed to list media assets: %w", err)
	}

	pending := 0
	for _, asset := range assets {
		if asset.Status != entities.MediaStatusPending {
			continue
		}
		pending++
		if cmd.Verbose {
			fmt.Printf("  📥 %s\n", asset.SourceURL)
		}
		if err := app.Refresher.MirrorAndRefresh(ctx, asset.SourceBlockID); err != nil {
			fmt.Printf("  ⚠️  Failed to mirror block %s: %v\n", asset.SourceBlockID, err)
		}
	}

	if pending == 0 {
		fmt.Println("ℹ️  No media to mirror")
	} else {
		fmt.Printf("🖼️  Mirrored %d media assets\n", pending)
	}

	fmt.Println("\n✅ Sync complete!")
	return nil
}
