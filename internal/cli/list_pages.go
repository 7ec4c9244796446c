package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/thevgergroup/notion-wp-sub002/internal/config"
	"github.com/thevgergroup/notion-wp-sub002/internal/entrypoint"
)

// ListPagesCommand lists recently edited Notion pages the integration can see
type ListPagesCommand struct {
	Limit   int
	Verbose bool
}

// NewListPagesCommand creates a new ListPagesCommand
func NewListPagesCommand() *ListPagesCommand {
	return &ListPagesCommand{}
}

// ParseFlags parses command line flags
func (cmd *ListPagesCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("pages", flag.ExitOnError)

	fs.IntVar(&cmd.Limit, "limit", 25, "Maximum number of pages to list (up to 100)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Also show page URLs")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s pages [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List pages shared with the integration, most recently edited first.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s pages\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s pages -limit 100 -verbose\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the list command
func (cmd *ListPagesCommand) Run() error {
	cfg := config.NewConfig()
	app, err := entrypoint.BuildApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	pages := app.Content.ListPages(context.Background(), cmd.Limit)
	if len(pages) == 0 {
		fmt.Println("ℹ️  No pages visible to the integration")
		return nil
	}

	fmt.Printf("📚 %d pages:\n", len(pages))
	for _, page := range pages {
		title := page.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("  📄 %s  %s  (edited %s)\n", page.ID, title, page.LastEditedTime.Format("2006-01-02 15:04"))
		if cmd.Verbose && page.URL != "" {
			fmt.Printf("      %s\n", page.URL)
		}
	}

	return nil
}
