// Package convert translates Notion blocks into WordPress block (Gutenberg)
// markup through a registry of per-type converters.
//
// Every converter escapes plain text and sanitizes URLs before embedding
// them; no source string reaches the output unescaped. Unsupported block
// types never fail a conversion: they render as an HTML comment carrying
// only the type and block ID.
package convert

import (
	"fmt"
	"log"
	"strings"

	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// LinkResolver resolves a Notion document ID to a site URL. An empty
// result means the target is unknown and the link is dropped.
type LinkResolver interface {
	Resolve(sourceID string) string
}

// MediaResolver returns the reference to embed for a media block: a local
// URL when the asset is already mirrored, otherwise the (possibly
// time-limited) source URL while a background download is pending.
type MediaResolver interface {
	Reference(blockID, pageID, sourceURL string) string
}

// Context carries the cross-cutting collaborators converters may need.
type Context struct {
	PageID string
	Links  LinkResolver
	Media  MediaResolver
}

// Converter turns one block type into one markup fragment.
type Converter interface {
	Supports(block notion.Block) bool
	Convert(block notion.Block, ctx *Context) (string, error)
}

// Hook lets callers extend or reorder the converter list at registry
// construction time without modifying the registry itself.
type Hook func([]Converter) []Converter

// Registry dispatches blocks to the first converter that supports them.
type Registry struct {
	converters []Converter
}

// NewRegistry builds a registry with the default converter set, then runs
// each hook over the list.
func NewRegistry(hooks ...Hook) *Registry {
	converters := defaultConverters()
	for _, hook := range hooks {
		converters = hook(converters)
	}
	return &Registry{converters: converters}
}

// Register appends a converter. Converters registered later only see
// blocks no earlier converter claimed.
func (r *Registry) Register(c Converter) {
	r.converters = append(r.converters, c)
}

// ConvertAll converts blocks in input order and concatenates the
// fragments. A converter returning an error aborts the whole conversion;
// an unsupported block type does not.
func (r *Registry) ConvertAll(blocks []notion.Block, ctx *Context) (string, error) {
	var b strings.Builder

	for _, block := range blocks {
		fragment, err := r.convertOne(block, ctx)
		if err != nil {
			return "", fmt.Errorf("converting %s block %s: %w", block.Type, block.ID, err)
		}
		b.WriteString(fragment)
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *Registry) convertOne(block notion.Block, ctx *Context) (string, error) {
	for _, c := range r.converters {
		if c.Supports(block) {
			return c.Convert(block, ctx)
		}
	}

	log.Printf("No converter registered for block type %q (block %s)", block.Type, block.ID)
	return fallbackFragment(block), nil
}

// fallbackFragment renders an unsupported block as a comment with enough
// metadata to reprocess it later. It never includes payload content.
func fallbackFragment(block notion.Block) string {
	return fmt.Sprintf("<!-- notion-sync: unsupported block type %q id %q -->",
		block.Type, notion.NormalizeID(block.ID))
}

func defaultConverters() []Converter {
	return []Converter{
		ParagraphConverter{},
		HeadingConverter{},
		ListItemConverter{},
		ToDoConverter{},
		QuoteConverter{},
		CalloutConverter{},
		CodeConverter{},
		ImageConverter{},
		BookmarkConverter{},
		DividerConverter{},
	}
}
