package convert

import (
	"fmt"
	"html"
	"strings"

	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// ParagraphConverter renders paragraph blocks. Empty paragraphs keep a
// non-breaking space so intentional vertical spacing survives the round
// trip instead of collapsing.
type ParagraphConverter struct{}

func (ParagraphConverter) Supports(block notion.Block) bool {
	return block.Type == "paragraph"
}

func (ParagraphConverter) Convert(block notion.Block, ctx *Context) (string, error) {
	var inner string
	if block.Paragraph != nil {
		inner = RenderRichText(block.Paragraph.RichText, ctx)
	}
	if inner == "" {
		inner = "&nbsp;"
	}
	return "<!-- wp:paragraph -->\n<p>" + inner + "</p>\n<!-- /wp:paragraph -->", nil
}

// HeadingConverter renders heading_1 through heading_3.
type HeadingConverter struct{}

func (HeadingConverter) Supports(block notion.Block) bool {
	switch block.Type {
	case "heading_1", "heading_2", "heading_3":
		return true
	}
	return false
}

func (HeadingConverter) Convert(block notion.Block, ctx *Context) (string, error) {
	var payload *notion.RichTextPayload
	var level int
	switch block.Type {
	case "heading_1":
		payload, level = block.Heading1, 1
	case "heading_2":
		payload, level = block.Heading2, 2
	case "heading_3":
		payload, level = block.Heading3, 3
	}

	var inner string
	if payload != nil {
		inner = RenderRichText(payload.RichText, ctx)
	}
	return fmt.Sprintf("<!-- wp:heading {\"level\":%d} -->\n<h%d class=\"wp-block-heading\">%s</h%d>\n<!-- /wp:heading -->",
		level, level, inner, level), nil
}

// ListItemConverter renders bulleted and numbered list items. Items arrive
// as sibling blocks, so each is emitted as its own single-item list; the
// renderer accepts adjacent sibling lists.
type ListItemConverter struct{}

func (ListItemConverter) Supports(block notion.Block) bool {
	return block.Type == "bulleted_list_item" || block.Type == "numbered_list_item"
}

func (ListItemConverter) Convert(block notion.Block, ctx *Context) (string, error) {
	if block.Type == "numbered_list_item" {
		var inner string
		if block.NumberedListItem != nil {
			inner = RenderRichText(block.NumberedListItem.RichText, ctx)
		}
		return "<!-- wp:list {\"ordered\":true} -->\n<ol class=\"wp-block-list\"><li>" + inner + "</li></ol>\n<!-- /wp:list -->", nil
	}

	var inner string
	if block.BulletedListItem != nil {
		inner = RenderRichText(block.BulletedListItem.RichText, ctx)
	}
	return "<!-- wp:list -->\n<ul class=\"wp-block-list\"><li>" + inner + "</li></ul>\n<!-- /wp:list -->", nil
}

// ToDoConverter renders to_do blocks as paragraphs with a checkbox glyph.
type ToDoConverter struct{}

func (ToDoConverter) Supports(block notion.Block) bool {
	return block.Type == "to_do"
}

func (ToDoConverter) Convert(block notion.Block, ctx *Context) (string, error) {
	box := "&#9744;"
	var inner string
	if block.ToDo != nil {
		if block.ToDo.Checked {
			box = "&#9745;"
		}
		inner = RenderRichText(block.ToDo.RichText, ctx)
	}
	return "<!-- wp:paragraph {\"className\":\"notion-todo\"} -->\n<p class=\"notion-todo\">" + box + " " + inner + "</p>\n<!-- /wp:paragraph -->", nil
}

// QuoteConverter renders quote blocks.
type QuoteConverter struct{}

func (QuoteConverter) Supports(block notion.Block) bool {
	return block.Type == "quote"
}

func (QuoteConverter) Convert(block notion.Block, ctx *Context) (string, error) {
	var inner string
	if block.Quote != nil {
		inner = RenderRichText(block.Quote.RichText, ctx)
	}
	return "<!-- wp:quote -->\n<blockquote class=\"wp-block-quote\"><p>" + inner + "</p></blockquote>\n<!-- /wp:quote -->", nil
}

// CalloutConverter renders callouts as flagged paragraphs with the emoji
// icon preserved.
type CalloutConverter struct{}

func (CalloutConverter) Supports(block notion.Block) bool {
	return block.Type == "callout"
}

func (CalloutConverter) Convert(block notion.Block, ctx *Context) (string, error) {
	var inner, icon string
	if block.Callout != nil {
		inner = RenderRichText(block.Callout.RichText, ctx)
		if block.Callout.Icon != nil && block.Callout.Icon.Emoji != "" {
			icon = EscapeHTML(block.Callout.Icon.Emoji) + " "
		}
	}
	return "<!-- wp:paragraph {\"className\":\"notion-callout\"} -->\n<p class=\"notion-callout\">" + icon + inner + "</p>\n<!-- /wp:paragraph -->", nil
}

// CodeConverter renders code blocks. Content is escaped but not annotated;
// code spans carry no inline markup.
type CodeConverter struct{}

func (CodeConverter) Supports(block notion.Block) bool {
	return block.Type == "code"
}

func (CodeConverter) Convert(block notion.Block, ctx *Context) (string, error) {
	var content, language string
	if block.Code != nil {
		content = EscapeHTML(notion.PlainText(block.Code.RichText))
		language = block.Code.Language
	}

	class := "wp-block-code"
	if language != "" {
		class += " language-" + sanitizeClassToken(language)
	}
	return "<!-- wp:code -->\n<pre class=\"" + class + "\"><code>" + content + "</code></pre>\n<!-- /wp:code -->", nil
}

// ImageConverter renders image blocks. The media resolver decides whether
// the reference is a mirrored local URL or the original source URL while a
// background download is pending; either way the fragment carries the block
// ID so the reference can be rewritten once the asset is stored.
type ImageConverter struct{}

func (ImageConverter) Supports(block notion.Block) bool {
	return block.Type == "image"
}

func (ImageConverter) Convert(block notion.Block, ctx *Context) (string, error) {
	sourceURL := block.Image.URL()

	ref := sourceURL
	if ctx != nil && ctx.Media != nil {
		ref = ctx.Media.Reference(block.ID, ctx.PageID, sourceURL)
	}
	safe := SanitizeURL(ref)
	if safe == "" {
		return fallbackFragment(block), nil
	}

	var caption string
	if block.Image != nil && len(block.Image.Caption) > 0 {
		caption = "<figcaption class=\"wp-element-caption\">" + RenderRichText(block.Image.Caption, ctx) + "</figcaption>"
	}

	blockID := html.EscapeString(notion.NormalizeID(block.ID))
	return "<!-- wp:image -->\n<figure class=\"wp-block-image\"><img src=\"" + safe +
		"\" alt=\"\" data-notion-block=\"" + blockID + "\"/>" + caption + "</figure>\n<!-- /wp:image -->", nil
}

// BookmarkConverter renders bookmark blocks as paragraph links.
type BookmarkConverter struct{}

func (BookmarkConverter) Supports(block notion.Block) bool {
	return block.Type == "bookmark"
}

func (BookmarkConverter) Convert(block notion.Block, ctx *Context) (string, error) {
	if block.Bookmark == nil {
		return fallbackFragment(block), nil
	}

	safe := SanitizeURL(block.Bookmark.URL)
	if safe == "" {
		return fallbackFragment(block), nil
	}

	label := safe
	if len(block.Bookmark.Caption) > 0 {
		label = RenderRichText(block.Bookmark.Caption, ctx)
	}
	return "<!-- wp:paragraph {\"className\":\"notion-bookmark\"} -->\n<p class=\"notion-bookmark\"><a href=\"" + safe + "\">" + label + "</a></p>\n<!-- /wp:paragraph -->", nil
}

// DividerConverter renders divider blocks.
type DividerConverter struct{}

func (DividerConverter) Supports(block notion.Block) bool {
	return block.Type == "divider"
}

func (DividerConverter) Convert(block notion.Block, ctx *Context) (string, error) {
	return "<!-- wp:separator -->\n<hr class=\"wp-block-separator has-alpha-channel-opacity\"/>\n<!-- /wp:separator -->", nil
}

// sanitizeClassToken keeps only characters safe inside a class attribute.
func sanitizeClassToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
