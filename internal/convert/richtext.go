package convert

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// EscapeHTML escapes plain text for embedding in block markup. Every piece
// of source text passes through here before it reaches the output.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// SanitizeURL returns a safe, escaped href value, or an empty string if the
// URL carries an executable or otherwise disallowed scheme.
func SanitizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto":
	case "":
		// Relative URLs are allowed; they can only point within the site.
	default:
		return ""
	}

	return html.EscapeString(parsed.String())
}

var notionPageIDPattern = regexp.MustCompile(`([0-9a-fA-F]{32})/?$`)

// internalLinkID extracts the target page ID from a Notion-internal href.
// Internal links appear either as a relative path ("/abc123...") or as a
// full notion.so URL with the ID as the trailing path segment.
func internalLinkID(href string) string {
	if href == "" {
		return ""
	}

	candidate := href
	if parsed, err := url.Parse(href); err == nil && parsed.Host != "" {
		if !strings.HasSuffix(parsed.Host, "notion.so") && !strings.HasSuffix(parsed.Host, "notion.site") {
			return ""
		}
		candidate = parsed.Path
	} else if !strings.HasPrefix(href, "/") {
		return ""
	}

	normalized := notion.NormalizeID(candidate)
	if match := notionPageIDPattern.FindStringSubmatch(normalized); match != nil {
		return match[1]
	}
	return ""
}

// RenderRichText renders a span list as inline HTML. Annotations nest in a
// fixed order (strong > em > del > u > code, code innermost) so output is
// deterministic regardless of how the source composed them.
func RenderRichText(spans []notion.RichText, ctx *Context) string {
	var b strings.Builder
	for _, span := range spans {
		b.WriteString(renderSpan(span, ctx))
	}
	return b.String()
}

func renderSpan(span notion.RichText, ctx *Context) string {
	text := EscapeHTML(span.PlainText)

	if span.Annotations.Code {
		text = "<code>" + text + "</code>"
	}
	if span.Annotations.Underline {
		text = `<span style="text-decoration:underline">` + text + "</span>"
	}
	if span.Annotations.Strikethrough {
		text = "<del>" + text + "</del>"
	}
	if span.Annotations.Italic {
		text = "<em>" + text + "</em>"
	}
	if span.Annotations.Bold {
		text = "<strong>" + text + "</strong>"
	}

	href := spanHref(span)
	if href == "" {
		return text
	}

	if id := internalLinkID(href); id != "" && ctx != nil && ctx.Links != nil {
		if resolved := ctx.Links.Resolve(id); resolved != "" {
			return `<a href="` + html.EscapeString(resolved) + `">` + text + "</a>"
		}
		return text
	}

	if safe := SanitizeURL(href); safe != "" {
		return `<a href="` + safe + `">` + text + "</a>"
	}
	// Dangerous scheme: drop the link, keep the (escaped) text.
	return text
}

func spanHref(span notion.RichText) string {
	if span.Text != nil && span.Text.Link != nil && span.Text.Link.URL != "" {
		return span.Text.Link.URL
	}
	return span.Href
}
