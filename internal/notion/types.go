package notion

import (
	"encoding/json"
	"time"
)

// Page represents a page object from the Notion API.
type Page struct {
	ID             string                   `json:"id"`
	CreatedTime    time.Time                `json:"created_time"`
	LastEditedTime time.Time                `json:"last_edited_time"`
	Archived       bool                     `json:"archived"`
	URL            string                   `json:"url"`
	Icon           *FileOrEmoji             `json:"icon,omitempty"`
	Cover          *FileOrEmoji             `json:"cover,omitempty"`
	Properties     map[string]PropertyValue `json:"properties"`
}

// Database represents a database object from the Notion API.
type Database struct {
	ID             string                 `json:"id"`
	CreatedTime    time.Time              `json:"created_time"`
	LastEditedTime time.Time              `json:"last_edited_time"`
	Title          []RichText             `json:"title"`
	URL            string                 `json:"url"`
	Properties     map[string]PropertyDef `json:"properties"`
}

// PropertyDef describes one column of a database schema.
type PropertyDef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Block is one node of page content. The type tag is an open set; payloads
// for known types are decoded into the matching field, everything else is
// kept only as the tag plus identity metadata.
type Block struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	HasChildren    bool      `json:"has_children"`
	CreatedTime    time.Time `json:"created_time"`
	LastEditedTime time.Time `json:"last_edited_time"`

	Paragraph        *RichTextPayload `json:"paragraph,omitempty"`
	Heading1         *RichTextPayload `json:"heading_1,omitempty"`
	Heading2         *RichTextPayload `json:"heading_2,omitempty"`
	Heading3         *RichTextPayload `json:"heading_3,omitempty"`
	BulletedListItem *RichTextPayload `json:"bulleted_list_item,omitempty"`
	NumberedListItem *RichTextPayload `json:"numbered_list_item,omitempty"`
	Quote            *RichTextPayload `json:"quote,omitempty"`
	Callout          *CalloutPayload  `json:"callout,omitempty"`
	ToDo             *ToDoPayload     `json:"to_do,omitempty"`
	Code             *CodePayload     `json:"code,omitempty"`
	Image            *FilePayload     `json:"image,omitempty"`
	Bookmark         *BookmarkPayload `json:"bookmark,omitempty"`
	Divider          *struct{}        `json:"divider,omitempty"`
	ChildPage        *ChildPagePayload `json:"child_page,omitempty"`
}

// RichTextPayload is the common payload shape shared by paragraphs,
// headings, list items and quotes.
type RichTextPayload struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

// CalloutPayload is the payload of a callout block.
type CalloutPayload struct {
	RichText []RichText   `json:"rich_text"`
	Icon     *FileOrEmoji `json:"icon,omitempty"`
	Color    string       `json:"color,omitempty"`
}

// ToDoPayload is the payload of a to_do block.
type ToDoPayload struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

// CodePayload is the payload of a code block.
type CodePayload struct {
	RichText []RichText `json:"rich_text"`
	Caption  []RichText `json:"caption,omitempty"`
	Language string     `json:"language,omitempty"`
}

// FilePayload is the payload of file-backed blocks (images, files).
// Exactly one of External or File is set.
type FilePayload struct {
	Type     string     `json:"type"`
	External *URLRef    `json:"external,omitempty"`
	File     *FileRef   `json:"file,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

// URL returns the effective URL regardless of hosting type.
func (p *FilePayload) URL() string {
	if p == nil {
		return ""
	}
	if p.External != nil {
		return p.External.URL
	}
	if p.File != nil {
		return p.File.URL
	}
	return ""
}

// BookmarkPayload is the payload of a bookmark block.
type BookmarkPayload struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

// ChildPagePayload is the payload of a child_page block.
type ChildPagePayload struct {
	Title string `json:"title"`
}

// URLRef wraps an externally hosted URL.
type URLRef struct {
	URL string `json:"url"`
}

// FileRef wraps a Notion-hosted, time-limited URL.
type FileRef struct {
	URL        string    `json:"url"`
	ExpiryTime time.Time `json:"expiry_time,omitempty"`
}

// FileOrEmoji is an icon or cover: an emoji, an external URL or a
// Notion-hosted file.
type FileOrEmoji struct {
	Type     string   `json:"type"`
	Emoji    string   `json:"emoji,omitempty"`
	External *URLRef  `json:"external,omitempty"`
	File     *FileRef `json:"file,omitempty"`
}

// URL returns the icon/cover URL, empty for emoji icons.
func (f *FileOrEmoji) URL() string {
	if f == nil {
		return ""
	}
	if f.External != nil {
		return f.External.URL
	}
	if f.File != nil {
		return f.File.URL
	}
	return ""
}

// Annotations are the inline style flags of a rich-text span.
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color,omitempty"`
}

// RichText is one span of annotated text.
type RichText struct {
	Type        string      `json:"type"`
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
	Annotations Annotations `json:"annotations"`
	Text        *TextValue  `json:"text,omitempty"`
}

// TextValue carries the raw text content and an optional link.
type TextValue struct {
	Content string  `json:"content"`
	Link    *URLRef `json:"link,omitempty"`
}

// PlainText concatenates the plain text of a span list.
func PlainText(spans []RichText) string {
	var out string
	for _, s := range spans {
		out += s.PlainText
	}
	return out
}

// SelectOption is one select / multi-select choice.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// DateValue is a date property value.
type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// UserRef is a person referenced by a people property.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// RelationRef points at a page in a related database.
type RelationRef struct {
	ID string `json:"id"`
}

// FileValue is one entry of a files property.
type FileValue struct {
	Name     string   `json:"name,omitempty"`
	Type     string   `json:"type,omitempty"`
	External *URLRef  `json:"external,omitempty"`
	File     *FileRef `json:"file,omitempty"`
}

// FormulaValue is the computed result of a formula property.
type FormulaValue struct {
	Type    string     `json:"type"`
	String  *string    `json:"string,omitempty"`
	Number  *float64   `json:"number,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
	Date    *DateValue `json:"date,omitempty"`
}

// RollupValue is the computed result of a rollup property.
type RollupValue struct {
	Type   string          `json:"type"`
	Number *float64        `json:"number,omitempty"`
	Date   *DateValue      `json:"date,omitempty"`
	Array  json.RawMessage `json:"array,omitempty"`
}

// PropertyValue is one property of a page, tagged by Type. Raw keeps the
// undecoded JSON so unknown property types can degrade to a string
// representation instead of failing the row.
type PropertyValue struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`

	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
	Checkbox    *bool          `json:"checkbox,omitempty"`
	Number      *float64       `json:"number,omitempty"`
	Relation    []RelationRef  `json:"relation,omitempty"`
	Formula     *FormulaValue  `json:"formula,omitempty"`
	Rollup      *RollupValue   `json:"rollup,omitempty"`
	People      []UserRef      `json:"people,omitempty"`
	Files       []FileValue    `json:"files,omitempty"`
	URL         *string        `json:"url,omitempty"`
	Email       *string        `json:"email,omitempty"`
	PhoneNumber *string        `json:"phone_number,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed fields and retains the raw payload.
func (p *PropertyValue) UnmarshalJSON(data []byte) error {
	type alias PropertyValue
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = PropertyValue(a)
	p.Raw = append(p.Raw[:0], data...)
	return nil
}

// BlockListResponse is the paginated envelope of the block-children endpoint.
type BlockListResponse struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// QueryResponse is the paginated envelope of the database query endpoint.
type QueryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// SearchResponse is the paginated envelope of the search endpoint.
type SearchResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}
