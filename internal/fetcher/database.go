package fetcher

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// Entry is one normalized database row: every property flattened to a
// string value keyed by property name.
type Entry struct {
	ID             string
	Title          string
	Status         string
	Properties     map[string]string
	CreatedTime    time.Time
	LastEditedTime time.Time
}

// SchemaProperty is one column definition of a database.
type SchemaProperty struct {
	Name string
	Type string
}

// DatabaseFetcher paginates Notion databases into normalized entries.
type DatabaseFetcher struct {
	api SourceAPI
}

// NewDatabaseFetcher creates a database fetcher over the given API client.
func NewDatabaseFetcher(api SourceAPI) *DatabaseFetcher {
	return &DatabaseFetcher{api: api}
}

// QueryAll fetches every row of a database, following the continuation
// cursor until exhaustion, under the same iteration cap as block fetching.
// A failed query surfaces as an error alongside the rows collected so far;
// a partial result never passes silently for the whole database.
func (f *DatabaseFetcher) QueryAll(ctx context.Context, databaseID string) ([]Entry, error) {
	var entries []Entry
	var cursor string

	for i := 0; ; i++ {
		if i >= maxFetchIterations {
			log.Printf("WARNING: query for database %s stopped after %d iterations (%d rows); possible pagination loop",
				databaseID, maxFetchIterations, len(entries))
			break
		}

		resp, err := f.api.QueryDatabase(ctx, databaseID, cursor)
		if err != nil {
			return entries, fmt.Errorf("failed to query database %s: %w", databaseID, err)
		}

		for _, page := range resp.Results {
			entries = append(entries, NormalizeEntry(page))
		}

		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		cursor = *resp.NextCursor
	}

	return entries, nil
}

// Schema fetches the database title and column definitions.
func (f *DatabaseFetcher) Schema(ctx context.Context, databaseID string) (string, []SchemaProperty, error) {
	db, err := f.api.GetDatabase(ctx, databaseID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to fetch database schema: %w", err)
	}

	props := make([]SchemaProperty, 0, len(db.Properties))
	for name, def := range db.Properties {
		props = append(props, SchemaProperty{Name: name, Type: def.Type})
	}
	return notion.PlainText(db.Title), props, nil
}

// NormalizeEntry flattens a row page into an Entry. Unknown property types
// degrade to their raw JSON rather than failing the row.
func NormalizeEntry(page notion.Page) Entry {
	entry := Entry{
		ID:             notion.NormalizeID(page.ID),
		Properties:     make(map[string]string, len(page.Properties)),
		CreatedTime:    page.CreatedTime,
		LastEditedTime: page.LastEditedTime,
	}

	for name, value := range page.Properties {
		flattened := FlattenProperty(value)
		entry.Properties[name] = flattened

		switch value.Type {
		case "title":
			entry.Title = flattened
		case "select", "status":
			if entry.Status == "" {
				entry.Status = flattened
			}
		}
	}
	return entry
}

// FlattenProperty renders one property value as a plain string.
func FlattenProperty(value notion.PropertyValue) string {
	switch value.Type {
	case "title":
		return notion.PlainText(value.Title)
	case "rich_text":
		return notion.PlainText(value.RichText)
	case "select", "status":
		if value.Select != nil {
			return value.Select.Name
		}
		return ""
	case "multi_select":
		names := make([]string, 0, len(value.MultiSelect))
		for _, opt := range value.MultiSelect {
			names = append(names, opt.Name)
		}
		return strings.Join(names, ", ")
	case "date":
		if value.Date == nil {
			return ""
		}
		if value.Date.End != nil && *value.Date.End != "" {
			return value.Date.Start + " → " + *value.Date.End
		}
		return value.Date.Start
	case "checkbox":
		if value.Checkbox != nil && *value.Checkbox {
			return "true"
		}
		return "false"
	case "number":
		if value.Number == nil {
			return ""
		}
		return formatNumber(*value.Number)
	case "relation":
		ids := make([]string, 0, len(value.Relation))
		for _, rel := range value.Relation {
			ids = append(ids, notion.NormalizeID(rel.ID))
		}
		return strings.Join(ids, ", ")
	case "formula":
		return flattenFormula(value.Formula)
	case "rollup":
		return flattenRollup(value.Rollup)
	case "people":
		names := make([]string, 0, len(value.People))
		for _, person := range value.People {
			if person.Name != "" {
				names = append(names, person.Name)
			} else {
				names = append(names, person.ID)
			}
		}
		return strings.Join(names, ", ")
	case "files":
		urls := make([]string, 0, len(value.Files))
		for _, file := range value.Files {
			switch {
			case file.External != nil:
				urls = append(urls, file.External.URL)
			case file.File != nil:
				urls = append(urls, file.File.URL)
			case file.Name != "":
				urls = append(urls, file.Name)
			}
		}
		return strings.Join(urls, ", ")
	case "url":
		if value.URL != nil {
			return *value.URL
		}
		return ""
	case "email":
		if value.Email != nil {
			return *value.Email
		}
		return ""
	case "phone_number":
		if value.PhoneNumber != nil {
			return *value.PhoneNumber
		}
		return ""
	default:
		// Unknown property type: keep the raw payload so nothing is lost.
		return string(value.Raw)
	}
}

func flattenFormula(formula *notion.FormulaValue) string {
	if formula == nil {
		return ""
	}
	switch formula.Type {
	case "string":
		if formula.String != nil {
			return *formula.String
		}
	case "number":
		if formula.Number != nil {
			return formatNumber(*formula.Number)
		}
	case "boolean":
		if formula.Boolean != nil {
			return strconv.FormatBool(*formula.Boolean)
		}
	case "date":
		if formula.Date != nil {
			return formula.Date.Start
		}
	}
	return ""
}

func flattenRollup(rollup *notion.RollupValue) string {
	if rollup == nil {
		return ""
	}
	switch rollup.Type {
	case "number":
		if rollup.Number != nil {
			return formatNumber(*rollup.Number)
		}
	case "date":
		if rollup.Date != nil {
			return rollup.Date.Start
		}
	case "array":
		return string(rollup.Array)
	}
	return ""
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
