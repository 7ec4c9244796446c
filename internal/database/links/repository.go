// Package links provides database operations for the link registry.
//
// The registry is the authoritative source-ID to WordPress mapping used to
// rewrite internal Notion links. Entries exist from the moment a document is
// discovered, before it is synced.
package links

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// Repository handles all link registry database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new link registry repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the entry for a source document, or nil if it was never
// discovered.
func (r *Repository) Get(sourceID string) (*entities.LinkEntry, error) {
	var entry entities.LinkEntry
	err := r.db.Where("source_id = ?", notion.NormalizeID(sourceID)).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// RegisterPending records a discovered document. If the entry already
// exists only the title is refreshed; sync status and post mapping are
// left untouched.
func (r *Repository) RegisterPending(sourceID, title string, sourceType entities.SourceType) error {
	entry := entities.LinkEntry{
		SourceID:    notion.NormalizeID(sourceID),
		SourceTitle: title,
		SourceType:  sourceType,
		SyncStatus:  entities.LinkStatusPending,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"source_title", "updated_at"}),
	}).Create(&entry).Error
}

// MarkSynced updates an entry with its WordPress mapping once a sync run
// completes. The entry is created if discovery was skipped.
func (r *Repository) MarkSynced(sourceID, title string, sourceType entities.SourceType, postID int64, postType, slug string) error {
	entry := entities.LinkEntry{
		SourceID:    notion.NormalizeID(sourceID),
		SourceTitle: title,
		SourceType:  sourceType,
		PostID:      &postID,
		PostType:    postType,
		SyncStatus:  entities.LinkStatusSynced,
	}
	if slug != "" {
		entry.Slug = &slug
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"source_title", "source_type", "post_id", "post_type", "slug", "sync_status", "updated_at"}),
	}).Create(&entry).Error
}

// MarkError flags an entry whose sync run failed.
func (r *Repository) MarkError(sourceID string) error {
	return r.db.Model(&entities.LinkEntry{}).
		Where("source_id = ?", notion.NormalizeID(sourceID)).
		Update("sync_status", entities.LinkStatusError).Error
}

// All returns every registry entry.
func (r *Repository) All() ([]entities.LinkEntry, error) {
	var entries []entities.LinkEntry
	err := r.db.Order("source_title ASC").Find(&entries).Error
	return entries, err
}
