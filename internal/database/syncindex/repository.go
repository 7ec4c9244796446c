// Package syncindex provides database operations for page sync records.
//
// The sync index is the duplicate-detection table: one record per normalized
// Notion page ID, pointing at the WordPress post the page was synced into.
package syncindex

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// Repository handles all sync record database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sync index repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find returns the sync record for a page, or nil if the page has never
// been synced.
func (r *Repository) Find(sourcePageID string) (*entities.SyncRecord, error) {
	var record entities.SyncRecord
	err := r.db.Where("source_page_id = ?", notion.NormalizeID(sourcePageID)).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Upsert creates or replaces the sync record for a page. The unique
// constraint on source_page_id makes this safe against concurrent syncs of
// the same page: the second writer updates instead of duplicating.
func (r *Repository) Upsert(sourcePageID string, postID int64, sourceLastEditedAt time.Time) error {
	record := entities.SyncRecord{
		SourcePageID:       notion.NormalizeID(sourcePageID),
		PostID:             postID,
		LastSyncedAt:       time.Now(),
		SourceLastEditedAt: sourceLastEditedAt,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_page_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"post_id", "last_synced_at", "source_last_edited_at", "updated_at"}),
	}).Create(&record).Error
}

// All returns every sync record, most recently synced first.
func (r *Repository) All() ([]entities.SyncRecord, error) {
	var records []entities.SyncRecord
	err := r.db.Order("last_synced_at DESC").Find(&records).Error
	return records, err
}

// Delete removes the sync record for a page.
func (r *Repository) Delete(sourcePageID string) error {
	return r.db.Where("source_page_id = ?", notion.NormalizeID(sourcePageID)).
		Delete(&entities.SyncRecord{}).Error
}
