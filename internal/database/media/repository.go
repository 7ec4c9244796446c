// Package media provides database operations for the media asset registry.
package media

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// Repository handles all media registry database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new media registry repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find returns the asset registered for a block, or nil if none exists.
func (r *Repository) Find(sourceBlockID string) (*entities.MediaAsset, error) {
	var asset entities.MediaAsset
	err := r.db.Where("source_block_id = ?", notion.NormalizeID(sourceBlockID)).First(&asset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

// RegisterPending records an asset awaiting download. Re-registering an
// existing asset refreshes its source URL (Notion-hosted URLs rotate) but
// keeps any stored local copy.
func (r *Repository) RegisterPending(sourceBlockID, sourcePageID, sourceURL string) error {
	asset := entities.MediaAsset{
		SourceBlockID: notion.NormalizeID(sourceBlockID),
		SourcePageID:  notion.NormalizeID(sourcePageID),
		SourceURL:     sourceURL,
		Status:        entities.MediaStatusPending,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_block_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"source_url", "updated_at"}),
	}).Create(&asset).Error
}

// MarkStored records a completed download.
func (r *Repository) MarkStored(sourceBlockID, localPath, localURL string) error {
	return r.db.Model(&entities.MediaAsset{}).
		Where("source_block_id = ?", notion.NormalizeID(sourceBlockID)).
		Updates(map[string]any{
			"local_path": localPath,
			"local_url":  localURL,
			"status":     entities.MediaStatusStored,
			"error":      "",
		}).Error
}

// MarkFailed records a failed download.
func (r *Repository) MarkFailed(sourceBlockID, errMsg string) error {
	return r.db.Model(&entities.MediaAsset{}).
		Where("source_block_id = ?", notion.NormalizeID(sourceBlockID)).
		Updates(map[string]any{
			"status": entities.MediaStatusFailed,
			"error":  errMsg,
		}).Error
}

// ForPage returns every asset referenced by a page.
func (r *Repository) ForPage(sourcePageID string) ([]entities.MediaAsset, error) {
	var assets []entities.MediaAsset
	err := r.db.Where("source_page_id = ?", notion.NormalizeID(sourcePageID)).Find(&assets).Error
	return assets, err
}
