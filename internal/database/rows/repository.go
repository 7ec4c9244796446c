// Package rows provides database operations for synced database rows.
package rows

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// Repository handles all database row storage operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new row repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Fields carries the extracted columns of a normalized row.
type Fields struct {
	Title     string
	Status    string
	CreatedAt time.Time
	EditedAt  time.Time
}

// Upsert inserts or fully replaces a row keyed by (parent, source row).
// Replace-on-conflict makes re-running a batch safe: a retried batch
// rewrites its rows instead of duplicating them.
func (r *Repository) Upsert(parentDocumentID, sourceRowID string, properties map[string]string, fields Fields) error {
	encoded, err := json.Marshal(properties)
	if err != nil {
		return fmt.Errorf("failed to encode row properties: %w", err)
	}

	row := entities.Row{
		ParentDocumentID: notion.NormalizeID(parentDocumentID),
		SourceRowID:      notion.NormalizeID(sourceRowID),
		Title:            fields.Title,
		Status:           fields.Status,
		Properties:       string(encoded),
		SourceCreatedAt:  fields.CreatedAt,
		SourceEditedAt:   fields.EditedAt,
		SyncedAt:         time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "parent_document_id"}, {Name: "source_row_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "status", "properties", "source_created_at", "source_edited_at", "synced_at", "updated_at"}),
	}).Create(&row).Error
}

// Count returns the number of rows stored for a parent document.
func (r *Repository) Count(parentDocumentID string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Row{}).
		Where("parent_document_id = ?", notion.NormalizeID(parentDocumentID)).
		Count(&count).Error
	return count, err
}

// List returns the rows of a parent document ordered by source edit time.
func (r *Repository) List(parentDocumentID string, limit, offset int) ([]entities.Row, error) {
	var rows []entities.Row
	query := r.db.Where("parent_document_id = ?", notion.NormalizeID(parentDocumentID)).
		Order("source_edited_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	err := query.Find(&rows).Error
	return rows, err
}

// DeleteForParent removes every row belonging to a parent document.
func (r *Repository) DeleteForParent(parentDocumentID string) error {
	return r.db.Where("parent_document_id = ?", notion.NormalizeID(parentDocumentID)).
		Delete(&entities.Row{}).Error
}
