package entities

import "time"

// Row is one normalized entry of a synced Notion database, keyed by
// (parent document, source row). Re-syncing replaces the row wholesale;
// the source is authoritative.
type Row struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ParentDocumentID string    `gorm:"size:64;index;uniqueIndex:idx_rows_parent_source,priority:1" json:"parent_document_id"`
	SourceRowID      string    `gorm:"size:64;uniqueIndex:idx_rows_parent_source,priority:2" json:"source_row_id"`
	Title            string    `gorm:"size:512" json:"title"`
	Status           string    `gorm:"size:100" json:"status,omitempty"`
	Properties       string    `gorm:"type:text" json:"properties"` // JSON-encoded flattened property map
	SourceCreatedAt  time.Time `json:"source_created_at"`
	SourceEditedAt   time.Time `json:"source_edited_at"`
	SyncedAt         time.Time `json:"synced_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Row) TableName() string {
	return "rows"
}

type MediaStatus string

const (
	MediaStatusPending MediaStatus = "pending"
	MediaStatusStored  MediaStatus = "stored"
	MediaStatusFailed  MediaStatus = "failed"
)

// MediaAsset records one mirrored media file, keyed by the block that
// referenced it. Consulted before every download so repeated syncs of the
// same page never fetch the same asset twice.
type MediaAsset struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	SourceBlockID string      `gorm:"uniqueIndex;size:64" json:"source_block_id"`
	SourcePageID  string      `gorm:"index;size:64" json:"source_page_id"`
	SourceURL     string      `gorm:"size:2048" json:"source_url"`
	LocalPath     string      `gorm:"size:1024" json:"local_path,omitempty"`
	LocalURL      string      `gorm:"size:2048" json:"local_url,omitempty"`
	Status        MediaStatus `gorm:"size:20;default:'pending'" json:"status"`
	Error         string      `gorm:"type:text" json:"error,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (MediaAsset) TableName() string {
	return "media_assets"
}
