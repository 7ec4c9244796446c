package entities

import "time"

// SyncRecord ties one Notion page to the WordPress post it was synced into.
// SourcePageID is stored in normalized (dash-stripped, lowercase) form and is
// unique: the constraint is the final backstop against two concurrent syncs
// of the same page creating two posts.
type SyncRecord struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	SourcePageID       string    `gorm:"uniqueIndex;size:64" json:"source_page_id"`
	PostID             int64     `gorm:"index" json:"post_id"`
	LastSyncedAt       time.Time `json:"last_synced_at"`
	SourceLastEditedAt time.Time `json:"source_last_edited_at"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (SyncRecord) TableName() string {
	return "sync_records"
}

type LinkStatus string

const (
	LinkStatusPending LinkStatus = "pending"
	LinkStatusSynced  LinkStatus = "synced"
	LinkStatusError   LinkStatus = "error"
)

type SourceType string

const (
	SourceTypePage     SourceType = "page"
	SourceTypeDatabase SourceType = "database"
)

// LinkEntry maps a Notion document to its WordPress counterpart. Entries are
// created as soon as a document is discovered, before it is synced, so
// internal links can resolve to a stable placeholder route in the meantime.
type LinkEntry struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SourceID    string     `gorm:"uniqueIndex;size:64" json:"source_id"`
	SourceTitle string     `gorm:"size:512" json:"source_title"`
	SourceType  SourceType `gorm:"size:20;default:'page'" json:"source_type"`
	PostID      *int64     `gorm:"index" json:"post_id,omitempty"`
	PostType    string     `gorm:"size:20" json:"post_type,omitempty"`
	Slug        *string    `gorm:"uniqueIndex;size:256" json:"slug,omitempty"`
	SyncStatus  LinkStatus `gorm:"size:20;default:'pending'" json:"sync_status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (LinkEntry) TableName() string {
	return "link_entries"
}
