package entities

import "time"

type BatchStatus string

const (
	BatchStatusQueued     BatchStatus = "queued"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusCancelled  BatchStatus = "cancelled"
	BatchStatusFailed     BatchStatus = "failed"
)

// BatchJob tracks the progress of one chunked database sync. It is working
// state for progress rendering and batch chaining, not a durable ledger.
type BatchJob struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	BatchID          string      `gorm:"uniqueIndex;size:64" json:"batch_id"`
	ParentDocumentID string      `gorm:"index;size:64" json:"parent_document_id"`
	TotalBatches     int         `json:"total_batches"`
	CurrentBatch     int         `json:"current_batch"`
	TotalItems       int         `json:"total_items"`
	ProcessedItems   int         `json:"processed_items"`
	Status           BatchStatus `gorm:"size:20;default:'queued'" json:"status"`
	Error            string      `gorm:"type:text" json:"error,omitempty"`
	StartedAt        time.Time   `json:"started_at"`
	CompletedAt      *time.Time  `json:"completed_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func (BatchJob) TableName() string {
	return "batch_jobs"
}
