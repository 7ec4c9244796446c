// Package batches provides database operations for batch job progress.
//
// Batch jobs are working state for chunked database syncs: created when a
// sync is queued, advanced after every batch, archived on completion.
package batches

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// Repository handles all batch job database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new batch job repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create records a freshly queued batch job.
func (r *Repository) Create(batchID, parentDocumentID string, totalBatches, totalItems int) error {
	job := entities.BatchJob{
		BatchID:          batchID,
		ParentDocumentID: notion.NormalizeID(parentDocumentID),
		TotalBatches:     totalBatches,
		TotalItems:       totalItems,
		Status:           entities.BatchStatusQueued,
		StartedAt:        time.Now(),
	}
	return r.db.Create(&job).Error
}

// Get returns a job by its batch ID, or nil if unknown.
func (r *Repository) Get(batchID string) (*entities.BatchJob, error) {
	var job entities.BatchJob
	err := r.db.Where("batch_id = ?", batchID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Latest returns the most recent job for a parent document, or nil.
func (r *Repository) Latest(parentDocumentID string) (*entities.BatchJob, error) {
	var job entities.BatchJob
	err := r.db.Where("parent_document_id = ?", notion.NormalizeID(parentDocumentID)).
		Order("started_at DESC").First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Advance records one completed batch: the current batch number and the
// running processed-item count.
func (r *Repository) Advance(batchID string, batchNumber, processedDelta int) error {
	return r.db.Model(&entities.BatchJob{}).
		Where("batch_id = ?", batchID).
		Updates(map[string]any{
			"current_batch":   batchNumber,
			"processed_items": gorm.Expr("processed_items + ?", processedDelta),
			"status":          entities.BatchStatusProcessing,
			"updated_at":      time.Now(),
		}).Error
}

// Complete marks a job finished.
func (r *Repository) Complete(batchID string) error {
	now := time.Now()
	return r.db.Model(&entities.BatchJob{}).
		Where("batch_id = ?", batchID).
		Updates(map[string]any{
			"status":       entities.BatchStatusCompleted,
			"completed_at": now,
		}).Error
}

// Cancel marks a job cancelled so no further batches are enqueued. A batch
// already running is not interrupted.
func (r *Repository) Cancel(batchID string) error {
	now := time.Now()
	return r.db.Model(&entities.BatchJob{}).
		Where("batch_id = ? AND status IN ?", batchID,
			[]entities.BatchStatus{entities.BatchStatusQueued, entities.BatchStatusProcessing}).
		Updates(map[string]any{
			"status":       entities.BatchStatusCancelled,
			"completed_at": now,
		}).Error
}

// Fail marks a job failed with a reason.
func (r *Repository) Fail(batchID, errMsg string) error {
	now := time.Now()
	return r.db.Model(&entities.BatchJob{}).
		Where("batch_id = ?", batchID).
		Updates(map[string]any{
			"status":       entities.BatchStatusFailed,
			"error":        errMsg,
			"completed_at": now,
		}).Error
}
