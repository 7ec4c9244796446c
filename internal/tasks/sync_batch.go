package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// SyncBatchTask processes one batch of a chunked database sync. Each batch
// enqueues its successor on completion, so batches for one parent always
// run sequentially and in order.
type SyncBatchTask struct {
	BatchID          string `json:"batch_id"`
	ParentDocumentID string `json:"parent_document_id"`
	BatchNumber      int    `json:"batch_number"`
	TotalBatches     int    `json:"total_batches"`
}

// Config returns the queue configuration for batch sync tasks.
func (t SyncBatchTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sync_batch",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// BatchRunner is the slice of the batch processor the task needs.
type BatchRunner interface {
	ProcessBatch(ctx context.Context, batchID, parentDocumentID string, batchNumber, totalBatches int) error
}

// SyncBatchProcessor creates a processor function for SyncBatchTask.
// Retrying a batch is safe: row writes are replace-on-conflict upserts.
func SyncBatchProcessor(runner BatchRunner) backlite.QueueProcessor[SyncBatchTask] {
	return func(ctx context.Context, task SyncBatchTask) error {
		if runner == nil {
			return fmt.Errorf("batch processor not configured")
		}

		err := runner.ProcessBatch(ctx, task.BatchID, task.ParentDocumentID, task.BatchNumber, task.TotalBatches)
		if err != nil {
			return fmt.Errorf("process batch %d/%d of %s: %w",
				task.BatchNumber, task.TotalBatches, task.ParentDocumentID, err)
		}

		log.Printf("[TASK] Processed batch %d/%d for database %s",
			task.BatchNumber, task.TotalBatches, task.ParentDocumentID)
		return nil
	}
}

// NewSyncBatchQueue creates a backlite queue for batch sync tasks.
func NewSyncBatchQueue(runner BatchRunner) backlite.Queue {
	return backlite.NewQueue(SyncBatchProcessor(runner))
}
