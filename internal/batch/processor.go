// Package batch splits large database syncs into fixed-size chunks driven
// through the background task queue one at a time.
//
// The processor only splits and sequences; retrying a failed batch is the
// scheduler's job, and replace-on-conflict row upserts make any re-run
// safe. Batches for one parent always chain sequentially, so row writes
// for that parent never overlap.
package batch

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	batchesdb "github.com/thevgergroup/notion-wp-sub002/internal/database/batches"
	linksdb "github.com/thevgergroup/notion-wp-sub002/internal/database/links"
	rowsdb "github.com/thevgergroup/notion-wp-sub002/internal/database/rows"
	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
	"github.com/thevgergroup/notion-wp-sub002/internal/fetcher"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

// DefaultBatchSize is how many rows one background batch handles.
const DefaultBatchSize = 20

// Enqueuer schedules one batch on the background queue. Wired to the task
// client at startup; injected as a function to keep this package off the
// queue implementation.
type Enqueuer func(batchID, parentDocumentID string, batchNumber, totalBatches int) error

// Processor coordinates chunked database syncs.
type Processor struct {
	databases *fetcher.DatabaseFetcher
	rows      *rowsdb.Repository
	jobs      *batchesdb.Repository
	links     *linksdb.Repository
	batchSize int
	enqueue   Enqueuer
}

// NewProcessor creates a batch processor. batchSize <= 0 selects the
// default.
func NewProcessor(databases *fetcher.DatabaseFetcher, rows *rowsdb.Repository, jobs *batchesdb.Repository, links *linksdb.Repository, batchSize int) *Processor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Processor{
		databases: databases,
		rows:      rows,
		jobs:      jobs,
		links:     links,
		batchSize: batchSize,
	}
}

// SetEnqueuer installs the background enqueue hook.
func (p *Processor) SetEnqueuer(fn Enqueuer) {
	p.enqueue = fn
}

// SyncDatabase registers a database in the link registry, counts its rows
// and queues the chunked sync. Returns the batch ID and total item count.
func (p *Processor) SyncDatabase(ctx context.Context, databaseID string) (string, int, error) {
	if !notion.ValidID(databaseID) {
		return "", 0, fmt.Errorf("invalid database ID")
	}
	id := notion.NormalizeID(databaseID)

	title, _, err := p.databases.Schema(ctx, id)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch database: %w", err)
	}
	if err := p.links.RegisterPending(id, title, entities.SourceTypeDatabase); err != nil {
		log.Printf("Failed to register database %s in link registry: %v", id, err)
	}

	entries, err := p.databases.QueryAll(ctx, id)
	if err != nil {
		return "", 0, fmt.Errorf("failed to query database: %w", err)
	}
	return p.QueueSync(ctx, id, len(entries))
}

// QueueSync creates the progress record for totalItems rows and enqueues
// the first batch.
func (p *Processor) QueueSync(ctx context.Context, parentDocumentID string, totalItems int) (string, int, error) {
	if p.enqueue == nil {
		return "", 0, fmt.Errorf("no batch enqueuer configured")
	}

	id := notion.NormalizeID(parentDocumentID)
	totalBatches := (totalItems + p.batchSize - 1) / p.batchSize
	batchID := uuid.NewString()

	if err := p.jobs.Create(batchID, id, totalBatches, totalItems); err != nil {
		return "", 0, fmt.Errorf("failed to create batch job: %w", err)
	}

	if totalItems == 0 {
		if err := p.jobs.Complete(batchID); err != nil {
			return "", 0, err
		}
		return batchID, 0, nil
	}

	if err := p.enqueue(batchID, id, 1, totalBatches); err != nil {
		if failErr := p.jobs.Fail(batchID, err.Error()); failErr != nil {
			log.Printf("Failed to mark batch job %s failed: %v", batchID, failErr)
		}
		return "", 0, fmt.Errorf("failed to enqueue first batch: %w", err)
	}

	log.Printf("Queued database sync %s: %d rows in %d batches", batchID, totalItems, totalBatches)
	return batchID, totalItems, nil
}

// ProcessBatch is the background entry point for one batch: fetch the
// slice for this batch number, upsert every row, advance progress and
// chain the next batch or complete the job.
func (p *Processor) ProcessBatch(ctx context.Context, batchID, parentDocumentID string, batchNumber, totalBatches int) error {
	job, err := p.jobs.Get(batchID)
	if err != nil {
		return fmt.Errorf("failed to load batch job: %w", err)
	}
	if job == nil {
		log.Printf("Batch job %s no longer exists; dropping batch %d", batchID, batchNumber)
		return nil
	}
	if job.Status == entities.BatchStatusCancelled || job.Status == entities.BatchStatusFailed {
		log.Printf("Batch job %s is %s; dropping batch %d", batchID, job.Status, batchNumber)
		return nil
	}

	// A fetch failure bubbles up so the queue retries the batch.
	entries, err := p.databases.QueryAll(ctx, parentDocumentID)
	if err != nil {
		return fmt.Errorf("failed to query database for batch %d/%d: %w", batchNumber, totalBatches, err)
	}
	start := (batchNumber - 1) * p.batchSize
	if start >= len(entries) {
		// Source shrank since queueing; nothing left to write.
		return p.finish(batchID, batchNumber, totalBatches, 0)
	}
	end := start + p.batchSize
	if end > len(entries) {
		end = len(entries)
	}

	for _, entry := range entries[start:end] {
		err := p.rows.Upsert(parentDocumentID, entry.ID, entry.Properties, rowsdb.Fields{
			Title:     entry.Title,
			Status:    entry.Status,
			CreatedAt: entry.CreatedTime,
			EditedAt:  entry.LastEditedTime,
		})
		if err != nil {
			return fmt.Errorf("failed to upsert row %s: %w", entry.ID, err)
		}
	}

	return p.finish(batchID, batchNumber, totalBatches, end-start)
}

func (p *Processor) finish(batchID string, batchNumber, totalBatches, processed int) error {
	if err := p.jobs.Advance(batchID, batchNumber, processed); err != nil {
		return fmt.Errorf("failed to advance batch job: %w", err)
	}

	if batchNumber < totalBatches {
		// Re-check cancellation between batches; this is the
		// cooperative stop point.
		job, err := p.jobs.Get(batchID)
		if err != nil {
			return err
		}
		if job == nil || job.Status == entities.BatchStatusCancelled {
			return nil
		}
		if err := p.enqueue(batchID, job.ParentDocumentID, batchNumber+1, totalBatches); err != nil {
			return fmt.Errorf("failed to enqueue batch %d: %w", batchNumber+1, err)
		}
		return nil
	}

	return p.jobs.Complete(batchID)
}

// Status returns the latest batch job for a parent document, nil when the
// parent has never been queued.
func (p *Processor) Status(parentDocumentID string) (*entities.BatchJob, error) {
	return p.jobs.Latest(parentDocumentID)
}

// Cancel stops a job from enqueuing further batches. A batch already
// running completes normally.
func (p *Processor) Cancel(batchID string) error {
	return p.jobs.Cancel(batchID)
}
