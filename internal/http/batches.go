package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
)

// BatchService defines the chunked database sync operations this
// controller exposes.
type BatchService interface {
	SyncDatabase(ctx context.Context, databaseID string) (batchID string, totalItems int, err error)
	Status(parentDocumentID string) (*entities.BatchJob, error)
	Cancel(batchID string) error
}

type BatchController struct {
	batches BatchService
}

func NewBatchController(batches BatchService) *BatchController {
	return &BatchController{batches: batches}
}

// SyncDatabase queues a chunked sync of a Notion database
// POST /api/sync/databases/:id
func (bc *BatchController) SyncDatabase(c *gin.Context) {
	batchID, total, err := bc.batches.SyncDatabase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"batch_id":    batchID,
		"total_items": total,
	})
}

// Status returns batch progress for a database
// GET /api/batches/:parent_id
func (bc *BatchController) Status(c *gin.Context) {
	job, err := bc.batches.Status(c.Param("parent_id"))
	if err != nil {
		respondInternalError(c, err, "batch status lookup")
		return
	}
	if job == nil {
		respondNotFound(c, "No batch job for this database")
		return
	}
	c.JSON(http.StatusOK, job)
}

// Cancel stops a running batch job between batches
// DELETE /api/batches/:batch_id
func (bc *BatchController) Cancel(c *gin.Context) {
	if err := bc.batches.Cancel(c.Param("batch_id")); err != nil {
		respondInternalError(c, err, "batch cancel")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Batch job cancelled"})
}
