package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	batchesdb "github.com/thevgergroup/notion-wp-sub002/internal/database/batches"
	linksdb "github.com/thevgergroup/notion-wp-sub002/internal/database/links"
	rowsdb "github.com/thevgergroup/notion-wp-sub002/internal/database/rows"
	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
	"github.com/thevgergroup/notion-wp-sub002/internal/fetcher"
	"github.com/thevgergroup/notion-wp-sub002/internal/notion"
)

const testDatabaseID = "1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d"

// fakeSource serves a fixed number of database rows, 100 per query page.
// When failFrom is set, queries numbered failFrom and later return an error.
type fakeSource struct {
	rowCount   int
	title      string
	queryCalls int
	failFrom   int
}

func (f *fakeSource) GetPage(ctx context.Context, pageID string) (*notion.Page, error) {
	return nil, notion.ErrNotFound
}

func (f *fakeSource) GetBlockChildren(ctx context.Context, blockID, cursor string) (*notion.BlockListResponse, error) {
	return &notion.BlockListResponse{}, nil
}

func (f *fakeSource) GetDatabase(ctx context.Context, databaseID string) (*notion.Database, error) {
	return &notion.Database{
		ID:    databaseID,
		Title: []notion.RichText{{PlainText: f.title}},
		Properties: map[string]notion.PropertyDef{
			"Name": {Type: "title"},
		},
	}, nil
}

func (f *fakeSource) QueryDatabase(ctx context.Context, databaseID, cursor string) (*notion.QueryResponse, error) {
	const pageSize = 100

	f.queryCalls++
	if f.failFrom > 0 && f.queryCalls >= f.failFrom {
		return nil, errors.New("transient API error")
	}

	start := 0
	if cursor != "" {
		fmt.Sscanf(cursor, "offset-%d", &start)
	}
	end := start + pageSize
	if end > f.rowCount {
		end = f.rowCount
	}

	resp := &notion.QueryResponse{}
	for i := start; i < end; i++ {
		resp.Results = append(resp.Results, notion.Page{
			ID: fmt.Sprintf("%032x", i+1),
			Properties: map[string]notion.PropertyValue{
				"Name": {Type: "title", Title: []notion.RichText{{PlainText: fmt.Sprintf("Row %d", i+1)}}},
			},
		})
	}
	if end < f.rowCount {
		next := fmt.Sprintf("offset-%d", end)
		resp.HasMore = true
		resp.NextCursor = &next
	}
	return resp, nil
}

func (f *fakeSource) Search(ctx context.Context, limit int) (*notion.SearchResponse, error) {
	return &notion.SearchResponse{}, nil
}

func setupProcessor(t *testing.T, source *fakeSource, batchSize int) (*Processor, *rowsdb.Repository, *batchesdb.Repository, func()) {
	dbPath := "./test_batch_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Row{}, &entities.BatchJob{}, &entities.LinkEntry{})
	require.NoError(t, err)

	rows := rowsdb.NewRepository(db)
	jobs := batchesdb.NewRepository(db)
	links := linksdb.NewRepository(db)
	processor := NewProcessor(fetcher.NewDatabaseFetcher(source), rows, jobs, links, batchSize)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return processor, rows, jobs, cleanup
}

// inlineEnqueuer runs each batch synchronously, so the whole chain unwinds
// inside the SyncDatabase call.
func inlineEnqueuer(ctx context.Context, p *Processor) Enqueuer {
	return func(batchID, parentDocumentID string, batchNumber, totalBatches int) error {
		return p.ProcessBatch(ctx, batchID, parentDocumentID, batchNumber, totalBatches)
	}
}

func TestProcessor_SyncDatabase_ChunksAllRows(t *testing.T) {
	source := &fakeSource{rowCount: 237, title: "Editorial Calendar"}
	processor, rows, _, cleanup := setupProcessor(t, source, 20)
	defer cleanup()

	ctx := context.Background()
	processor.SetEnqueuer(inlineEnqueuer(ctx, processor))

	batchID, totalItems, err := processor.SyncDatabase(ctx, testDatabaseID)
	require.NoError(t, err)
	assert.Equal(t, 237, totalItems)

	// 237 rows at 20 per batch is 12 batches; every row written exactly once
	count, err := rows.Count(testDatabaseID)
	require.NoError(t, err)
	assert.Equal(t, int64(237), count)

	job, err := processor.Status(testDatabaseID)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, batchID, job.BatchID)
	assert.Equal(t, entities.BatchStatusCompleted, job.Status)
	assert.Equal(t, 12, job.TotalBatches)
	assert.Equal(t, 12, job.CurrentBatch)
	assert.Equal(t, 237, job.ProcessedItems)
}

func TestProcessor_SyncDatabase_RerunDoesNotDuplicate(t *testing.T) {
	source := &fakeSource{rowCount: 45, title: "Editorial Calendar"}
	processor, rows, _, cleanup := setupProcessor(t, source, 20)
	defer cleanup()

	ctx := context.Background()
	processor.SetEnqueuer(inlineEnqueuer(ctx, processor))

	_, _, err := processor.SyncDatabase(ctx, testDatabaseID)
	require.NoError(t, err)
	_, _, err = processor.SyncDatabase(ctx, testDatabaseID)
	require.NoError(t, err)

	count, err := rows.Count(testDatabaseID)
	require.NoError(t, err)
	assert.Equal(t, int64(45), count)
}

func TestProcessor_SyncDatabase_EmptyCompletesImmediately(t *testing.T) {
	source := &fakeSource{rowCount: 0, title: "Empty"}
	processor, _, _, cleanup := setupProcessor(t, source, 20)
	defer cleanup()

	ctx := context.Background()
	enqueued := 0
	processor.SetEnqueuer(func(batchID, parentDocumentID string, batchNumber, totalBatches int) error {
		enqueued++
		return nil
	})

	_, totalItems, err := processor.SyncDatabase(ctx, testDatabaseID)
	require.NoError(t, err)
	assert.Equal(t, 0, totalItems)
	assert.Equal(t, 0, enqueued)

	job, err := processor.Status(testDatabaseID)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, entities.BatchStatusCompleted, job.Status)
}

func TestProcessor_SyncDatabase_InvalidID(t *testing.T) {
	source := &fakeSource{rowCount: 5}
	processor, _, _, cleanup := setupProcessor(t, source, 20)
	defer cleanup()

	processor.SetEnqueuer(func(string, string, int, int) error { return nil })

	_, _, err := processor.SyncDatabase(context.Background(), "not a database")
	assert.Error(t, err)
}

func TestProcessor_SyncDatabase_NoEnqueuer(t *testing.T) {
	source := &fakeSource{rowCount: 5, title: "x"}
	processor, _, _, cleanup := setupProcessor(t, source, 20)
	defer cleanup()

	_, _, err := processor.SyncDatabase(context.Background(), testDatabaseID)
	assert.Error(t, err)
}

func TestProcessor_ProcessBatch_FetchFailureSurfaces(t *testing.T) {
	// Counting succeeds (query 1), then the source goes down before the
	// first batch re-fetches its rows (query 2).
	source := &fakeSource{rowCount: 40, title: "Editorial Calendar", failFrom: 2}
	processor, rows, _, cleanup := setupProcessor(t, source, 20)
	defer cleanup()

	ctx := context.Background()
	var batchErr error
	processor.SetEnqueuer(func(batchID, parentDocumentID string, batchNumber, totalBatches int) error {
		batchErr = processor.ProcessBatch(ctx, batchID, parentDocumentID, batchNumber, totalBatches)
		return nil
	})

	batchID, totalItems, err := processor.SyncDatabase(ctx, testDatabaseID)
	require.NoError(t, err)
	assert.Equal(t, 40, totalItems)

	// The batch must fail loudly, not complete on a partial fetch
	require.Error(t, batchErr)
	assert.Contains(t, batchErr.Error(), "transient API error")

	job, err := processor.Status(testDatabaseID)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.NotEqual(t, entities.BatchStatusCompleted, job.Status)

	count, err := rows.Count(testDatabaseID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Retrying the failed batch after the source recovers completes the
	// chain with every row written
	source.failFrom = 0
	require.NoError(t, processor.ProcessBatch(ctx, batchID, testDatabaseID, 1, 2))
	require.NoError(t, batchErr)

	job, err = processor.Status(testDatabaseID)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, entities.BatchStatusCompleted, job.Status)

	count, err = rows.Count(testDatabaseID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), count)
}

func TestProcessor_Cancel_StopsChain(t *testing.T) {
	source := &fakeSource{rowCount: 60, title: "Editorial Calendar"}
	processor, rows, _, cleanup := setupProcessor(t, source, 20)
	defer cleanup()

	ctx := context.Background()

	// Cancel after the first batch; the chain must stop at the
	// cooperative check instead of enqueuing batch 2.
	processor.SetEnqueuer(func(batchID, parentDocumentID string, batchNumber, totalBatches int) error {
		if batchNumber == 2 {
			t.Fatal("batch 2 enqueued after cancellation")
		}
		if err := processor.Cancel(batchID); err != nil {
			return err
		}
		return processor.ProcessBatch(ctx, batchID, parentDocumentID, batchNumber, totalBatches)
	})

	_, _, err := processor.SyncDatabase(ctx, testDatabaseID)
	require.NoError(t, err)

	job, err := processor.Status(testDatabaseID)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, entities.BatchStatusCancelled, job.Status)

	count, err := rows.Count(testDatabaseID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
