package batches

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thevgergroup/notion-wp-sub002/internal/entities"
)

const parentID = "1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d"

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_batches_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.BatchJob{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Create("batch-1", parentID, 12, 237)
	require.NoError(t, err)

	job, err := repo.Get("batch-1")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, entities.BatchStatusQueued, job.Status)
	assert.Equal(t, 12, job.TotalBatches)
	assert.Equal(t, 237, job.TotalItems)
	assert.Equal(t, 0, job.ProcessedItems)
}

func TestRepository_Advance(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Create("batch-1", parentID, 3, 50)
	require.NoError(t, err)

	require.NoError(t, repo.Advance("batch-1", 1, 20))
	require.NoError(t, repo.Advance("batch-1", 2, 20))

	job, err := repo.Get("batch-1")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, entities.BatchStatusProcessing, job.Status)
	assert.Equal(t, 2, job.CurrentBatch)
	assert.Equal(t, 40, job.ProcessedItems)
}

func TestRepository_Complete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Create("batch-1", parentID, 1, 5)
	require.NoError(t, err)

	require.NoError(t, repo.Complete("batch-1"))

	job, err := repo.Get("batch-1")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, entities.BatchStatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)
}

func TestRepository_CancelOnlyActiveJobs(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Create("batch-1", parentID, 2, 30)
	require.NoError(t, err)

	require.NoError(t, repo.Cancel("batch-1"))

	job, err := repo.Get("batch-1")
	require.NoError(t, err)
	assert.Equal(t, entities.BatchStatusCancelled, job.Status)

	// A completed job cannot be cancelled afterwards
	err = repo.Create("batch-2", parentID, 1, 5)
	require.NoError(t, err)
	require.NoError(t, repo.Complete("batch-2"))
	require.NoError(t, repo.Cancel("batch-2"))

	job, err = repo.Get("batch-2")
	require.NoError(t, err)
	assert.Equal(t, entities.BatchStatusCompleted, job.Status)
}

func TestRepository_Latest(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	job, err := repo.Latest(parentID)
	require.NoError(t, err)
	assert.Nil(t, job)

	require.NoError(t, repo.Create("batch-1", parentID, 1, 5))
	require.NoError(t, repo.Complete("batch-1"))
	require.NoError(t, repo.Create("batch-2", parentID, 2, 30))

	job, err = repo.Latest(parentID)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "batch-2", job.BatchID)
}

func TestRepository_Fail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.Create("batch-1", parentID, 2, 30))
	require.NoError(t, repo.Fail("batch-1", "queue unavailable"))

	job, err := repo.Get("batch-1")
	require.NoError(t, err)
	assert.Equal(t, entities.BatchStatusFailed, job.Status)
	assert.Equal(t, "queue unavailable", job.Error)
}
