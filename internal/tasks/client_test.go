package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	// Verify tasks database was created
	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	// Start client in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	// Stop should complete successfully
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

type recordingRunner struct {
	calls chan SyncBatchTask
}

func (r *recordingRunner) ProcessBatch(ctx context.Context, batchID, parentDocumentID string, batchNumber, totalBatches int) error {
	r.calls <- SyncBatchTask{
		BatchID:          batchID,
		ParentDocumentID: parentDocumentID,
		BatchNumber:      batchNumber,
		TotalBatches:     totalBatches,
	}
	return nil
}

func TestSyncBatchTaskExecution(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	runner := &recordingRunner{calls: make(chan SyncBatchTask, 1)}
	client.Register(NewSyncBatchQueue(runner))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(SyncBatchTask{
		BatchID:          "batch-uuid",
		ParentDocumentID: "7f1a9c2e3b4d5e6f7a8b9c0d1e2f3a4b",
		BatchNumber:      1,
		TotalBatches:     3,
	}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case task := <-runner.calls:
		assert.Equal(t, "batch-uuid", task.BatchID)
		assert.Equal(t, 1, task.BatchNumber)
		assert.Equal(t, 3, task.TotalBatches)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

type recordingMirrorer struct {
	calls chan string
	err   error
}

func (m *recordingMirrorer) MirrorAndRefresh(ctx context.Context, sourceBlockID string) error {
	m.calls <- sourceBlockID
	return m.err
}

func TestMirrorMediaTaskExecution(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	mirrorer := &recordingMirrorer{calls: make(chan string, 1)}
	client.Register(NewMirrorMediaQueue(mirrorer))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	_, err = client.Add(MirrorMediaTask{SourceBlockID: "9b8c7d6e5f4a3b2c1d0e9f8a7b6c5d4e"}).Save()
	require.NoError(t, err)

	select {
	case blockID := <-mirrorer.calls:
		assert.Equal(t, "9b8c7d6e5f4a3b2c1d0e9f8a7b6c5d4e", blockID)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestProcessorsRejectMissingDependencies(t *testing.T) {
	batchProc := SyncBatchProcessor(nil)
	err := batchProc(context.Background(), SyncBatchTask{BatchID: "x"})
	assert.Error(t, err)

	mediaProc := MirrorMediaProcessor(nil)
	err = mediaProc(context.Background(), MirrorMediaTask{SourceBlockID: "x"})
	assert.Error(t, err)
}

func TestMirrorMediaProcessorWrapsFailure(t *testing.T) {
	mirrorer := &recordingMirrorer{calls: make(chan string, 1), err: errors.New("download failed")}

	proc := MirrorMediaProcessor(mirrorer)
	err := proc(context.Background(), MirrorMediaTask{SourceBlockID: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download failed")
	assert.Contains(t, err.Error(), "abc")
}

func TestSyncBatchTaskConfig(t *testing.T) {
	cfg := SyncBatchTask{}.Config()

	assert.Equal(t, "sync_batch", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Backoff)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestMirrorMediaTaskConfig(t *testing.T) {
	cfg := MirrorMediaTask{}.Config()

	assert.Equal(t, "mirror_media", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}
