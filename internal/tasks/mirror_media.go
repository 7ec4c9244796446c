package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// MirrorMediaTask downloads one registered media asset and refreshes the
// content of the post that references it. Page syncs return before media
// resolves; this task closes the gap afterwards.
type MirrorMediaTask struct {
	SourceBlockID string `json:"source_block_id"`
}

// Config returns the queue configuration for media mirror tasks.
func (t MirrorMediaTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "mirror_media",
		MaxAttempts: 3,
		Backoff:     1 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// MediaMirrorer is the slice of the media service the task needs.
type MediaMirrorer interface {
	MirrorAndRefresh(ctx context.Context, sourceBlockID string) error
}

// MirrorMediaProcessor creates a processor function for MirrorMediaTask.
// Failures bubble up to the scheduler's retry policy; a permanently
// failing asset leaves the post pointing at its direct source URL.
func MirrorMediaProcessor(mirrorer MediaMirrorer) backlite.QueueProcessor[MirrorMediaTask] {
	return func(ctx context.Context, task MirrorMediaTask) error {
		if mirrorer == nil {
			return fmt.Errorf("media mirrorer not configured")
		}

		if err := mirrorer.MirrorAndRefresh(ctx, task.SourceBlockID); err != nil {
			return fmt.Errorf("mirror media for block %s: %w", task.SourceBlockID, err)
		}

		log.Printf("[TASK] Mirrored media for block %s", task.SourceBlockID)
		return nil
	}
}

// NewMirrorMediaQueue creates a backlite queue for media mirror tasks.
func NewMirrorMediaQueue(mirrorer MediaMirrorer) backlite.Queue {
	return backlite.NewQueue(MirrorMediaProcessor(mirrorer))
}
