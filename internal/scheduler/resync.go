// Package scheduler runs periodic incremental re-syncs of already-synced
// pages.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/thevgergroup/notion-wp-sub002/internal/database/syncindex"
	"github.com/thevgergroup/notion-wp-sub002/internal/fetcher"
	"github.com/thevgergroup/notion-wp-sub002/internal/syncer"
)

// ResyncScheduler re-syncs pages whose source has been edited since their
// last sync.
type ResyncScheduler struct {
	manager   *syncer.Manager
	syncIndex *syncindex.Repository
	content   *fetcher.ContentFetcher
	schedule  string
	enabled   bool

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	cancelFunc context.CancelFunc
}

// NewResyncScheduler creates a new scheduler instance
func NewResyncScheduler(manager *syncer.Manager, syncIndex *syncindex.Repository, content *fetcher.ContentFetcher, schedule string, enabled bool) *ResyncScheduler {
	return &ResyncScheduler{
		manager:   manager,
		syncIndex: syncIndex,
		content:   content,
		schedule:  schedule,
		enabled:   enabled,
		cron:      cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if re-sync is enabled
func (s *ResyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.enabled {
		log.Printf("Re-sync scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule re-sync job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Re-sync scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *ResyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Re-sync scheduler: stopped")
}

// RunNow triggers an immediate re-sync pass
func (s *ResyncScheduler) RunNow() {
	go s.runSync()
}

// IsSyncing returns whether a re-sync pass is currently in progress
func (s *ResyncScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// GetNextRunTime returns when the next re-sync will occur
func (s *ResyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSync re-syncs every tracked page whose source changed since the last
// sync. One failing page never stops the pass.
func (s *ResyncScheduler) runSync() {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("Re-sync: skipped (already syncing)")
		return
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	records, err := s.syncIndex.All()
	if err != nil {
		log.Printf("Re-sync: failed to list sync records: %v", err)
		return
	}
	if len(records) == 0 {
		return
	}

	log.Printf("Re-sync: checking %d tracked pages", len(records))
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var synced, unchanged, failed int
	for _, record := range records {
		props, err := s.content.PageProperties(ctx, record.SourcePageID)
		if err != nil {
			log.Printf("Re-sync: failed to check page %s: %v", record.SourcePageID, err)
			failed++
			continue
		}
		if !props.LastEditedTime.After(record.SourceLastEditedAt) {
			unchanged++
			continue
		}

		result := s.manager.SyncPage(ctx, record.SourcePageID)
		if result.Success {
			synced++
		} else {
			log.Printf("Re-sync: page %s failed: %s", record.SourcePageID, result.Error)
			failed++
		}
	}

	log.Printf("Re-sync: done in %s (%d synced, %d unchanged, %d failed)",
		time.Since(startTime).Round(time.Millisecond), synced, unchanged, failed)
}
