package duckdb

import (
	"sync"
	"time"
)

// RetentionConfig holds configuration for the retention cleaner.
type RetentionConfig struct {
	RetentionHours int
	// Interval between sweeps. Defaults to one hour.
	Interval time.Duration
}

// RetentionCleaner periodically deletes snapshots older than the configured
// retention period.
type RetentionCleaner struct {
	store     *Store
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// NewRetentionCleaner creates a retention cleaner that deletes expired
// snapshots. Returns nil when retention is 0 (disabled).
func NewRetentionCleaner(store *Store, conf ...RetentionConfig) *RetentionCleaner {
	hours := 72
	var interval time.Duration
	if len(conf) > 0 {
		hours = conf[0].RetentionHours
		interval = conf[0].Interval
	}
	if hours <= 0 {
		return nil
	}
	if interval <= 0 {
		interval = time.Hour
	}

	rc := &RetentionCleaner{
		store:     store,
		retention: time.Duration(hours) * time.Hour,
		interval:  interval,
		now:       time.Now,
		done:      make(chan struct{}),
	}

	// Startup cleanup to catch up after downtime.
	rc.cleanup()

	rc.wg.Add(1)
	go rc.tickLoop()

	return rc
}

func (rc *RetentionCleaner) tickLoop() {
	defer rc.wg.Done()
	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rc.cleanup()
		case <-rc.done:
			return
		}
	}
}

func (rc *RetentionCleaner) cleanup() int64 {
	cutoff := rc.now().Add(-rc.retention)

	rows, err := rc.store.DeleteBefore(cutoff)
	if err != nil {
		rc.store.logger.Error("retention cleanup failed", "error", err)
		return 0
	}
	if rows > 0 {
		rc.store.logger.Info("retention cleanup deleted expired snapshots",
			"snapshots", rows, "older_than", rc.retention.String())
	}
	return rows
}

// Stop signals the cleaner to stop and waits for it to finish.
func (rc *RetentionCleaner) Stop() {
	rc.stopOnce.Do(func() {
		close(rc.done)
		rc.wg.Wait()
	})
}
