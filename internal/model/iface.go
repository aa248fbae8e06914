package model

import (
	"context"
	"time"
)

// Fetcher retrieves one telemetry payload from an endpoint.
type Fetcher interface {
	Fetch(ctx context.Context) (*Payload, error)
}

// SnapshotWriter provides append-oriented writes for poll results.
type SnapshotWriter interface {
	InsertSnapshot(snap *Snapshot) (int64, error)
}

// SnapshotQuerier provides read-only queries on stored poll results.
type SnapshotQuerier interface {
	LatestSnapshot() (*Snapshot, error)
	SnapshotCount() (int64, error)
	HistoricalReadings(now time.Time, window time.Duration, limit int) ([]HistoricalBalloonReading, error)
}

// SnapshotStore is the unified contract used by the relay.
type SnapshotStore interface {
	SnapshotWriter
	SnapshotQuerier
}
