package telemetry

import "context"

// Snapshot is one tick's summary persisted for offline analysis of the
// governor's behavior.
type Snapshot struct {
	Timestamp      int64
	AvgFrameMicros int64
	Quality        string
	ZoomMode       string
	Entities       int
	LitElements    int
	ActiveHazards  int
	Overrides      int
}

// Collector records tick snapshots.
type Collector interface {
	// Record persists a snapshot, possibly buffered
	Record(ctx context.Context, snapshot *Snapshot) error

	// Close flushes any buffered snapshots and releases resources
	Close() error
}

// Repository is the storage backend behind a Collector.
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}
