package repository

import (
	"context"
	"time"

	"EngineMirror/internal/domain/models"
)

// SnapshotStore reconciles accepted outcomes into published snapshots.
// Apply is only ever called from one goroutine; Snapshot is safe from any.
type SnapshotStore interface {
	Apply(id models.SourceID, o models.Outcome) *models.Snapshot
	Snapshot() *models.Snapshot
}

// BytesCache stores encoded representations keyed by string.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type Metrics interface {
	RecordPoll(source models.SourceID, result string)
	RecordLatency(source models.SourceID, seconds float64)
	RecordSkippedTick(source models.SourceID)
	RecordStale(source models.SourceID, kind models.ErrorKind)
	SetSourceUp(source models.SourceID, up bool)
	SetSnapshotVersion(version uint64)
	SetLogLines(n int)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordPoll(models.SourceID, string)            {}
func (NopMetrics) RecordLatency(models.SourceID, float64)        {}
func (NopMetrics) RecordSkippedTick(models.SourceID)             {}
func (NopMetrics) RecordStale(models.SourceID, models.ErrorKind) {}
func (NopMetrics) SetSourceUp(models.SourceID, bool)             {}
func (NopMetrics) SetSnapshotVersion(uint64)                     {}
func (NopMetrics) SetLogLines(int)                               {}
