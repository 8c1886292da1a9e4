package service

import (
	"context"
	"errors"

	"EngineMirror/internal/domain/models"
)

// SnapshotReader is all a renderer may see.
type SnapshotReader interface {
	Snapshot() *models.Snapshot
}

// SourceInfo is the scheduler's live view of one source.
type SourceInfo struct {
	models.SourceStatus
	InFlight     bool   `json:"in_flight"`
	SkippedTicks uint64 `json:"skipped_ticks"`
	StaleDropped uint64 `json:"stale_dropped"`
	Enabled      bool   `json:"enabled"`
}

// Controller exposes the scheduler's external controls.
type Controller interface {
	Refresh(ctx context.Context, id models.SourceID) error
	Statuses(ctx context.Context) ([]SourceInfo, error)
}

var (
	ErrUnknownSource  = errors.New("unknown source")
	ErrSourceDisabled = errors.New("source disabled")
	ErrNotRunning     = errors.New("scheduler not running")
)
