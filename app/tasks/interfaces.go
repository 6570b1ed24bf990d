package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/blocos-bh/app/carnival"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// The HTTP layer uses it to enqueue administrative refreshes.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// SnapshotRefresher is satisfied by *carnival.SnapshotCache.
type SnapshotRefresher interface {
	GetOrRefresh(ctx context.Context, now time.Time) *carnival.Snapshot
	Refresh(ctx context.Context, now time.Time) error
}
