package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/blocos-bh/app/carnival"
)

type RefreshSnapshotTask struct {
	Task
	Force     bool
	snapshots SnapshotRefresher
}

// Refresh origins used as task subjects by the scheduler.
const (
	OriginStartup  = "startup"
	OriginInterval = "interval"
)

// NewRefreshSnapshotTask keeps the snapshot warm. A forced task re-ingests the
// spreadsheets right away instead of waiting for the refresh interval. origin
// records who asked for the refresh.
func NewRefreshSnapshotTask(snapshots SnapshotRefresher, origin string, force bool) *RefreshSnapshotTask {
	return &RefreshSnapshotTask{
		Task:      NewTask(TaskTypeRefreshSnapshot, origin),
		Force:     force,
		snapshots: snapshots,
	}
}

func (t *RefreshSnapshotTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.Force {
		snap := t.snapshots.GetOrRefresh(ctx, time.Now())
		slog.Debug("Task completed",
			"task", t.String(),
			"events", len(snap.Events),
			"duration", t.GetDuration())
		return nil
	}

	err := t.snapshots.Refresh(ctx, time.Now())
	if errors.Is(err, carnival.ErrImplausibleSnapshot) {
		// Retrying would fetch the same sheet.
		slog.Warn("Forced refresh rejected", "origin", t.Subject, "error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to refresh snapshot: %w", err)
	}

	slog.Info("Task completed",
		"task", t.String(),
		"forced", true,
		"duration", t.GetDuration())

	return nil
}
