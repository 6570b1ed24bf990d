package carnival

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/blocos-bh/app/metrics"
)

var ErrImplausibleSnapshot = errors.New("refreshed dataset is implausibly small")

// SnapshotSource produces a fresh snapshot; *Loader satisfies it.
type SnapshotSource interface {
	Run(ctx context.Context) (*Snapshot, error)
}

// SnapshotCache memoizes the latest snapshot for a refresh interval. Readers
// never block on a refresh once a snapshot exists.
type SnapshotCache struct {
	source     SnapshotSource
	interval   time.Duration
	minHealthy int

	current   atomic.Pointer[Snapshot]
	refreshMu sync.Mutex

	stateMu     sync.Mutex
	lastAttempt time.Time
}

func NewSnapshotCache(source SnapshotSource, interval time.Duration, minHealthy int) *SnapshotCache {
	return &SnapshotCache{
		source:     source,
		interval:   interval,
		minHealthy: minHealthy,
	}
}

// Current returns the latest snapshot without refreshing, or nil before the
// first refresh.
func (c *SnapshotCache) Current() *Snapshot {
	return c.current.Load()
}

// GetOrRefresh returns the current snapshot, refreshing it first when the
// interval has elapsed. While another caller refreshes, the previous snapshot
// is returned; only the very first load makes callers wait.
func (c *SnapshotCache) GetOrRefresh(ctx context.Context, now time.Time) *Snapshot {
	snap := c.current.Load()
	if snap != nil && !c.due(now) {
		return snap
	}

	if snap == nil {
		c.refreshMu.Lock()
	} else if !c.refreshMu.TryLock() {
		return snap
	}
	defer c.refreshMu.Unlock()

	if snap = c.current.Load(); snap != nil && !c.due(now) {
		return snap
	}

	c.refresh(ctx, now)
	return c.current.Load()
}

// Refresh reloads the snapshot regardless of the interval, waiting for any
// refresh in progress.
func (c *SnapshotCache) Refresh(ctx context.Context, now time.Time) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	return c.refresh(ctx, now)
}

func (c *SnapshotCache) due(now time.Time) bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.lastAttempt.IsZero() || now.Sub(c.lastAttempt) >= c.interval
}

// refresh must be called with refreshMu held.
func (c *SnapshotCache) refresh(ctx context.Context, now time.Time) error {
	c.stateMu.Lock()
	c.lastAttempt = now
	c.stateMu.Unlock()

	// A refresh serves every waiting request, not only the one that started it.
	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	next, err := c.source.Run(ctx)
	took := time.Since(start)

	prev := c.current.Load()

	if err != nil {
		metrics.ObserveRefresh("error", took, 0)
		if prev == nil {
			c.current.Store(&Snapshot{RefreshedAt: now})
		}
		slog.Warn("Refresh failed, keeping previous snapshot", "error", err, "duration", took)
		return fmt.Errorf("failed to refresh snapshot: %w", err)
	}

	// Rehearsals come from a separate sheet and cannot vouch for the events one.
	if prev != nil && prev.EventCount() >= c.minHealthy && next.EventCount() < c.minHealthy {
		metrics.ObserveRefresh("rejected", took, len(next.Events))
		slog.Warn("Refresh rejected, keeping previous snapshot",
			"events", next.EventCount(),
			"previous", prev.EventCount(),
			"min_healthy", c.minHealthy)
		return ErrImplausibleSnapshot
	}

	next.RefreshedAt = now
	c.current.Store(next)
	metrics.ObserveRefresh("ok", took, len(next.Events))
	slog.Info("Snapshot refreshed", "events", len(next.Events), "duration", took)

	return nil
}
