package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/blocos-bh/app/carnival"
	"github.com/lysyi3m/blocos-bh/app/geo"
)

// WarmGeocacheTask geocodes every address of the spreadsheets that is not in
// the cache yet and persists the cache after each new coordinate, so an
// interrupted run keeps its progress.
type WarmGeocacheTask struct {
	Task
	source   carnival.SheetSource
	resolver carnival.Resolver
	geocache *geo.Cache
}

func NewWarmGeocacheTask(source carnival.SheetSource, resolver carnival.Resolver, geocache *geo.Cache) *WarmGeocacheTask {
	return &WarmGeocacheTask{
		Task:     NewTask(TaskTypeWarmGeocache, geocache.Path()),
		source:   source,
		resolver: resolver,
		geocache: geocache,
	}
}

type warmStats struct {
	cached   int
	resolved int
	failed   int
}

func (t *WarmGeocacheTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	rows, err := t.source.FetchEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	var stats warmStats
	seen := make(map[string]struct{})

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		key := geo.AddressKey(row.Address, row.Neighborhood)
		if !t.visit(seen, key) {
			continue
		}

		t.record(&stats, t.resolver.Resolve(ctx, row.Address, row.Neighborhood))
	}

	rehearsals, err := t.source.FetchRehearsals(ctx)
	if err != nil {
		slog.Warn("Rehearsals unavailable, warming events only", "error", err)
	}

	for _, row := range rehearsals {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !t.visit(seen, geo.PlaceKey(row.Place)) {
			continue
		}

		t.record(&stats, t.resolver.ResolvePlace(ctx, row.Place))
	}

	slog.Info("Task completed",
		"type", "WarmGeocache",
		"cached", stats.cached,
		"resolved", stats.resolved,
		"failed", stats.failed,
		"entries", t.geocache.Len(),
		"duration", t.GetDuration())

	return nil
}

// visit reports whether key still needs a lookup.
func (t *WarmGeocacheTask) visit(seen map[string]struct{}, key string) bool {
	if key == "" {
		return false
	}
	if _, ok := seen[key]; ok {
		return false
	}
	seen[key] = struct{}{}
	return true
}

func (t *WarmGeocacheTask) record(stats *warmStats, result geo.Result) {
	switch {
	case result.Outcome != geo.Resolved:
		stats.failed++
	case result.Cached:
		stats.cached++
	default:
		stats.resolved++
		if err := t.geocache.SaveIfDirty(); err != nil {
			slog.Warn("Failed to persist geocache", "error", err)
		}
	}
}
