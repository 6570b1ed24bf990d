package carnival

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lysyi3m/blocos-bh/app/geo"
	"github.com/lysyi3m/blocos-bh/app/sheet"
)

// SheetSource downloads the raw spreadsheet rows; *sheet.Fetcher satisfies it.
type SheetSource interface {
	FetchEvents(ctx context.Context) ([]sheet.EventRow, error)
	FetchRehearsals(ctx context.Context) ([]sheet.RehearsalRow, error)
}

// Loader runs one ingestion cycle: fetch, normalize, geocode and persist any
// new coordinates.
type Loader struct {
	source     SheetSource
	normalizer *Normalizer
	geocache   *geo.Cache
}

func NewLoader(source SheetSource, normalizer *Normalizer, geocache *geo.Cache) *Loader {
	return &Loader{
		source:     source,
		normalizer: normalizer,
		geocache:   geocache,
	}
}

func (l *Loader) Run(ctx context.Context) (*Snapshot, error) {
	rows, err := l.source.FetchEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	events, styles := l.normalizer.Run(ctx, rows)
	neighborhoods := collectNeighborhoods(events)

	rehearsalRows, err := l.source.FetchRehearsals(ctx)
	if err != nil {
		slog.Warn("Rehearsals unavailable, continuing without them", "error", err)
	} else {
		events = append(events, l.normalizer.RunRehearsals(ctx, rehearsalRows)...)
	}

	if l.geocache != nil {
		if err := l.geocache.SaveIfDirty(); err != nil {
			slog.Warn("Failed to persist geocache", "error", err)
		}
	}

	slog.Info("Events loaded",
		"events", len(rows),
		"rehearsals", len(rehearsalRows),
		"styles", len(styles),
		"neighborhoods", len(neighborhoods))

	return &Snapshot{
		Events:        events,
		Styles:        styles,
		Neighborhoods: neighborhoods,
	}, nil
}

func collectNeighborhoods(events []Event) []string {
	seen := make(map[string]struct{})
	for _, event := range events {
		if event.Neighborhood != "" {
			seen[event.Neighborhood] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
