package api

import (
	"context"
	"time"

	"github.com/lysyi3m/blocos-bh/app/carnival"
	"github.com/lysyi3m/blocos-bh/app/database"
	"github.com/lysyi3m/blocos-bh/app/geo"
	"github.com/lysyi3m/blocos-bh/app/tasks"
)

// SnapshotStore is satisfied by *carnival.SnapshotCache.
type SnapshotStore interface {
	Current() *carnival.Snapshot
	GetOrRefresh(ctx context.Context, now time.Time) *carnival.Snapshot
	Refresh(ctx context.Context, now time.Time) error
}

var _ SnapshotStore = (*carnival.SnapshotCache)(nil)

type Handler struct {
	snapshots SnapshotStore
	filterer  *carnival.Filterer
	presets   *carnival.PresetCache
	votes     database.VoteStore
	scheduler tasks.TaskSchedulerInterface
	generator *carnival.Generator
	calendar  *carnival.CalendarExporter
	version   string
	now       func() time.Time
}

// EventView is the public JSON shape of an annotated event.
type EventView struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Neighborhood    string   `json:"neighborhood"`
	Address         string   `json:"address"`
	Date            string   `json:"date"`
	ScheduledAt     *string  `json:"scheduled_at"`
	Category        string   `json:"category"`
	CategoryDisplay string   `json:"category_display"`
	Description     string   `json:"description"`
	Size            int      `json:"size"`
	Lat             *float64 `json:"lat"`
	Lon             *float64 `json:"lon"`
	Geohash         string   `json:"geohash"`
	IsKids          bool     `json:"is_kids"`
	IsLGBT          bool     `json:"is_lgbt"`
	IsPet           bool     `json:"is_pet"`
	IsRehearsal     bool     `json:"is_rehearsal"`
	TicketURL       string   `json:"ticket_url"`
	Status          string   `json:"status"`
	StatusLabel     string   `json:"status_label"`
	Likes           int      `json:"likes"`
}

func newEventView(event carnival.AnnotatedEvent, likes map[string]int) EventView {
	view := EventView{
		ID:              event.ID,
		Title:           event.Title,
		Neighborhood:    event.Neighborhood,
		Address:         event.Address,
		Date:            event.DisplayDate,
		Category:        event.CategoryRaw,
		CategoryDisplay: event.CategoryDisplay,
		Description:     event.Description,
		Size:            event.Size,
		Lat:             event.Lat,
		Lon:             event.Lon,
		IsKids:          event.IsKids,
		IsLGBT:          event.IsLGBT,
		IsPet:           event.IsPet,
		IsRehearsal:     event.IsRehearsal,
		TicketURL:       event.TicketURL,
		Status:          string(event.Status),
		StatusLabel:     event.StatusLabel,
		Likes:           likes[event.ID],
	}

	if event.ScheduledAt != nil {
		iso := event.ScheduledAt.Format(time.RFC3339)
		view.ScheduledAt = &iso
	}

	if event.HasCoordinates() {
		view.Geohash = geo.Geohash(*event.Lat, *event.Lon, geo.ClusterPrecision)
	}

	return view
}

type VoteRequest struct {
	EventID string `json:"event_id" binding:"required"`
	UserID  string `json:"user_id"`
	Action  string `json:"action"`
}

type pageData struct {
	Events        []EventView
	Total         int
	Filtered      bool
	Neighborhoods []string
	Styles        []string
	Presets       []carnival.Preset
	Selected      map[string]bool
	Query         carnival.Query
	RefreshedAt   string
	Version       string
}
