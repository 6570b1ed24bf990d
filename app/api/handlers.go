package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lysyi3m/blocos-bh/app/carnival"
	"github.com/lysyi3m/blocos-bh/app/database"
	"github.com/lysyi3m/blocos-bh/app/metrics"
	"github.com/lysyi3m/blocos-bh/app/tasks"
)

const (
	voterCookie       = "voter_id"
	voterCookieMaxAge = 365 * 24 * 60 * 60
)

func NewHandler(snapshots SnapshotStore, presets *carnival.PresetCache, votes database.VoteStore,
	scheduler tasks.TaskSchedulerInterface, baseURL, version string) *Handler {
	return &Handler{
		snapshots: snapshots,
		filterer:  carnival.NewFilterer(presets),
		presets:   presets,
		votes:     votes,
		scheduler: scheduler,
		generator: carnival.NewGenerator(baseURL, version),
		calendar:  carnival.NewCalendarExporter(baseURL, version),
		version:   version,
		now:       time.Now,
	}
}

type filterResult struct {
	snapshot *carnival.Snapshot
	events   []carnival.AnnotatedEvent
	hadAny   bool
	query    carnival.Query
}

func (h *Handler) filter(c *gin.Context) filterResult {
	now := h.now()
	snap := h.snapshots.GetOrRefresh(c.Request.Context(), now)
	if snap == nil {
		snap = &carnival.Snapshot{}
	}

	query := carnival.ParseQuery(c.Request.URL.Query(), now)
	events, hadAny := h.filterer.Run(carnival.Annotate(snap.Events, now), query)

	c.Header("X-Total-Events", strconv.Itoa(len(snap.Events)))
	c.Header("X-Filtered", strconv.FormatBool(hadAny))

	return filterResult{snapshot: snap, events: events, hadAny: hadAny, query: query}
}

func (h *Handler) likes() map[string]int {
	if h.votes == nil {
		return map[string]int{}
	}

	likes, err := h.votes.GetAllLikes()
	if err != nil {
		slog.Warn("Likes unavailable", "error", err)
		return map[string]int{}
	}
	return likes
}

func (h *Handler) views(events []carnival.AnnotatedEvent, geocodedOnly bool) []EventView {
	likes := h.likes()

	views := make([]EventView, 0, len(events))
	for _, event := range events {
		if geocodedOnly && !event.HasCoordinates() {
			continue
		}
		views = append(views, newEventView(event, likes))
	}
	return views
}

func (h *Handler) GetIndex(c *gin.Context) {
	result := h.filter(c)

	selected := make(map[string]bool, len(result.query.Presets))
	for _, token := range result.query.Presets {
		selected[token] = true
	}

	data := pageData{
		Events:        h.views(result.events, false),
		Total:         len(result.snapshot.Events),
		Filtered:      result.hadAny,
		Neighborhoods: result.snapshot.Neighborhoods,
		Styles:        result.snapshot.Styles,
		Presets:       h.presets.List(),
		Selected:      selected,
		Query:         result.query,
		Version:       h.version,
	}
	if !result.snapshot.RefreshedAt.IsZero() {
		data.RefreshedAt = result.snapshot.RefreshedAt.In(time.Local).Format("02/01 15:04")
	}

	c.HTML(http.StatusOK, "index.html", data)
}

func (h *Handler) APIListEvents(c *gin.Context) {
	result := h.filter(c)
	c.JSON(http.StatusOK, h.views(result.events, false))
}

// APIMapEvents returns only events that can be placed on the map.
func (h *Handler) APIMapEvents(c *gin.Context) {
	result := h.filter(c)
	c.JSON(http.StatusOK, h.views(result.events, true))
}

func (h *Handler) APIFacets(c *gin.Context) {
	snap := h.snapshots.GetOrRefresh(c.Request.Context(), h.now())
	if snap == nil {
		snap = &carnival.Snapshot{}
	}

	c.JSON(http.StatusOK, gin.H{
		"neighborhoods": nonNil(snap.Neighborhoods),
		"styles":        nonNil(snap.Styles),
		"presets":       h.presets.List(),
	})
}

func (h *Handler) GetCalendar(c *gin.Context) {
	result := h.filter(c)

	var buf bytes.Buffer
	if err := h.calendar.Run(&buf, result.events, h.now()); err != nil {
		slog.Error("Calendar generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="blocos-bh.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", buf.Bytes())
}

// GetFeed serves the filtered events that have not finished yet as RSS.
func (h *Handler) GetFeed(c *gin.Context) {
	result := h.filter(c)

	upcoming := make([]carnival.AnnotatedEvent, 0, len(result.events))
	for _, event := range result.events {
		if event.Status != carnival.StatusFinished {
			upcoming = append(upcoming, event)
		}
	}

	rss, err := h.generator.Run(upcoming, h.now())
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Feed-Items", strconv.Itoa(len(upcoming)))
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func (h *Handler) APIVote(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "event_id is required"})
		return
	}

	action, err := database.ParseVoteAction(req.Action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	voterID := h.voterID(c, req.UserID)

	accepted, err := h.votes.RecordVote(req.EventID, voterID, c.ClientIP(), action)
	if err != nil {
		slog.Error("Database error", "operation", "record_vote", "event_id", req.EventID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}
	metrics.ObserveVote(string(action), accepted)

	likes, err := h.votes.GetLikes(req.EventID)
	if err != nil {
		slog.Warn("Likes unavailable", "event_id", req.EventID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  accepted,
		"likes":    likes,
		"voter_id": voterID,
	})
}

// voterID prefers the id sent by the client, then the cookie, and issues a
// new one when neither is a valid UUID.
func (h *Handler) voterID(c *gin.Context, provided string) string {
	if id, err := uuid.Parse(provided); err == nil {
		return id.String()
	}

	if cookie, err := c.Cookie(voterCookie); err == nil {
		if id, err := uuid.Parse(cookie); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(voterCookie, id, voterCookieMaxAge, "/", "", false, true)
	return id
}

func (h *Handler) APIGetLikes(c *gin.Context) {
	c.JSON(http.StatusOK, h.likes())
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": h.now().In(time.Local).Format(time.RFC3339),
	}

	if snap := h.snapshots.Current(); snap != nil {
		health["events"] = len(snap.Events)
		health["refreshed_at"] = snap.RefreshedAt.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIRefresh(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler not running"})
		return
	}

	task := tasks.NewRefreshSnapshotTask(h.snapshots, "api "+c.ClientIP(), true)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing refresh task", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue refresh task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Refresh enqueued",
		"task": gin.H{
			"id":   task.ID,
			"type": task.Type,
		},
	})
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
