package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blocos"

var (
	geocodeResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geocode_results_total",
		Help:      "Geocoding resolutions by outcome and origin (cache or api).",
	}, []string{"outcome", "origin"})

	geocacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "geocache_entries",
		Help:      "Number of addresses in the geocoding cache.",
	})

	refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_total",
		Help:      "Snapshot refresh attempts by result.",
	}, []string{"result"})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "refresh_duration_seconds",
		Help:      "Time spent downloading and normalizing the spreadsheets.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	snapshotEvents = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "snapshot_events",
		Help:      "Number of events in the current snapshot.",
	})

	votes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_total",
		Help:      "Vote requests by action and result.",
	}, []string{"action", "result"})
)

func ObserveGeocode(outcome string, cached bool) {
	origin := "api"
	if cached {
		origin = "cache"
	}
	geocodeResults.WithLabelValues(outcome, origin).Inc()
}

func SetGeocacheEntries(n int) {
	geocacheEntries.Set(float64(n))
}

func ObserveRefresh(result string, took time.Duration, events int) {
	refreshes.WithLabelValues(result).Inc()
	refreshDuration.Observe(took.Seconds())
	if result == "ok" {
		snapshotEvents.Set(float64(events))
	}
}

func ObserveVote(action string, accepted bool) {
	result := "accepted"
	if !accepted {
		result = "rejected"
	}
	votes.WithLabelValues(action, result).Inc()
}
