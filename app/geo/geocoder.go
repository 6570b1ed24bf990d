package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lysyi3m/blocos-bh/app/metrics"
)

type Outcome int

const (
	Resolved Outcome = iota
	Unavailable
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case Unavailable:
		return "unavailable"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

type Result struct {
	Outcome Outcome
	Point   Point
	Cached  bool
}

// Coordinates returns the pair as optional values; both are nil unless the
// result was resolved.
func (r Result) Coordinates() (*float64, *float64) {
	if r.Outcome != Resolved {
		return nil, nil
	}
	lat, lon := r.Point.Lat, r.Point.Lon
	return &lat, &lon
}

var errMalformedResponse = errors.New("malformed geocoding response")

type Options struct {
	APIKey    string
	BaseURL   string
	Region    string
	Timeout   time.Duration
	UserAgent string
	// CacheOnly disables external lookups; misses resolve as Unavailable.
	CacheOnly bool
}

type Geocoder struct {
	cache     *Cache
	client    *resty.Client
	apiKey    string
	region    string
	cacheOnly bool
	lookupMu  sync.Mutex
}

func NewGeocoder(cache *Cache, opts Options) *Geocoder {
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	return &Geocoder{
		cache:     cache,
		client:    client,
		apiKey:    opts.APIKey,
		region:    opts.Region,
		cacheOnly: opts.CacheOnly,
	}
}

// WithCacheOnly returns a geocoder sharing the same cache and client that
// never performs external lookups.
func (g *Geocoder) WithCacheOnly() *Geocoder {
	return &Geocoder{
		cache:     g.cache,
		client:    g.client,
		apiKey:    g.apiKey,
		region:    g.region,
		cacheOnly: true,
	}
}

func (g *Geocoder) Cache() *Cache {
	return g.cache
}

// Resolve geocodes a street address within a neighborhood. Successful external
// lookups are written to the cache; persisting the cache is the caller's job.
func (g *Geocoder) Resolve(ctx context.Context, address, neighborhood string) Result {
	address = strings.TrimSpace(address)
	neighborhood = strings.TrimSpace(neighborhood)

	var query string
	if address != "" {
		query = fmt.Sprintf("%s, %s, %s", address, neighborhood, g.region)
	} else {
		query = fmt.Sprintf("%s, %s", neighborhood, g.region)
	}

	return g.resolve(ctx, AddressKey(address, neighborhood), query)
}

// ResolvePlace geocodes a free-form location such as a rehearsal venue.
func (g *Geocoder) ResolvePlace(ctx context.Context, place string) Result {
	key := PlaceKey(place)
	return g.resolve(ctx, key, fmt.Sprintf("%s, %s", key, g.region))
}

func (g *Geocoder) resolve(ctx context.Context, key, query string) Result {
	if key == "" {
		return Result{Outcome: Invalid}
	}

	if p, ok := g.cache.Lookup(key); ok {
		metrics.ObserveGeocode(Resolved.String(), true)
		return Result{Outcome: Resolved, Point: p, Cached: true}
	}

	if g.apiKey == "" || g.cacheOnly {
		return Result{Outcome: Unavailable}
	}

	g.lookupMu.Lock()
	defer g.lookupMu.Unlock()

	// Another caller may have resolved the key while we waited.
	if p, ok := g.cache.Lookup(key); ok {
		metrics.ObserveGeocode(Resolved.String(), true)
		return Result{Outcome: Resolved, Point: p, Cached: true}
	}

	p, err := g.lookup(ctx, query)
	if err != nil {
		outcome := Unavailable
		if errors.Is(err, errMalformedResponse) {
			outcome = Invalid
		}
		slog.Warn("Geocoding failed", "key", key, "outcome", outcome.String(), "error", err)
		metrics.ObserveGeocode(outcome.String(), false)
		return Result{Outcome: outcome}
	}

	g.cache.Store(key, p)
	metrics.ObserveGeocode(Resolved.String(), false)
	metrics.SetGeocacheEntries(g.cache.Len())
	slog.Debug("Geocoded address", "key", key, "lat", p.Lat, "lon", p.Lon)

	return Result{Outcome: Resolved, Point: p}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Geometry struct {
			Location struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (g *Geocoder) lookup(ctx context.Context, query string) (Point, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"address": query,
			"key":     g.apiKey,
		}).
		Get("/maps/api/geocode/json")
	if err != nil {
		return Point{}, fmt.Errorf("geocoding request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return Point{}, fmt.Errorf("HTTP error: %s", resp.Status())
	}

	var payload geocodeResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return Point{}, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}

	if payload.Status != "OK" {
		return Point{}, fmt.Errorf("provider status %s: %s", payload.Status, payload.ErrorMessage)
	}

	if len(payload.Results) == 0 {
		return Point{}, fmt.Errorf("%w: no results", errMalformedResponse)
	}

	loc := payload.Results[0].Geometry.Location
	if loc.Lat == nil || loc.Lng == nil {
		return Point{}, fmt.Errorf("%w: missing coordinates", errMalformedResponse)
	}

	return Point{Lat: *loc.Lat, Lon: *loc.Lng}, nil
}
