package carnival

import (
	"context"
	"sync"
	"time"

	"github.com/lysyi3m/blocos-bh/app/geo"
)

func ts(year int, month time.Month, day, hour, minute int) *time.Time {
	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	return &t
}

func coord(v float64) *float64 {
	return &v
}

// fakeResolver resolves only the keys it knows and records every call.
type fakeResolver struct {
	mu     sync.Mutex
	points map[string]geo.Point
	calls  []string
}

func newFakeResolver(points map[string]geo.Point) *fakeResolver {
	return &fakeResolver{points: points}
}

func (r *fakeResolver) Resolve(ctx context.Context, address, neighborhood string) geo.Result {
	return r.lookup(geo.AddressKey(address, neighborhood))
}

func (r *fakeResolver) ResolvePlace(ctx context.Context, place string) geo.Result {
	return r.lookup(geo.PlaceKey(place))
}

func (r *fakeResolver) lookup(key string) geo.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, key)

	if key == "" {
		return geo.Result{Outcome: geo.Invalid}
	}
	if p, ok := r.points[key]; ok {
		return geo.Result{Outcome: geo.Resolved, Point: p}
	}
	return geo.Result{Outcome: geo.Unavailable}
}
