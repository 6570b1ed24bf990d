package carnival

import (
	"net/url"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

const (
	PeriodMorning   = "manha"
	PeriodAfternoon = "tarde"
	PeriodNight     = "noite"
)

type hourRange struct {
	from, to int
}

// Night wraps past midnight.
var periodRanges = map[string][]hourRange{
	PeriodMorning:   {{5, 12}},
	PeriodAfternoon: {{12, 18}},
	PeriodNight:     {{18, 24}, {0, 5}},
}

func inPeriod(period string, at time.Time) bool {
	hour := at.Hour()
	for _, r := range periodRanges[period] {
		if hour >= r.from && hour < r.to {
			return true
		}
	}
	return false
}

// Query holds the raw filter parameters of one request. Reference is the
// instant relative presets such as "hoje" are resolved against.
type Query struct {
	Date         string
	Presets      []string
	Period       string
	Neighborhood string
	Style        string
	Text         string
	NorthEastLat string
	NorthEastLng string
	SouthWestLat string
	SouthWestLng string
	Statuses     []string
	Reference    time.Time
}

// ParseQuery reads filter parameters from a request query string. Legacy
// parameter names are accepted as aliases.
func ParseQuery(values url.Values, reference time.Time) Query {
	return Query{
		Date:         first(values, "data", "data_filtro"),
		Presets:      multi(values, "filtro"),
		Period:       strings.ToLower(first(values, "periodo", "periodo_dia")),
		Neighborhood: first(values, "bairro"),
		Style:        first(values, "estilo", "categoria"),
		Text:         first(values, "q"),
		NorthEastLat: first(values, "ne_lat"),
		NorthEastLng: first(values, "ne_lng"),
		SouthWestLat: first(values, "sw_lat"),
		SouthWestLng: first(values, "sw_lng"),
		Statuses:     multi(values, "status"),
		Reference:    reference,
	}
}

// HasAny reports whether any filter parameter was supplied, whether or not it
// is well formed.
func (q Query) HasAny() bool {
	scalars := []string{
		q.Date, q.Period, q.Neighborhood, q.Style, q.Text,
		q.NorthEastLat, q.NorthEastLng, q.SouthWestLat, q.SouthWestLng,
	}
	for _, v := range scalars {
		if v != "" {
			return true
		}
	}
	return len(q.Presets) > 0 || len(q.Statuses) > 0
}

func first(values url.Values, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(values.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

// multi collects repeated and comma-separated values.
func multi(values url.Values, name string) []string {
	var out []string
	for _, raw := range values[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
