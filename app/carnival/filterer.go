package carnival

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lysyi3m/blocos-bh/app/textfold"
)

type predicate func(e AnnotatedEvent) bool

type Filterer struct {
	presets *PresetCache
}

func NewFilterer(presets *PresetCache) *Filterer {
	return &Filterer{
		presets: presets,
	}
}

// Run keeps the events matching every filter category of q, preserving order.
// The flag reports whether q carried any filter parameter at all. Malformed
// parameters and unknown preset tokens are ignored.
func (f *Filterer) Run(events []AnnotatedEvent, q Query) ([]AnnotatedEvent, bool) {
	hadAny := q.HasAny()

	predicates := f.buildPredicates(q)
	if len(predicates) == 0 {
		return events, hadAny
	}

	filtered := make([]AnnotatedEvent, 0, len(events))
	for _, event := range events {
		if matchesAll(event, predicates) {
			filtered = append(filtered, event)
		}
	}

	return filtered, hadAny
}

func (f *Filterer) buildPredicates(q Query) []predicate {
	var predicates []predicate

	if _, err := time.Parse(isoDateLayout, q.Date); err == nil {
		target := q.Date
		predicates = append(predicates, func(e AnnotatedEvent) bool {
			return e.ScheduledAt != nil && e.ScheduledAt.Format(isoDateLayout) == target
		})
	}

	predicates = append(predicates, f.presetPredicates(q)...)

	if _, ok := periodRanges[q.Period]; ok {
		period := q.Period
		predicates = append(predicates, func(e AnnotatedEvent) bool {
			return e.ScheduledAt != nil && inPeriod(period, *e.ScheduledAt)
		})
	}

	if q.Neighborhood != "" {
		neighborhood := q.Neighborhood
		predicates = append(predicates, func(e AnnotatedEvent) bool {
			return e.Neighborhood == neighborhood
		})
	}

	if q.Style != "" {
		style := q.Style
		predicates = append(predicates, func(e AnnotatedEvent) bool {
			return textfold.Contains(e.CategoryRaw, style)
		})
	}

	if q.Text != "" {
		text := textfold.Fold(q.Text)
		predicates = append(predicates, func(e AnnotatedEvent) bool {
			return strings.Contains(textfold.Fold(e.Title), text) || strings.Contains(textfold.Fold(e.Address), text)
		})
	}

	if box, ok := parseBoundingBox(q); ok {
		predicates = append(predicates, box.contains)
	}

	if len(q.Statuses) > 0 {
		wanted := make(map[Status]bool, len(q.Statuses))
		for _, s := range q.Statuses {
			wanted[Status(s)] = true
		}
		predicates = append(predicates, func(e AnnotatedEvent) bool {
			return wanted[e.Status]
		})
	}

	return predicates
}

// presetPredicates ORs the presets of each kind group and returns one
// predicate per group.
func (f *Filterer) presetPredicates(q Query) []predicate {
	if f.presets == nil || len(q.Presets) == 0 {
		return nil
	}

	groups := make(map[string][]predicate)
	var order []string
	for _, token := range q.Presets {
		preset, ok := f.presets.Get(token)
		if !ok {
			continue
		}
		group := preset.Kind.group()
		if _, seen := groups[group]; !seen {
			order = append(order, group)
		}
		groups[group] = append(groups[group], presetPredicate(preset, q.Reference))
	}

	predicates := make([]predicate, 0, len(order))
	for _, group := range order {
		alternatives := groups[group]
		predicates = append(predicates, func(e AnnotatedEvent) bool {
			for _, p := range alternatives {
				if p(e) {
					return true
				}
			}
			return false
		})
	}

	return predicates
}

func presetPredicate(preset Preset, reference time.Time) predicate {
	switch preset.Kind {
	case PresetDate:
		dates := make(map[string]bool, len(preset.Dates))
		for _, d := range preset.Dates {
			dates[d] = true
		}
		return func(e AnnotatedEvent) bool {
			return e.ScheduledAt != nil && dates[e.ScheduledAt.Format(isoDateLayout)]
		}
	case PresetRelative:
		offset := preset.OffsetDays
		return func(e AnnotatedEvent) bool {
			if e.ScheduledAt == nil {
				return false
			}
			target := reference.In(e.ScheduledAt.Location()).AddDate(0, 0, offset)
			return e.ScheduledAt.Format(isoDateLayout) == target.Format(isoDateLayout)
		}
	case PresetPeriod:
		period := preset.Period
		return func(e AnnotatedEvent) bool {
			return e.ScheduledAt != nil && inPeriod(period, *e.ScheduledAt)
		}
	case PresetSize:
		size := preset.Size
		return func(e AnnotatedEvent) bool {
			return e.Size == size
		}
	case PresetStatus:
		statuses := preset.Statuses
		return func(e AnnotatedEvent) bool {
			for _, s := range statuses {
				if e.Status == s {
					return true
				}
			}
			return false
		}
	case PresetTag:
		tag := preset.Tag
		return func(e AnnotatedEvent) bool {
			switch tag {
			case TagKids:
				return e.IsKids
			case TagLGBT:
				return e.IsLGBT
			case TagPet:
				return e.IsPet
			case TagRehearsal:
				return e.IsRehearsal
			}
			return false
		}
	default:
		return func(AnnotatedEvent) bool { return false }
	}
}

type boundingBox struct {
	northEastLat, northEastLng float64
	southWestLat, southWestLng float64
}

func parseBoundingBox(q Query) (boundingBox, bool) {
	raw := []string{q.NorthEastLat, q.NorthEastLng, q.SouthWestLat, q.SouthWestLng}
	values := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return boundingBox{}, false
		}
		values[i] = v
	}

	return boundingBox{
		northEastLat: values[0],
		northEastLng: values[1],
		southWestLat: values[2],
		southWestLng: values[3],
	}, true
}

func (b boundingBox) contains(e AnnotatedEvent) bool {
	if !e.HasCoordinates() {
		return false
	}
	lat, lon := *e.Lat, *e.Lon
	return lat >= b.southWestLat && lat <= b.northEastLat && lon >= b.southWestLng && lon <= b.northEastLng
}

func matchesAll(e AnnotatedEvent, predicates []predicate) bool {
	for _, p := range predicates {
		if !p(e) {
			return false
		}
	}
	return true
}
