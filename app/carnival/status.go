package carnival

import (
	"sort"
	"time"
)

var statusLabels = map[Status]string{
	StatusSoon:     "Em Breve",
	StatusOngoing:  "Em Andamento",
	StatusEnding:   "Encerrando",
	StatusFinished: "Encerrado",
	StatusToday:    "Hoje",
	StatusFuture:   "",
}

var statusWeights = map[Status]int{
	StatusSoon:     0,
	StatusOngoing:  0,
	StatusEnding:   1,
	StatusToday:    2,
	StatusFuture:   3,
	StatusFinished: 4,
}

// Label returns the human-readable label of a status.
func (s Status) Label() string {
	return statusLabels[s]
}

func (s Status) Weight() int {
	return statusWeights[s]
}

// StatusAt derives the lifecycle status of an event starting at scheduledAt.
// The thresholds overlap at their boundaries and are evaluated in order.
func StatusAt(scheduledAt *time.Time, now time.Time) Status {
	if scheduledAt == nil {
		return StatusFuture
	}

	diff := scheduledAt.Sub(now).Hours()
	switch {
	case diff > 0 && diff <= 2:
		return StatusSoon
	case diff >= -3 && diff <= 0:
		return StatusOngoing
	case diff >= -5 && diff < -3:
		return StatusEnding
	case diff < -5:
		return StatusFinished
	case sameDay(*scheduledAt, now):
		return StatusToday
	default:
		return StatusFuture
	}
}

// Annotate returns a new list with every event's status computed against now,
// ordered by weight and then by start time. Undated events sort last within
// their weight. The input is not modified.
func Annotate(events []Event, now time.Time) []AnnotatedEvent {
	annotated := make([]AnnotatedEvent, len(events))
	for i, event := range events {
		status := StatusAt(event.ScheduledAt, now)
		annotated[i] = AnnotatedEvent{
			Event:       event,
			Status:      status,
			StatusLabel: status.Label(),
			SortWeight:  status.Weight(),
		}
	}

	sort.SliceStable(annotated, func(i, j int) bool {
		a, b := annotated[i], annotated[j]
		if a.SortWeight != b.SortWeight {
			return a.SortWeight < b.SortWeight
		}
		switch {
		case a.ScheduledAt == nil:
			return false
		case b.ScheduledAt == nil:
			return true
		default:
			return a.ScheduledAt.Before(*b.ScheduledAt)
		}
	})

	return annotated
}

// sameDay compares calendar dates in the event's own location.
func sameDay(at, now time.Time) bool {
	y1, m1, d1 := at.Date()
	y2, m2, d2 := now.In(at.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
