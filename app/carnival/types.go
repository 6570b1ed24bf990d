package carnival

import (
	"time"
)

// Event is one normalized party or rehearsal. It is never modified after
// normalization; status lives on AnnotatedEvent.
type Event struct {
	ID              string
	Title           string
	Neighborhood    string
	Address         string
	ScheduledAt     *time.Time
	DisplayDate     string
	CategoryRaw     string
	CategoryDisplay string
	Description     string
	Size            int
	Lat             *float64
	Lon             *float64
	IsKids          bool
	IsLGBT          bool
	IsPet           bool
	IsRehearsal     bool
	TicketURL       string
}

// HasCoordinates reports whether the event can be placed on a map.
func (e Event) HasCoordinates() bool {
	return e.Lat != nil && e.Lon != nil
}

type Status string

const (
	StatusSoon     Status = "em-breve"
	StatusOngoing  Status = "em-andamento"
	StatusEnding   Status = "encerrando"
	StatusFinished Status = "encerrado"
	StatusToday    Status = "hoje"
	StatusFuture   Status = "futuro"
)

// AnnotatedEvent is an Event decorated with its status relative to a
// reference time.
type AnnotatedEvent struct {
	Event
	Status      Status
	StatusLabel string
	SortWeight  int
}

// Snapshot is the immutable result of one refresh cycle.
type Snapshot struct {
	Events        []Event
	Styles        []string
	Neighborhoods []string
	RefreshedAt   time.Time
}

// EventCount counts the events sheet entries, leaving rehearsals out.
func (s *Snapshot) EventCount() int {
	n := 0
	for _, e := range s.Events {
		if !e.IsRehearsal {
			n++
		}
	}
	return n
}

// Placeholders used when the spreadsheet leaves a field blank or unparseable.
const (
	UntitledEvent    = "Bloco sem nome"
	UndefinedDate    = "A definir"
	MixedCategory    = "Variado"
	DefaultCategory  = "Outros"
	RehearsalLabel   = "Ensaio"
	RehearsalRegion  = "Belo Horizonte"
	RehearsalSize    = 2
	maxCategoryRunes = 25
)
