package carnival

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
)

// eventDuration is assumed for every party; the sheet has no end time.
const eventDuration = 4 * time.Hour

type CalendarExporter struct {
	productID string
	baseURL   string
}

func NewCalendarExporter(baseURL, version string) *CalendarExporter {
	return &CalendarExporter{
		productID: fmt.Sprintf("-//Blocos BH//%s//PT", version),
		baseURL:   baseURL,
	}
}

// Run writes one VEVENT per dated event. Undated events are skipped.
func (c *CalendarExporter) Run(w io.Writer, events []AnnotatedEvent, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, c.productID)

	for _, event := range events {
		if event.ScheduledAt == nil {
			continue
		}
		cal.Children = append(cal.Children, c.buildEvent(event, stamp).Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func (c *CalendarExporter) buildEvent(event AnnotatedEvent, stamp time.Time) *ical.Event {
	start := event.ScheduledAt.UTC()

	vevent := ical.NewEvent()
	vevent.Props.SetText(ical.PropUID, event.ID+"@blocos-bh")
	vevent.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	vevent.Props.SetDateTime(ical.PropDateTimeStart, start)
	vevent.Props.SetDateTime(ical.PropDateTimeEnd, start.Add(eventDuration))
	vevent.Props.SetText(ical.PropSummary, event.Title)
	vevent.Props.SetText(ical.PropDescription, describe(event))
	vevent.Props.SetText(ical.PropCategories, event.CategoryDisplay)

	location := event.Address
	if event.Neighborhood != "" && event.Neighborhood != event.Address {
		if location != "" {
			location += ", "
		}
		location += event.Neighborhood
	}
	if location != "" {
		vevent.Props.SetText(ical.PropLocation, location)
	}

	if event.HasCoordinates() {
		geo := ical.NewProp(ical.PropGeo)
		geo.Value = fmt.Sprintf("%.6f;%.6f", *event.Lat, *event.Lon)
		vevent.Props.Set(geo)
	}

	link := event.TicketURL
	if link == "" && c.baseURL != "" {
		link = fmt.Sprintf("%s/#evento-%s", c.baseURL, event.ID)
	}
	if link != "" {
		prop := ical.NewProp(ical.PropURL)
		prop.Value = link
		vevent.Props.Set(prop)
	}

	return vevent
}
