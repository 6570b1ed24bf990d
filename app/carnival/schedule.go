package carnival

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdayAbbrev = map[time.Weekday]string{
	time.Monday:    "Seg",
	time.Tuesday:   "Ter",
	time.Wednesday: "Qua",
	time.Thursday:  "Qui",
	time.Friday:    "Sex",
	time.Saturday:  "Sáb",
	time.Sunday:    "Dom",
}

const sheetDateLayout = "2/1/2006"

var clockLayouts = []string{"15:04", "15:04:05", "15h04", "15h", "15"}

// ParseSchedule interprets the sheet's date and time cells. The combined date
// and time is tried first, then the date alone. When neither parses the raw
// text is kept for display and no timestamp is returned.
func ParseSchedule(rawDate, rawTime string, loc *time.Location) (*time.Time, string) {
	if strings.TrimSpace(rawDate) == "" {
		return nil, UndefinedDate
	}

	// Exports sometimes append a midnight time to the date cell.
	dateToken := strings.Fields(rawDate)[0]
	day, err := time.ParseInLocation(sheetDateLayout, dateToken, loc)
	if err != nil {
		return nil, strings.TrimSpace(rawDate + " " + rawTime)
	}

	if hour, minute, ok := parseClock(rawTime); ok {
		at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
		return &at, fmt.Sprintf("%s (%s) - %s", at.Format("02/01"), weekdayAbbrev[at.Weekday()], at.Format("15:04"))
	}

	return &day, fmt.Sprintf("%s (%s)", day.Format("02/01"), weekdayAbbrev[day.Weekday()])
}

func parseClock(raw string) (int, int, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return 0, 0, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Hour(), t.Minute(), true
		}
	}
	return 0, 0, false
}

// ParseRehearsalSchedule interprets "dd/mm" rehearsal dates. Rehearsals run
// from the second half of the previous year up to the carnival, so months
// after June belong to seasonYear-1. An unparseable time keeps midnight.
func ParseRehearsalSchedule(rawDate, rawTime string, seasonYear int, loc *time.Location) (*time.Time, string) {
	rawDate = strings.TrimSpace(rawDate)
	rawTime = strings.TrimSpace(rawTime)
	fallback := fmt.Sprintf("%s - %s", rawDate, rawTime)

	parts := strings.Split(rawDate, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fallback
	}

	day, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fallback
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || month < 1 || month > 12 {
		return nil, fallback
	}

	year := seasonYear
	if month > 6 {
		year = seasonYear - 1
	}
	if len(parts) == 3 {
		if year, err = strconv.Atoi(strings.TrimSpace(parts[2])); err != nil {
			return nil, fallback
		}
	}

	hour, minute := 0, 0
	if h, m, ok := parseClock(rawTime); ok {
		hour, minute = h, m
	}

	at := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	if at.Day() != day || int(at.Month()) != month {
		return nil, fallback
	}

	return &at, fmt.Sprintf("%02d/%02d (%s) - %s", day, month, weekdayAbbrev[at.Weekday()], at.Format("15:04"))
}
