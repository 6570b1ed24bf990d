package carnival

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lysyi3m/blocos-bh/app/geo"
	"github.com/lysyi3m/blocos-bh/app/sheet"
	"github.com/lysyi3m/blocos-bh/app/textfold"
)

// Resolver looks up coordinates; *geo.Geocoder satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, address, neighborhood string) geo.Result
	ResolvePlace(ctx context.Context, place string) geo.Result
}

var (
	kidsPattern = regexp.MustCompile(`(?i)(bloco)?\s*infantil|crian[çc]a|baby|👶`)
	lgbtPattern = regexp.MustCompile(`(?i)lgbt[\p{L}\p{N}_]*|gay|diversidade`)
	petPattern  = regexp.MustCompile(`(?i)pet|cachorro|animal|🐶|🐕`)

	// Rainbow flag and the pieces of its emoji sequence.
	lgbtFlagPattern = regexp.MustCompile(`[\x{1F3F3}\x{FE0F}\x{200D}\x{1F308}]`)

	edgePattern    = regexp.MustCompile(`^[^\p{L}\p{N}_]+|[^\p{L}\p{N}_]+$`)
	styleSeparator = regexp.MustCompile(`[;,/]\s*|\s+e\s+`)
	styleJoiner    = regexp.MustCompile(`\s+e\s+`)
)

type Normalizer struct {
	resolver   Resolver
	seasonYear int
	location   *time.Location
}

func NewNormalizer(resolver Resolver, seasonYear int, location *time.Location) *Normalizer {
	if location == nil {
		location = time.Local
	}
	return &Normalizer{
		resolver:   resolver,
		seasonYear: seasonYear,
		location:   location,
	}
}

// Run normalizes sheet rows in input order and returns the sorted set of
// style tags seen across all rows.
func (n *Normalizer) Run(ctx context.Context, rows []sheet.EventRow) ([]Event, []string) {
	events := make([]Event, 0, len(rows))
	styles := make(map[string]struct{})

	for _, row := range rows {
		event, tags := n.NormalizeEvent(ctx, row)
		events = append(events, event)
		for _, tag := range tags {
			styles[tag] = struct{}{}
		}
	}

	return events, sortedKeys(styles)
}

func (n *Normalizer) NormalizeEvent(ctx context.Context, row sheet.EventRow) (Event, []string) {
	title := strings.TrimSpace(row.Name)
	if title == "" {
		title = UntitledEvent
	}

	categoryRaw := strings.TrimSpace(row.Style)
	if categoryRaw == "" {
		categoryRaw = DefaultCategory
	}
	categoryDisplay, tags := CategorizeStyle(categoryRaw)

	description, isKids, isLGBT, isPet := ExtractTags(strings.TrimSpace(row.Notes))
	scheduledAt, displayDate := ParseSchedule(row.Date, row.Time, n.location)

	event := Event{
		ID:              EventID(title, displayDate),
		Title:           title,
		Neighborhood:    strings.TrimSpace(row.Neighborhood),
		Address:         strings.TrimSpace(row.Address),
		ScheduledAt:     scheduledAt,
		DisplayDate:     displayDate,
		CategoryRaw:     categoryRaw,
		CategoryDisplay: categoryDisplay,
		Description:     description,
		Size:            ClassifySize(row.Size),
		IsKids:          isKids,
		IsLGBT:          isLGBT,
		IsPet:           isPet,
	}

	if n.resolver != nil {
		event.Lat, event.Lon = n.resolver.Resolve(ctx, event.Address, event.Neighborhood).Coordinates()
	}

	return event, tags
}

func (n *Normalizer) RunRehearsals(ctx context.Context, rows []sheet.RehearsalRow) []Event {
	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, n.NormalizeRehearsal(ctx, row))
	}
	return events
}

func (n *Normalizer) NormalizeRehearsal(ctx context.Context, row sheet.RehearsalRow) Event {
	title := strings.TrimSpace(row.Name)
	scheduledAt, displayDate := ParseRehearsalSchedule(row.Date, row.Time, n.seasonYear, n.location)

	event := Event{
		ID:              EventID(title, displayDate+"ensaio"),
		Title:           title,
		Neighborhood:    RehearsalRegion,
		Address:         strings.TrimSpace(row.Place),
		ScheduledAt:     scheduledAt,
		DisplayDate:     displayDate,
		CategoryRaw:     RehearsalLabel,
		CategoryDisplay: RehearsalLabel,
		Size:            RehearsalSize,
		IsRehearsal:     true,
		TicketURL:       strings.TrimSpace(row.Link),
	}

	if n.resolver != nil {
		event.Lat, event.Lon = n.resolver.ResolvePlace(ctx, event.Address).Coordinates()
	}

	return event
}

// EventID derives a short stable identifier from the title and display date.
func EventID(title, displayDate string) string {
	sum := sha256.Sum256([]byte(title + displayDate))
	return hex.EncodeToString(sum[:8])
}

// CategorizeStyle returns the display category and the atomic style tags of
// a raw style cell. Long or multi-valued styles display as MixedCategory.
func CategorizeStyle(raw string) (string, []string) {
	display := raw
	if utf8.RuneCountInString(raw) > maxCategoryRunes || strings.Contains(raw, ",") || styleJoiner.MatchString(raw) {
		display = MixedCategory
	}

	var tags []string
	for _, part := range styleSeparator.Split(raw, -1) {
		tag := textfold.Title(strings.TrimSpace(part))
		if utf8.RuneCountInString(tag) > 1 {
			tags = append(tags, tag)
		}
	}

	return display, tags
}

// ExtractTags detects the kids, LGBT and pet markers in free text and strips
// the matched keywords and emoji from it.
func ExtractTags(text string) (clean string, isKids, isLGBT, isPet bool) {
	clean = text

	if kidsPattern.MatchString(text) {
		isKids = true
		clean = kidsPattern.ReplaceAllString(clean, "")
	}

	if lgbtPattern.MatchString(text) || strings.Contains(text, "\U0001F3F3") {
		isLGBT = true
		clean = lgbtPattern.ReplaceAllString(clean, "")
		clean = lgbtFlagPattern.ReplaceAllString(clean, "")
	}

	if petPattern.MatchString(text) {
		isPet = true
		clean = petPattern.ReplaceAllString(clean, "")
	}

	clean = strings.TrimSpace(edgePattern.ReplaceAllString(clean, ""))
	return clean, isKids, isLGBT, isPet
}

// ClassifySize scores the free-text size cell: 3 for large, 2 for medium,
// 1 otherwise.
func ClassifySize(raw string) int {
	folded := textfold.Fold(raw)
	switch {
	case strings.Contains(folded, "grande"):
		return 3
	case strings.Contains(folded, "medio"):
		return 2
	default:
		return 1
	}
}
