package carnival

import (
	"net/url"
	"reflect"
	"testing"
	"time"
)

var filterNow = time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)

func filterFixture() []AnnotatedEvent {
	events := []Event{
		{ID: "morning-big", Title: "Então Brilha", Neighborhood: "Centro", Address: "Rua Guaicurus", CategoryRaw: "Marchinhas", Size: 3, ScheduledAt: ts(2026, 2, 14, 6, 0), Lat: coord(-19.915), Lon: coord(-43.938)},
		{ID: "morning-small", Title: "Bloco do Pirulito", Neighborhood: "Floresta", Address: "Praça Floriano", CategoryRaw: "Axé, Samba", Size: 1, ScheduledAt: ts(2026, 2, 14, 9, 0), IsKids: true},
		{ID: "night-big", Title: "Baianas Ozadas", Neighborhood: "Centro", Address: "Praça da Estação", CategoryRaw: "Axé", Size: 3, ScheduledAt: ts(2026, 2, 14, 21, 0), Lat: coord(-19.916), Lon: coord(-43.934), IsLGBT: true},
		{ID: "late-night", Title: "Bloco da Madrugada", Neighborhood: "Savassi", Address: "Rua Pernambuco", CategoryRaw: "Funk", Size: 2, ScheduledAt: ts(2026, 2, 15, 2, 0), IsPet: true},
		{ID: "afternoon-medium", Title: "Chama o Síndico", Neighborhood: "Santa Tereza", Address: "Rua Mármore", CategoryRaw: "Rock", Size: 2, ScheduledAt: ts(2026, 2, 15, 14, 0), Lat: coord(-19.92), Lon: coord(-43.91)},
		{ID: "undated-big", Title: "Bloco Sem Data", Neighborhood: "Centro", Address: "A definir", CategoryRaw: "Samba", Size: 3},
		{ID: "rehearsal", Title: "Ensaio Aberto", Neighborhood: "Belo Horizonte", Address: "Mineirão", CategoryRaw: "Ensaio", Size: 2, ScheduledAt: ts(2026, 2, 7, 19, 0), IsRehearsal: true},
	}
	return Annotate(events, filterNow)
}

func ids(events []AnnotatedEvent) map[string]bool {
	set := make(map[string]bool, len(events))
	for _, e := range events {
		set[e.ID] = true
	}
	return set
}

func runFilter(t *testing.T, raw string) ([]AnnotatedEvent, bool) {
	t.Helper()
	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("Bad query %q: %v", raw, err)
	}
	filterer := NewFilterer(NewPresetCache(""))
	return filterer.Run(filterFixture(), ParseQuery(values, filterNow))
}

func assertIDs(t *testing.T, events []AnnotatedEvent, expected ...string) {
	t.Helper()
	want := make(map[string]bool, len(expected))
	for _, id := range expected {
		want[id] = true
	}
	if got := ids(events); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected events %v, got %v", expected, got)
	}
}

func TestFilterNoParameters(t *testing.T) {
	result, hadAny := runFilter(t, "")
	if hadAny {
		t.Error("Expected hadAny to be false without parameters")
	}
	if len(result) != len(filterFixture()) {
		t.Errorf("Expected all events, got %d", len(result))
	}
}

func TestFilterMorningAndLarge(t *testing.T) {
	result, hadAny := runFilter(t, "filtro=manha&filtro=grande")
	if !hadAny {
		t.Error("Expected hadAny to be true")
	}
	assertIDs(t, result, "morning-big")

	for _, e := range result {
		if e.Size != 3 || e.ScheduledAt.Hour() < 5 || e.ScheduledAt.Hour() >= 12 {
			t.Errorf("Event %s does not satisfy both presets", e.ID)
		}
	}
}

func TestFilterPresetsOrWithinKind(t *testing.T) {
	result, _ := runFilter(t, "filtro=manha,noite")
	assertIDs(t, result, "morning-big", "morning-small", "night-big", "late-night", "rehearsal")

	result, _ = runFilter(t, "filtro=pequeno&filtro=medio")
	assertIDs(t, result, "morning-small", "late-night", "afternoon-medium", "rehearsal")
}

func TestFilterNightWrapsMidnight(t *testing.T) {
	result, _ := runFilter(t, "periodo=noite")
	assertIDs(t, result, "night-big", "late-night", "rehearsal")
}

func TestFilterUnknownTokensIgnored(t *testing.T) {
	result, hadAny := runFilter(t, "filtro=nao-existe")
	if !hadAny {
		t.Error("Expected hadAny to be true for a supplied token")
	}
	if len(result) != len(filterFixture()) {
		t.Errorf("Expected unknown token to leave the list unchanged, got %d", len(result))
	}
}

func TestFilterTimeFiltersExcludeUndated(t *testing.T) {
	queries := []string{"data=2026-02-14", "filtro=hoje", "filtro=sabado", "periodo=manha", "filtro=tarde"}
	for _, q := range queries {
		result, _ := runFilter(t, q)
		if ids(result)["undated-big"] {
			t.Errorf("Expected %q to exclude undated events", q)
		}
	}

	result, _ := runFilter(t, "filtro=grande")
	if !ids(result)["undated-big"] {
		t.Error("Expected size filter to keep undated events")
	}

	result, _ = runFilter(t, "bairro=Centro")
	if !ids(result)["undated-big"] {
		t.Error("Expected neighborhood filter to keep undated events")
	}
}

func TestFilterDates(t *testing.T) {
	result, _ := runFilter(t, "data=2026-02-15")
	assertIDs(t, result, "late-night", "afternoon-medium")

	result, _ = runFilter(t, "filtro=hoje")
	assertIDs(t, result, "morning-big", "morning-small", "night-big")

	result, _ = runFilter(t, "filtro=amanha")
	assertIDs(t, result, "late-night", "afternoon-medium")

	result, _ = runFilter(t, "filtro=pre-carnaval")
	assertIDs(t, result, "rehearsal")

	result, hadAny := runFilter(t, "data=15-02-2026")
	if !hadAny || len(result) != len(filterFixture()) {
		t.Errorf("Expected malformed date to be skipped, got %d events (hadAny=%v)", len(result), hadAny)
	}
}

func TestFilterDateAndStatusGroupsCombine(t *testing.T) {
	result, _ := runFilter(t, "filtro=hoje&filtro=em-breve")
	assertIDs(t, result, "night-big")
}

func TestFilterNeighborhoodStyleAndText(t *testing.T) {
	result, _ := runFilter(t, "bairro=Centro")
	assertIDs(t, result, "morning-big", "night-big", "undated-big")

	result, _ = runFilter(t, "estilo=axe")
	assertIDs(t, result, "morning-small", "night-big")

	result, _ = runFilter(t, "categoria=SAMBA")
	assertIDs(t, result, "morning-small", "undated-big")

	result, _ = runFilter(t, "q=praca")
	assertIDs(t, result, "morning-small", "night-big")

	result, _ = runFilter(t, "q=sindico")
	assertIDs(t, result, "afternoon-medium")
}

func TestFilterBoundingBox(t *testing.T) {
	result, hadAny := runFilter(t, "ne_lat=-19.9&ne_lng=-43.92&sw_lat=-19.95&sw_lng=-43.95")
	if !hadAny {
		t.Error("Expected hadAny to be true")
	}
	assertIDs(t, result, "morning-big", "night-big")

	result, _ = runFilter(t, "ne_lat=0&ne_lng=0&sw_lat=-90&sw_lng=-180")
	for _, e := range result {
		if !e.HasCoordinates() {
			t.Errorf("Expected bounding box to exclude %s without coordinates", e.ID)
		}
	}
	assertIDs(t, result, "morning-big", "night-big", "afternoon-medium")
}

func TestFilterMalformedBoundingBoxIsSkipped(t *testing.T) {
	result, hadAny := runFilter(t, "ne_lat=abc&ne_lng=-43.92&sw_lat=-19.95&sw_lng=-43.95")
	if !hadAny {
		t.Error("Expected hadAny to be true for a malformed bounding box")
	}
	if len(result) != len(filterFixture()) {
		t.Errorf("Expected malformed bounding box to be skipped, got %d events", len(result))
	}

	result, _ = runFilter(t, "ne_lat=-19.9")
	if len(result) != len(filterFixture()) {
		t.Errorf("Expected partial bounding box to be skipped, got %d events", len(result))
	}
}

func TestFilterStatusAndTags(t *testing.T) {
	result, _ := runFilter(t, "status=encerrado")
	assertIDs(t, result, "morning-big", "morning-small", "rehearsal")

	result, _ = runFilter(t, "status=futuro")
	assertIDs(t, result, "late-night", "afternoon-medium", "undated-big")

	result, _ = runFilter(t, "filtro=infantil&filtro=lgbt")
	assertIDs(t, result, "morning-small", "night-big")

	result, _ = runFilter(t, "filtro=ensaios")
	assertIDs(t, result, "rehearsal")
}

func TestFilterCategoriesCommute(t *testing.T) {
	filterer := NewFilterer(NewPresetCache(""))
	all := filterFixture()

	a := Query{Neighborhood: "Centro", Reference: filterNow}
	b := Query{Presets: []string{"grande"}, Reference: filterNow}

	ab, _ := filterer.Run(all, a)
	ab, _ = filterer.Run(ab, b)

	ba, _ := filterer.Run(all, b)
	ba, _ = filterer.Run(ba, a)

	combined, _ := filterer.Run(all, Query{Neighborhood: "Centro", Presets: []string{"grande"}, Reference: filterNow})

	if !reflect.DeepEqual(ab, ba) {
		t.Error("Expected filter order not to matter")
	}
	if !reflect.DeepEqual(ab, combined) {
		t.Error("Expected sequential filters to equal the combined query")
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	all := filterFixture()
	result, _ := runFilter(t, "bairro=Centro")

	position := make(map[string]int, len(all))
	for i, e := range all {
		position[e.ID] = i
	}
	for i := 1; i < len(result); i++ {
		if position[result[i-1].ID] > position[result[i].ID] {
			t.Errorf("Expected input order to be preserved, got %s before %s", result[i-1].ID, result[i].ID)
		}
	}
}
