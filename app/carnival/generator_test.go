package carnival

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
)

func TestGeneratorRun(t *testing.T) {
	now := time.Date(2026, 2, 14, 20, 0, 0, 0, time.UTC)
	events := Annotate([]Event{
		{
			ID:              "abc123",
			Title:           "Baianas Ozadas",
			Neighborhood:    "Centro",
			Address:         "Praça da Estação",
			ScheduledAt:     ts(2026, 2, 14, 21, 0),
			DisplayDate:     "14/02 (Sáb) - 21:00",
			CategoryRaw:     "Axé",
			CategoryDisplay: "Axé",
			Description:     "Com trio & bateria",
			Lat:             coord(-19.916),
			Lon:             coord(-43.934),
			IsLGBT:          true,
		},
		{
			ID:              "def456",
			Title:           "Ensaio <Aberto>",
			DisplayDate:     "A definir",
			CategoryRaw:     "Ensaio",
			CategoryDisplay: "Ensaio",
			TicketURL:       "https://example.com/ingresso",
		},
	}, now)

	generator := NewGenerator("https://blocos.example.com/", "1.2.3")
	rss, err := generator.Run(events, now)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(rss, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("RSS should contain XML declaration")
	}
	if !strings.Contains(rss, `<atom:link href="https://blocos.example.com/feed.xml" rel="self"`) {
		t.Error("RSS should contain the self link")
	}
	if !strings.Contains(rss, "<generator>Blocos-BH/1.2.3</generator>") {
		t.Error("RSS should contain the generator version")
	}

	feed, err := gofeed.NewParser().ParseString(rss)
	if err != nil {
		t.Fatalf("Generated RSS does not parse: %v", err)
	}

	if len(feed.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(feed.Items))
	}

	first := feed.Items[0]
	if first.GUID != "abc123" {
		t.Errorf("Expected GUID abc123, got %q", first.GUID)
	}
	if first.Title != "Baianas Ozadas (Em Breve)" {
		t.Errorf("Expected status in title, got %q", first.Title)
	}
	if first.Link != "https://blocos.example.com/#evento-abc123" {
		t.Errorf("Unexpected link %q", first.Link)
	}
	if first.PublishedParsed == nil || !first.PublishedParsed.Equal(*events[0].ScheduledAt) {
		t.Errorf("Expected pubDate to be the start time, got %v", first.PublishedParsed)
	}
	if !strings.Contains(first.Description, "Praça da Estação, Centro") || !strings.Contains(first.Description, "Com trio & bateria") {
		t.Errorf("Unexpected description %q", first.Description)
	}

	second := feed.Items[1]
	if second.Title != "Ensaio <Aberto>" {
		t.Errorf("Expected escaped title to round-trip, got %q", second.Title)
	}
	if second.Link != "https://example.com/ingresso" {
		t.Errorf("Expected ticket link, got %q", second.Link)
	}
	if second.PublishedParsed != nil {
		t.Error("Expected no pubDate for an undated event")
	}
}
