package carnival

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"
)

const feedTitle = "Blocos de Carnaval BH"

// Generator renders events as an RSS 2.0 feed.
type Generator struct {
	baseURL string
	version string
}

func NewGenerator(baseURL, version string) *Generator {
	return &Generator{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
	}
}

func (g *Generator) Run(events []AnnotatedEvent, builtAt time.Time) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom" xmlns:geo="http://www.w3.org/2003/01/geo/wgs84_pos#">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", feedTitle, 4)
	g.writeElement(&buf, "link", g.baseURL+"/", 4)
	g.writeElement(&buf, "description", "Agenda dos blocos de rua e ensaios de Belo Horizonte", 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(g.baseURL+"/feed.xml")))
	g.writeElement(&buf, "lastBuildDate", builtAt.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Blocos-BH/%s", g.version), 4)
	g.writeElement(&buf, "language", "pt-BR", 4)

	for _, event := range events {
		g.writeItem(&buf, event)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, event AnnotatedEvent) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(event.ID))
	buf.WriteString("</guid>\n")

	title := event.Title
	if event.StatusLabel != "" {
		title = fmt.Sprintf("%s (%s)", title, event.StatusLabel)
	}
	g.writeElement(buf, "title", title, 6)

	link := event.TicketURL
	if link == "" {
		link = fmt.Sprintf("%s/#evento-%s", g.baseURL, event.ID)
	}
	g.writeElement(buf, "link", link, 6)
	g.writeElement(buf, "description", describe(event), 6)

	if event.ScheduledAt != nil {
		g.writeElement(buf, "pubDate", event.ScheduledAt.Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "category", event.CategoryDisplay, 6)
	if event.Neighborhood != "" {
		g.writeElement(buf, "category", event.Neighborhood, 6)
	}

	if event.HasCoordinates() {
		g.writeElement(buf, "geo:lat", fmt.Sprintf("%.6f", *event.Lat), 6)
		g.writeElement(buf, "geo:long", fmt.Sprintf("%.6f", *event.Lon), 6)
	}

	buf.WriteString("    </item>\n")
}

// describe builds the plain-text summary shared by the feed and calendar.
func describe(event AnnotatedEvent) string {
	lines := []string{event.DisplayDate}

	place := strings.Trim(strings.Join([]string{event.Address, event.Neighborhood}, ", "), ", ")
	if place != "" {
		lines = append(lines, place)
	}
	if event.CategoryRaw != "" {
		lines = append(lines, "Estilo: "+event.CategoryRaw)
	}
	if event.Description != "" {
		lines = append(lines, event.Description)
	}

	var flags []string
	if event.IsKids {
		flags = append(flags, "infantil")
	}
	if event.IsLGBT {
		flags = append(flags, "LGBT+")
	}
	if event.IsPet {
		flags = append(flags, "pet friendly")
	}
	if len(flags) > 0 {
		lines = append(lines, strings.Join(flags, ", "))
	}

	return strings.Join(lines, "\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
