package sheet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetcher(t *testing.T) {
	workbook := buildRehearsalsWorkbook(t)

	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/events.csv":
			w.Header().Set("Content-Type", "text/csv")
			w.Write([]byte(eventsCSV))
		case "/rehearsals.xlsx":
			w.Write(workbook)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL+"/events.csv", server.URL+"/rehearsals.xlsx", 2*time.Second, "Blocos BH/test")

	events, err := fetcher.FetchEvents(context.Background())
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("Expected 2 events, got %d", len(events))
	}
	if userAgent != "Blocos BH/test" {
		t.Errorf("Expected configured user agent, got %q", userAgent)
	}

	rehearsals, err := fetcher.FetchRehearsals(context.Background())
	if err != nil {
		t.Fatalf("FetchRehearsals failed: %v", err)
	}
	if len(rehearsals) != 3 {
		t.Errorf("Expected 3 rehearsals, got %d", len(rehearsals))
	}
}

func TestFetcherHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, server.URL, 2*time.Second, "test")

	_, err := fetcher.FetchEvents(context.Background())
	if err == nil {
		t.Fatal("Expected error on HTTP 503")
	}
	if !strings.Contains(err.Error(), "HTTP error: 503 Service Unavailable") || strings.Contains(err.Error(), "503 503") {
		t.Errorf("Expected the status line once, got %q", err.Error())
	}
	if _, err := fetcher.FetchRehearsals(context.Background()); err == nil {
		t.Error("Expected error on HTTP 503")
	}
}

func TestFetcherTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(eventsCSV))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL, "", 50*time.Millisecond, "test")

	if _, err := fetcher.FetchEvents(context.Background()); err == nil {
		t.Error("Expected timeout error")
	}
}

func TestFetcherWithoutRehearsalsURL(t *testing.T) {
	fetcher := NewFetcher("http://127.0.0.1:0", "", time.Second, "test")

	rows, err := fetcher.FetchRehearsals(context.Background())
	if err != nil || rows != nil {
		t.Errorf("Expected no rows and no error, got %v, %v", rows, err)
	}
}
