package sheet

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

type Fetcher struct {
	client        *resty.Client
	eventsURL     string
	rehearsalsURL string
}

func NewFetcher(eventsURL, rehearsalsURL string, timeout time.Duration, userAgent string) *Fetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent)

	return &Fetcher{
		client:        client,
		eventsURL:     eventsURL,
		rehearsalsURL: rehearsalsURL,
	}
}

func (f *Fetcher) FetchEvents(ctx context.Context) ([]EventRow, error) {
	data, err := f.download(ctx, f.eventsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events sheet: %w", err)
	}

	rows, err := ReadEvents(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse events sheet: %w", err)
	}

	slog.Debug("Fetched events sheet", "rows", len(rows), "bytes", len(data))
	return rows, nil
}

// FetchRehearsals returns no rows when no rehearsals sheet is configured.
func (f *Fetcher) FetchRehearsals(ctx context.Context) ([]RehearsalRow, error) {
	if f.rehearsalsURL == "" {
		return nil, nil
	}

	data, err := f.download(ctx, f.rehearsalsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rehearsals sheet: %w", err)
	}

	rows, err := ReadRehearsals(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rehearsals sheet: %w", err)
	}

	slog.Debug("Fetched rehearsals sheet", "rows", len(rows), "bytes", len(data))
	return rows, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status())
	}

	return resp.Body(), nil
}
