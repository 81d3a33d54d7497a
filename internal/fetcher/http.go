package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPFetcher loads pages without rendering them. It suits the results site,
// which serves its tables as static HTML.
type HTTPFetcher struct {
	client *resty.Client
}

// NewHTTPFetcher creates a fetcher with the given per-request timeout.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	client := resty.New().SetTimeout(timeout)
	if userAgent != "" {
		client.SetHeader("User-Agent", userAgent)
	}
	return &HTTPFetcher{client: client}
}

// Fetch performs a GET and parses the body. Error pages are inspected for the
// end-of-data title before their status code is treated as a failure.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) Outcome {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return Failed(fmt.Errorf("failed to fetch URL: %w", err))
	}

	page, err := NewPage(url, "", string(resp.Body()))
	if err != nil {
		return Failed(err)
	}
	if IsEndOfSequence(page.Title) {
		return EndOfSequence(page)
	}
	if resp.IsError() {
		return Failed(fmt.Errorf("HTTP error: %s", resp.Status()))
	}
	return OK(page)
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.GetClient().CloseIdleConnections()
	return nil
}
