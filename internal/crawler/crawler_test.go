package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/ecicrawl/internal/extract"
	"github.com/go-scripts/ecicrawl/internal/fetcher"
	"github.com/go-scripts/ecicrawl/internal/states"
)

const base = "https://results.example/ConstituencywiseS04"

// fakeFetcher serves canned outcomes and records every URL requested.
type fakeFetcher struct {
	pages   map[string]fetcher.Outcome
	fetched []string
	closed  bool
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) fetcher.Outcome {
	f.fetched = append(f.fetched, url)
	if out, ok := f.pages[url]; ok {
		return out
	}
	return fetcher.EndOfSequence(&fetcher.Page{URL: url, Title: "404 Not Found"})
}

func (f *fakeFetcher) Close() error {
	f.closed = true
	return nil
}

func resultPage(t *testing.T, seq int, name string) fetcher.Outcome {
	t.Helper()
	html := fmt.Sprintf(`<html><head><title>Election Commission of India</title></head><body>
<h1>General Election to Assembly Constituencies: Trends &amp; Results November-2025</h1>
<h2><span>Assembly Constituency %d - %s (Bihar)</span></h2>
<table><tbody>
<tr><td>1</td><td>Candidate %d A</td><td>Party A</td><td>100</td><td>1</td></tr>
<tr><td>2</td><td>Candidate %d B</td><td>Party B</td><td>90</td><td>2</td></tr>
</tbody></table></body></html>`, seq, name, seq, seq)
	page, err := fetcher.NewPage(url(seq), "", html)
	require.NoError(t, err)
	return fetcher.OK(page)
}

func url(seq int) string {
	return fmt.Sprintf("%s%d.htm", base, seq)
}

func newFake(t *testing.T, n int) *fakeFetcher {
	f := &fakeFetcher{pages: make(map[string]fetcher.Outcome)}
	for i := 1; i <= n; i++ {
		f.pages[url(i)] = resultPage(t, i, fmt.Sprintf("Place %d", i))
	}
	return f
}

func newCrawler(f fetcher.PageFetcher, limit int) *Crawler {
	logger := log.New(io.Discard)
	return New(Configuration{BaseURL: base, Suffix: ".htm", Start: 1, Limit: limit},
		f, states.Default(), WithLogger(logger), WithExtractor(extract.New(logger)))
}

func TestCrawlUntilLimit(t *testing.T) {
	f := newFake(t, 5)
	run, summary, err := newCrawler(f, 3).Crawl(context.Background())
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, []string{url(1), url(2), url(3)}, f.fetched)
	assert.Equal(t, 3, summary.Visited)
	assert.Equal(t, 3, summary.Recorded)
	assert.False(t, summary.EndOfSequence)
	assert.NoError(t, summary.Err)

	assert.Equal(t, "2025", run.Year)
	assert.Equal(t, "AC", run.Type)
	assert.Equal(t, "BR", run.State)
	assert.Equal(t, "Bihar", run.StateName)
	assert.Equal(t, "Election Commission of India", run.PageTitle)

	require.Len(t, run.Results, 3)
	for i, res := range run.Results {
		assert.Equal(t, url(i+1), res.SourceURL)
		assert.Equal(t, fmt.Sprintf("Place %d", i+1), res.Name)
		assert.Equal(t, fmt.Sprintf("Assembly Constituency %d", i+1), res.Number)
		assert.Len(t, res.Candidates, 2)
	}
}

func TestCrawlStopsAtEndMarker(t *testing.T) {
	f := newFake(t, 4)
	run, summary, err := newCrawler(f, 10).Crawl(context.Background())
	require.NoError(t, err)

	// Page 5 is the 404 page, so N-1 results are kept.
	assert.Len(t, run.Results, 4)
	assert.True(t, summary.EndOfSequence)
	assert.Equal(t, url(5), summary.StoppedAt)
	assert.Equal(t, 5, summary.Visited)
	assert.Len(t, f.fetched, 5)
}

func TestCrawlLimitOne(t *testing.T) {
	f := newFake(t, 3)
	run, summary, err := newCrawler(f, 1).Crawl(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{url(1)}, f.fetched)
	assert.Len(t, run.Results, 1)
	assert.Equal(t, 1, summary.Visited)
}

func TestCrawlLimitZeroIsClamped(t *testing.T) {
	f := newFake(t, 3)
	run, _, err := newCrawler(f, 0).Crawl(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.fetched, 1)
	assert.Len(t, run.Results, 1)
}

func TestCrawlSkipsUnextractablePages(t *testing.T) {
	f := newFake(t, 3)
	page, err := fetcher.NewPage(url(2), "", `<html><head><title>ECI</title></head><body><h1>x</h1></body></html>`)
	require.NoError(t, err)
	f.pages[url(2)] = fetcher.OK(page)

	run, summary, err := newCrawler(f, 3).Crawl(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Visited)
	assert.Equal(t, 2, summary.Recorded)
	require.Len(t, run.Results, 2)
	assert.Equal(t, url(1), run.Results[0].SourceURL)
	assert.Equal(t, url(3), run.Results[1].SourceURL)
}

func TestCrawlKeepsPartialResultsOnFetchError(t *testing.T) {
	f := newFake(t, 5)
	boom := errors.New("connection reset")
	f.pages[url(3)] = fetcher.Failed(boom)

	run, summary, err := newCrawler(f, 5).Crawl(context.Background())
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Len(t, run.Results, 2)
	assert.ErrorIs(t, summary.Err, boom)
	assert.Equal(t, url(3), summary.StoppedAt)
	assert.False(t, summary.EndOfSequence)
	assert.Len(t, f.fetched, 3, "no retry and no further fetches")
}

func TestCrawlMetadataFailures(t *testing.T) {
	tests := []struct {
		name  string
		first fetcher.Outcome
	}{
		{name: "first page missing", first: fetcher.EndOfSequence(&fetcher.Page{Title: "404 Not Found"})},
		{name: "first page error", first: fetcher.Failed(errors.New("dns"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake(t, 3)
			f.pages[url(1)] = tt.first

			run, _, err := newCrawler(f, 3).Crawl(context.Background())
			assert.Nil(t, run)
			assert.ErrorIs(t, err, extract.ErrMetadata)
			assert.Len(t, f.fetched, 1)
		})
	}

	t.Run("headings absent", func(t *testing.T) {
		f := newFake(t, 3)
		page, err := fetcher.NewPage(url(1), "", `<html><head><title>ECI</title></head><body><p>maintenance</p></body></html>`)
		require.NoError(t, err)
		f.pages[url(1)] = fetcher.OK(page)

		run, _, err := newCrawler(f, 3).Crawl(context.Background())
		assert.Nil(t, run)
		assert.ErrorIs(t, err, extract.ErrMetadata)
	})
}

func TestCrawlUnknownState(t *testing.T) {
	f := newFake(t, 2)
	page, err := fetcher.NewPage(url(1), "", `<h1>Results June-2024</h1><h2><span>AC 1 - X (Atlantis)</span></h2><table><tbody></tbody></table>`)
	require.NoError(t, err)
	f.pages[url(1)] = fetcher.OK(page)

	run, _, err := newCrawler(f, 2).Crawl(context.Background())
	assert.Nil(t, run)
	assert.ErrorIs(t, err, states.ErrUnknownState)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestCrawlPinnedElection(t *testing.T) {
	f := newFake(t, 1)
	logger := log.New(io.Discard)
	c := New(Configuration{
		BaseURL: base, Suffix: ".htm", Limit: 1,
		Year: "2024", Type: "AC", State: "JK",
	}, f, nil, WithLogger(logger))

	run, _, err := c.Crawl(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024", run.Year)
	assert.Equal(t, "AC", run.Type)
	assert.Equal(t, "JK", run.State)
}

func TestCrawlEmptySequence(t *testing.T) {
	f := newFake(t, 1)
	c := New(Configuration{BaseURL: base, Suffix: ".htm", Start: 5, Limit: 2}, f, states.Default(),
		WithLogger(log.New(io.Discard)))

	run, _, err := c.Crawl(context.Background())
	assert.Nil(t, run)
	assert.ErrorIs(t, err, ErrEmptySequence)
	assert.Empty(t, f.fetched)
}
