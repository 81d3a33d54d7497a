package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/ecicrawl/internal/election"
	"github.com/go-scripts/ecicrawl/internal/extract"
	"github.com/go-scripts/ecicrawl/internal/fetcher"
	"github.com/go-scripts/ecicrawl/internal/progress"
	"github.com/go-scripts/ecicrawl/internal/sequence"
)

// ErrEmptySequence is returned when the configured range holds no pages.
var ErrEmptySequence = errors.New("no pages in sequence")

// StateResolver maps a state name to its code.
type StateResolver interface {
	Lookup(name string) (string, error)
}

// Configuration holds the crawler settings
type Configuration struct {
	// BaseURL is the page URL up to the sequence number.
	BaseURL string
	Suffix  string
	Start   int
	Limit   int

	// Pinned values replace what the first page reports.
	Year  string
	Type  string
	State string
}

// Summary describes how a crawl ended.
type Summary struct {
	Visited       int
	Recorded      int
	EndOfSequence bool
	// StoppedAt is the URL that ended the crawl, if any.
	StoppedAt string
	// Err is the fetch error that aborted the loop. The run still holds
	// everything recorded before it.
	Err     error
	Elapsed time.Duration
}

// Crawler walks a sequence of result pages one at a time.
type Crawler struct {
	config    Configuration
	fetcher   fetcher.PageFetcher
	extractor *extract.Extractor
	states    StateResolver
	progress  *progress.Tracker
	logger    *log.Logger
}

// Option customizes a Crawler.
type Option func(*Crawler)

// WithProgress attaches a progress display.
func WithProgress(t *progress.Tracker) Option {
	return func(c *Crawler) { c.progress = t }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Crawler) { c.logger = l }
}

// WithExtractor replaces the default extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(c *Crawler) { c.extractor = e }
}

// New creates a Crawler. A limit below 1 is raised to 1.
func New(config Configuration, f fetcher.PageFetcher, states StateResolver, opts ...Option) *Crawler {
	if config.Start < 1 {
		config.Start = 1
	}
	if config.Limit < 1 {
		config.Limit = 1
	}
	c := &Crawler{
		config:  config,
		fetcher: f,
		states:  states,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.extractor == nil {
		c.extractor = extract.New(c.logger)
	}
	return c
}

// Crawl resolves the election metadata from the first page and then extracts
// every page until the limit, an end-of-data page, or a fetch error.
//
// A nil run with an error means the crawl could not start. Once the run exists
// it is always returned; a fetch error during the loop is reported in
// Summary.Err, not as the returned error.
func (c *Crawler) Crawl(ctx context.Context) (*election.Run, Summary, error) {
	start := time.Now()
	seq := sequence.New(c.config.BaseURL, c.config.Suffix, c.config.Start, c.config.Limit)

	first, ok := seq.Peek()
	if !ok {
		return nil, Summary{}, ErrEmptySequence
	}

	c.logger.Debug("resolving election metadata", "url", first.URL)
	firstOut := c.fetcher.Fetch(ctx, first.URL)
	switch firstOut.Status {
	case fetcher.StatusError:
		return nil, Summary{}, fmt.Errorf("%w: %w", extract.ErrMetadata, firstOut.Err)
	case fetcher.StatusEndOfSequence:
		return nil, Summary{}, fmt.Errorf("%w: %s is not a result page (%q)", extract.ErrMetadata, first.URL, pageTitle(firstOut))
	}

	run, err := c.newRun(firstOut.Page)
	if err != nil {
		return nil, Summary{}, err
	}
	c.logger.Info(fmt.Sprintf("%s %s Elections, %s", run.Year, run.Type, run.StateName), "code", run.State)

	var summary Summary
	for {
		item, ok := seq.Next()
		if !ok {
			break
		}
		c.progress.StartPage(item.URL)
		c.logger.Debug("Loading", "url", item.URL, "seq", item.Seq)

		out := firstOut
		if item.Seq != first.Seq {
			out = c.fetcher.Fetch(ctx, item.URL)
		}
		summary.Visited++

		if out.Status == fetcher.StatusEndOfSequence {
			c.progress.Stop()
			c.logger.Info("No more data found", "url", item.URL, "title", pageTitle(out))
			summary.EndOfSequence = true
			summary.StoppedAt = item.URL
			break
		}
		if out.Status == fetcher.StatusError {
			c.progress.Stop()
			c.logger.Error("Scraping stopped due to error", "url", item.URL, "err", out.Err)
			summary.Err = out.Err
			summary.StoppedAt = item.URL
			break
		}

		result, ok := c.extractor.Extract(out.Page)
		if !ok {
			c.progress.FinishPage(item.Seq, "")
			continue
		}
		run.Append(item.URL, result)
		summary.Recorded++
		c.progress.FinishPage(item.Seq, result.Name)
	}
	c.progress.Stop()

	summary.Elapsed = time.Since(start)
	c.logSummary(summary)
	return run, summary, nil
}

func (c *Crawler) newRun(page *fetcher.Page) (*election.Run, error) {
	meta, err := extract.ResolveMetadata(page)
	if err != nil {
		return nil, err
	}

	year := firstNonEmpty(c.config.Year, meta.Year)
	typ := firstNonEmpty(c.config.Type, meta.Type)
	state := c.config.State
	if state == "" {
		if c.states == nil {
			return nil, fmt.Errorf("no state table to resolve %q", meta.StateName)
		}
		state, err = c.states.Lookup(meta.StateName)
		if err != nil {
			return nil, err
		}
	}

	run := election.NewRun(meta.Title, year, typ, state)
	run.PageTitle = meta.PageTitle
	run.StateName = meta.StateName
	return run, nil
}

func (c *Crawler) logSummary(s Summary) {
	secs := fmt.Sprintf("%.3f", s.Elapsed.Seconds())
	switch {
	case s.Err != nil:
		c.logger.Warn("Crawl aborted. Keeping partial results.", "constituencies", s.Recorded, "seconds", secs)
	case s.EndOfSequence:
		c.logger.Info("Reached end of results.", "constituencies", s.Recorded, "seconds", secs)
	default:
		c.logger.Info("Job successful.", "constituencies", s.Recorded, "seconds", secs)
	}
}

func pageTitle(out fetcher.Outcome) string {
	if out.Page == nil {
		return ""
	}
	return out.Page.Title
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
