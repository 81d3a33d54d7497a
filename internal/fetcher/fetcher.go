package fetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Status classifies the result of a fetch.
type Status int

const (
	// StatusOK means a document was loaded.
	StatusOK Status = iota
	// StatusEndOfSequence means the page title carries an end-of-data
	// marker. It is a normal stop signal, not a failure.
	StatusEndOfSequence
	// StatusError means the fetch failed; Outcome.Err holds the cause.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEndOfSequence:
		return "end-of-sequence"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Page is a loaded document together with its title. Doc may be nil on an
// end-of-sequence outcome.
type Page struct {
	URL   string
	Title string
	Doc   *goquery.Document
}

// NewPage parses raw HTML into a Page. When title is empty the document's
// <title> element is used.
func NewPage(url, title, html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return &Page{URL: url, Title: title, Doc: doc}, nil
}

// Outcome is the typed result of PageFetcher.Fetch.
type Outcome struct {
	Status Status
	Page   *Page
	Err    error
}

// OK wraps a loaded page.
func OK(p *Page) Outcome { return Outcome{Status: StatusOK, Page: p} }

// EndOfSequence reports an end-of-data page.
func EndOfSequence(p *Page) Outcome { return Outcome{Status: StatusEndOfSequence, Page: p} }

// Failed wraps a fetch error.
func Failed(err error) Outcome { return Outcome{Status: StatusError, Err: err} }

// PageFetcher loads a URL and returns its rendered document. Implementations
// own a single session and are not safe for concurrent use.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) Outcome
	Close() error
}

// EndMarkers are the case-insensitive title tokens that signal a missing page.
var EndMarkers = []string{"404", "not found"}

// IsEndOfSequence reports whether a page title marks the end of the data.
func IsEndOfSequence(title string) bool {
	t := strings.ToLower(title)
	for _, m := range EndMarkers {
		if strings.Contains(t, m) {
			return true
		}
	}
	return false
}
