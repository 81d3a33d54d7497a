package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/ecicrawl/internal/election"
	"github.com/go-scripts/ecicrawl/internal/fetcher"
)

// Extractor turns a result page into a ConstituencyResult.
type Extractor struct {
	parsers []HeadingParser
	logger  *log.Logger
}

// New creates an Extractor. With no parsers the defaults are used.
func New(logger *log.Logger, parsers ...HeadingParser) *Extractor {
	if len(parsers) == 0 {
		parsers = DefaultHeadingParsers()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{parsers: parsers, logger: logger}
}

// Extract reads the constituency heading and the candidate table. It returns
// false when either is missing; such a page is logged and skipped rather than
// failing the crawl.
func (e *Extractor) Extract(page *fetcher.Page) (election.ConstituencyResult, bool) {
	if page == nil || page.Doc == nil {
		e.logger.Warn("Error extracting results: no document")
		return election.ConstituencyResult{}, false
	}

	h2 := page.Doc.Find("h2").First()
	if h2.Length() == 0 {
		e.logger.Warn("Error extracting results: heading not found", "url", page.URL)
		return election.ConstituencyResult{}, false
	}
	tbody := page.Doc.Find("tbody").First()
	if tbody.Length() == 0 {
		e.logger.Warn("Error extracting results: table not found", "url", page.URL)
		return election.ConstituencyResult{}, false
	}

	heading := ParseHeading(headingText(h2), e.parsers...)
	result := election.ConstituencyResult{
		Number:     heading.Number,
		Name:       heading.Name,
		State:      heading.State,
		Candidates: make([]election.CandidateRecord, 0),
	}

	tbody.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		result.Candidates = append(result.Candidates, election.NewCandidateRecord(cellTexts(tr)))
	})
	return result, true
}

func headingText(h2 *goquery.Selection) string {
	if span := h2.Find("span").First(); span.Length() > 0 {
		return span.Text()
	}
	return h2.Text()
}

func cellTexts(tr *goquery.Selection) []string {
	cells := tr.Find("td")
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, td *goquery.Selection) {
		out = append(out, strings.TrimSpace(td.Text()))
	})
	return out
}
