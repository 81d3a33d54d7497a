package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-scripts/ecicrawl/internal/fetcher"
)

// ErrMetadata is returned when the run-level headings are missing from the
// first page.
var ErrMetadata = errors.New("election metadata not found")

// Metadata describes the election a set of result pages belongs to.
type Metadata struct {
	PageTitle string
	Title     string
	Year      string
	Type      string
	StateName string
}

// Output file names use the short form, e.g. 2024AC-JK.
var typeAbbrev = map[string]string{
	"assembly":      "AC",
	"parliamentary": "PC",
}

// ResolveMetadata reads the run title from h1 and the state label from h2.
func ResolveMetadata(page *fetcher.Page) (Metadata, error) {
	if page == nil || page.Doc == nil {
		return Metadata{}, fmt.Errorf("%w: no document", ErrMetadata)
	}
	h1 := page.Doc.Find("h1").First()
	if h1.Length() == 0 {
		return Metadata{}, fmt.Errorf("%w: h1 missing on %s", ErrMetadata, page.URL)
	}
	h2 := page.Doc.Find("h2").First()
	if h2.Length() == 0 {
		return Metadata{}, fmt.Errorf("%w: h2 missing on %s", ErrMetadata, page.URL)
	}

	title := collapse(h1.Text())
	label := collapse(h2.Text())

	m := Metadata{
		PageTitle: page.Title,
		Title:     title,
	}
	if i := strings.LastIndex(title, "-"); i >= 0 {
		m.Year = strings.TrimSpace(title[i+1:])
	}
	if words := strings.Fields(label); len(words) > 0 {
		m.Type = words[0]
		if abbr, ok := typeAbbrev[strings.ToLower(words[0])]; ok {
			m.Type = abbr
		}
	}

	if strong := h2.Find("strong").First(); strong.Length() > 0 {
		m.StateName = trimParens(strong.Text())
	} else if i := strings.LastIndex(label, "("); i >= 0 {
		m.StateName = trimParens(label[i:])
	}
	return m, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func trimParens(s string) string {
	s = strings.NewReplacer("(", "", ")", "").Replace(s)
	return collapse(s)
}
