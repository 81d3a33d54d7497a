package extract

import (
	"regexp"
	"strings"
)

// Heading is the parsed constituency label of a result page.
type Heading struct {
	Number string
	Name   string
	State  string
}

// HeadingParser understands one layout of the constituency heading.
type HeadingParser interface {
	// Match reports whether text has the shape this parser expects.
	Match(text string) bool
	Parse(text string) Heading
}

var (
	parenSuffix = regexp.MustCompile(`\([^()]+\)\s*$`)
	nameState   = regexp.MustCompile(`^(.+?)\s*\(([^()]+)\)\s*$`)
)

// NumberedHeading parses "<no> - <name> (<state>)". Either the number or
// the state may be missing. The state is always the last parenthesized group,
// so "Ramnagar (SC) (Bihar)" keeps "(SC)" in the name.
type NumberedHeading struct{}

func (NumberedHeading) Match(text string) bool {
	return strings.Contains(text, " - ") || parenSuffix.MatchString(text)
}

func (NumberedHeading) Parse(text string) Heading {
	var h Heading
	rest := text
	if no, after, ok := strings.Cut(text, " - "); ok {
		h.Number = strings.TrimSpace(no)
		rest = after
	}
	rest = strings.TrimSpace(rest)

	if m := nameState.FindStringSubmatch(rest); m != nil {
		h.Name = strings.TrimSpace(m[1])
		h.State = strings.TrimSpace(m[2])
	} else {
		h.Name = rest
	}
	return h
}

// TokenHeading parses the older "<prefix tokens> <name> <suffix tokens>"
// layout by dropping a fixed number of words from each end.
type TokenHeading struct {
	PrefixTokens int
	SuffixTokens int
}

// Match accepts anything; TokenHeading is the fallback layout.
func (TokenHeading) Match(string) bool { return true }

func (p TokenHeading) Parse(text string) Heading {
	words := strings.Fields(text)
	lo, hi := p.PrefixTokens, len(words)-p.SuffixTokens
	if lo < 0 {
		lo = 0
	}
	if hi > len(words) {
		hi = len(words)
	}
	if lo >= hi {
		return Heading{}
	}
	return Heading{Name: strings.Join(words[lo:hi], " ")}
}

// DefaultHeadingParsers tries the numbered layout first and falls back to
// token stripping.
func DefaultHeadingParsers() []HeadingParser {
	return []HeadingParser{
		NumberedHeading{},
		TokenHeading{PrefixTokens: 1, SuffixTokens: 1},
	}
}

// ParseHeading normalizes whitespace in text and hands it to the first parser
// that matches.
func ParseHeading(text string, parsers ...HeadingParser) Heading {
	text = strings.Join(strings.Fields(text), " ")
	if len(parsers) == 0 {
		parsers = DefaultHeadingParsers()
	}
	for _, p := range parsers {
		if p.Match(text) {
			return p.Parse(text)
		}
	}
	return Heading{Name: text}
}
