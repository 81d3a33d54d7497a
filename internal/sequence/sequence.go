package sequence

import (
	"strconv"
)

// Item is one page of the sequence.
type Item struct {
	Seq int
	URL string
}

// Sequence enumerates result page URLs as {prefix}{seq}{suffix} for seq in
// [start, limit]. The results site has no index, so the sequence is walked
// until the caller stops it or the limit is reached.
type Sequence struct {
	prefix  string
	suffix  string
	next    int
	limit   int
	visited int
}

// New creates a Sequence. Start values below 1 become 1.
func New(prefix, suffix string, start, limit int) *Sequence {
	if start < 1 {
		start = 1
	}
	return &Sequence{
		prefix: prefix,
		suffix: suffix,
		next:   start,
		limit:  limit,
	}
}

// URL builds the page URL for seq.
func (s *Sequence) URL(seq int) string {
	return s.prefix + strconv.Itoa(seq) + s.suffix
}

// Next returns the next page and marks it visited.
func (s *Sequence) Next() (Item, bool) {
	if s.next > s.limit {
		return Item{}, false
	}
	item := Item{Seq: s.next, URL: s.URL(s.next)}
	s.next++
	s.visited++
	return item, true
}

// Peek returns the page Next would return without consuming it.
func (s *Sequence) Peek() (Item, bool) {
	if s.next > s.limit {
		return Item{}, false
	}
	return Item{Seq: s.next, URL: s.URL(s.next)}, true
}

// VisitedCount returns the number of pages handed out so far.
func (s *Sequence) VisitedCount() int {
	return s.visited
}

// Len returns the number of pages left before the limit.
func (s *Sequence) Len() int {
	if s.next > s.limit {
		return 0
	}
	return s.limit - s.next + 1
}
