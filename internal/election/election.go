package election

import (
	"time"

	"github.com/google/uuid"
)

// CandidateRecord is one row of a constituency result table. Values are kept
// exactly as rendered on the page.
type CandidateRecord struct {
	SerialNo    string `json:"serial_no"`
	Candidate   string `json:"candidate"`
	Party       string `json:"party"`
	EVMVotes    string `json:"evm_votes"`
	PostalVotes string `json:"postal_votes"`
}

// NewCandidateRecord maps table cells onto the record fields by position.
// Missing trailing cells leave the corresponding fields empty and surplus
// cells are ignored.
func NewCandidateRecord(cells []string) CandidateRecord {
	var r CandidateRecord
	fields := []*string{&r.SerialNo, &r.Candidate, &r.Party, &r.EVMVotes, &r.PostalVotes}
	for i := 0; i < len(fields) && i < len(cells); i++ {
		*fields[i] = cells[i]
	}
	return r
}

// ConstituencyResult holds the data extracted from a single result page.
type ConstituencyResult struct {
	SourceURL  string            `json:"source_url"`
	Number     string            `json:"constituency_number,omitempty"`
	Name       string            `json:"constituency"`
	State      string            `json:"state,omitempty"`
	Candidates []CandidateRecord `json:"voting_tally"`
}

// Run is the aggregate of a whole crawl over one state's result pages.
type Run struct {
	ID        uuid.UUID `json:"run_id"`
	Title     string    `json:"title"`
	PageTitle string    `json:"page_title,omitempty"`
	Year      string    `json:"election_year"`
	Type      string    `json:"election_type"`
	State     string    `json:"election_state"`
	StateName string    `json:"state_name,omitempty"`
	CrawledAt time.Time `json:"crawled_at"`

	Results []ConstituencyResult `json:"constituencywise_results"`
}

// NewRun creates an empty run stamped with a fresh id.
func NewRun(title, year, electionType, state string) *Run {
	return &Run{
		ID:        uuid.New(),
		Title:     title,
		Year:      year,
		Type:      electionType,
		State:     state,
		CrawledAt: time.Now().UTC(),
		Results:   make([]ConstituencyResult, 0),
	}
}

// Append records the result of one page in arrival order. Entries are never
// merged, so fetching the same page twice yields two entries.
func (r *Run) Append(sourceURL string, result ConstituencyResult) {
	result.SourceURL = sourceURL
	if result.Candidates == nil {
		result.Candidates = []CandidateRecord{}
	}
	r.Results = append(r.Results, result)
}

// CandidateCount returns the number of candidate rows across all results.
func (r *Run) CandidateCount() int {
	n := 0
	for _, res := range r.Results {
		n += len(res.Candidates)
	}
	return n
}
