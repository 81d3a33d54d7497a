package election

// Columns is the fixed column order of the flattened output.
var Columns = []string{
	"election_year",
	"election_type",
	"election_state",
	"constituency",
	"serial_no",
	"candidate",
	"party",
	"evm_votes",
	"postal_votes",
}

// FlatRecord is a candidate row denormalized with its parent keys.
type FlatRecord struct {
	ElectionYear  string
	ElectionType  string
	ElectionState string
	Constituency  string
	CandidateRecord
}

// Values returns the row in Columns order.
func (f FlatRecord) Values() []string {
	return []string{
		f.ElectionYear,
		f.ElectionType,
		f.ElectionState,
		f.Constituency,
		f.SerialNo,
		f.Candidate,
		f.Party,
		f.EVMVotes,
		f.PostalVotes,
	}
}

// Flatten produces one row per candidate, preserving result and row order.
func (r *Run) Flatten() []FlatRecord {
	rows := make([]FlatRecord, 0, r.CandidateCount())
	for _, res := range r.Results {
		for _, c := range res.Candidates {
			rows = append(rows, FlatRecord{
				ElectionYear:    r.Year,
				ElectionType:    r.Type,
				ElectionState:   r.State,
				Constituency:    res.Name,
				CandidateRecord: c,
			})
		}
	}
	return rows
}
