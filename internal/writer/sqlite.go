package writer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/go-scripts/ecicrawl/internal/election"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	page_title TEXT NOT NULL,
	election_year TEXT NOT NULL,
	election_type TEXT NOT NULL,
	election_state TEXT NOT NULL,
	state_name TEXT NOT NULL,
	crawled_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS constituencies (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	position INTEGER NOT NULL,
	source_url TEXT NOT NULL,
	constituency_number TEXT NOT NULL,
	constituency TEXT NOT NULL,
	state TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS candidates (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	row_no INTEGER NOT NULL,
	serial_no TEXT NOT NULL,
	candidate TEXT NOT NULL,
	party TEXT NOT NULL,
	evm_votes TEXT NOT NULL,
	postal_votes TEXT NOT NULL,
	PRIMARY KEY (run_id, position, row_no),
	FOREIGN KEY (run_id, position) REFERENCES constituencies(run_id, position)
);
`

// SQLiteSink appends runs to a SQLite database. Each run is stored in one
// transaction so a database never holds half a run.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// WriteRun stores run and all of its results.
func (s *SQLiteSink) WriteRun(ctx context.Context, run *election.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, title, page_title, election_year, election_type, election_state, state_name, crawled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Title, run.PageTitle, run.Year, run.Type, run.State, run.StateName,
		run.CrawledAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for pos, res := range run.Results {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO constituencies (run_id, position, source_url, constituency_number, constituency, state)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID.String(), pos, res.SourceURL, res.Number, res.Name, res.State)
		if err != nil {
			return fmt.Errorf("failed to insert constituency %q: %w", res.Name, err)
		}
		for rowNo, c := range res.Candidates {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO candidates (run_id, position, row_no, serial_no, candidate, party, evm_votes, postal_votes)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				run.ID.String(), pos, rowNo, c.SerialNo, c.Candidate, c.Party, c.EVMVotes, c.PostalVotes)
			if err != nil {
				return fmt.Errorf("failed to insert candidate %q: %w", c.Candidate, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// CandidateRows returns the flattened rows stored for a run, in crawl order.
func (s *SQLiteSink) CandidateRows(ctx context.Context, runID string) ([]election.FlatRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.election_year, r.election_type, r.election_state, c.constituency,
			d.serial_no, d.candidate, d.party, d.evm_votes, d.postal_votes
		FROM candidates d
		JOIN constituencies c ON c.run_id = d.run_id AND c.position = d.position
		JOIN runs r ON r.run_id = d.run_id
		WHERE d.run_id = ?
		ORDER BY d.position, d.row_no`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var out []election.FlatRecord
	for rows.Next() {
		var f election.FlatRecord
		if err := rows.Scan(&f.ElectionYear, &f.ElectionType, &f.ElectionState, &f.Constituency,
			&f.SerialNo, &f.Candidate, &f.Party, &f.EVMVotes, &f.PostalVotes); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
