package states

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed states.csv
var defaultTable []byte

// ErrUnknownState is returned by Lookup when a name has no code.
var ErrUnknownState = errors.New("state not found in code table")

// Table maps state/UT names to their short codes.
type Table struct {
	codes map[string]string
}

// Default returns the built-in table.
func Default() *Table {
	t, err := Parse(bytes.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("states: embedded table is invalid: %v", err))
	}
	return t
}

// Load reads a table from a CSV file with state_name and state_code columns.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state table: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return t, nil
}

// Parse reads a CSV table. The header row locates the state_name and
// state_code columns, so extra columns are allowed.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	nameCol, codeCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "state_name":
			nameCol = i
		case "state_code":
			codeCol = i
		}
	}
	if nameCol < 0 || codeCol < 0 {
		return nil, fmt.Errorf("header must contain state_name and state_code, got %v", header)
	}

	t := &Table{codes: make(map[string]string)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		t.codes[rec[nameCol]] = rec[codeCol]
	}
	return t, nil
}

// Lookup returns the code for an exact state name.
func (t *Table) Lookup(name string) (string, error) {
	code, ok := t.codes[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownState, name)
	}
	return code, nil
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.codes)
}
