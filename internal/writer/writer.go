package writer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-scripts/ecicrawl/internal/election"
)

// FileWriter writes a finished run to JSON and CSV files
type FileWriter struct {
	outputDir string
}

// Paths are the files produced by Write.
type Paths struct {
	JSON string
	CSV  string
}

// New creates a new FileWriter instance
func New(outputDir string) (*FileWriter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileWriter{outputDir: outputDir}, nil
}

// FilePrefix names a run's output files after its election and the time of
// writing, e.g. "2025AC-BR_20251114_093000".
func FilePrefix(run *election.Run, now time.Time) string {
	name := fmt.Sprintf("%s%s-%s", run.Year, run.Type, run.State)
	return sanitizeFilename(name) + "_" + now.Format("20060102_150405")
}

// Write stores run as {prefix}.json and {prefix}.csv. The two files are
// written independently: a failure on one is reported in the returned error
// and the other is still attempted.
func (w *FileWriter) Write(run *election.Run, prefix string) (Paths, error) {
	paths := Paths{
		JSON: filepath.Join(w.outputDir, prefix+".json"),
		CSV:  filepath.Join(w.outputDir, prefix+".csv"),
	}

	var errs []error
	if err := WriteJSON(paths.JSON, run); err != nil {
		errs = append(errs, err)
		paths.JSON = ""
	}
	if err := WriteCSV(paths.CSV, run); err != nil {
		errs = append(errs, err)
		paths.CSV = ""
	}
	return paths, errors.Join(errs...)
}

// WriteJSON replaces path with the indented JSON form of run.
func WriteJSON(path string, run *election.Run) error {
	data, err := json.MarshalIndent(run, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteCSV replaces path with one row per candidate. The header is written
// even when there are no rows.
func WriteCSV(path string, run *election.Run) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	cw := csv.NewWriter(file)
	if err := cw.Write(election.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range run.Flatten() {
		if err := cw.Write(row.Values()); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// sanitizeFilename replaces characters that are unsafe in file names
func sanitizeFilename(name string) string {
	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "}
	for _, char := range unsafe {
		name = strings.ReplaceAll(name, char, "_")
	}
	return name
}
