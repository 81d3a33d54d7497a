package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/go-scripts/ecicrawl/internal/crawler"
	"github.com/go-scripts/ecicrawl/internal/election"
	"github.com/go-scripts/ecicrawl/internal/writer"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// renderSummary prints one line per recorded constituency and how the crawl
// ended.
func renderSummary(out io.Writer, run *election.Run, summary crawler.Summary) {
	t := newTable(out)
	t.AppendHeader(table.Row{"#", "Constituency", "Number", "Candidates", "Source"})
	for i, res := range run.Results {
		t.AppendRow(table.Row{i + 1, res.Name, res.Number, len(res.Candidates), res.SourceURL})
	}
	t.AppendFooter(table.Row{"", "Total", "", run.CandidateCount(), outcome(summary)})
	t.Render()
}

func outcome(s crawler.Summary) string {
	switch {
	case s.Err != nil:
		return fmt.Sprintf("stopped at %s: %v", s.StoppedAt, s.Err)
	case s.EndOfSequence:
		return fmt.Sprintf("end of results at %s", s.StoppedAt)
	default:
		return fmt.Sprintf("%d pages in %.3fs", s.Visited, s.Elapsed.Seconds())
	}
}

func writeSQLite(ctx context.Context, path string, run *election.Run) error {
	sink, err := writer.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer sink.Close()
	return sink.WriteRun(ctx, run)
}
