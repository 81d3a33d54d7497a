package progress

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf, 4)

	tr.StartPage("https://results.eci.gov.in/ResultAcGenNov2025/ConstituencywiseS041.htm")
	tr.FinishPage(1, "Valmiki Nagar")
	tr.StartPage("https://results.eci.gov.in/ResultAcGenNov2025/ConstituencywiseS042.htm")
	tr.FinishPage(2, "")
	tr.Stop()

	assert.InDelta(t, 0.5, tr.Percent(), 0.0001)
	assert.Contains(t, tr.spinner.Suffix, "2/4")
	assert.Contains(t, buf.String(), "001-Valmiki Nagar. Done.\n")
}

func TestNilTracker(t *testing.T) {
	var tr *Tracker
	assert.NotPanics(t, func() {
		tr.StartPage("u")
		tr.FinishPage(1, "x")
		tr.Stop()
	})
	assert.Zero(t, tr.Percent())
}

func TestFormatURL(t *testing.T) {
	assert.Equal(t, "https://example.com/1.htm", FormatURL("https://example.com/1.htm"))

	got := FormatURL("https://results.eci.gov.in/ResultAcGenNov2025/ConstituencywiseS04123.htm")
	assert.LessOrEqual(t, len(got), 48)
	assert.Contains(t, got, "results.eci.gov.in")
	assert.Contains(t, got, "S04123.htm")
}

func TestTrackerConcurrentUpdates(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf, 50)
	tr.StartPage("https://results.example/S041.htm")
	for i := 0; i < 50; i++ {
		tr.StartPage("https://results.example/S04.htm")
		tr.FinishPage(i+1, "")
		time.Sleep(time.Millisecond)
	}
	tr.Stop()
	assert.InDelta(t, 1.0, tr.Percent(), 0.0001)
}
