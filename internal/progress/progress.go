package progress

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"
)

// Tracker shows a spinner with a progress bar while pages load. A nil
// *Tracker is valid and does nothing.
type Tracker struct {
	spinner   *spinner.Spinner
	bar       progress.Model
	out       io.Writer
	total     int
	processed int
}

// New creates a Tracker writing to out for a run of total pages.
func New(out io.Writer, total int) *Tracker {
	if out == nil {
		out = os.Stdout
	}
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(out))
	return &Tracker{
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		out:     out,
		total:   total,
	}
}

// StartPage shows pageURL as the page being loaded.
func (t *Tracker) StartPage(pageURL string) {
	if t == nil {
		return
	}
	t.setSuffix(fmt.Sprintf(" %s %s", t.view(), FormatURL(pageURL)))
	if !t.spinner.Active() {
		t.spinner.Start()
	}
}

// FinishPage records a processed page. label is printed when non-empty.
func (t *Tracker) FinishPage(seq int, label string) {
	if t == nil {
		return
	}
	t.processed++
	t.setSuffix(" " + t.view())
	if label != "" {
		t.spinner.Stop()
		fmt.Fprintf(t.out, "%03d-%s. Done.\n", seq, label)
	}
}

// Stop clears the spinner.
func (t *Tracker) Stop() {
	if t == nil {
		return
	}
	t.spinner.Stop()
}

// Percent returns the processed share of total.
func (t *Tracker) Percent() float64 {
	if t == nil || t.total == 0 {
		return 0
	}
	return float64(t.processed) / float64(t.total)
}

// setSuffix guards against the spinner goroutine reading Suffix mid-write.
func (t *Tracker) setSuffix(suffix string) {
	t.spinner.Lock()
	t.spinner.Suffix = suffix
	t.spinner.Unlock()
}

func (t *Tracker) view() string {
	return fmt.Sprintf("%s %d/%d", t.bar.ViewAs(t.Percent()), t.processed, t.total)
}

// FormatURL shortens long URLs to their host and the tail of the path.
func FormatURL(urlStr string) string {
	const maxLen = 48
	if len(urlStr) <= maxLen {
		return urlStr
	}
	u, err := url.Parse(urlStr)
	if err == nil && u.Host != "" {
		path := u.Path
		if room := maxLen - len(u.Host) - 3; room > 0 && len(path) > room {
			path = "..." + path[len(path)-room:]
		}
		return u.Host + path
	}
	return "..." + urlStr[len(urlStr)-maxLen:]
}
