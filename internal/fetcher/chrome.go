package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
)

// DefaultWaitSelectors are the elements a result page must render.
var DefaultWaitSelectors = []string{"h1", "h2", "tbody"}

// ChromeOptions configures the headless browser session.
type ChromeOptions struct {
	UserAgent     string
	ShowBrowser   bool
	WaitTimeout   time.Duration
	NavTimeout    time.Duration
	WaitSelectors []string
	Logger        *log.Logger
}

// ChromeFetcher renders pages in a single shared browser tab.
type ChromeFetcher struct {
	opts          ChromeOptions
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	logger        *log.Logger
}

// NewChromeFetcher allocates the browser session. The browser process itself
// starts lazily on the first Fetch. Close must be called to release it.
func NewChromeFetcher(ctx context.Context, opts ChromeOptions) *ChromeFetcher {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 10 * time.Second
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 60 * time.Second
	}
	if opts.WaitSelectors == nil {
		opts.WaitSelectors = DefaultWaitSelectors
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ShowBrowser {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debugf(format, args...)
		}),
	)

	return &ChromeFetcher{
		opts:          opts,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		logger:        logger,
	}
}

// Fetch navigates to url and waits, bounded, for the required elements. An
// element that never appears is not an error; the extractor decides what a
// page without it means.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) Outcome {
	if err := ctx.Err(); err != nil {
		return Failed(err)
	}
	// Tie the caller's context to the browser tab.
	stop := context.AfterFunc(ctx, f.browserCancel)
	defer stop()

	navCtx, navCancel := context.WithTimeout(f.browserCtx, f.opts.NavTimeout)
	defer navCancel()

	var title string
	if err := chromedp.Run(navCtx, chromedp.Navigate(url), chromedp.Title(&title)); err != nil {
		return Failed(fmt.Errorf("navigation failed for %s: %w", url, err))
	}

	if IsEndOfSequence(title) {
		return EndOfSequence(&Page{URL: url, Title: title})
	}

	for _, sel := range f.opts.WaitSelectors {
		waitCtx, waitCancel := context.WithTimeout(f.browserCtx, f.opts.WaitTimeout)
		err := chromedp.Run(waitCtx, chromedp.WaitReady(sel, chromedp.ByQuery))
		waitCancel()
		if err != nil {
			if ctx.Err() != nil {
				return Failed(ctx.Err())
			}
			f.logger.Debug("element not present", "url", url, "selector", sel, "err", err)
		}
	}

	capCtx, capCancel := context.WithTimeout(f.browserCtx, f.opts.WaitTimeout)
	defer capCancel()

	var html string
	if err := chromedp.Run(capCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return Failed(fmt.Errorf("error getting HTML for %s: %w", url, err))
	}
	page, err := NewPage(url, title, html)
	if err != nil {
		return Failed(err)
	}
	return OK(page)
}

// Close shuts the browser down.
func (f *ChromeFetcher) Close() error {
	f.browserCancel()
	f.allocCancel()
	return nil
}
