package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/ecicrawl/internal/config"
	"github.com/go-scripts/ecicrawl/internal/crawler"
	"github.com/go-scripts/ecicrawl/internal/extract"
	"github.com/go-scripts/ecicrawl/internal/fetcher"
	"github.com/go-scripts/ecicrawl/internal/progress"
	"github.com/go-scripts/ecicrawl/internal/states"
	"github.com/go-scripts/ecicrawl/internal/writer"
)

// CLI arguments
type CLI struct {
	Limit int `arg:"" optional:"" default:"3" help:"Number of constituencies to scrape."`
}

var bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("ecicrawl"),
		kong.Description("Scrape constituency-wise results from the ECI results site."),
	)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ecicrawl",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cli, logger)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cli CLI, logger *log.Logger) int {
	cfgPath := config.PathFromEnv()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("Error loading configuration", "path", cfgPath, "err", err)
		return 1
	}
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}

	limit := cli.Limit
	if limit < 1 {
		logger.Warn("limit must be at least 1, using 1", "limit", limit)
		limit = 1
	}

	table := states.Default()
	if cfg.StatesFile != "" {
		table, err = states.Load(cfg.StatesFile)
		if err != nil {
			logger.Error("Error loading state table", "err", err)
			return 1
		}
	}

	f := newFetcher(ctx, cfg, logger)
	defer f.Close()

	opts := []crawler.Option{
		crawler.WithLogger(logger),
		crawler.WithExtractor(extract.New(logger,
			extract.NumberedHeading{},
			extract.TokenHeading{
				PrefixTokens: cfg.LegacyHeading.PrefixTokens,
				SuffixTokens: cfg.LegacyHeading.SuffixTokens,
			},
		)),
	}
	if !cfg.Quiet {
		opts = append(opts, crawler.WithProgress(progress.New(os.Stdout, max(limit-cfg.Start+1, 1))))
	}

	c := crawler.New(crawler.Configuration{
		BaseURL: cfg.BaseURL,
		Suffix:  cfg.PageSuffix,
		Start:   cfg.Start,
		Limit:   limit,
		Year:    cfg.Election.Year,
		Type:    cfg.Election.Type,
		State:   cfg.Election.State,
	}, f, table, opts...)

	electionRun, summary, err := c.Crawl(ctx)
	if err != nil {
		logger.Error("Scraping could not start", "err", err)
		return 1
	}
	fmt.Println(bannerStyle.Render(fmt.Sprintf("%s %s Elections, %s", electionRun.Year, electionRun.Type, electionRun.StateName)))

	exit := 0
	w, err := writer.New(cfg.OutputDir)
	if err != nil {
		logger.Error("Error creating output directory", "err", err)
		return 1
	}
	paths, err := w.Write(electionRun, writer.FilePrefix(electionRun, time.Now()))
	if err != nil {
		logger.Error("Error writing results", "err", err)
		exit = 1
	}

	if cfg.SQLitePath != "" {
		if err := writeSQLite(context.WithoutCancel(ctx), cfg.SQLitePath, electionRun); err != nil {
			logger.Error("Error writing results database", "path", cfg.SQLitePath, "err", err)
			exit = 1
		}
	}

	renderSummary(os.Stdout, electionRun, summary)
	for _, p := range []string{paths.JSON, paths.CSV} {
		if p != "" {
			logger.Info("Data stored", "path", p)
		}
	}
	return exit
}

func newFetcher(ctx context.Context, cfg config.Config, logger *log.Logger) fetcher.PageFetcher {
	if cfg.Fetcher == config.FetcherHTTP {
		return fetcher.NewHTTPFetcher(cfg.UserAgent, cfg.RequestTimeout())
	}
	return fetcher.NewChromeFetcher(ctx, fetcher.ChromeOptions{
		UserAgent:   cfg.UserAgent,
		ShowBrowser: cfg.ShowBrowser,
		WaitTimeout: cfg.WaitTimeout(),
		NavTimeout:  cfg.RequestTimeout(),
		Logger:      logger,
	})
}
