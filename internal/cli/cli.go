package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/config"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/enrich"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/event"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/logger"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/metrics"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/scraper"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// defaultSampleFile is where --sample looks when --sample-file is not given.
const defaultSampleFile = "samples/aerc_calendar.html"

var (
	flagURL        string
	flagSample     bool
	flagSampleFile string
	flagNoDB       bool
	flagValidate   bool
	flagFormat     string
	flagVerbose    bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trailblaze-scraper",
		Short: "Scrape the AERC ride calendar into PostgreSQL",
		Long: `Scrapes the AERC endurance ride calendar, consolidates multi-day rides
into single events, validates every record and stores the results in
PostgreSQL. Database and enrichment settings come from the environment
(or a .env file in the working directory).`,
		RunE:          runScrape,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&flagURL, "url", "", "Calendar URL to scrape (default: AERC_CALENDAR_URL)")
	cmd.Flags().BoolVar(&flagSample, "sample", false, "Parse the bundled sample HTML instead of fetching the calendar")
	cmd.Flags().StringVar(&flagSampleFile, "sample-file", "", "Path to a sample HTML file (implies --sample)")
	cmd.Flags().BoolVar(&flagNoDB, "no-db", false, "Skip all database writes")
	cmd.Flags().BoolVar(&flagValidate, "validate", false, "Re-read stored events and compare them with the scraped data")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg := config.Load()

	level := logger.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, scraper.DefaultSourceName, os.Stderr)
	m := metrics.NewManager(scraper.DefaultSourceName)

	var enricher scraper.AddressExtractor
	if cfg.LLMAPIKey != "" {
		client, err := enrich.NewClient(cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMMaxRetries, cfg.LLMRetryDelay, log)
		if err != nil {
			log.Warn("address enrichment disabled", logger.Fields{"reason": err.Error()})
		} else {
			enricher = client
		}
	}

	s := scraper.New(scraper.Config{
		CacheTTL: cfg.CacheTTL,
		Logger:   log,
		Metrics:  m,
		Enricher: enricher,
	})

	ctx := cmd.Context()

	var (
		events map[string]*event.Event
		err    error
	)
	if flagSample || flagSampleFile != "" {
		path := flagSampleFile
		if path == "" {
			path = defaultSampleFile
		}
		events, err = scrapeFile(ctx, s, path)
	} else {
		url := flagURL
		if url == "" {
			url = cfg.AERCCalendarURL
		}
		events, err = s.Scrape(ctx, url)
	}
	if err != nil {
		return err
	}

	if flagNoDB {
		if flagValidate {
			log.Warn("--validate has no effect together with --no-db", nil)
		}
	} else if err := persist(ctx, cfg, log, m, events, flagValidate); err != nil {
		return err
	}

	if err := WriteOutput(os.Stdout, events, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	m.Display(os.Stderr)

	return nil
}

// scrapeFile runs the extraction pipeline over a local HTML file, bypassing
// the HTTP and cache layers.
func scrapeFile(ctx context.Context, s *scraper.Scraper, path string) (map[string]*event.Event, error) {
	html, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sample file: %w", err)
	}

	doc, err := s.ParseHTML(string(html))
	if err != nil {
		return nil, err
	}

	fragments := s.ExtractEvents(ctx, doc)
	return s.CreateFinalOutput(s.ConsolidateEvents(fragments)), nil
}

// persist writes every event to Postgres and optionally verifies the stored
// rows against the scraped data.
func persist(ctx context.Context, cfg *config.Settings, log *logger.Logger, m *metrics.Manager, events map[string]*event.Event, validate bool) error {
	store, err := storage.Open(ctx, cfg.DSN(), log, m)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.CreateTables(ctx); err != nil {
		return err
	}

	keys := make([]string, 0, len(events))
	for k := range events {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	inserted, updated := 0, 0
	for _, k := range keys {
		isNew, err := store.UpsertEvent(ctx, events[k])
		if err != nil {
			return err
		}
		if isNew {
			inserted++
		} else {
			updated++
		}
	}
	log.Info("stored events", logger.Fields{"inserted": inserted, "updated": updated})

	if !validate {
		return nil
	}

	mismatches, err := store.ValidateEvents(ctx, events)
	if err != nil {
		return fmt.Errorf("validating stored events: %w", err)
	}
	if len(mismatches) == 0 {
		log.Info("all stored events match scraped data", nil)
		return nil
	}
	for _, mm := range mismatches {
		fmt.Fprintf(os.Stderr, "mismatch: %s\n", mm)
	}
	return fmt.Errorf("%d field(s) differ between scraped and stored events", len(mismatches))
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
