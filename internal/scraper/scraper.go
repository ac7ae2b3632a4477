package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/cache"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/enrich"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/event"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/logger"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/metrics"
)

const (
	DefaultSourceName = "AERC"
	UserAgent         = "trailblaze-scraper/1.0 (github.com/HighwayofLife/TrailBlazeApp-Scrapers)"
	Timeout           = 30 * time.Second
)

var (
	// ErrHTMLDownload indicates the calendar page could not be fetched.
	// This is the only error that aborts a whole scrape.
	ErrHTMLDownload = errors.New("html download failed")
	// ErrDataExtraction indicates the page could not be parsed at all.
	ErrDataExtraction = errors.New("data extraction failed")
)

// AddressExtractor is the optional enrichment capability. Any error from it
// leaves the heuristic address fields unchanged.
type AddressExtractor interface {
	ExtractAddress(ctx context.Context, htmlSnippet string) (*enrich.Address, error)
}

// Scraper fetches, extracts and consolidates AERC calendar events. All
// collaborators are injected at construction; the zero-config path builds
// working defaults.
type Scraper struct {
	sourceName string
	client     *http.Client
	cache      *cache.Cache
	metrics    *metrics.Manager
	log        *logger.Logger
	enricher   AddressExtractor
}

// Config carries the Scraper's collaborators. Zero values get defaults; a
// nil Enricher disables address enrichment.
type Config struct {
	SourceName string
	CacheTTL   time.Duration
	Logger     *logger.Logger
	Metrics    *metrics.Manager
	Enricher   AddressExtractor
}

// New creates a Scraper from cfg.
func New(cfg Config) *Scraper {
	if cfg.SourceName == "" {
		cfg.SourceName = DefaultSourceName
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.New(logger.LevelInfo, cfg.SourceName, os.Stderr)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewManager(cfg.SourceName)
	}
	return &Scraper{
		sourceName: cfg.SourceName,
		client:     &http.Client{Timeout: Timeout},
		cache:      cache.New(cfg.CacheTTL),
		metrics:    cfg.Metrics,
		log:        cfg.Logger,
		enricher:   cfg.Enricher,
	}
}

// SourceName returns the source tag stamped onto every extracted event.
func (s *Scraper) SourceName() string { return s.sourceName }

// Metrics returns the scraper's metrics manager.
func (s *Scraper) Metrics() *metrics.Manager { return s.metrics }

// GetHTML retrieves the page at url, serving from the TTL cache when a live
// entry exists and caching fresh downloads. Failures wrap ErrHTMLDownload.
func (s *Scraper) GetHTML(ctx context.Context, url string) (string, error) {
	key := "html_content_" + url
	if html, ok := s.cache.Get(key); ok {
		s.metrics.Increment(metrics.CacheHits)
		s.log.Debug("cache hit", logger.Fields{"url": url})
		return html, nil
	}
	s.metrics.Increment(metrics.CacheMisses)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", ErrHTMLDownload, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.Increment(metrics.HTMLDownloadErrors)
		return "", fmt.Errorf("%w: fetching %s: %v", ErrHTMLDownload, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.metrics.Increment(metrics.HTMLDownloadErrors)
		return "", fmt.Errorf("%w: unexpected status code %d for %s", ErrHTMLDownload, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.metrics.Increment(metrics.HTMLDownloadErrors)
		return "", fmt.Errorf("%w: reading body: %v", ErrHTMLDownload, err)
	}

	html := string(body)
	s.cache.Set(key, html)
	return html, nil
}

// ParseHTML parses calendar page content and records how many calendar rows
// it contains.
func (s *Scraper) ParseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing HTML: %v", ErrDataExtraction, err)
	}

	rows := doc.Find("div.calendarRow").Length()
	s.metrics.Set(metrics.RawEventRows, rows)
	s.log.Info("found calendar rows", logger.Fields{"count": rows})

	return doc, nil
}

// Scrape runs the whole pipeline for one calendar URL: fetch (with cache),
// parse, extract per-row fragments, consolidate by ride ID, validate and
// key the output for persistence.
func (s *Scraper) Scrape(ctx context.Context, url string) (map[string]*event.Event, error) {
	s.log.Info("starting scrape", logger.Fields{"url": url})
	s.metrics.ResetEventMetrics()

	html, err := s.GetHTML(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := s.ParseHTML(html)
	if err != nil {
		return nil, err
	}

	fragments := s.ExtractEvents(ctx, doc)
	consolidated := s.ConsolidateEvents(fragments)
	return s.CreateFinalOutput(consolidated), nil
}

// ConsolidateEvents merges same-ride-ID fragments and maps the pass's
// statistics into the metrics manager.
func (s *Scraper) ConsolidateEvents(fragments []*event.Event) map[string]*event.Event {
	consolidated, stats := event.Consolidate(fragments)

	s.metrics.Set(metrics.InitialEvents, stats.Initial)
	s.metrics.IncrementBy(metrics.EventsWithoutRideID, stats.WithoutRideID)
	s.metrics.IncrementBy(metrics.MultiDayEvents, stats.MultiDay)

	if stats.WithoutRideID > 0 {
		s.log.Warn("fragments without ride_id skipped", logger.Fields{"count": stats.WithoutRideID})
	}
	s.log.Info("consolidated events", logger.Fields{
		"fragments": stats.Initial,
		"events":    len(consolidated),
		"multi_day": stats.MultiDay,
	})

	return consolidated
}

// CreateFinalOutput validates each consolidated event and keys survivors by
// their deterministic output filename. Invalid records are dropped and
// counted, never fatal.
func (s *Scraper) CreateFinalOutput(consolidated map[string]*event.Event) map[string]*event.Event {
	final := make(map[string]*event.Event, len(consolidated))

	for rideID, ev := range consolidated {
		if ev.Source == "" {
			ev.Source = s.sourceName
		}
		if err := event.Validate(ev); err != nil {
			s.metrics.Increment(metrics.ValidationErrors)
			s.metrics.Increment(metrics.InvalidEventsSkipped)
			s.log.Warn("skipping invalid event", logger.Fields{"ride_id": rideID, "reason": err.Error()})
			continue
		}
		final[event.FileName(ev.RideID, ev.Source)] = ev
	}

	s.metrics.Set(metrics.FinalEvents, len(final))
	s.log.Info("created final output", logger.Fields{"events": len(final)})

	return final
}
