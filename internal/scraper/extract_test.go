package scraper

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/enrich"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/event"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/logger"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/metrics"
)

func TestParseDistances(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		dateStart string
		want      []event.Distance
	}{
		{
			name:      "single distance no overrides",
			text:      "50 miles",
			dateStart: "2025-03-20",
			want:      []event.Distance{{Distance: "50", Date: "2025-03-20"}},
		},
		{
			name:      "comma separated with times",
			text:      "25 miles 07:00 am, 50 miles 06:30 am",
			dateStart: "2025-03-20",
			want: []event.Distance{
				{Distance: "25", Date: "2025-03-20", StartTime: "07:00 am"},
				{Distance: "50", Date: "2025-03-20", StartTime: "06:30 am"},
			},
		},
		{
			name:      "parenthetical date override without year",
			text:      "25 miles (Mar 28) 06:30 am, 50 miles (Mar 29) 06:00 am",
			dateStart: "2025-03-28",
			want: []event.Distance{
				{Distance: "25", Date: "2025-03-28", StartTime: "06:30 am"},
				{Distance: "50", Date: "2025-03-29", StartTime: "06:00 am"},
			},
		},
		{
			name:      "and separator",
			text:      "10 miles and 25 miles",
			dateStart: "2025-04-05",
			want: []event.Distance{
				{Distance: "10", Date: "2025-04-05"},
				{Distance: "25", Date: "2025-04-05"},
			},
		},
		{
			name:      "override with explicit year",
			text:      "100 (Jan 2, 2026)",
			dateStart: "2025-12-31",
			want:      []event.Distance{{Distance: "100", Date: "2026-01-02"}},
		},
		{
			name:      "tokens without a distance are dropped",
			text:      "TBA, 50 miles",
			dateStart: "2025-03-20",
			want:      []event.Distance{{Distance: "50", Date: "2025-03-20"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDistances(tt.text, tt.dateStart)
			if len(got) != len(tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseOverrideDate(t *testing.T) {
	tests := []struct {
		text        string
		contextYear string
		want        string
	}{
		{"Mar 28", "2025", "2025-03-28"},
		{"Jan 2, 2026", "2025", "2026-01-02"},
		{"07:00 am", "2025", ""},
		{"pending", "2025", ""},
		{"", "2025", ""},
	}
	for _, tt := range tests {
		if got := parseOverrideDate(tt.text, tt.contextYear); got != tt.want {
			t.Errorf("parseOverrideDate(%q, %q) = %q, want %q", tt.text, tt.contextYear, got, tt.want)
		}
	}
}

func TestTrimLabel(t *testing.T) {
	tests := []struct {
		text, label, want string
	}{
		{"Location : Empire Ranch", "Location", "Empire Ranch"},
		{"Description: scenic loop", "Description", "scenic loop"},
		{"Distances :", "Distances", ""},
	}
	for _, tt := range tests {
		if got := trimLabel(tt.text, tt.label); got != tt.want {
			t.Errorf("trimLabel(%q, %q) = %q, want %q", tt.text, tt.label, got, tt.want)
		}
	}
}

const enrichableRow = `
<div class="calendarRow">
  <table>
    <tr>
      <td class="region">PS</td>
      <td class="bold">06/14/2025</td>
      <td>Deep Creek Trailhead</td>
      <td><span class="rideName" tag="31337">Deep Creek Challenge</span> mgr: Robin Hale</td>
    </tr>
  </table>
</div>`

type stubEnricher struct {
	addr  *enrich.Address
	err   error
	calls int
}

func (s *stubEnricher) ExtractAddress(context.Context, string) (*enrich.Address, error) {
	s.calls++
	return s.addr, s.err
}

func parseRows(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing test HTML: %v", err)
	}
	return doc
}

func TestExtractEventsEnrichmentFillsMissingFields(t *testing.T) {
	stub := &stubEnricher{addr: &enrich.Address{City: "Naches", State: "WA"}}
	s := New(Config{
		Logger:   logger.New(logger.LevelError, "test", io.Discard),
		Enricher: stub,
	})

	fragments := s.ExtractEvents(context.Background(), parseRows(t, enrichableRow))
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}

	ev := fragments[0]
	if stub.calls != 1 {
		t.Fatalf("enricher calls = %d, want 1", stub.calls)
	}
	if ev.City != "Deep Creek Trailhead" {
		t.Errorf("heuristic city must not be overwritten, got %q", ev.City)
	}
	if ev.State != "WA" {
		t.Errorf("state should come from enrichment, got %q", ev.State)
	}
	if ev.Country != "USA" {
		t.Errorf("country = %q", ev.Country)
	}
}

func TestExtractEventsEnrichmentFailureIsNotFatal(t *testing.T) {
	stub := &stubEnricher{err: errors.New("api down")}
	s := New(Config{
		Logger:   logger.New(logger.LevelError, "test", io.Discard),
		Enricher: stub,
	})

	fragments := s.ExtractEvents(context.Background(), parseRows(t, enrichableRow))
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	if fragments[0].State != "" {
		t.Errorf("failed enrichment must leave fields alone, got state %q", fragments[0].State)
	}
	if got := s.Metrics().Get(metrics.EnrichmentFailures); got != 1 {
		t.Errorf("enrichment_failures = %d, want 1", got)
	}
}

func TestExtractEventsSkipsEnrichmentWhenComplete(t *testing.T) {
	row := strings.Replace(enrichableRow, "Deep Creek Trailhead", "Empire Ranch, Sonoita, AZ", 1)
	stub := &stubEnricher{addr: &enrich.Address{City: "Elsewhere", State: "XX"}}
	s := New(Config{
		Logger:   logger.New(logger.LevelError, "test", io.Discard),
		Enricher: stub,
	})

	fragments := s.ExtractEvents(context.Background(), parseRows(t, row))
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	if stub.calls != 0 {
		t.Errorf("enricher should not run when city and state are resolved, calls = %d", stub.calls)
	}
	if fragments[0].City != "Sonoita" || fragments[0].State != "AZ" {
		t.Errorf("city/state = %q/%q", fragments[0].City, fragments[0].State)
	}
}
