// Package metrics tracks per-run scraping counters and renders them in a
// colorized terminal summary at the end of a batch.
//
// Counters cover the whole pipeline: raw rows found, fragments extracted,
// events consolidated and validated, cache and database activity. A
// consistency check cross-validates related counters after a run.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/fatih/color"
)

// Standard counters tracked for every scraper run.
const (
	RawEventRows         = "raw_event_rows"
	InitialEvents        = "initial_events"
	FinalEvents          = "final_events"
	MultiDayEvents       = "multi_day_events"
	DatabaseInserts      = "database_inserts"
	DatabaseUpdates      = "database_updates"
	CacheHits            = "cache_hits"
	CacheMisses          = "cache_misses"
	HTMLDownloadErrors   = "html_download_errors"
	ExtractionErrors     = "extraction_errors"
	EventsWithoutRideID  = "events_without_ride_id"
	ValidationErrors     = "validation_errors"
	InvalidEventsSkipped = "invalid_events_skipped"
	EnrichmentFailures   = "enrichment_failures"
)

var standardMetrics = []string{
	RawEventRows,
	InitialEvents,
	FinalEvents,
	MultiDayEvents,
	DatabaseInserts,
	DatabaseUpdates,
	CacheHits,
	CacheMisses,
	HTMLDownloadErrors,
	ExtractionErrors,
	EventsWithoutRideID,
	ValidationErrors,
	InvalidEventsSkipped,
	EnrichmentFailures,
}

// Manager collects counters for one scraper run. All operations are
// thread-safe.
type Manager struct {
	mu       sync.Mutex
	source   string
	counters map[string]int
}

// NewManager creates a Manager for the named source with all standard
// counters initialized to zero.
func NewManager(source string) *Manager {
	m := &Manager{
		source:   source,
		counters: make(map[string]int, len(standardMetrics)),
	}
	for _, name := range standardMetrics {
		m.counters[name] = 0
	}
	return m
}

// Increment adds 1 to the named counter, creating it if unknown.
func (m *Manager) Increment(name string) {
	m.IncrementBy(name, 1)
}

// IncrementBy adds value to the named counter, creating it if unknown.
func (m *Manager) IncrementBy(name string, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += value
}

// Set overwrites the named counter with value.
func (m *Manager) Set(name string, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] = value
}

// Get returns the current value of the named counter, zero if unknown.
func (m *Manager) Get(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// Reset zeroes every counter.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name := range m.counters {
		m.counters[name] = 0
	}
}

// ResetEventMetrics zeroes only the per-scrape event counters, preserving
// cache and database totals across multiple scrapes in one process.
func (m *Manager) ResetEventMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range []string{RawEventRows, InitialEvents, FinalEvents, MultiDayEvents} {
		m.counters[name] = 0
	}
}

// Snapshot returns a copy of all counters.
func (m *Manager) Snapshot() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}

// Validate cross-checks related counters and returns a message per
// inconsistency found. The checks are heuristics over typical calendar
// shapes, not hard invariants: a multi-day event contributes one extra
// fragment in the common two-fragment case.
func (m *Manager) Validate() []string {
	snap := m.Snapshot()
	var problems []string

	if snap[InitialEvents]-snap[EventsWithoutRideID] < snap[FinalEvents] {
		problems = append(problems, fmt.Sprintf(
			"final_events (%d) exceeds usable fragments (%d)",
			snap[FinalEvents], snap[InitialEvents]-snap[EventsWithoutRideID]))
	}
	if snap[MultiDayEvents] > snap[FinalEvents] {
		problems = append(problems, fmt.Sprintf(
			"multi_day_events (%d) exceeds final_events (%d)",
			snap[MultiDayEvents], snap[FinalEvents]))
	}
	if snap[InvalidEventsSkipped] > 0 && snap[ValidationErrors] == 0 {
		problems = append(problems, fmt.Sprintf(
			"invalid_events_skipped (%d) without recorded validation errors",
			snap[InvalidEventsSkipped]))
	}

	return problems
}

// Display writes a colorized summary of all counters to w, sorted by name.
// Error-class counters render red when non-zero.
func (m *Manager) Display(w io.Writer) {
	snap := m.Snapshot()

	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)

	header := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgWhite)
	value := color.New(color.FgGreen)
	alert := color.New(color.FgRed, color.Bold)

	header.Fprintf(w, "--- %s scraping metrics ---\n", m.source)
	for _, name := range names {
		label.Fprintf(w, "  %-24s", name)
		if isErrorMetric(name) && snap[name] > 0 {
			alert.Fprintf(w, "%d\n", snap[name])
		} else {
			value.Fprintf(w, "%d\n", snap[name])
		}
	}

	if problems := m.Validate(); len(problems) > 0 {
		alert.Fprintln(w, "metric consistency warnings:")
		for _, p := range problems {
			alert.Fprintf(w, "  - %s\n", p)
		}
	}
}

func isErrorMetric(name string) bool {
	switch name {
	case HTMLDownloadErrors, ExtractionErrors, ValidationErrors,
		InvalidEventsSkipped, EnrichmentFailures, EventsWithoutRideID:
		return true
	}
	return false
}
