package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteOutput writes the final events in the specified format, ordered by
// their output key.
func WriteOutput(w io.Writer, events map[string]*event.Event, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, events)
	case FormatText:
		return writeText(w, events)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the full event map as indented JSON
func writeJSON(w io.Writer, events map[string]*event.Event) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(events)
}

// writeText outputs a human-readable event summary
func writeText(w io.Writer, events map[string]*event.Event) error {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	keys := make([]string, 0, len(events))
	for k := range events {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		ev := events[k]

		line := fmt.Sprintf("%s  %-3s %s", ev.DateStart, ev.Region, ev.Name)
		if ev.IsCanceled {
			line += " [CANCELLED]"
		}
		if ev.IsMultiDayEvent {
			line += fmt.Sprintf(" (%d days", ev.RideDays)
			if ev.IsPioneerRide {
				line += ", pioneer"
			}
			line += ")"
		}
		fmt.Fprintln(w, line)
		fmt.Fprintf(w, "    %s\n", ev.LocationName)

		if len(ev.Distances) > 0 {
			ds := make([]string, 0, len(ev.Distances))
			for _, d := range ev.Distances {
				ds = append(ds, d.Distance)
			}
			fmt.Fprintf(w, "    Distances: %s\n", strings.Join(ds, ", "))
		}
	}

	fmt.Fprintf(w, "\nTotal: %d event(s)\n", len(events))
	return nil
}
