package event

import "sort"

// ConsolidateStats counts what happened during one consolidation pass.
type ConsolidateStats struct {
	Initial       int // fragments in
	WithoutRideID int // fragments dropped for missing ride ID
	MultiDay      int // consolidated events spanning more than one day
}

// Consolidate merges per-row fragments sharing a RideID into one canonical
// event each, returning the result keyed by ride ID.
//
// The first fragment seen for an ID seeds the record; later fragments
// contribute their distance lists (unioned, not deduplicated) and their
// start dates. Events whose fragments carry more than one distinct start
// date are re-derived at the merged level: date_start/date_end become the
// span extremes, ride_days the inclusive calendar span, and pioneer status
// follows from ride_days >= 3.
//
// Fragments without a ride ID are dropped and counted, never fatal. The
// input list is not mutated, so consolidating the same list twice yields
// identical output.
func Consolidate(fragments []*Event) (map[string]*Event, ConsolidateStats) {
	stats := ConsolidateStats{Initial: len(fragments)}

	consolidated := make(map[string]*Event)
	days := make(map[string]map[string]bool)

	for _, frag := range fragments {
		if frag.RideID == "" {
			stats.WithoutRideID++
			continue
		}

		seed, seen := consolidated[frag.RideID]
		if !seen {
			c := frag.Clone()
			c.IsPioneerRide = false
			consolidated[frag.RideID] = c
			days[frag.RideID] = make(map[string]bool)
			if frag.DateStart != "" {
				days[frag.RideID][frag.DateStart] = true
			}
			continue
		}

		if frag.DateStart != "" {
			days[frag.RideID][frag.DateStart] = true
		}
		seed.Distances = append(seed.Distances, frag.Distances...)
	}

	for rideID, ev := range consolidated {
		if len(days[rideID]) <= 1 {
			continue
		}

		dates := make([]string, 0, len(days[rideID]))
		for d := range days[rideID] {
			dates = append(dates, d)
		}
		sort.Strings(dates)

		ev.IsMultiDayEvent = true
		ev.IsPioneerRide = false
		ev.DateStart = dates[0]
		ev.DateEnd = dates[len(dates)-1]

		ev.RideDays = calendarSpanDays(ev.DateStart, ev.DateEnd)
		if ev.RideDays < 1 {
			ev.RideDays = len(dates)
		}
		if ev.RideDays >= 3 {
			ev.IsPioneerRide = true
		}
		stats.MultiDay++
	}

	return consolidated, stats
}
