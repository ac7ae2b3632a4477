package event

import "sort"

// DetermineMultiDayAndPioneer derives the multi-day flags for one event from
// its per-distance dates and start date.
//
// The distinct non-empty dates across all distance entries form the day set.
// A set of zero or one days is a single-day event. Otherwise the event ends
// on the latest date in the set and ride days span the calendar range from
// dateStart, which can exceed the set size when a day has no distance entry.
// If the calendar arithmetic fails (unparseable dates), the distinct-date
// count stands in. A pioneer ride spans three or more days.
func DetermineMultiDayAndPioneer(distances []Distance, dateStart string) (isMultiDay, isPioneer bool, rideDays int, dateEnd string) {
	unique := make(map[string]bool)
	for _, d := range distances {
		if d.Date != "" {
			unique[d.Date] = true
		}
	}

	if len(unique) <= 1 {
		return false, false, 1, dateStart
	}

	dates := make([]string, 0, len(unique))
	for d := range unique {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	dateEnd = dates[len(dates)-1]

	rideDays = calendarSpanDays(dateStart, dateEnd)
	if rideDays < 1 {
		rideDays = len(unique)
	}

	return true, rideDays >= 3, rideDays, dateEnd
}

// calendarSpanDays returns the inclusive day count between two YYYY-MM-DD
// dates, or 0 when either fails to parse or the range is inverted.
func calendarSpanDays(start, end string) int {
	startT, err := ParseDate(start)
	if err != nil {
		return 0
	}
	endT, err := ParseDate(end)
	if err != nil {
		return 0
	}
	span := int(endT.Sub(startT).Hours()/24) + 1
	if span < 1 {
		return 0
	}
	return span
}
