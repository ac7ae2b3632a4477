package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/event"
)

// rowDetails holds everything parsed out of a row's expanded details block.
type rowDetails struct {
	location      string
	rideManager   string
	managerPhone  string
	managerEmail  string
	controlJudges []event.ControlJudge
	distances     []event.Distance
	description   string
	directions    string
	pastEvent     bool
}

var (
	namePattern      = regexp.MustCompile(`Ride Manager\s*:?\s*([^,(]+)`)
	phonePattern     = regexp.MustCompile(`\(\s*([\d][\d\s.-]{6,})\s*\)`)
	emailPattern     = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	controlJudgeLine = regexp.MustCompile(`^(.*?Control Judge)\s*:?\s*(.+)$`)
	distanceToken    = regexp.MustCompile(`\d+(?:\.\d+)?`)
	timeToken        = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:am|pm)?`)
	parenthetical    = regexp.MustCompile(`\(([^)]*)\)`)
	fourDigitYear    = regexp.MustCompile(`\b\d{4}\b`)
)

// extractDetails parses the expanded details table of one calendar row.
// Rows are keyed by their leading label ("Location :", "Distances :", ...).
// dateStart is the default date for distance entries without a parenthetical
// date of their own, and supplies the year for overrides that omit one.
func extractDetails(row *goquery.Selection, dateStart string) *rowDetails {
	d := &rowDetails{}

	table := row.Find("table.detailData").First()

	// On the live site a finished ride's details collapse into a results
	// link; the schedule is gone and only descriptive fields remain.
	if hasResultsLink(row) ||
		(table.Length() == 0 && strings.Contains(row.Text(), "* Results *")) {
		d.pastEvent = true
	}

	if table.Length() == 0 {
		return d
	}

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		text := strings.TrimSpace(tr.Text())
		switch {
		case text == "":
		case strings.HasPrefix(text, "Location"):
			d.location = trimLabel(text, "Location")
		case strings.HasPrefix(text, "Ride Manager"):
			d.parseManager(text)
		case strings.Contains(text, "Control Judge"):
			if m := controlJudgeLine.FindStringSubmatch(text); m != nil {
				d.controlJudges = append(d.controlJudges, event.ControlJudge{
					Role: strings.TrimSpace(m[1]),
					Name: strings.TrimSpace(m[2]),
				})
			}
		case strings.HasPrefix(text, "Distances"):
			d.distances = parseDistances(trimLabel(text, "Distances"), dateStart)
		case strings.HasPrefix(text, "Description"):
			d.description = trimLabel(text, "Description")
		case strings.HasPrefix(text, "Directions"):
			d.directions = trimLabel(text, "Directions")
		}
	})

	if d.pastEvent {
		d.distances = nil
	}
	return d
}

// trimLabel strips a leading row label and its separator colon.
func trimLabel(text, label string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimPrefix(text, label), " :"))
}

// parseManager pulls the manager's name, phone and email out of a details
// line like "Ride Manager : Jane Doe (208-555-1234) jane@example.com". The
// name runs up to the first comma or parenthesis.
func (d *rowDetails) parseManager(text string) {
	if m := namePattern.FindStringSubmatch(text); m != nil {
		d.rideManager = strings.TrimSpace(m[1])
	}
	if m := phonePattern.FindStringSubmatch(text); m != nil {
		d.managerPhone = strings.TrimSpace(m[1])
	}
	d.managerEmail = emailPattern.FindString(text)
}

// parseDistances splits a distances line such as
//
//	"25 miles (Mar 21) 07:00 am, 50 miles (Mar 22) 06:30 am and 75"
//
// into distance entries. A parenthetical overrides the entry's date, taking
// its year from dateStart when it carries none; entries without an override
// run on dateStart.
func parseDistances(text, dateStart string) []event.Distance {
	contextYear := ""
	if t, err := event.ParseDate(dateStart); err == nil {
		contextYear = strconv.Itoa(t.Year())
	}

	var out []event.Distance
	for _, token := range splitDistanceList(strings.ReplaceAll(text, " and ", ",")) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		entry := event.Distance{Date: dateStart}

		if m := timeToken.FindString(token); m != "" {
			if _, err := event.ParseTime(m); err == nil {
				entry.StartTime = strings.TrimSpace(m)
			}
			token = strings.Replace(token, m, " ", 1)
		}

		if m := parenthetical.FindStringSubmatch(token); m != nil {
			if date := parseOverrideDate(m[1], contextYear); date != "" {
				entry.Date = date
			}
			token = parenthetical.ReplaceAllString(token, " ")
		}

		entry.Distance = distanceToken.FindString(token)
		if entry.Distance == "" {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// splitDistanceList splits a distances line on commas, but not on commas
// inside parentheses, which belong to a date override ("(Jan 2, 2026)").
func splitDistanceList(text string) []string {
	var tokens []string
	depth, start := 0, 0
	for i, r := range text {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				tokens = append(tokens, text[start:i])
				start = i + 1
			}
		}
	}
	return append(tokens, text[start:])
}

// parseOverrideDate normalizes a parenthetical date override to YYYY-MM-DD,
// borrowing contextYear when the override has no year of its own. Returns ""
// when the text is not a date.
func parseOverrideDate(text, contextYear string) string {
	text = strings.TrimSpace(timeToken.ReplaceAllString(text, ""))
	text = strings.Trim(text, " ,")
	if text == "" {
		return ""
	}
	if !fourDigitYear.MatchString(text) && contextYear != "" {
		text += ", " + contextYear
	}
	t, err := event.ParseDate(text)
	if err != nil {
		return ""
	}
	return t.Format(event.DateFormat)
}

// hasResultsLink reports whether the row links to ride results, the marker
// that the event already ran.
func hasResultsLink(row *goquery.Selection) bool {
	found := false
	row.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := strings.ToLower(a.Text())
		href := strings.ToLower(a.AttrOr("href", ""))
		if strings.Contains(text, "result") || strings.Contains(href, "result") {
			found = true
			return false
		}
		return true
	})
	return found
}
