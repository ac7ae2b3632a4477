package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/event"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/logger"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/metrics"
)

var (
	// rideIDFromHandler pulls the numeric ride ID out of an onclick handler
	// like "toggleRide(rideID14457);" when the tag attribute is absent.
	rideIDFromHandler = regexp.MustCompile(`rideID(\d+)`)

	// usDateFallback finds a MM/DD/YYYY date anywhere in a row when the
	// dedicated date cell fails to parse.
	usDateFallback = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)

	// ldToken matches the standalone "LD" abbreviation for limited distance.
	ldToken = regexp.MustCompile(`(?i)\bld\b`)
)

// ExtractEvents walks every calendar row in the parsed document and returns
// one raw event fragment per row. A row the extractor cannot make sense of
// is skipped and counted; it never aborts the batch.
func (s *Scraper) ExtractEvents(ctx context.Context, doc *goquery.Document) []*event.Event {
	var fragments []*event.Event

	doc.Find("div.calendarRow").Each(func(i int, row *goquery.Selection) {
		ev, err := s.extractRow(ctx, row)
		if err != nil {
			s.metrics.Increment(metrics.ExtractionErrors)
			s.log.Warn("skipping calendar row", logger.Fields{"row": i, "reason": err.Error()})
			return
		}
		fragments = append(fragments, ev)
	})

	s.log.Info("extracted event fragments", logger.Fields{"count": len(fragments)})
	return fragments
}

// extractRow builds one event fragment from a single calendar row.
func (s *Scraper) extractRow(ctx context.Context, row *goquery.Selection) (*event.Event, error) {
	name, rideID, isCanceled, err := extractNameAndID(row)
	if err != nil {
		return nil, err
	}

	dateStart := extractDateStart(row)
	if dateStart == "" {
		return nil, fmt.Errorf("no parseable date for %q", name)
	}

	details := extractDetails(row, dateStart)
	website, flyer := extractWebsiteFlyer(row)

	ev := &event.Event{
		Source:        s.sourceName,
		RideID:        rideID,
		Name:          name,
		Region:        strings.TrimSpace(row.Find("td.region").First().Text()),
		DateStart:     dateStart,
		LocationName:  extractLocation(row, details),
		RideManager:   resolveManager(details.rideManager, row),
		ManagerPhone:  details.managerPhone,
		ManagerEmail:  details.managerEmail,
		Website:       website,
		FlyerURL:      flyer,
		IsCanceled:    isCanceled,
		EventType:     determineEventType(row),
		HasIntroRide:  determineHasIntroRide(row),
		Description:   details.description,
		Directions:    details.directions,
		ControlJudges: details.controlJudges,
		Distances:     details.distances,
		PastEvent:     details.pastEvent,
	}

	// Past events carry no distance schedule, so classification would see an
	// empty day set anyway; both paths land on single-day defaults.
	ev.IsMultiDayEvent, ev.IsPioneerRide, ev.RideDays, ev.DateEnd =
		event.DetermineMultiDayAndPioneer(ev.Distances, ev.DateStart)

	ev.City, ev.State, ev.Country = event.ExtractCityStateCountry(ev.LocationName)

	s.enrichAddress(ctx, row, ev)
	return ev, nil
}

// extractNameAndID resolves the event name, its ride ID and the cancellation
// flag from the row's name element. The ride ID falls back from the tag
// attribute to the onclick handler to a hash of the name.
func extractNameAndID(row *goquery.Selection) (name, rideID string, isCanceled bool, err error) {
	nameSel := row.Find("span.rideName").First()
	if nameSel.Length() == 0 {
		return "", "", false, fmt.Errorf("calendar row has no ride name element")
	}

	cancelSel := nameSel.Find(".cancelled").First()
	isCanceled = cancelSel.Length() > 0

	name = strings.TrimSpace(nameSel.Text())
	if isCanceled {
		if marker := strings.TrimSpace(cancelSel.Text()); marker != "" {
			name = strings.TrimSpace(strings.Replace(name, marker, "", 1))
		}
	}
	if name == "" {
		return "", "", false, fmt.Errorf("calendar row has an empty ride name")
	}

	rideID = strings.TrimSpace(nameSel.AttrOr("tag", ""))
	if rideID == "" {
		if onclick, ok := nameSel.Attr("onclick"); ok {
			if m := rideIDFromHandler.FindStringSubmatch(onclick); m != nil {
				rideID = m[1]
			}
		}
	}
	if rideID == "" {
		rideID = event.GenerateRideID(name)
	}

	return name, rideID, isCanceled, nil
}

// extractDateStart reads the row's date cell and normalizes it to
// YYYY-MM-DD, falling back to any MM/DD/YYYY date in the row text.
func extractDateStart(row *goquery.Selection) string {
	if t, err := event.ParseDate(row.Find("td.bold").First().Text()); err == nil {
		return t.Format(event.DateFormat)
	}
	if m := usDateFallback.FindString(row.Text()); m != "" {
		if t, err := event.ParseDate(m); err == nil {
			return t.Format(event.DateFormat)
		}
	}
	return ""
}

// extractLocation resolves the location string: the cell following the date
// cell first, then the expanded details block. Wayfinding boilerplate is
// stripped either way.
func extractLocation(row *goquery.Selection, details *rowDetails) string {
	if loc := event.CleanLocation(row.Find("td.bold").First().Next().Text()); loc != "" {
		return loc
	}
	return event.CleanLocation(details.location)
}

// mgrInline matches the collapsed manager marker ("mgr: Jane Doe") shown in
// the summary row when the details block is not expanded.
var mgrInline = regexp.MustCompile(`mgr:\s*([^,\n(]+)`)

// resolveManager picks the ride manager from the details block, then the
// collapsed summary marker, then the "Unknown" placeholder.
func resolveManager(fromDetails string, row *goquery.Selection) string {
	if fromDetails != "" {
		return fromDetails
	}

	text := row.Find(`tr[id^="TRrideID"]`).Text()
	if text == "" {
		text = row.Text()
	}
	if m := mgrInline.FindStringSubmatch(text); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}
	return "Unknown"
}

// extractWebsiteFlyer classifies the row's links into a website link and an
// entry/flyer link by their anchor text. Links outside the details block win
// over links inside it; within a phase the first match of each kind wins.
func extractWebsiteFlyer(row *goquery.Selection) (website, flyer string) {
	classify := func(anchors *goquery.Selection) {
		anchors.Each(func(_ int, a *goquery.Selection) {
			href := strings.TrimSpace(a.AttrOr("href", ""))
			if href == "" {
				return
			}
			text := strings.ToLower(strings.TrimSpace(a.Text()))
			switch {
			case website == "" && strings.Contains(text, "website"):
				website = href
			case flyer == "" && (strings.Contains(text, "entry") || strings.Contains(text, "flyer")):
				flyer = href
			}
		})
	}

	classify(row.Find("a").Not("table.detailData a"))
	if website == "" || flyer == "" {
		classify(row.Find("table.detailData a"))
	}
	return website, flyer
}

// determineEventType classifies the row by scanning its text for ride-type
// markers. Competitive trail outranks limited distance; the default is
// endurance.
func determineEventType(row *goquery.Selection) string {
	text := strings.ToLower(row.Text())
	switch {
	case strings.Contains(text, "competitive trail") || strings.Contains(text, "ctc"):
		return event.TypeCompetitiveTrail
	case strings.Contains(text, "limited distance") || ldToken.MatchString(text):
		return event.TypeLimitedDistance
	default:
		return event.TypeEndurance
	}
}

// determineHasIntroRide reports whether the row advertises an intro ride,
// either by the dedicated marker element or by mention in the text.
func determineHasIntroRide(row *goquery.Selection) bool {
	if row.Find(".hasIntroRide").Length() > 0 {
		return true
	}
	return strings.Contains(strings.ToLower(row.Text()), "intro ride")
}

// enrichAddress asks the optional address extractor to fill in City and
// State when the heuristic parser left them empty. It never overwrites a
// field the heuristics resolved, and any failure leaves the event untouched.
func (s *Scraper) enrichAddress(ctx context.Context, row *goquery.Selection, ev *event.Event) {
	if s.enricher == nil {
		return
	}
	if ev.City != "" && ev.State != "" {
		return
	}

	snippet, err := goquery.OuterHtml(row)
	if err != nil {
		snippet = row.Text()
	}

	addr, err := s.enricher.ExtractAddress(ctx, snippet)
	if err != nil {
		s.metrics.Increment(metrics.EnrichmentFailures)
		s.log.Warn("address enrichment failed", logger.Fields{
			"ride_id": ev.RideID,
			"reason":  err.Error(),
		})
		return
	}
	if addr == nil {
		return
	}

	if ev.City == "" {
		ev.City = addr.City
	}
	if ev.State == "" {
		ev.State = addr.State
	}
	if ev.State != "" {
		ev.Country = event.CountryForState(ev.State)
	}
}
