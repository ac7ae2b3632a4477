package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/event"
	"github.com/HighwayofLife/TrailBlazeApp-Scrapers/internal/logger"
)

// FieldMismatch reports one field differing between a scraped event and its
// stored row.
type FieldMismatch struct {
	RideID  string
	Field   string
	Scraped string
	Stored  string
}

func (m FieldMismatch) String() string {
	return fmt.Sprintf("%s.%s: scraped %q, stored %q", m.RideID, m.Field, m.Scraped, m.Stored)
}

// CompareEvents diffs the persisted fields of two events, returning one
// mismatch per differing field. Nested slices are compared element-wise.
func CompareEvents(scraped, stored *event.Event) []FieldMismatch {
	var out []FieldMismatch

	add := func(field string, a, b any) {
		sa, sb := fmt.Sprint(a), fmt.Sprint(b)
		if sa != sb {
			out = append(out, FieldMismatch{
				RideID: scraped.RideID, Field: field, Scraped: sa, Stored: sb,
			})
		}
	}

	add("name", scraped.Name, stored.Name)
	add("region", scraped.Region, stored.Region)
	add("date_start", scraped.DateStart, stored.DateStart)
	add("date_end", scraped.DateEnd, stored.DateEnd)
	add("location_name", scraped.LocationName, stored.LocationName)
	add("city", scraped.City, stored.City)
	add("state", scraped.State, stored.State)
	add("country", scraped.Country, stored.Country)
	add("ride_manager", scraped.RideManager, stored.RideManager)
	add("manager_phone", scraped.ManagerPhone, stored.ManagerPhone)
	add("manager_email", scraped.ManagerEmail, stored.ManagerEmail)
	add("website", scraped.Website, stored.Website)
	add("flyer_url", scraped.FlyerURL, stored.FlyerURL)
	add("is_canceled", scraped.IsCanceled, stored.IsCanceled)
	add("is_multi_day_event", scraped.IsMultiDayEvent, stored.IsMultiDayEvent)
	add("is_pioneer_ride", scraped.IsPioneerRide, stored.IsPioneerRide)
	add("ride_days", scraped.RideDays, stored.RideDays)
	add("event_type", scraped.EventType, stored.EventType)
	add("has_intro_ride", scraped.HasIntroRide, stored.HasIntroRide)

	if len(scraped.ControlJudges) != len(stored.ControlJudges) {
		add("control_judges", len(scraped.ControlJudges), len(stored.ControlJudges))
	} else {
		for i := range scraped.ControlJudges {
			add(fmt.Sprintf("control_judges[%d]", i), scraped.ControlJudges[i], stored.ControlJudges[i])
		}
	}

	if len(scraped.Distances) != len(stored.Distances) {
		add("distances", len(scraped.Distances), len(stored.Distances))
	} else {
		for i := range scraped.Distances {
			add(fmt.Sprintf("distances[%d]", i), scraped.Distances[i], stored.Distances[i])
		}
	}

	return out
}

// ValidateEvents re-reads every scraped event from the database and compares
// it field by field with what the scraper produced. An event missing from
// the database counts as a single mismatch on its ride_id.
func (s *Store) ValidateEvents(ctx context.Context, events map[string]*event.Event) ([]FieldMismatch, error) {
	var mismatches []FieldMismatch

	for _, ev := range events {
		stored, err := s.GetEvent(ctx, ev.Source, ev.RideID)
		if errors.Is(err, ErrNotFound) {
			mismatches = append(mismatches, FieldMismatch{
				RideID: ev.RideID, Field: "row", Scraped: "present", Stored: "missing",
			})
			continue
		}
		if err != nil {
			return nil, err
		}

		found := CompareEvents(ev, stored)
		if len(found) > 0 && s.log != nil {
			s.log.Warn("stored event differs from scraped data", logger.Fields{
				"ride_id":    ev.RideID,
				"mismatches": len(found),
			})
		}
		mismatches = append(mismatches, found...)
	}

	return mismatches, nil
}

// ValidateDeletion confirms that an event is gone from the database.
func (s *Store) ValidateDeletion(ctx context.Context, source, rideID string) error {
	_, err := s.GetEvent(ctx, source, rideID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("event %s/%s still present after deletion", source, rideID)
}
