package event

import (
	"fmt"
	"time"
)

// Validate applies the output schema contract to a consolidated event.
// It checks required fields, date formats, and the consistency invariants
// between ride_days, the multi-day flag and pioneer status. A non-nil error
// describes the first violation found; callers drop the record and continue.
func Validate(e *Event) error {
	required := []struct{ name, value string }{
		{"source", e.Source},
		{"ride_id", e.RideID},
		{"name", e.Name},
		{"region", e.Region},
		{"date_start", e.DateStart},
		{"location_name", e.LocationName},
		{"ride_manager", e.RideManager},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("missing required field %q", f.name)
		}
	}

	start, err := time.Parse(DateFormat, e.DateStart)
	if err != nil {
		return fmt.Errorf("date_start must be YYYY-MM-DD, got %q", e.DateStart)
	}
	if e.DateEnd != "" {
		end, err := time.Parse(DateFormat, e.DateEnd)
		if err != nil {
			return fmt.Errorf("date_end must be YYYY-MM-DD, got %q", e.DateEnd)
		}
		if end.Before(start) {
			return fmt.Errorf("date_end %s precedes date_start %s", e.DateEnd, e.DateStart)
		}
	}

	if e.RideDays < 1 {
		return fmt.Errorf("ride_days must be >= 1, got %d", e.RideDays)
	}
	if e.IsMultiDayEvent && e.RideDays < 2 {
		return fmt.Errorf("multi-day event with ride_days %d", e.RideDays)
	}
	if !e.IsMultiDayEvent && e.RideDays != 1 {
		return fmt.Errorf("single-day event with ride_days %d", e.RideDays)
	}
	if e.IsPioneerRide && e.RideDays < 3 {
		return fmt.Errorf("pioneer ride with ride_days %d", e.RideDays)
	}

	switch e.EventType {
	case TypeEndurance, TypeLimitedDistance, TypeCompetitiveTrail:
	default:
		return fmt.Errorf("unknown event_type %q", e.EventType)
	}

	return nil
}
