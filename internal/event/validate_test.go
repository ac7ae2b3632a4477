package event

import (
	"strings"
	"testing"
)

func validEvent() *Event {
	return &Event{
		Source:       "AERC",
		RideID:       "12345",
		Name:         "Test Ride",
		Region:       "W",
		DateStart:    "2025-03-20",
		LocationName: "Test Ranch, Test City, AZ",
		RideManager:  "Test Manager",
		Country:      "USA",
		EventType:    TypeEndurance,
		RideDays:     1,
	}
}

func TestValidateAcceptsCompleteEvent(t *testing.T) {
	if err := Validate(validEvent()); err != nil {
		t.Errorf("expected valid event to pass, got: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Event)
		wantMsg string
	}{
		{
			name:    "missing ride manager",
			mutate:  func(e *Event) { e.RideManager = "" },
			wantMsg: "ride_manager",
		},
		{
			name:    "missing region",
			mutate:  func(e *Event) { e.Region = "" },
			wantMsg: "region",
		},
		{
			name:    "malformed date",
			mutate:  func(e *Event) { e.DateStart = "03/20/2025" },
			wantMsg: "YYYY-MM-DD",
		},
		{
			name: "date end before date start",
			mutate: func(e *Event) {
				e.DateEnd = "2025-03-19"
			},
			wantMsg: "precedes",
		},
		{
			name:    "zero ride days",
			mutate:  func(e *Event) { e.RideDays = 0 },
			wantMsg: "ride_days",
		},
		{
			name: "multi-day flag with one ride day",
			mutate: func(e *Event) {
				e.IsMultiDayEvent = true
			},
			wantMsg: "multi-day",
		},
		{
			name: "single-day flag with two ride days",
			mutate: func(e *Event) {
				e.RideDays = 2
			},
			wantMsg: "single-day",
		},
		{
			name: "pioneer with two ride days",
			mutate: func(e *Event) {
				e.IsMultiDayEvent = true
				e.RideDays = 2
				e.DateEnd = "2025-03-21"
				e.IsPioneerRide = true
			},
			wantMsg: "pioneer",
		},
		{
			name:    "unknown event type",
			mutate:  func(e *Event) { e.EventType = "trail running" },
			wantMsg: "event_type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvent()
			tt.mutate(ev)

			err := Validate(ev)
			if err == nil {
				t.Fatal("expected validation to fail")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidatePioneerEvent(t *testing.T) {
	ev := validEvent()
	ev.IsMultiDayEvent = true
	ev.IsPioneerRide = true
	ev.RideDays = 3
	ev.DateEnd = "2025-03-22"

	if err := Validate(ev); err != nil {
		t.Errorf("expected three-day pioneer event to pass, got: %v", err)
	}
}
