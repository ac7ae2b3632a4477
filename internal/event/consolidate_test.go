package event

import (
	"encoding/json"
	"reflect"
	"testing"
)

func fragment(rideID, dateStart string, distances ...Distance) *Event {
	return &Event{
		Source:       "AERC",
		RideID:       rideID,
		Name:         "Test Ride",
		Region:       "W",
		DateStart:    dateStart,
		LocationName: "Test Ranch, Test City, AZ",
		RideManager:  "Test Manager",
		Country:      "USA",
		EventType:    TypeEndurance,
		RideDays:     1,
		Distances:    distances,
	}
}

func TestConsolidateTwoDayEvent(t *testing.T) {
	fragments := []*Event{
		fragment("12345", "2025-06-01", Distance{Distance: "50", Date: "2025-06-01"}),
		fragment("12345", "2025-06-02", Distance{Distance: "75", Date: "2025-06-02"}),
	}

	consolidated, stats := Consolidate(fragments)

	if len(consolidated) != 1 {
		t.Fatalf("expected 1 consolidated event, got %d", len(consolidated))
	}
	ev, ok := consolidated["12345"]
	if !ok {
		t.Fatal("expected event keyed by ride ID 12345")
	}

	if !ev.IsMultiDayEvent {
		t.Error("expected IsMultiDayEvent to be true")
	}
	if ev.IsPioneerRide {
		t.Error("two-day event should not be a pioneer ride")
	}
	if ev.RideDays != 2 {
		t.Errorf("expected RideDays 2, got %d", ev.RideDays)
	}
	if ev.DateStart != "2025-06-01" || ev.DateEnd != "2025-06-02" {
		t.Errorf("expected span 2025-06-01..2025-06-02, got %s..%s", ev.DateStart, ev.DateEnd)
	}
	if len(ev.Distances) != 2 {
		t.Errorf("expected distances from both fragments, got %d entries", len(ev.Distances))
	}

	if stats.Initial != 2 || stats.MultiDay != 1 || stats.WithoutRideID != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestConsolidateThreeDayPioneer(t *testing.T) {
	fragments := []*Event{
		fragment("14457", "2025-06-01", Distance{Distance: "25", Date: "2025-06-01"}),
		fragment("14457", "2025-06-02", Distance{Distance: "25", Date: "2025-06-02"}),
		fragment("14457", "2025-06-03", Distance{Distance: "25", Date: "2025-06-03"}),
	}

	consolidated, _ := Consolidate(fragments)

	ev := consolidated["14457"]
	if ev == nil {
		t.Fatal("expected consolidated event 14457")
	}
	if !ev.IsPioneerRide {
		t.Error("three consecutive days should qualify as a pioneer ride")
	}
	if ev.RideDays != 3 {
		t.Errorf("expected RideDays 3, got %d", ev.RideDays)
	}
	if ev.DateEnd != "2025-06-03" {
		t.Errorf("expected DateEnd 2025-06-03, got %s", ev.DateEnd)
	}
}

func TestConsolidateDropsMissingRideID(t *testing.T) {
	fragments := []*Event{
		fragment("", "2025-06-01"),
		fragment("12345", "2025-06-01"),
	}

	consolidated, stats := Consolidate(fragments)

	if len(consolidated) != 1 {
		t.Fatalf("expected 1 consolidated event, got %d", len(consolidated))
	}
	if _, ok := consolidated[""]; ok {
		t.Error("fragment without ride ID must not appear in output")
	}
	if stats.WithoutRideID != 1 {
		t.Errorf("expected 1 fragment counted as missing ride ID, got %d", stats.WithoutRideID)
	}
}

func TestConsolidateIsIdempotent(t *testing.T) {
	fragments := []*Event{
		fragment("12345", "2025-06-01", Distance{Distance: "50", Date: "2025-06-01"}),
		fragment("12345", "2025-06-02", Distance{Distance: "75", Date: "2025-06-02"}),
		fragment("99999", "2025-07-04", Distance{Distance: "25", Date: "2025-07-04"}),
	}

	first, _ := Consolidate(fragments)
	second, _ := Consolidate(fragments)

	if !reflect.DeepEqual(first, second) {
		t.Error("consolidating the same fragment list twice should yield identical output")
	}

	// The input fragments themselves must be untouched.
	if len(fragments[0].Distances) != 1 {
		t.Errorf("input fragment was mutated: %d distances", len(fragments[0].Distances))
	}
}

func TestConsolidatedEventRoundTrip(t *testing.T) {
	ev := fragment("12345", "2025-06-01",
		Distance{Distance: "50", Date: "2025-06-01", StartTime: "07:00 am"},
		Distance{Distance: "75", Date: "2025-06-02", StartTime: "06:00 am"},
	)
	ev.ControlJudges = []ControlJudge{{Name: "Dr. Test Judge", Role: "Head Control Judge"}}
	ev.IsMultiDayEvent = true
	ev.RideDays = 2
	ev.DateEnd = "2025-06-02"

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var got Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(*ev, got) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, *ev)
	}
}
