package event

import (
	"crypto/sha1"
	"fmt"
	"strings"
)

// Event types recognized by the AERC calendar.
const (
	TypeEndurance        = "endurance"
	TypeLimitedDistance  = "limited_distance"
	TypeCompetitiveTrail = "competitive_trail"
)

// ControlJudge is one control judge entry from the event details block.
type ControlJudge struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Distance is one ride distance with its scheduled date and start time.
// Multi-day events list distances on different dates.
type Distance struct {
	Distance  string `json:"distance"`
	Date      string `json:"date"`
	StartTime string `json:"start_time,omitempty"`
}

// Event represents one endurance-ride event. The same type carries a raw
// per-row fragment during extraction and the consolidated record afterwards;
// consolidation merges all fragments sharing a RideID into one Event.
//
// All dates are YYYY-MM-DD strings, matching the wire contract.
type Event struct {
	Source          string         `json:"source"`
	RideID          string         `json:"ride_id"`
	Name            string         `json:"name"`
	Region          string         `json:"region"`
	DateStart       string         `json:"date_start"`
	DateEnd         string         `json:"date_end,omitempty"`
	LocationName    string         `json:"location_name"`
	City            string         `json:"city,omitempty"`
	State           string         `json:"state,omitempty"`
	Country         string         `json:"country"`
	RideManager     string         `json:"ride_manager"`
	ManagerPhone    string         `json:"manager_phone,omitempty"`
	ManagerEmail    string         `json:"manager_email,omitempty"`
	Website         string         `json:"website,omitempty"`
	FlyerURL        string         `json:"flyer_url,omitempty"`
	IsCanceled      bool           `json:"is_canceled"`
	IsMultiDayEvent bool           `json:"is_multi_day_event"`
	IsPioneerRide   bool           `json:"is_pioneer_ride"`
	RideDays        int            `json:"ride_days"`
	EventType       string         `json:"event_type"`
	HasIntroRide    bool           `json:"has_intro_ride"`
	Description     string         `json:"description,omitempty"`
	Directions      string         `json:"directions,omitempty"`
	ControlJudges   []ControlJudge `json:"control_judges"`
	Distances       []Distance     `json:"distances"`

	// PastEvent marks rows whose details section has been replaced by ride
	// results on the source site. Derived during extraction, not persisted.
	PastEvent bool `json:"-"`
}

// GenerateRideID creates a deterministic fallback ride ID from the event
// name, for rows where the source provides no ID. Collisions between
// identically-named events are possible and accepted.
func GenerateRideID(name string) string {
	h := sha1.New()
	h.Write([]byte(strings.TrimSpace(name)))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Clone returns a deep copy of the event, including the Distances and
// ControlJudges slices. Consolidation clones its seed fragments so the
// input list is never mutated.
func (e *Event) Clone() *Event {
	c := *e
	if e.Distances != nil {
		c.Distances = make([]Distance, len(e.Distances))
		copy(c.Distances, e.Distances)
	}
	if e.ControlJudges != nil {
		c.ControlJudges = make([]ControlJudge, len(e.ControlJudges))
		copy(c.ControlJudges, e.ControlJudges)
	}
	return &c
}

// FileName generates the deterministic output key for an event:
// "{source}_{ride_id}.json", lowercased, with dashes and spaces folded to
// underscores. FileName("ABC-123", "SERA") == "sera_abc_123.json".
func FileName(rideID, source string) string {
	clean := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		s = strings.ReplaceAll(s, "-", "_")
		s = strings.ReplaceAll(s, " ", "_")
		return s
	}
	return fmt.Sprintf("%s_%s.json", clean(source), clean(rideID))
}
