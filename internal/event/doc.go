// Package event provides the data model and pure transformation core for
// endurance-ride calendar events.
//
// An Event begins life as a per-row fragment extracted from the AERC
// calendar HTML. Fragments sharing a ride ID are merged by Consolidate into
// one canonical record per event, with multi-day spans, ride-day counts and
// pioneer status re-derived at the merged level. Validate applies the output
// schema contract before records are handed to persistence.
package event
