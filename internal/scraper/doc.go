// Package scraper fetches and parses the AERC event calendar.
//
// The scraper downloads the calendar page (through a TTL cache), walks every
// calendar row with goquery, and extracts one raw event fragment per row:
// name, ride ID, dates, location, manager and the expanded details block
// with control judges and per-distance dates. Fragments are consolidated
// into one record per ride ID, validated, and keyed for persistence. A
// malformed row is skipped and counted; it never aborts the batch.
package scraper
