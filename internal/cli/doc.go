// Package cli implements the command-line interface for the scraper.
//
// The cli package provides the Cobra-based CLI that runs the full pipeline:
// fetch the AERC calendar (or a local sample file), extract and consolidate
// events, persist them to PostgreSQL, optionally verify the stored rows, and
// render the results as text or JSON alongside a metrics summary.
package cli
