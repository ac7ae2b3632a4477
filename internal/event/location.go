package event

import (
	"regexp"
	"strings"
)

// Canadian province and territory codes and names. A resolved state matching
// either set switches the country from the USA default to Canada.
var (
	canadianProvinceCodes = map[string]bool{
		"AB": true, "BC": true, "MB": true, "NB": true, "NL": true,
		"NS": true, "NT": true, "NU": true, "ON": true, "PE": true,
		"QC": true, "SK": true, "YT": true,
	}
	canadianProvinceNames = map[string]bool{
		"alberta": true, "british columbia": true, "manitoba": true,
		"new brunswick": true, "newfoundland": true, "nova scotia": true,
		"northwest territories": true, "nunavut": true, "ontario": true,
		"prince edward island": true, "quebec": true, "saskatchewan": true,
		"yukon": true,
	}
)

// wayfindingText matches trailing directions boilerplate appended to
// location strings on the calendar page.
var wayfindingText = regexp.MustCompile(`(?i)\s*click here.*$`)

// CleanLocation strips trailing wayfinding boilerplate ("Click Here for
// Directions...") from a location string.
func CleanLocation(s string) string {
	return strings.TrimSpace(wayfindingText.ReplaceAllString(s, ""))
}

// CountryForState returns "Canada" when state is a Canadian province or
// territory, "USA" otherwise.
func CountryForState(state string) string {
	if isCanadian(state) {
		return "Canada"
	}
	return "USA"
}

// ExtractCityStateCountry splits a free-text location into city, state and
// country using comma-position heuristics:
//
//   - 3+ comma parts: last part is the state/province, second-to-last the
//     city; anything before is venue text and is ignored here.
//   - 2 parts: tried as "City, State" first, then "Venue, City State".
//   - 1 part: tried as a trailing "City State" split, else the whole string
//     is a state (if it looks like one) or a city.
//
// Country defaults to "USA" and becomes "Canada" when the resolved state is
// a Canadian province. This is best-effort: ambiguous input degrades to
// empty fields, never an error. Empty input yields ("", "", "USA").
func ExtractCityStateCountry(location string) (city, state, country string) {
	country = "USA"

	location = strings.TrimSpace(wayfindingText.ReplaceAllString(location, ""))
	if location == "" {
		return "", "", country
	}

	var parts []string
	for _, p := range strings.Split(location, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	switch {
	case len(parts) >= 3:
		state = normalizeState(parts[len(parts)-1])
		city = parts[len(parts)-2]
	case len(parts) == 2:
		if isStateToken(parts[1]) {
			// "City, State"
			city = parts[0]
			state = parts[1]
		} else if c, s, ok := splitCityState(parts[1]); ok {
			// "Venue, City State"
			city, state = c, s
		} else {
			city = parts[0]
		}
	case len(parts) == 1:
		if c, s, ok := splitCityState(parts[0]); ok {
			city, state = c, s
		} else if isStateToken(parts[0]) {
			state = parts[0]
		} else {
			city = parts[0]
		}
	}

	if isCanadian(state) {
		country = "Canada"
	}
	return city, state, country
}

// splitCityState tries to split a space-separated "City State" string on its
// final token.
func splitCityState(s string) (city, state string, ok bool) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return "", "", false
	}
	last := fields[len(fields)-1]
	if !isStateToken(last) {
		return "", "", false
	}
	return strings.Join(fields[:len(fields)-1], " "), last, true
}

// normalizeState reduces a state part that carries extra tokens (e.g. a zip
// code) to its leading state token when one is present.
func normalizeState(part string) string {
	fields := strings.Fields(part)
	if len(fields) > 1 && isStateToken(fields[0]) {
		return fields[0]
	}
	return part
}

// isStateToken reports whether a candidate token looks like a US/Canadian
// state or province: a two-letter code, or a full Canadian province name.
// Full US state names are not recognized; documented best-effort behavior.
func isStateToken(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) == 2 && isAlpha(s) {
		return true
	}
	return canadianProvinceNames[strings.ToLower(s)]
}

func isCanadian(state string) bool {
	return canadianProvinceCodes[strings.ToUpper(state)] ||
		canadianProvinceNames[strings.ToLower(state)]
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
