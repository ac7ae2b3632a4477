package event

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateFormat is the canonical wire format for all event dates.
const DateFormat = "2006-01-02"

var (
	// ErrDateParse indicates a date string that no known format matched.
	ErrDateParse = errors.New("unparseable date")
	// ErrTimeParse indicates a time string that no known format matched.
	ErrTimeParse = errors.New("unparseable time")
)

// ordinalSuffix matches day ordinals like "20th" or "1st" so natural-language
// dates such as "March 20th, 2025" parse cleanly.
var ordinalSuffix = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)

// ParseDate parses a date string into a time.Time. ISO YYYY-MM-DD is tried
// first, then general natural-language parsing ("Mar 20, 2025",
// "20-Mar-2025", "03/20/2025", ...). Returns an error wrapping ErrDateParse
// if no interpretation succeeds.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrDateParse)
	}

	if t, err := time.Parse(DateFormat, s); err == nil {
		return t, nil
	}

	t, err := dateparse.ParseAny(ordinalSuffix.ReplaceAllString(s, "$1"))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateParse, s)
	}
	return t, nil
}

// ParseTime parses a time-of-day string such as "07:00 am", "7:00PM" or
// 24-hour "19:00". The returned time carries Go's zero reference date; only
// the clock fields are meaningful. Returns an error wrapping ErrTimeParse on
// unrecognized input.
func ParseTime(s string) (time.Time, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrTimeParse)
	}

	for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrTimeParse, s)
}
