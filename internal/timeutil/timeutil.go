// Package timeutil resolves the timestamp shapes found in NeTEx and
// SIRI documents: full date-times with or without an offset, and bare
// times of day that need an externally supplied service date.
package timeutil

import (
	"time"

	"github.com/theoremus-urban-solutions/netex-to-lc/lc"
)

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var timeOnlyLayouts = []string{
	"15:04:05Z07:00",
	"15:04:05",
	"15:04",
}

// ParseInstant resolves value to an instant. Values carrying their own
// offset keep it; offset-less values are interpreted in loc (UTC when
// loc is nil). Time-only values are combined with serviceDate; if none
// is configured the result is a MissingServiceDateError, which is
// document-fatal for SIRI input.
func ParseInstant(value string, serviceDate time.Time, loc *time.Location) (time.Time, error) {
	t, hasDate, err := ParseFlexible(value, serviceDate, loc)
	if err != nil {
		return time.Time{}, err
	}
	if !hasDate {
		return time.Time{}, &lc.MissingServiceDateError{Value: value}
	}
	return t, nil
}

// ParseFlexible resolves value like ParseInstant but tolerates a
// missing service date for time-only values: the time is anchored on
// the zero date and hasDate reports false. NeTEx timetables legally
// carry date-less passing times.
func ParseFlexible(value string, serviceDate time.Time, loc *time.Location) (t time.Time, hasDate bool, err error) {
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range dateTimeLayouts {
		if parsed, perr := parseIn(layout, value, loc); perr == nil {
			return parsed, true, nil
		}
	}

	for _, layout := range timeOnlyLayouts {
		parsed, perr := parseIn(layout, value, loc)
		if perr != nil {
			continue
		}
		if serviceDate.IsZero() {
			anchored := time.Date(1, time.January, 1,
				parsed.Hour(), parsed.Minute(), parsed.Second(), 0, parsed.Location())
			return anchored, false, nil
		}
		combined := time.Date(serviceDate.Year(), serviceDate.Month(), serviceDate.Day(),
			parsed.Hour(), parsed.Minute(), parsed.Second(), 0, parsed.Location())
		return combined, true, nil
	}

	return time.Time{}, false, &lc.SchemaShapeError{Unit: value, Missing: "parseable timestamp"}
}

func parseIn(layout, value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(layout, value, loc)
}

// DateForURI renders the departure_date template parameter. Values
// without a resolvable date use the documented all-zero sentinel.
func DateForURI(t time.Time, hasDate bool) string {
	if !hasDate {
		return "00000000"
	}
	return t.Format("20060102")
}

// DelaySeconds computes expected − aimed in whole seconds. Nil when
// either side is absent.
func DelaySeconds(aimed, expected time.Time, aimedOK, expectedOK bool) *int {
	if !aimedOK || !expectedOK {
		return nil
	}
	delay := int(expected.Sub(aimed) / time.Second)
	return &delay
}

// ParseServiceDate parses a YYYY-MM-DD service date.
func ParseServiceDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
