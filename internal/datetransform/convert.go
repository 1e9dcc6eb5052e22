package datetransform

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// WireLayout is the serialized form of every UTC timestamp on the wire:
// millisecond precision with a trailing Z.
const WireLayout = "2006-01-02T15:04:05.000Z"

// Zone-less layouts accepted for wall-clock input. Fractional seconds are
// accepted after the seconds field even though the layouts omit them.
var wallClockLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var (
	ErrMissingTimezone = errors.New("timezone is required")
	ErrInvalidDate     = errors.New("invalid date")
)

// UnsupportedValueError is returned for values that are neither strings nor times.
type UnsupportedValueError struct {
	Value any
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported timestamp value of type %T", e.Value)
}

// LocalToUTC interprets v as a wall-clock time in the named zone and returns
// the equivalent instant in WireLayout. Strings carrying an explicit offset or
// Z keep that offset. A time.Time already names an instant and is only
// rendered, so both occurrences of a repeated DST hour survive.
func LocalToUTC(v any, tz string) (string, error) {
	if strings.TrimSpace(tz) == "" {
		return "", ErrMissingTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("load timezone %q: %w", tz, err)
	}

	var instant time.Time
	switch x := v.(type) {
	case string:
		instant, err = parseInLocation(x, loc)
		if err != nil {
			return "", err
		}
	case time.Time:
		if x.IsZero() {
			return "", ErrInvalidDate
		}
		instant = x
	case *time.Time:
		if x == nil || x.IsZero() {
			return "", ErrInvalidDate
		}
		instant = *x
	default:
		return "", &UnsupportedValueError{Value: v}
	}
	return FormatUTC(instant), nil
}

// UTCToLocal parses an ISO-8601 string (or accepts a valid time.Time) and
// returns it expressed in loc.
func UTCToLocal(v any, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch x := v.(type) {
	case string:
		t, err := parseInLocation(x, loc)
		if err != nil {
			return time.Time{}, err
		}
		return t.In(loc), nil
	case time.Time:
		if x.IsZero() {
			return time.Time{}, ErrInvalidDate
		}
		return x.In(loc), nil
	default:
		return time.Time{}, &UnsupportedValueError{Value: v}
	}
}

// ParseISO parses an ISO-8601 timestamp. Zone-less input is taken as UTC.
func ParseISO(s string) (time.Time, error) {
	t, err := parseInLocation(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FormatUTC renders t in WireLayout.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(WireLayout)
}

func parseInLocation(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}
