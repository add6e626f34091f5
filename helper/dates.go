package helper

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/relloyd/survey2sql/constants"
)

var reCanonicalDatePrefix = regexp.MustCompile(constants.DateFormatRegex)

// zonedDateLayouts carry a zone offset, so parsed values are converted like times.
var zonedDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	constants.TimeFormatYearSecondsTZ,
}

// dateLayouts are tried in order for survey date strings that do not start with YYYY-MM-DD.
var dateLayouts = []string{
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	constants.TimeFormatYearSeconds,
	"20060102",
}

// NormaliseDate converts a survey date value to the canonical YYYY-MM-DD form.
// Times, epoch milliseconds and strings that carry a zone offset are converted into loc first;
// strings without an offset are taken at face value.
// nil returns "" without error.
func NormaliseDate(v interface{}, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.UTC
	}
	return normaliseDate(v, loc)
}

// NormaliseStoredDate converts a date read back from a target table to YYYY-MM-DD.
// Times are formatted in their own location since drivers return DATE columns as midnight UTC.
func NormaliseStoredDate(v interface{}) (string, error) {
	return normaliseDate(v, nil)
}

// normaliseDate converts times into loc unless loc is nil.
func normaliseDate(v interface{}, loc *time.Location) (string, error) {
	switch d := v.(type) {
	case nil:
		return "", nil
	case time.Time:
		return formatDate(d, loc), nil
	case *time.Time:
		if d == nil {
			return "", nil
		}
		return formatDate(*d, loc), nil
	case int64:
		return formatDate(EpochMillisToTime(d), loc), nil
	case int:
		return formatDate(EpochMillisToTime(int64(d)), loc), nil
	case float64:
		if IsNaN(d) {
			return "", nil
		}
		return formatDate(EpochMillisToTime(int64(d)), loc), nil
	case json.Number:
		ms, err := d.Int64()
		if err != nil {
			f, ferr := d.Float64()
			if ferr != nil {
				return "", fmt.Errorf("unable to parse date %q: %w", d, err)
			}
			ms = int64(f)
		}
		return formatDate(EpochMillisToTime(ms), loc), nil
	case []byte:
		return normaliseDateString(string(d), loc)
	case string:
		return normaliseDateString(d, loc)
	default:
		return "", fmt.Errorf("unsupported date type %T with value %v", v, v)
	}
}

func formatDate(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(constants.DateFormat)
}

func normaliseDateString(s string, loc *time.Location) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, layout := range zonedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return formatDate(t, loc), nil
		}
	}
	if m := reCanonicalDatePrefix.FindString(s); m != "" {
		if _, err := time.Parse(constants.DateFormat, m); err != nil {
			return "", fmt.Errorf("invalid date %q: %w", s, err)
		}
		return m, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(constants.DateFormat), nil
		}
	}
	return "", fmt.Errorf("unable to parse date %q", s)
}

// EpochMillisToTime converts milliseconds since the Unix epoch to a UTC time.
func EpochMillisToTime(ms int64) time.Time {
	return time.Unix(0, ms*int64(time.Millisecond)).UTC()
}

// Today returns the current date in loc as YYYY-MM-DD.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(constants.DateFormat)
}
