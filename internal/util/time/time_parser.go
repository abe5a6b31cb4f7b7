package time_parser

import (
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var stringLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseTimestamp converts timestamps as they arrive from remote JSON into UTC.
// Supported inputs:
//   - ISO strings in the layouts above
//   - numeric strings and numbers as unix seconds (< 1e12) or milliseconds
//
// ok is false for nil, empty strings, unsupported types and unparsable values.
func ParseTimestamp(timestamp any) (parsed time.Time, ok bool) {
	switch v := timestamp.(type) {
	case nil:
		return time.Time{}, false

	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return time.Time{}, false
		}

		for _, layout := range stringLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC(), true
			}
		}

		if number, err := strconv.ParseInt(v, 10, 64); err == nil {
			return ParseTimestamp(number)
		}

		return time.Time{}, false

	case float64:
		// JSON numbers decode as float64
		return ParseTimestamp(int64(v))

	case int64:
		if v > 1e12 {
			return time.UnixMilli(v).UTC(), true
		}

		return time.Unix(v, 0).UTC(), true

	case int:
		return ParseTimestamp(int64(v))

	default:
		return time.Time{}, false
	}
}

// IsDate reports whether value is a calendar date in YYYY-MM-DD form.
func IsDate(value string) bool {
	_, err := time.Parse(DateLayout, value)
	return err == nil
}

// IsMonth reports whether value is a period in YYYY-MM form.
func IsMonth(value string) bool {
	_, err := time.Parse(MonthLayout, value)
	return err == nil
}

func CurrentMonth(now time.Time) string {
	return now.UTC().Format(MonthLayout)
}
