package signals

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Accepted layouts, tried in order. Layouts without a zone are read as UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// millisThreshold separates unix seconds from unix milliseconds.
const millisThreshold = 1e11

// ParseTimestamp resolves an adapter timestamp to an absolute UTC instant.
// Strings may be ISO 8601 (with or without zone) or numeric unix time; numbers
// are unix seconds, or milliseconds when implausibly large for seconds.
// The boolean is false when the value is missing or unparseable.
func ParseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t.UTC(), true
	case float64:
		return fromUnix(t)
	case int:
		return fromUnix(float64(t))
	case int64:
		return fromUnix(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromUnix(f)
	case string:
		return parseString(t)
	default:
		return time.Time{}, false
	}
}

func parseString(s string) (time.Time, bool) {
	text := strings.TrimSpace(s)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts.UTC(), true
		}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return fromUnix(f)
	}
	return time.Time{}, false
}

func fromUnix(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return time.Time{}, false
	}
	if f >= millisThreshold {
		f /= 1000
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(math.Round(frac*1e6))*int64(time.Microsecond)).UTC(), true
}
