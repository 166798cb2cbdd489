package util

import (
    "strconv"
    "time"
)

var dateLayouts = []string{
    "2006-01-02",
    time.RFC3339,
    time.RFC3339Nano,
    "2006-01-02 15:04:05",
    "2006-01-02T15:04:05",
}

// ParseTime tries plain dates, RFC3339 variants, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    for _, layout := range dateLayouts {
        if t, err := time.Parse(layout, s); err == nil {
            return t, true
        }
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0).UTC(), true
    }
    return time.Time{}, false
}

// FormatDate re-renders a date label with layout, returning s unchanged when it cannot be parsed.
func FormatDate(s, layout string) string {
    t, ok := ParseTime(s)
    if !ok {
        return s
    }
    return t.Format(layout)
}
