package timeutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Stored timestamps arrive in several shapes depending on which client wrote
// them: server timestamps materialized as time.Time, ISO strings, epoch
// millis, epoch seconds. ToInstant folds them all into a canonical UTC
// instant. Missing or malformed input reports ok=false, never "now" and never
// a panic.
func ToInstant(v any) (time.Time, bool) {
	switch val := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return val.UTC(), true
	case *time.Time:
		if val == nil || val.IsZero() {
			return time.Time{}, false
		}
		return val.UTC(), true
	case string:
		return parseString(val)
	case int64:
		return fromEpoch(val)
	case int:
		return fromEpoch(int64(val))
	case float64:
		return fromEpoch(int64(val))
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return fromEpoch(n)
		}
		if f, err := val.Float64(); err == nil {
			return fromEpoch(int64(f))
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// Coalesce picks the first usable instant, preferring the primary value. Used
// for the timestamp/createdAt dual-field ambiguity on messages, where the
// server-generated field wins when both are present.
func Coalesce(primary, fallback any) (time.Time, bool) {
	if t, ok := ToInstant(primary); ok {
		return t, true
	}
	return ToInstant(fallback)
}

// FormatRelative renders an instant as a short age label. A zero instant
// falls back to "recently" rather than a misleading absolute time.
func FormatRelative(t time.Time) string {
	if t.IsZero() {
		return "recently"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func parseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	// All-digit strings are epoch values.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromEpoch(n)
	}
	return time.Time{}, false
}

// Values above ~Sep 2001 in millis are unambiguous; smaller positive values
// are treated as epoch seconds.
func fromEpoch(n int64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	if n >= 1_000_000_000_000 {
		return time.UnixMilli(n).UTC(), true
	}
	return time.Unix(n, 0).UTC(), true
}
