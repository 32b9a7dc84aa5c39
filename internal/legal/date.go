package legal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// DateValue accepts RFC 3339 timestamps or plain YYYY-MM-DD dates in request bodies.
type DateValue struct {
	time.Time
}

// UnmarshalJSON parses the supported layouts. Plain dates resolve to midnight UTC.
func (d *DateValue) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

// ParseDate parses a timestamp or calendar date string into UTC.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date %q", raw)
}

func (d *DateValue) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	value := d.Time
	return &value
}

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ValidClock reports whether value is an HH:MM wall-clock time.
func ValidClock(value string) bool {
	return clockPattern.MatchString(value)
}
