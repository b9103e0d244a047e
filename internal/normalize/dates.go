package normalize

import (
	"strings"
	"time"
)

// Date layouts accepted in source exports: ISO-8601 variants first, then the
// day-first regional formats used by Brazilian hospital systems. Month-first
// layouts are deliberately absent so 03/04/2024 always means 3 April.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"02.01.2006",
}

// ParseDate attempts to parse a date string in the accepted formats.
// Returns nil if the input is empty or unparseable.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// IsDate reports whether v is empty or parses as a date/time.
func IsDate(v any) bool {
	if IsEmpty(v) {
		return true
	}
	return ParseDate(ValueString(v)) != nil
}
