package normalize

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber converts s to a float64, accepting a comma as decimal separator
// (only the first comma is replaced, so "1,234,5" is rejected).
// ok is false for unparseable or non-finite values and for hex or
// underscore-separated forms.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" || strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// IsNumber reports whether v is empty or holds a finite number. Booleans
// count as numbers (true is 1, false is 0).
func IsNumber(v any) bool {
	if IsEmpty(v) {
		return true
	}
	if _, ok := v.(bool); ok {
		return true
	}
	_, ok := ParseNumber(ValueString(v))
	return ok
}
