package normalize

import "strings"

// FieldName trims surrounding whitespace and lower-cases a field name. It is
// the only form used when comparing parsed data against schema fields, and it
// is idempotent: FieldName(FieldName(s)) == FieldName(s).
func FieldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FieldNames applies FieldName to every element, preserving order.
func FieldNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = FieldName(n)
	}
	return out
}
