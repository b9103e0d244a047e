package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// booleanTokens is the accepted boolean lexicon, including Portuguese yes/no.
var booleanTokens = map[string]bool{
	"true": true, "false": true,
	"0": true, "1": true,
	"s": true, "n": true,
	"sim": true, "nao": true, "não": true,
}

// ValueString renders a raw record value the way it appears in the source:
// strings as-is, json numbers by their literal text, nil as "".
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// IsEmpty reports whether v is nil or renders to a blank string.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	return strings.TrimSpace(ValueString(v)) == ""
}

// IsNested reports whether v is a structured value (object or list).
func IsNested(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// IsBoolean reports whether v is empty or, trimmed and lower-cased, one of the
// accepted boolean tokens.
func IsBoolean(v any) bool {
	if IsEmpty(v) {
		return true
	}
	return booleanTokens[strings.ToLower(strings.TrimSpace(ValueString(v)))]
}
