package parse

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

var (
	errInvalidJSON    = errors.New("invalid json")
	errUnexpectedRoot = errors.New("json is not in the expected format")
	errNonObject      = errors.New("json record list contains a non-object element")
)

// parseJSON accepts a top-level array of objects or an object whose data
// property is one. On failure p.Records stays empty. Keys are discovered in
// a first pass over all records (first seen wins) and normalized afterwards.
func parseJSON(p *ParsedFile, text []byte) error {
	if !gjson.ValidBytes(text) {
		return errInvalidJSON
	}

	doc := gjson.ParseBytes(text)
	list := doc
	switch {
	case doc.IsArray():
		p.Root = RootArray
	case doc.IsObject() && doc.Get("data").IsArray():
		p.Root = RootObjectData
		list = doc.Get("data")
	default:
		p.Root = RootObject
		return errUnexpectedRoot
	}

	type rawRecord struct {
		order  []string
		values map[string]any
	}
	var (
		raws   []rawRecord
		fields []string
		seen   = make(map[string]bool)
		bad    bool
	)
	list.ForEach(func(_, elem gjson.Result) bool {
		if !elem.IsObject() {
			bad = true
			return false
		}
		rec := rawRecord{values: make(map[string]any)}
		elem.ForEach(func(k, v gjson.Result) bool {
			name := k.String()
			if !seen[name] {
				seen[name] = true
				fields = append(fields, name)
			}
			rec.order = append(rec.order, name)
			rec.values[name] = jsonValue(v)
			return true
		})
		raws = append(raws, rec)
		return true
	})
	if bad {
		return errNonObject
	}

	records := make([]Record, len(raws))
	for i, r := range raws {
		records[i] = normalizeRecord(r.order, r.values)
	}
	p.Records = records
	if fields != nil {
		p.RawFields = fields
	}
	return nil
}

// jsonValue converts a gjson value to a plain Go value. Numbers keep their
// literal text so "10" and 10 render the same way in keys and messages.
func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.String:
		return v.Str
	default:
		return v.Value()
	}
}
