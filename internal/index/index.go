// Package index builds per-category membership sets over composite keys,
// used to resolve cross-file references within one validation run.
package index

import (
	"strings"

	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/normalize"
	"github.com/gyeh/noharmcheck/internal/parse"
	"github.com/gyeh/noharmcheck/internal/schema"
)

// Separator joins key-field values into one composite key.
const Separator = "|"

// placeholders are textual stand-ins for a missing value left by exporters.
var placeholders = map[string]bool{"null": true, "undefined": true}

// Key is the composite key of one record.
type Key struct {
	Value string
	Parts []string
}

// Compose builds the composite key of rec over the normalized key fields.
// Values are rendered as they appear in the source, without trimming.
func Compose(rec parse.Record, keyFields []string) Key {
	parts := make([]string, len(keyFields))
	for i, f := range keyFields {
		parts[i] = normalize.ValueString(rec[f])
	}
	return Key{Value: strings.Join(parts, Separator), Parts: parts}
}

// Empty reports whether every key part is blank.
func (k Key) Empty() bool {
	for _, p := range k.Parts {
		if strings.TrimSpace(p) != "" {
			return false
		}
	}
	return true
}

// Incomplete reports whether any key part is blank or a missing-value
// placeholder such as "null".
func (k Key) Incomplete() bool {
	if len(k.Parts) == 0 {
		return true
	}
	for _, p := range k.Parts {
		t := strings.ToLower(strings.TrimSpace(p))
		if t == "" || placeholders[t] {
			return true
		}
	}
	return false
}

// Index is the set of composite keys of one category.
type Index map[string]struct{}

// Has reports whether key is present. A nil Index contains nothing.
func (ix Index) Has(key string) bool {
	_, ok := ix[key]
	return ok
}

// Set holds the index of every category that was loaded.
type Set map[model.Category]Index

// Lookup returns the index of cat; ok is false when the category was not loaded.
func (s Set) Lookup(cat model.Category) (Index, bool) {
	ix, ok := s[cat]
	return ix, ok
}

// Build indexes every loaded category over its unified key fields. Records
// whose key parts are all blank are left out. Missing categories get no index.
func Build(reg *schema.Registry, files map[model.Category]*parse.ParsedFile) Set {
	set := make(Set, len(files))
	if reg == nil {
		return set
	}
	for _, c := range model.AllCategories {
		pf := files[c.Key]
		u, ok := reg.Lookup(c.Key)
		if pf == nil || !ok {
			continue
		}
		keyFields := u.KeyNormalized()
		ix := make(Index, len(pf.Records))
		for _, rec := range pf.Records {
			k := Compose(rec, keyFields)
			if !k.Empty() {
				ix[k.Value] = struct{}{}
			}
		}
		set[c.Key] = ix
	}
	return set
}
