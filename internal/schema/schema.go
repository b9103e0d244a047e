// Package schema declares the source-format schemas of each export file and
// derives the unified schema every batch is validated against.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/normalize"
)

var (
	// ErrNoRegistry is returned when validation is attempted without a schema
	// registry. It is a caller misconfiguration, not a file problem.
	ErrNoRegistry = errors.New("schema registry not available")

	// ErrKeyMismatch means two source formats declare different natural keys
	// for the same category.
	ErrKeyMismatch = errors.New("source schemas declare different key fields")
)

// TypeTag names a value type a field is expected to hold.
type TypeTag string

const (
	TypeNumber  TypeTag = "number"
	TypeDate    TypeTag = "date"
	TypeBoolean TypeTag = "boolean"
)

// AllTypeTags lists the type tags in check order.
var AllTypeTags = []TypeTag{TypeNumber, TypeDate, TypeBoolean}

// FieldGroup is a named set of equivalent required fields.
type FieldGroup struct {
	Name   string
	Fields []string
}

// Reference declares that values of Field must exist as keys of Target.
type Reference struct {
	Field  string         `json:"field"`
	Target model.Category `json:"target"`
}

// SourceFileSchema describes one category's file in one source format.
type SourceFileSchema struct {
	Required       []string
	RequiredGroups []FieldGroup // when set, replaces Required
	Allowed        []string     // defaults to the required fields
	Key            []string
	TypeHints      map[TypeTag][]string
	Refs           []Reference
}

// RequiredFields returns the required fields, flattening RequiredGroups into
// their ordered union when groups are declared.
func (s SourceFileSchema) RequiredFields() []string {
	if len(s.RequiredGroups) == 0 {
		return s.Required
	}
	var all []string
	for _, g := range s.RequiredGroups {
		all = union(all, g.Fields)
	}
	return all
}

// AllowedFields returns the required fields plus any declared extras.
func (s SourceFileSchema) AllowedFields() []string {
	return union(s.RequiredFields(), s.Allowed)
}

// SourceFormat is one hospital-system export convention.
type SourceFormat struct {
	Key   string
	Label string
	Files map[model.Category]SourceFileSchema
}

// UnifiedSchema is the target contract for one category.
type UnifiedSchema struct {
	Category  model.Category       `json:"category"`
	Required  []string             `json:"required"`
	Allowed   []string             `json:"allowed"`
	Key       []string             `json:"key"`
	TypeHints map[TypeTag][]string `json:"typeHints"`
	Refs      []Reference          `json:"refs,omitempty"`
}

// RequiredNormalized returns Required in normalized form, same order.
func (u *UnifiedSchema) RequiredNormalized() []string { return normalize.FieldNames(u.Required) }

// AllowedNormalized returns Allowed in normalized form, same order.
func (u *UnifiedSchema) AllowedNormalized() []string { return normalize.FieldNames(u.Allowed) }

// KeyNormalized returns Key in normalized form, same order.
func (u *UnifiedSchema) KeyNormalized() []string { return normalize.FieldNames(u.Key) }

// KeyLabel renders the key fields for messages, e.g. "FKHOSPITAL + FKSETOR".
func (u *UnifiedSchema) KeyLabel() string { return strings.Join(u.Key, " + ") }

// SortedAllowed returns the allowed fields in lexical order, for reference listings.
func (u *UnifiedSchema) SortedAllowed() []string {
	out := append([]string(nil), u.Allowed...)
	sort.Strings(out)
	return out
}

// Derive merges two source schemas of the same category. Required fields are
// the intersection (order of a), allowed fields and type hints the union, and
// references the union with b's target winning on a field collision. A field
// tagged with different types by a and b keeps a's tag only.
func Derive(cat model.Category, a, b SourceFileSchema) (*UnifiedSchema, error) {
	aReq, bReq := a.RequiredFields(), b.RequiredFields()

	key := a.Key
	switch {
	case len(key) == 0:
		key = b.Key
	case len(b.Key) > 0 && !equal(a.Key, b.Key):
		return nil, fmt.Errorf("%s: %w (%s vs %s)", cat, ErrKeyMismatch,
			strings.Join(a.Key, "+"), strings.Join(b.Key, "+"))
	}

	return &UnifiedSchema{
		Category:  cat,
		Required:  intersect(aReq, bReq),
		Allowed:   union(a.AllowedFields(), b.AllowedFields()),
		Key:       append([]string(nil), key...),
		TypeHints: mergeTypeHints(a.TypeHints, b.TypeHints),
		Refs:      mergeRefs(a.Refs, b.Refs),
	}, nil
}

func mergeTypeHints(a, b map[TypeTag][]string) map[TypeTag][]string {
	tagOf := make(map[string]TypeTag)
	out := make(map[TypeTag][]string, len(AllTypeTags))
	for _, tag := range AllTypeTags {
		for _, f := range a[tag] {
			if _, seen := tagOf[f]; !seen {
				tagOf[f] = tag
				out[tag] = append(out[tag], f)
			}
		}
	}
	for _, tag := range AllTypeTags {
		for _, f := range b[tag] {
			if _, seen := tagOf[f]; !seen {
				tagOf[f] = tag
				out[tag] = append(out[tag], f)
			}
		}
	}
	for _, tag := range AllTypeTags {
		if out[tag] == nil {
			out[tag] = []string{}
		}
	}
	return out
}

func mergeRefs(a, b []Reference) []Reference {
	out := append([]Reference(nil), a...)
	pos := make(map[string]int, len(out))
	for i, r := range out {
		pos[r.Field] = i
	}
	for _, r := range b {
		if i, ok := pos[r.Field]; ok {
			out[i].Target = r.Target
			continue
		}
		pos[r.Field] = len(out)
		out = append(out, r)
	}
	return out
}

// Registry holds the unified schema of every category.
type Registry struct {
	Label   string
	Sources []SourceFormat
	Unified map[model.Category]*UnifiedSchema
}

// NewRegistry derives the unified schema for every category from two source
// formats. Both formats must declare every category.
func NewRegistry(label string, a, b SourceFormat) (*Registry, error) {
	r := &Registry{
		Label:   label,
		Sources: []SourceFormat{a, b},
		Unified: make(map[model.Category]*UnifiedSchema, len(model.AllCategories)),
	}
	for _, c := range model.AllCategories {
		sa, ok := a.Files[c.Key]
		if !ok {
			return nil, fmt.Errorf("source %s: no schema for %s", a.Key, c.Key)
		}
		sb, ok := b.Files[c.Key]
		if !ok {
			return nil, fmt.Errorf("source %s: no schema for %s", b.Key, c.Key)
		}
		u, err := Derive(c.Key, sa, sb)
		if err != nil {
			return nil, err
		}
		r.Unified[c.Key] = u
	}
	return r, nil
}

// MustNewRegistry is NewRegistry that panics on a schema-authoring error.
func MustNewRegistry(label string, a, b SourceFormat) *Registry {
	r, err := NewRegistry(label, a, b)
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	return r
}

// Lookup returns the unified schema for cat.
func (r *Registry) Lookup(cat model.Category) (*UnifiedSchema, bool) {
	u, ok := r.Unified[cat]
	return u, ok
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, f := range list {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, f := range b {
		inB[f] = true
	}
	out := []string{}
	seen := make(map[string]bool, len(a))
	for _, f := range a {
		if inB[f] && !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
