// Package validate runs the structural, type, uniqueness and referential
// checks of a batch against the unified schema. It is a pure function of its
// inputs and safe to call concurrently for independent runs.
package validate

import (
	"fmt"
	"strings"

	"github.com/gyeh/noharmcheck/internal/index"
	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/normalize"
	"github.com/gyeh/noharmcheck/internal/parse"
	"github.com/gyeh/noharmcheck/internal/report"
	"github.com/gyeh/noharmcheck/internal/schema"
)

const (
	// MaxIssues bounds the issues reported for one category.
	MaxIssues = 200

	// maxDuplicateKeys bounds the keys listed in the duplicate-key issue.
	maxDuplicateKeys = 5
)

// Fixed messages.
const (
	msgNotLoaded     = "file not loaded"
	msgObjectData    = "json root has a data field; the file must be a direct array of records"
	msgObjectRoot    = "json must be an array of objects (list of records)"
	msgNoRecords     = "file has no records"
	msgNestedValue   = "record %d: values must not be objects or arrays"
	msgMissingFields = "missing fields: %s"
	msgUnexpected    = "unexpected fields: %s"
	msgKeyEmpty      = "record %d: required key is empty (%s)"
	msgDuplicateKeys = "duplicate keys (%s): %s"
	msgRefMissing    = "record %d: %s (%s) not found in %s"
)

var typeMessages = map[schema.TypeTag]string{
	schema.TypeNumber:  "record %d: %s must be a number",
	schema.TypeDate:    "record %d: %s must be a valid date/time",
	schema.TypeBoolean: "record %d: %s must be a boolean",
}

var typeChecks = map[schema.TypeTag]func(any) bool{
	schema.TypeNumber:  normalize.IsNumber,
	schema.TypeDate:    normalize.IsDate,
	schema.TypeBoolean: normalize.IsBoolean,
}

// TooManyIssues is the terminal marker appended once a category overflows.
func TooManyIssues() string {
	return fmt.Sprintf("too many errors, showing only the first %d", MaxIssues)
}

// Engine validates parsed batches against a registry.
type Engine struct {
	reg *schema.Registry
}

// New returns an Engine for reg. A nil registry is a caller
// misconfiguration and yields schema.ErrNoRegistry.
func New(reg *schema.Registry) (*Engine, error) {
	if reg == nil {
		return nil, schema.ErrNoRegistry
	}
	return &Engine{reg: reg}, nil
}

// Registry returns the registry the engine validates against.
func (e *Engine) Registry() *schema.Registry { return e.reg }

// Check validates every category in canonical order. Categories absent from
// files are reported as not loaded.
func (e *Engine) Check(files map[model.Category]*parse.ParsedFile) map[model.Category]*report.FileResult {
	idx := index.Build(e.reg, files)

	results := make(map[model.Category]*report.FileResult, len(model.AllCategories))
	for _, c := range model.AllCategories {
		u, ok := e.reg.Lookup(c.Key)
		if !ok {
			continue
		}
		results[c.Key] = checkFile(u, files[c.Key], idx)
	}
	return results
}

// Validate runs the engine and aggregates the results into a report.
func Validate(reg *schema.Registry, files map[model.Category]*parse.ParsedFile) (*report.Report, error) {
	e, err := New(reg)
	if err != nil {
		return nil, err
	}
	return report.Build(reg.Label, e.Check(files), files), nil
}

// checker accumulates the findings for one category.
type checker struct {
	u        *schema.UnifiedSchema
	pf       *parse.ParsedFile
	idx      index.Set
	issues   issueBuffer
	warnings []string
}

func checkFile(u *schema.UnifiedSchema, pf *parse.ParsedFile, idx index.Set) *report.FileResult {
	if pf == nil {
		return &report.FileResult{
			Status:   report.StatusError,
			Issues:   []string{msgNotLoaded},
			Warnings: []string{},
		}
	}

	c := &checker{u: u, pf: pf, idx: idx, issues: issueBuffer{max: MaxIssues}, warnings: []string{}}
	c.parseErrors()
	c.shape()
	c.emptiness()
	c.coverage()
	c.values()
	c.keys()
	c.references()

	issues := c.issues.result()
	return &report.FileResult{
		Status:      report.StatusFor(issues, c.warnings),
		Issues:      issues,
		Warnings:    c.warnings,
		RecordCount: pf.RecordCount(),
		ColumnCount: pf.ColumnCount(),
	}
}

func (c *checker) parseErrors() {
	for _, msg := range c.pf.ParseErrors {
		if !c.issues.add(msg) {
			return
		}
	}
}

func (c *checker) shape() {
	if c.pf.Format != parse.FormatJSON {
		return
	}
	switch c.pf.Root {
	case parse.RootObjectData:
		c.issues.add(msgObjectData)
	case parse.RootObject:
		c.issues.add(msgObjectRoot)
	}
}

func (c *checker) emptiness() {
	if len(c.pf.Records) == 0 {
		c.warnings = append(c.warnings, msgNoRecords)
	}
}

// coverage reports required fields absent from the file (canonical names) and
// file fields outside the allowed set (normalized names).
func (c *checker) coverage() {
	present := make(map[string]bool, len(c.pf.Fields))
	for _, f := range c.pf.Fields {
		present[f] = true
	}

	var missing []string
	for i, f := range c.u.RequiredNormalized() {
		if !present[f] {
			missing = append(missing, c.u.Required[i])
		}
	}
	if len(missing) > 0 {
		c.issues.add(fmt.Sprintf(msgMissingFields, strings.Join(missing, ", ")))
	}

	allowed := make(map[string]bool, len(c.u.Allowed))
	for _, f := range c.u.AllowedNormalized() {
		allowed[f] = true
	}
	var unexpected []string
	reported := make(map[string]bool)
	for _, f := range c.pf.Fields {
		if !allowed[f] && !reported[f] {
			reported[f] = true
			unexpected = append(unexpected, f)
		}
	}
	if len(unexpected) > 0 {
		c.issues.add(fmt.Sprintf(msgUnexpected, strings.Join(unexpected, ", ")))
	}
}

// values checks every record for nested values and type-hint conformance,
// scanning records in order and hinted fields in declaration order.
func (c *checker) values() {
	type hint struct {
		tag   schema.TypeTag
		field string
		key   string
	}
	var hints []hint
	for _, tag := range schema.AllTypeTags {
		for _, f := range c.u.TypeHints[tag] {
			hints = append(hints, hint{tag: tag, field: f, key: normalize.FieldName(f)})
		}
	}

	for i, rec := range c.pf.Records {
		n := i + 1
		for _, v := range rec {
			if normalize.IsNested(v) {
				if !c.issues.add(fmt.Sprintf(msgNestedValue, n)) {
					return
				}
				break
			}
		}
		for _, h := range hints {
			if typeChecks[h.tag](rec[h.key]) {
				continue
			}
			if !c.issues.add(fmt.Sprintf(typeMessages[h.tag], n, h.field)) {
				return
			}
		}
	}
}

// keys reports records with an empty key and, once, the duplicated keys.
func (c *checker) keys() {
	keyFields := c.u.KeyNormalized()
	label := c.u.KeyLabel()

	seen := make(map[string]bool, len(c.pf.Records))
	dupSeen := make(map[string]bool)
	var dups []string
	for i, rec := range c.pf.Records {
		k := index.Compose(rec, keyFields)
		if k.Incomplete() {
			if !c.issues.add(fmt.Sprintf(msgKeyEmpty, i+1, label)) {
				return
			}
			continue
		}
		if seen[k.Value] && !dupSeen[k.Value] {
			dupSeen[k.Value] = true
			dups = append(dups, k.Value)
		}
		seen[k.Value] = true
	}
	if len(dups) > 0 {
		if len(dups) > maxDuplicateKeys {
			dups = dups[:maxDuplicateKeys]
		}
		c.issues.add(fmt.Sprintf(msgDuplicateKeys, label, strings.Join(dups, ", ")))
	}
}

// references checks reference fields against the target category's index.
// References to a category that was not loaded are skipped.
func (c *checker) references() {
	for _, ref := range c.u.Refs {
		ix, ok := c.idx.Lookup(ref.Target)
		if !ok {
			continue
		}
		key := normalize.FieldName(ref.Field)
		for i, rec := range c.pf.Records {
			v := rec[key]
			if normalize.IsEmpty(v) {
				continue
			}
			s := normalize.ValueString(v)
			if ix.Has(s) {
				continue
			}
			if !c.issues.add(fmt.Sprintf(msgRefMissing, i+1, ref.Field, s, ref.Target)) {
				return
			}
		}
	}
}
