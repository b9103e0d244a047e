// Package fixture generates example export batches that conform to a unified
// schema, optionally with deliberate defects, in csv, json or parquet form.
package fixture

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/parquetread"
	"github.com/gyeh/noharmcheck/internal/schema"
)

// fileNames are the names hospital exports usually carry, so generated
// batches also route through model.MatchCategory.
var fileNames = map[model.Category]string{
	model.Prescriptions: "prescricoes",
	model.Medications:   "medicamentos",
	model.Sectors:       "setores",
	model.Units:         "unidades",
	model.Frequency:     "frequencia",
}

// Table is one generated category file.
type Table struct {
	Category model.Category
	Columns  []string
	Rows     []map[string]string
}

// FileName returns the conventional file name of the table for format.
func (t *Table) FileName(format string) string {
	return fileNames[t.Category] + "." + format
}

// Batch generates n conforming rows for every category of reg. Key fields
// hold 1..n and every reference points at an existing key.
func Batch(reg *schema.Registry, n int) map[model.Category]*Table {
	out := make(map[model.Category]*Table, len(model.AllCategories))
	for _, c := range model.AllCategories {
		u, ok := reg.Lookup(c.Key)
		if !ok {
			continue
		}
		out[c.Key] = table(u, n)
	}
	return out
}

func table(u *schema.UnifiedSchema, n int) *Table {
	kinds := make(map[string]string)
	for _, tag := range schema.AllTypeTags {
		for _, f := range u.TypeHints[tag] {
			kinds[f] = string(tag)
		}
	}
	for _, r := range u.Refs {
		kinds[r.Field] = "ref"
	}
	for _, k := range u.Key {
		kinds[k] = "key"
	}

	t := &Table{Category: u.Category, Columns: append([]string(nil), u.Required...)}
	for i := 0; i < n; i++ {
		row := make(map[string]string, len(t.Columns))
		for _, col := range t.Columns {
			row[col] = value(kinds[col], col, i)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func value(kind, col string, i int) string {
	switch kind {
	case "key", "ref":
		return strconv.Itoa(i + 1)
	case string(schema.TypeNumber):
		return strconv.Itoa(i+1) + ",5"
	case string(schema.TypeDate):
		if i%2 == 0 {
			return "2024-01-15 08:00:00"
		}
		return "15/01/2024"
	case string(schema.TypeBoolean):
		return "S"
	default:
		return fmt.Sprintf("%s %d", strings.ToLower(col), i+1)
	}
}

// Break introduces one defect per category: a dangling sector reference in
// prescriptions, a non-numeric cost in medications, a duplicate sector key, a
// missing NOME column in units and an unexpected column in frequency.
func Break(tables map[model.Category]*Table) {
	if t := tables[model.Prescriptions]; t != nil && len(t.Rows) > 0 {
		t.Rows[0]["FKSETOR"] = "999999"
	}
	if t := tables[model.Medications]; t != nil && len(t.Rows) > 0 {
		t.Rows[0]["CUSTO"] = "abc"
	}
	if t := tables[model.Sectors]; t != nil && len(t.Rows) > 0 {
		dup := make(map[string]string, len(t.Rows[0]))
		for k, v := range t.Rows[0] {
			dup[k] = v
		}
		t.Rows = append(t.Rows, dup)
	}
	if t := tables[model.Units]; t != nil {
		t.Columns = without(t.Columns, "NOME")
	}
	if t := tables[model.Frequency]; t != nil {
		t.Columns = append(t.Columns, "OBSERVACAO")
		for _, r := range t.Rows {
			r["OBSERVACAO"] = "extra"
		}
	}
}

func without(cols []string, drop string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != drop {
			out = append(out, c)
		}
	}
	return out
}

// CSV renders the table with a semicolon delimiter, as MV exports do.
func (t *Table) CSV() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	_ = w.Write(t.Columns)
	for _, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			rec[i] = r[c]
		}
		_ = w.Write(rec)
	}
	w.Flush()
	return buf.Bytes()
}

// JSON renders the table as a direct array of objects.
func (t *Table) JSON() ([]byte, error) {
	objs := make([]map[string]string, len(t.Rows))
	for i, r := range t.Rows {
		obj := make(map[string]string, len(t.Columns))
		for _, c := range t.Columns {
			obj[c] = r[c]
		}
		objs[i] = obj
	}
	data, err := json.MarshalIndent(objs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", t.Category, err)
	}
	return data, nil
}

// Parquet renders the table as a flat parquet file of string columns.
func (t *Table) Parquet() ([]byte, error) {
	var buf bytes.Buffer
	if err := parquetread.WriteTable(&buf, t.Columns, t.Rows); err != nil {
		return nil, fmt.Errorf("write %s: %w", t.Category, err)
	}
	return buf.Bytes(), nil
}

// Encode renders the table in format (csv, json or parquet).
func (t *Table) Encode(format string) ([]byte, error) {
	switch format {
	case "csv":
		return t.CSV(), nil
	case "json":
		return t.JSON()
	case "parquet":
		return t.Parquet()
	default:
		return nil, fmt.Errorf("unknown fixture format %q", format)
	}
}

// WriteDir encodes every table into dir under its conventional file name and
// returns the written path of each category.
func WriteDir(dir string, tables map[model.Category]*Table, format string) (map[model.Category]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create fixture dir: %w", err)
	}
	paths := make(map[model.Category]string, len(tables))
	for _, cat := range model.CategoryKeys() {
		t := tables[cat]
		if t == nil {
			continue
		}
		data, err := t.Encode(format)
		if err != nil {
			return nil, err
		}
		p := filepath.Join(dir, t.FileName(format))
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", p, err)
		}
		paths[cat] = p
	}
	return paths, nil
}
