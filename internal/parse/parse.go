// Package parse turns raw export files into normalized, schema-agnostic
// record sets. Parsing never fails: every problem is captured in
// ParsedFile.ParseErrors and a best-effort result is still returned.
package parse

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/normalize"
)

// Format is the detected input format of a file.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
	FormatAuto    Format = "auto"
)

// Root is the top-level shape of a json document.
type Root string

const (
	RootArray      Root = "array"       // direct list of records
	RootObjectData Root = "object-data" // object whose data property is the list
	RootObject     Root = "object"      // anything else
)

var parquetMagic = []byte("PAR1")

// Record maps normalized field names to raw scalar values.
type Record map[string]any

// ParsedFile is the normalized view of one uploaded file.
type ParsedFile struct {
	FileName    string        `json:"fileName"`
	Format      Format        `json:"format"`
	Encoding    string        `json:"encoding,omitempty"`
	Root        Root          `json:"root,omitempty"`
	RawFields   []string      `json:"fields"`
	Fields      []string      `json:"normalizedFields"`
	Records     []Record      `json:"records,omitempty"`
	ParseErrors []string      `json:"parseErrors"`
	Duration    time.Duration `json:"-"`
}

// RecordCount returns the number of parsed records.
func (p *ParsedFile) RecordCount() int { return len(p.Records) }

// ColumnCount returns the number of normalized field names.
func (p *ParsedFile) ColumnCount() int { return len(p.Fields) }

// DetectFormat guesses the format from the file name extension.
func DetectFormat(fileName string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), ".")) {
	case "json":
		return FormatJSON
	case "csv":
		return FormatCSV
	case "parquet":
		return FormatParquet
	default:
		return FormatAuto
	}
}

// File parses data named fileName. It never returns nil.
func File(fileName string, data []byte) *ParsedFile {
	start := time.Now()
	p := &ParsedFile{
		FileName:    fileName,
		Format:      DetectFormat(fileName),
		RawFields:   []string{},
		Records:     []Record{},
		ParseErrors: []string{},
	}

	if p.Format == FormatParquet || (p.Format == FormatAuto && bytes.HasPrefix(data, parquetMagic)) {
		p.Format = FormatParquet
		parseParquet(p, data)
	} else {
		text, enc := Decode(data)
		p.Encoding = enc
		parseText(p, text)
	}

	p.Fields = normalize.FieldNames(p.RawFields)
	p.Duration = time.Since(start)
	return p
}

func parseText(p *ParsedFile, text []byte) {
	strict := p.Format == FormatJSON
	if p.Format == FormatJSON || p.Format == FormatAuto {
		err := parseJSON(p, text)
		if err == nil {
			p.Format = FormatJSON
			return
		}
		if strict {
			p.ParseErrors = append(p.ParseErrors, "error reading file: "+err.Error())
			return
		}
		p.Root = ""
	}
	p.Format = FormatCSV
	parseCSV(p, text)
}

// normalizeRecord rekeys a raw record by normalized field name, visiting the
// raw names in order. When two raw names normalize to the same name the later
// one in order wins. Names absent from raw are skipped.
func normalizeRecord(order []string, raw map[string]any) Record {
	out := make(Record, len(raw))
	for _, k := range order {
		v, ok := raw[k]
		if !ok {
			continue
		}
		out[normalize.FieldName(k)] = v
	}
	return out
}

// Input is one file handed to All.
type Input struct {
	Category model.Category
	FileName string
	Data     []byte
}

// All parses every input concurrently and returns once all of them have
// finished. The only error is context cancellation; file problems end up in
// each ParsedFile. A later input for the same category replaces an earlier one.
func All(ctx context.Context, inputs []Input) (map[model.Category]*ParsedFile, error) {
	results := make([]*ParsedFile, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = File(in.FileName, in.Data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[model.Category]*ParsedFile, len(inputs))
	for i, in := range inputs {
		out[in.Category] = results[i]
	}
	return out, nil
}
