package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/normalize"
	"github.com/gyeh/noharmcheck/internal/parse"
	"github.com/gyeh/noharmcheck/internal/report"
	"github.com/gyeh/noharmcheck/internal/schema"
	"github.com/gyeh/noharmcheck/internal/validate"
)

// InputFile is one category file read from disk.
type InputFile struct {
	Category model.Category
	Path     string
	SHA256   string
	Size     int64
}

// Batch is a set of category files after parsing and validation.
type Batch struct {
	Inputs      map[model.Category]*InputFile
	Parsed      map[model.Category]*parse.ParsedFile
	Report      *report.Report
	BatchSHA256 string
	Missing     []model.Category

	DurationParse    time.Duration
	DurationValidate time.Duration
}

// LoadBatch reads, parses and validates the given files. With requireAll set,
// an incomplete batch is not validated at all and gets a "files missing"
// report instead.
func LoadBatch(ctx context.Context, log zerolog.Logger, reg *schema.Registry, files map[model.Category]string, requireAll bool) (*Batch, error) {
	b := &Batch{
		Inputs: make(map[model.Category]*InputFile, len(files)),
	}

	var inputs []parse.Input
	hashes := make(map[string]string, len(files))
	for _, cat := range model.CategoryKeys() {
		path := files[cat]
		if path == "" {
			b.Missing = append(b.Missing, cat)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s file: %w", cat, err)
		}
		in := &InputFile{
			Category: cat,
			Path:     path,
			SHA256:   normalize.BytesHash(data),
			Size:     int64(len(data)),
		}
		b.Inputs[cat] = in
		hashes[string(cat)] = in.SHA256
		inputs = append(inputs, parse.Input{Category: cat, FileName: filepath.Base(path), Data: data})

		log.Debug().
			Str("category", string(cat)).
			Str("file", path).
			Str("sha256", in.SHA256).
			Int64("bytes", in.Size).
			Msg("input read")
	}
	b.BatchSHA256 = normalize.BatchHash(hashes)

	if requireAll && len(b.Missing) > 0 {
		b.Report = report.Missing(b.Missing)
		b.Parsed = map[model.Category]*parse.ParsedFile{}
		return b, nil
	}

	start := time.Now()
	parsed, err := parse.All(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	b.Parsed = parsed
	b.DurationParse = time.Since(start)

	start = time.Now()
	r, err := validate.Validate(reg, parsed)
	if err != nil {
		return nil, err
	}
	b.Report = r
	b.DurationValidate = time.Since(start)

	log.Info().
		Str("batch_sha256", b.BatchSHA256).
		Str("status", string(r.Summary.Status)).
		Int("issues", r.Summary.IssueCount).
		Int("warnings", r.Summary.WarningCount).
		Dur("parse", b.DurationParse).
		Dur("validate", b.DurationValidate).
		Msg("batch validated")

	return b, nil
}

// RecordCount is the number of parsed records across all categories.
func (b *Batch) RecordCount() int64 {
	var n int64
	for _, pf := range b.Parsed {
		n += int64(pf.RecordCount())
	}
	return n
}
