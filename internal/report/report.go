// Package report aggregates per-category validation results into the final
// batch report and exports it as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/parse"
)

// Status is the verdict of one category or of the whole batch.
type Status string

const (
	StatusOK    Status = "ok"
	StatusWarn  Status = "warn"
	StatusError Status = "error"
)

func (s Status) rank() int {
	switch s {
	case StatusError:
		return 2
	case StatusWarn:
		return 1
	default:
		return 0
	}
}

// Worst returns the most severe status: error dominates warn dominates ok.
func Worst(statuses ...Status) Status {
	worst := StatusOK
	for _, s := range statuses {
		if s.rank() > worst.rank() {
			worst = s
		}
	}
	return worst
}

// Message returns the fixed summary message for an overall status.
func Message(s Status) string {
	switch s {
	case StatusOK:
		return "validation completed without errors"
	case StatusWarn:
		return "validation completed with warnings"
	default:
		return "validation found errors"
	}
}

// FileResult is the verdict for one category.
type FileResult struct {
	Status      Status   `json:"status"`
	Issues      []string `json:"issues"`
	Warnings    []string `json:"warnings"`
	RecordCount int      `json:"recordCount"`
	ColumnCount int      `json:"columnCount"`
}

// StatusFor derives a category status: error with issues, warn with
// warnings only, ok otherwise.
func StatusFor(issues, warnings []string) Status {
	switch {
	case len(issues) > 0:
		return StatusError
	case len(warnings) > 0:
		return StatusWarn
	default:
		return StatusOK
	}
}

// Summary is the overall verdict of a batch.
type Summary struct {
	Status       Status `json:"status"`
	Message      string `json:"message"`
	IssueCount   int    `json:"issueCount"`
	WarningCount int    `json:"warningCount"`
}

// Report is the single output of a validation run.
type Report struct {
	RunID       uuid.UUID                            `json:"runId"`
	GeneratedAt time.Time                            `json:"generatedAt"`
	Schema      string                               `json:"schema,omitempty"`
	Summary     Summary                              `json:"summary"`
	Files       map[model.Category]*FileResult       `json:"files"`
	Parsed      map[model.Category]*parse.ParsedFile `json:"parsed,omitempty"`
}

// WithoutRecords returns a shallow copy of r whose parsed files keep their
// metadata but carry no records.
func (r *Report) WithoutRecords() *Report {
	out := *r
	if r.Parsed == nil {
		return &out
	}
	out.Parsed = make(map[model.Category]*parse.ParsedFile, len(r.Parsed))
	for cat, pf := range r.Parsed {
		if pf == nil {
			out.Parsed[cat] = nil
			continue
		}
		cp := *pf
		cp.Records = nil
		out.Parsed[cat] = &cp
	}
	return &out
}

// Build rolls per-category results into a report. Parsed inputs are embedded
// as given, even when the batch failed.
func Build(schemaLabel string, results map[model.Category]*FileResult, parsed map[model.Category]*parse.ParsedFile) *Report {
	r := &Report{
		RunID:       uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Schema:      schemaLabel,
		Files:       results,
		Parsed:      parsed,
	}

	statuses := make([]Status, 0, len(results))
	for _, c := range model.AllCategories {
		fr, ok := results[c.Key]
		if !ok {
			continue
		}
		statuses = append(statuses, fr.Status)
		r.Summary.IssueCount += len(fr.Issues)
		r.Summary.WarningCount += len(fr.Warnings)
	}
	r.Summary.Status = Worst(statuses...)
	r.Summary.Message = Message(r.Summary.Status)
	return r
}

// Missing builds the error report used when a batch lacks some categories and
// validation is not attempted.
func Missing(cats []model.Category) *Report {
	labels := make([]string, len(cats))
	for i, c := range cats {
		labels[i] = c.Label()
	}
	return &Report{
		RunID:       uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Summary: Summary{
			Status:  StatusError,
			Message: "files missing: " + strings.Join(labels, ", "),
		},
		Files: map[model.Category]*FileResult{},
	}
}

// OK reports whether the batch can be imported (status ok or warn).
func (r *Report) OK() bool {
	return r.Summary.Status != StatusError
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteFile writes the report to path, creating parent directories.
func (r *Report) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := r.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
