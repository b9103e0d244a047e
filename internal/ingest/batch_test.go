package ingest_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/noharmcheck/internal/fixture"
	"github.com/gyeh/noharmcheck/internal/ingest"
	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/report"
	"github.com/gyeh/noharmcheck/internal/schema"
)

func TestLoadBatch(t *testing.T) {
	paths, err := fixture.WriteDir(t.TempDir(), fixture.Batch(schema.Default, 4), "json")
	if err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	b, err := ingest.LoadBatch(context.Background(), zerolog.Nop(), schema.Default, paths, true)
	if err != nil {
		t.Fatalf("LoadBatch: %v", err)
	}
	if b.Report.Summary.Status != report.StatusOK {
		t.Errorf("status: got %s, issues %+v", b.Report.Summary.Status, b.Report.Files)
	}
	if b.RecordCount() != int64(4*len(model.AllCategories)) {
		t.Errorf("record count: got %d", b.RecordCount())
	}
	if len(b.BatchSHA256) != 64 || b.Inputs[model.Units].SHA256 == "" {
		t.Errorf("missing digests: batch=%q", b.BatchSHA256)
	}
	if len(b.Missing) != 0 {
		t.Errorf("unexpected missing categories: %v", b.Missing)
	}
}

func TestLoadBatch_Incomplete(t *testing.T) {
	paths, err := fixture.WriteDir(t.TempDir(), fixture.Batch(schema.Default, 2), "csv")
	if err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	delete(paths, model.Units)
	delete(paths, model.Frequency)

	b, err := ingest.LoadBatch(context.Background(), zerolog.Nop(), schema.Default, paths, true)
	if err != nil {
		t.Fatalf("LoadBatch: %v", err)
	}
	if b.Report.Summary.Message != "files missing: Units, Frequency" {
		t.Errorf("message: got %q", b.Report.Summary.Message)
	}
	if len(b.Parsed) != 0 {
		t.Error("incomplete batch should not be parsed")
	}

	// Without requireAll the engine reports each absent category instead.
	b, err = ingest.LoadBatch(context.Background(), zerolog.Nop(), schema.Default, paths, false)
	if err != nil {
		t.Fatalf("LoadBatch: %v", err)
	}
	if got := b.Report.Files[model.Units].Issues; len(got) != 1 || got[0] != "file not loaded" {
		t.Errorf("units issues: %v", got)
	}
	if b.Report.Files[model.Sectors].Status != report.StatusOK {
		t.Errorf("sectors status: %s", b.Report.Files[model.Sectors].Status)
	}
}

func TestLoadBatch_UnreadableFile(t *testing.T) {
	paths := map[model.Category]string{model.Sectors: "/nonexistent/setores.csv"}
	if _, err := ingest.LoadBatch(context.Background(), zerolog.Nop(), schema.Default, paths, false); err == nil {
		t.Error("expected read error")
	}
}
