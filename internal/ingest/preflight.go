package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/noharmcheck/internal/config"
	"github.com/gyeh/noharmcheck/internal/db"
	"github.com/gyeh/noharmcheck/internal/report"
	"github.com/gyeh/noharmcheck/internal/schema"
)

// PreflightResult holds everything resolved before any record is staged.
type PreflightResult struct {
	// RunID identifies the run in ingest.runs. It is the report's run id.
	RunID uuid.UUID
	// Batch is the parsed and validated input.
	Batch *Batch
	// RoutingWarnings come from resolving --dir entries to categories.
	RoutingWarnings []string
	// AlreadyLoaded is set when an accepted or promoted run with the same
	// batch digest exists and force is off. Nothing is registered then.
	AlreadyLoaded bool
	// PreviousRunID is that earlier run.
	PreviousRunID uuid.UUID
}

// Preflight resolves and validates the batch, then registers the run unless
// the same batch was already loaded.
func Preflight(ctx context.Context, q *db.Queries, log zerolog.Logger, reg *schema.Registry, cfg *config.Config) (*PreflightResult, error) {
	files, warnings, err := cfg.ResolveFiles()
	if err != nil {
		return nil, fmt.Errorf("preflight resolve: %w", err)
	}
	for _, w := range warnings {
		log.Warn().Msg(w)
	}

	batch, err := LoadBatch(ctx, log, reg, files, true)
	if err != nil {
		return nil, fmt.Errorf("preflight load: %w", err)
	}

	pf := &PreflightResult{
		RunID:           batch.Report.RunID,
		Batch:           batch,
		RoutingWarnings: warnings,
	}

	if !cfg.Force {
		prev, found, err := q.LookupRunBySHA(ctx, batch.BatchSHA256)
		if err != nil {
			return nil, fmt.Errorf("preflight lookup run: %w", err)
		}
		if found {
			pf.AlreadyLoaded = true
			pf.PreviousRunID = prev.RunID
			return pf, nil
		}
	}

	if err := registerRun(ctx, q, reg, pf); err != nil {
		return nil, fmt.Errorf("preflight register run: %w", err)
	}

	log.Info().
		Str("run_id", pf.RunID.String()).
		Str("batch_sha256", batch.BatchSHA256).
		Int("files", len(batch.Inputs)).
		Msg("preflight complete")

	return pf, nil
}

func registerRun(ctx context.Context, q *db.Queries, reg *schema.Registry, pf *PreflightResult) error {
	doc, err := storedReport(pf.Batch.Report)
	if err != nil {
		return err
	}
	r := pf.Batch.Report
	return q.RegisterRun(ctx, db.RegisterRunParams{
		RunID:        pf.RunID,
		BatchSHA256:  pf.Batch.BatchSHA256,
		SchemaLabel:  reg.Label,
		Status:       db.RunPending,
		ReportStatus: string(r.Summary.Status),
		IssueCount:   r.Summary.IssueCount,
		WarningCount: r.Summary.WarningCount,
		Report:       doc,
	})
}

// storedReport encodes the report without its parsed records, which are
// staged separately and would bloat the run row.
func storedReport(r *report.Report) (json.RawMessage, error) {
	data, err := json.Marshal(r.WithoutRecords())
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return data, nil
}
