package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/noharmcheck/internal/config"
	"github.com/gyeh/noharmcheck/internal/db"
	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/schema"
)

// ErrRejected is returned when the batch fails validation. The run is still
// registered, with status rejected.
var ErrRejected = errors.New("batch rejected by validation")

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run executes the ingest pipeline: preflight → files → stage → finalize →
// cleanup. A rejected batch returns its summary together with ErrRejected.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, reg *schema.Registry, cfg *config.Config) (*model.RunSummary, error) {
	totalStart := time.Now()
	q := db.New(pool)

	log.Info().Msg("starting preflight")
	pf, err := Preflight(ctx, q, log, reg, cfg)
	if err != nil {
		return nil, &PipelineError{Phase: "preflight", Err: err}
	}

	r := pf.Batch.Report
	summary := &model.RunSummary{
		RunID:            pf.RunID.String(),
		BatchSHA256:      pf.Batch.BatchSHA256,
		Status:           string(r.Summary.Status),
		FilesLoaded:      len(pf.Batch.Inputs),
		RecordsRead:      pf.Batch.RecordCount(),
		IssueCount:       r.Summary.IssueCount,
		WarningCount:     r.Summary.WarningCount,
		RecordsByFile:    make(map[model.Category]int64),
		DurationParse:    pf.Batch.DurationParse,
		DurationValidate: pf.Batch.DurationValidate,
	}
	for cat, p := range pf.Batch.Parsed {
		summary.RecordsByFile[cat] = int64(p.RecordCount())
	}

	if pf.AlreadyLoaded {
		log.Info().
			Str("previous_run_id", pf.PreviousRunID.String()).
			Str("batch_sha256", pf.Batch.BatchSHA256).
			Msg("batch already imported, skipping (use --force to re-import)")
		summary.RunID = pf.PreviousRunID.String()
		summary.AlreadyLoaded = true
		summary.DurationTotal = time.Since(totalStart)
		return summary, nil
	}

	if _, err := RecordFiles(ctx, q, log, pf); err != nil {
		_ = q.UpdateRunStatus(ctx, pf.RunID, db.RunFailed)
		return nil, &PipelineError{Phase: "files", Err: err}
	}

	if !r.OK() {
		if err := q.UpdateRunStatus(ctx, pf.RunID, db.RunRejected); err != nil {
			return nil, &PipelineError{Phase: "files", Err: err}
		}
		log.Warn().
			Str("run_id", summary.RunID).
			Int("issues", summary.IssueCount).
			Str("message", r.Summary.Message).
			Msg("batch rejected")
		summary.Rejected = true
		summary.DurationTotal = time.Since(totalStart)
		return summary, ErrRejected
	}

	log.Info().Msg("starting staging")
	if err := q.UpdateRunStatus(ctx, pf.RunID, db.RunStaging); err != nil {
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	stageResult, err := Stage(ctx, pool, log, reg, pf)
	if err != nil {
		_ = q.UpdateRunStatus(ctx, pf.RunID, db.RunFailed)
		_ = Cleanup(ctx, q, log, pf.RunID)
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	if err := q.UpdateRunStatus(ctx, pf.RunID, db.RunStaged); err != nil {
		return nil, &PipelineError{Phase: "stage", Err: err}
	}

	log.Info().Bool("activate", cfg.ActivateRun).Msg("finalizing")
	promoteResult, err := Finalize(ctx, pool, log, pf.RunID, cfg.ActivateRun)
	if err != nil {
		_ = q.UpdateRunStatus(ctx, pf.RunID, db.RunFailed)
		return nil, &PipelineError{Phase: "promote", Err: err}
	}

	if !cfg.KeepStaging {
		log.Info().Msg("cleaning up staging")
		if err := Cleanup(ctx, q, log, pf.RunID); err != nil {
			log.Warn().Err(err).Msg("staging cleanup failed (non-fatal)")
		}
	}

	summary.RecordsStaged = stageResult.RecordsStaged
	summary.RecordsPromoted = promoteResult.RecordsPromoted
	summary.Promoted = cfg.ActivateRun
	summary.DurationStage = stageResult.Duration
	summary.DurationPromote = promoteResult.Duration
	summary.DurationTotal = time.Since(totalStart)

	log.Info().
		Int64("records_read", summary.RecordsRead).
		Int64("records_staged", summary.RecordsStaged).
		Int64("records_promoted", summary.RecordsPromoted).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("ingest pipeline complete")

	return summary, nil
}
