package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/noharmcheck/internal/db"
)

// Finalize promotes the run when activate is set, otherwise marks it
// accepted, then refreshes planner statistics of the serving table.
func Finalize(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, runID uuid.UUID, activate bool) (*PromoteResult, error) {
	start := time.Now()
	q := db.New(pool)

	res := &PromoteResult{}
	if activate {
		var err error
		res, err = Promote(ctx, pool, log, runID)
		if err != nil {
			return nil, err
		}
	} else {
		if err := q.UpdateRunStatus(ctx, runID, db.RunAccepted); err != nil {
			return nil, fmt.Errorf("update status to accepted: %w", err)
		}
		log.Info().Str("run_id", runID.String()).Msg("run accepted, not promoted")
	}

	if err := q.AnalyzeRecords(ctx); err != nil {
		return nil, fmt.Errorf("analyze records: %w", err)
	}
	log.Info().Msg("ANALYZE complete")

	res.Duration = time.Since(start)
	return res, nil
}
