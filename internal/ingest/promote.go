package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/noharmcheck/internal/db"
)

// PromoteResult holds metrics from the promotion phase.
type PromoteResult struct {
	RecordsReplaced int64
	RecordsPromoted int64
	Duration        time.Duration
}

// Promote replaces the serving records of every category the run staged with
// the run's records, and marks the run promoted, in one transaction.
func Promote(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, runID uuid.UUID) (*PromoteResult, error) {
	start := time.Now()
	res := &PromoteResult{}

	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		q := db.New(pool).WithTx(tx)

		tag, err := q.ClearPromotedCategories(ctx, runID)
		if err != nil {
			return fmt.Errorf("clear promoted categories: %w", err)
		}
		res.RecordsReplaced = tag.RowsAffected()

		tag, err = q.PromoteRun(ctx, runID)
		if err != nil {
			return fmt.Errorf("promote run: %w", err)
		}
		res.RecordsPromoted = tag.RowsAffected()

		return q.UpdateRunStatus(ctx, runID, db.RunPromoted)
	})
	if err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	log.Info().
		Int64("records_replaced", res.RecordsReplaced).
		Int64("records_promoted", res.RecordsPromoted).
		Str("duration", res.Duration.String()).
		Msg("promotion complete")

	return res, nil
}
