package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/noharmcheck/internal/db"
)

// Cleanup deletes the staged records of a run.
func Cleanup(ctx context.Context, q *db.Queries, log zerolog.Logger, runID uuid.UUID) error {
	start := time.Now()

	tag, err := q.DeleteStagingRun(ctx, runID)
	if err != nil {
		return err
	}

	log.Info().
		Int64("records_deleted", tag.RowsAffected()).
		Dur("duration", time.Since(start)).
		Msg("staging cleanup complete")

	return nil
}
