package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/noharmcheck/internal/db"
	"github.com/gyeh/noharmcheck/internal/index"
	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/normalize"
	"github.com/gyeh/noharmcheck/internal/schema"
)

const stageBufferSize = 1024

// StageResult holds metrics from the staging phase.
type StageResult struct {
	RecordsRead   int64
	RecordsStaged int64
	ByCategory    map[model.Category]int64
	Duration      time.Duration
}

// Stage COPY-loads every parsed record of the run into ingest.stage_records.
// A producer goroutine converts records and feeds a channel-backed
// CopyFromSource.
func Stage(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, reg *schema.Registry, pf *PreflightResult) (*StageResult, error) {
	start := time.Now()

	ch := make(chan *model.StagingRecord, stageBufferSize)
	errCh := make(chan error, 1)

	res := &StageResult{ByCategory: make(map[model.Category]int64)}

	go func() {
		defer close(ch)
		for _, cat := range model.CategoryKeys() {
			p := pf.Batch.Parsed[cat]
			if p == nil {
				continue
			}
			var keyFields []string
			if u, ok := reg.Lookup(cat); ok {
				keyFields = u.KeyNormalized()
			}

			for i, rec := range p.Records {
				rowNum := int64(i + 1)
				staging, err := normalize.ToStagingRecord(rec, pf.RunID, cat, p.FileName, rowNum)
				if err != nil {
					errCh <- err
					return
				}
				if len(keyFields) > 0 {
					if k := index.Compose(rec, keyFields); !k.Incomplete() {
						staging.RecordKey = k.Value
					}
				}
				res.RecordsRead++
				res.ByCategory[cat]++

				select {
				case ch <- staging:
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}
		}
		errCh <- nil
	}()

	source := db.NewChannelSource(ch)
	staged, err := pool.CopyFrom(ctx,
		pgx.Identifier{"ingest", "stage_records"},
		model.StagingColumns(),
		source,
	)

	// Drain so a producer blocked on a failed COPY can finish.
	for range ch {
	}
	if prodErr := <-errCh; prodErr != nil {
		return nil, fmt.Errorf("stage producer: %w", prodErr)
	}
	if err != nil {
		return nil, fmt.Errorf("stage copy: %w", err)
	}

	res.RecordsStaged = staged
	res.Duration = time.Since(start)

	log.Info().
		Int64("records_read", res.RecordsRead).
		Int64("records_staged", res.RecordsStaged).
		Str("duration", res.Duration.String()).
		Float64("records_per_sec", float64(staged)/res.Duration.Seconds()).
		Msg("staging complete")

	return res, nil
}
