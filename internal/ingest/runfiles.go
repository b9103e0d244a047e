package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gyeh/noharmcheck/internal/db"
	"github.com/gyeh/noharmcheck/internal/model"
)

// RecordFiles stores one ingest.run_files row per category that was either
// supplied or reported on.
func RecordFiles(ctx context.Context, q *db.Queries, log zerolog.Logger, pf *PreflightResult) (int, error) {
	var n int
	for _, cat := range model.CategoryKeys() {
		in := pf.Batch.Inputs[cat]
		res := pf.Batch.Report.Files[cat]
		if in == nil && res == nil {
			continue
		}

		arg := db.InsertRunFileParams{
			RunID:    pf.RunID,
			Category: string(cat),
			Status:   "unchecked",
		}
		if in != nil {
			arg.SourceFile = in.Path
			arg.FileSHA256 = in.SHA256
			arg.FileSizeBytes = in.Size
		}
		if p := pf.Batch.Parsed[cat]; p != nil {
			arg.Format = string(p.Format)
			arg.Encoding = p.Encoding
		}
		if res != nil {
			arg.Status = string(res.Status)
			arg.RecordCount = res.RecordCount
			arg.ColumnCount = res.ColumnCount
			arg.Issues = res.Issues
			arg.Warnings = res.Warnings
		}

		if err := q.InsertRunFile(ctx, arg); err != nil {
			return n, fmt.Errorf("insert run file %s: %w", cat, err)
		}
		n++
	}

	log.Info().Int("files", n).Msg("run files recorded")
	return n, nil
}
