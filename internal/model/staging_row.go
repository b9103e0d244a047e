package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// StagingRecord is the DB-ready representation of one accepted source record.
// The payload keeps the normalized field names and raw values as JSON.
type StagingRecord struct {
	RunID uuid.UUID

	Category        Category
	SourceFile      string
	SourceRowNumber int64
	SourceRowHash   []byte
	RecordKey       string // composed natural key, empty when the category has none

	Payload json.RawMessage
}

// StagingColumns returns the ordered column names for COPY into ingest.stage_records.
func StagingColumns() []string {
	return []string{
		"run_id",
		"category",
		"source_file",
		"source_row_number",
		"source_row_hash",
		"record_key",
		"payload",
	}
}

// CopyValues returns the row values in the same order as StagingColumns(),
// suitable for pgx CopyFromSource.
func (r *StagingRecord) CopyValues() []any {
	return []any{
		r.RunID,
		string(r.Category),
		r.SourceFile,
		r.SourceRowNumber,
		r.SourceRowHash,
		nilIfEmpty(r.RecordKey),
		r.Payload,
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
