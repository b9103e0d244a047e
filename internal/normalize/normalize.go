package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/gyeh/noharmcheck/internal/model"
)

// ToStagingRecord converts a parsed, normalized record into a StagingRecord.
// rowNum is 1-based, matching the record numbers used in validation issues.
func ToStagingRecord(record map[string]any, runID uuid.UUID, cat model.Category, sourceFile string, rowNum int64) (*model.StagingRecord, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record %d: %w", rowNum, err)
	}
	return &model.StagingRecord{
		RunID:           runID,
		Category:        cat,
		SourceFile:      sourceFile,
		SourceRowNumber: rowNum,
		SourceRowHash:   RowHash(record),
		Payload:         payload,
	}, nil
}
