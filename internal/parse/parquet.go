package parse

import (
	"fmt"

	"github.com/gyeh/noharmcheck/internal/parquetread"
)

// parseParquet reads a flat parquet table. Nested schemas are a parse error.
func parseParquet(p *ParsedFile, data []byte) {
	r, err := parquetread.Open(data)
	if err != nil {
		p.ParseErrors = append(p.ParseErrors, fmt.Sprintf("error reading file: %v", err))
		return
	}
	if err := parquetread.ValidateSchema(r.Schema()); err != nil {
		p.ParseErrors = append(p.ParseErrors, fmt.Sprintf("error reading file: %v", err))
		return
	}

	p.RawFields = r.Columns()
	raws, err := r.ReadRecords()
	if err != nil {
		p.ParseErrors = append(p.ParseErrors, fmt.Sprintf("error reading file: %v", err))
	}
	for _, raw := range raws {
		p.Records = append(p.Records, normalizeRecord(p.RawFields, raw))
	}
}
