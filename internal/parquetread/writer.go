package parquetread

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// WriteTable writes records as a parquet table of optional string columns.
// Missing or empty values are written as nulls. Parquet orders group columns
// by name, so the written column order is lexical.
func WriteTable(w io.Writer, columns []string, records []map[string]string) error {
	group := make(parquet.Group, len(columns))
	for _, c := range columns {
		group[c] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema("record", group)

	leaves := schema.Columns()
	order := make([]string, len(leaves))
	for i, p := range leaves {
		order[i] = p[len(p)-1]
	}

	pw := parquet.NewWriter(w, schema)
	rows := make([]parquet.Row, 0, len(records))
	for _, rec := range records {
		row := make(parquet.Row, len(order))
		for i, c := range order {
			if s := rec[c]; s != "" {
				row[i] = parquet.ByteArrayValue([]byte(s)).Level(0, 1, i)
			} else {
				row[i] = parquet.NullValue().Level(0, 0, i)
			}
		}
		rows = append(rows, row)
	}
	if _, err := pw.WriteRows(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
