// Package parquetread reads flat Parquet tables into generic records and
// writes string tables for fixtures.
package parquetread

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

const readBatchSize = 256

// Reader wraps an in-memory parquet file for reading records by column name.
type Reader struct {
	file    *parquet.File
	columns []string
}

// Open parses the parquet footer of data and returns a Reader.
func Open(data []byte) (*Reader, error) {
	pf, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	paths := pf.Schema().Columns()
	columns := make([]string, len(paths))
	for i, p := range paths {
		if len(p) > 0 {
			columns[i] = p[len(p)-1]
		}
	}
	return &Reader{file: pf, columns: columns}, nil
}

// NumRows returns the total number of rows in the file.
func (r *Reader) NumRows() int64 {
	return r.file.NumRows()
}

// Columns returns the leaf column names in schema order.
func (r *Reader) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Schema returns the Parquet schema for validation.
func (r *Reader) Schema() *parquet.Schema {
	return r.file.Schema()
}

// ReadRecords reads every row group into records keyed by column name.
// Null values are omitted from the record.
func (r *Reader) ReadRecords() ([]map[string]any, error) {
	records := make([]map[string]any, 0, r.NumRows())
	buf := make([]parquet.Row, readBatchSize)

	for gi, rg := range r.file.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for _, row := range buf[:n] {
				records = append(records, r.record(row))
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				rows.Close()
				return records, fmt.Errorf("read row group %d: %w", gi, err)
			}
		}
		if err := rows.Close(); err != nil {
			return records, fmt.Errorf("close row group %d: %w", gi, err)
		}
	}
	return records, nil
}

func (r *Reader) record(row parquet.Row) map[string]any {
	rec := make(map[string]any, len(r.columns))
	for _, v := range row {
		col := v.Column()
		if v.IsNull() || col < 0 || col >= len(r.columns) {
			continue
		}
		rec[r.columns[col]] = scalar(v)
	}
	return rec
}

// scalar converts a parquet value to the Go scalar the validator expects.
func scalar(v parquet.Value) any {
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return v.Float()
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(v.ByteArray())
	default:
		return v.String()
	}
}
