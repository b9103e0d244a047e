// mkfixture writes an example five-file export batch that conforms to the
// unified schema, optionally with one deliberate defect per category.
// Usage: go run ./cmd/mkfixture --out testdata/batch --format csv --rows 50 [--break]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gyeh/noharmcheck/internal/fixture"
	"github.com/gyeh/noharmcheck/internal/model"
	"github.com/gyeh/noharmcheck/internal/schema"
)

func main() {
	out := flag.String("out", "testdata/batch", "output directory")
	format := flag.String("format", "csv", "file format: csv, json or parquet")
	rows := flag.Int("rows", 50, "rows per category")
	broken := flag.Bool("break", false, "introduce one defect per category")
	flag.Parse()

	if *rows < 1 {
		fmt.Fprintln(os.Stderr, "--rows must be at least 1")
		os.Exit(1)
	}

	tables := fixture.Batch(schema.Default, *rows)
	if *broken {
		fixture.Break(tables)
	}

	paths, err := fixture.WriteDir(*out, tables, *format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "write batch: %v\n", err)
		os.Exit(1)
	}

	for _, cat := range model.CategoryKeys() {
		t := tables[cat]
		fmt.Printf("%-14s %4d rows %3d columns -> %s\n", cat, len(t.Rows), len(t.Columns), paths[cat])
	}
}
