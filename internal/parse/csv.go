package parse

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gyeh/noharmcheck/internal/normalize"
)

// delimiters are tried in order; the first wins ties.
var delimiters = []rune{',', ';', '\t', '|'}

const delimiterPreviewRows = 10

// parseCSV reads delimited text with a header row. Values stay raw strings.
func parseCSV(p *ParsedFile, text []byte) {
	delim, ok := guessDelimiter(text)
	if !ok && len(bytes.TrimSpace(text)) > 0 {
		p.ParseErrors = append(p.ParseErrors, "CSV: unable to auto-detect delimiting character; defaulted to ','")
	}

	reader := newCSVReader(text, delim)
	header, err := reader.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			p.ParseErrors = append(p.ParseErrors, fmt.Sprintf("CSV: %v", err))
		}
		return
	}
	p.RawFields = header
	names := header

	row := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			p.ParseErrors = append(p.ParseErrors, fmt.Sprintf("CSV: %v", err))
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				continue
			}
			return
		}
		row++

		switch {
		case len(fields) < len(names):
			p.ParseErrors = append(p.ParseErrors, fmt.Sprintf(
				"CSV: record %d: too few fields: expected %d fields but parsed %d", row, len(names), len(fields)))
		case len(fields) > len(names):
			p.ParseErrors = append(p.ParseErrors, fmt.Sprintf(
				"CSV: record %d: too many fields: expected %d fields but parsed %d", row, len(names), len(fields)))
			fields = fields[:len(names)]
		}

		rec := make(Record, len(fields))
		for i, v := range fields {
			rec[normalize.FieldName(names[i])] = v
		}
		p.Records = append(p.Records, rec)
	}
}

func newCSVReader(text []byte, delim rune) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

// guessDelimiter picks the candidate whose first rows have the most stable
// field count, preferring wider rows on ties. A candidate must split rows into
// at least two fields on average. ok is false when none qualifies.
func guessDelimiter(text []byte) (rune, bool) {
	best, found := delimiters[0], false
	bestDelta, bestAvg := math.MaxInt, 0.0

	for _, d := range delimiters {
		r := newCSVReader(text, d)
		var counts []int
		for len(counts) < delimiterPreviewRows {
			fields, err := r.Read()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				continue
			}
			counts = append(counts, len(fields))
		}
		if len(counts) == 0 {
			continue
		}

		total, delta := 0, 0
		for i, c := range counts {
			total += c
			if i > 0 {
				delta += abs(c - counts[i-1])
			}
		}
		avg := float64(total) / float64(len(counts))
		if avg <= 1.99 {
			continue
		}
		if delta < bestDelta || (delta == bestDelta && avg > bestAvg) {
			best, bestDelta, bestAvg, found = d, delta, avg, true
		}
	}
	return best, found
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
