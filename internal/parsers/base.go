// Package parsers provides CSV ingestion for the reconciliation CLI: one
// parser for vendor statement-of-account lines and one for ledger invoices.
//
// Real statement exports vary in column naming and ordering, so both parsers
// resolve columns by header name with a configurable alias table, tolerate
// quoted fields and currency symbols, and record per-row failures without
// aborting the file. A row that cannot be parsed is skipped and reported in
// the parse stats; only an unreadable file is a hard error.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"soa-reconciliation-service/pkg/errors"
	"soa-reconciliation-service/pkg/logger"
)

// RowError describes a single row that could not be parsed
type RowError struct {
	Line    int
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *RowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %d (%s='%s'): %s: %v", e.Line, e.Field, e.Value, e.Message, e.Err)
	}
	return fmt.Sprintf("row %d (%s='%s'): %s", e.Line, e.Field, e.Value, e.Message)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ParseStats summarizes one file's ingestion
type ParseStats struct {
	TotalRows   int
	ParsedRows  int
	SkippedRows int
	RowErrors   []*RowError
}

// columnIndex resolves logical column names to CSV positions using the header
// row and an alias table.
type columnIndex map[string]int

func buildColumnIndex(header []string, aliases map[string]string) columnIndex {
	idx := make(columnIndex, len(header))
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		if _, exists := idx[name]; !exists {
			idx[name] = i
		}
	}
	return idx
}

func (idx columnIndex) get(record []string, column string) (string, bool) {
	i, ok := idx[column]
	if !ok || i >= len(record) {
		return "", false
	}
	return strings.TrimSpace(record[i]), true
}

// readAll opens a CSV file and returns the header plus all data records
func readAll(path string, delimiter rune, hasHeader bool) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.NewParseError("cannot open file "+path, err).
			WithSuggestion("check that the file exists and is readable")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var header []string
	if hasHeader {
		header, err = reader.Read()
		if err != nil {
			return nil, nil, errors.NewParseError("cannot read CSV header from "+path, err)
		}
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.NewParseError("cannot read CSV records from "+path, err)
		}
		records = append(records, record)
	}

	return header, records, nil
}

func logRowErrors(log logger.Logger, path string, stats *ParseStats) {
	for _, rowErr := range stats.RowErrors {
		log.WithFields(logger.Fields{
			"file": path,
			"row":  rowErr.Line,
		}).Warnf("skipped row: %s", rowErr.Message)
	}
}
