package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"smart-store/internal/domain"
)

// DefaultMaxRows caps how many data rows a single import considers
const DefaultMaxRows = 500

const (
	nameHeader  = "name"
	priceHeader = "price"
)

// Reasons a row is dropped during import
const (
	ReasonEmptyName    = "empty name"
	ReasonInvalidPrice = "invalid price"
)

// ParseError reports a CSV file that could not be read. No rows are staged
// when it is returned.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse csv: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse csv: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RowIssue describes one dropped row
type RowIssue struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ParseResult is the outcome of reading a CSV file
type ParseResult struct {
	Rows []domain.StagedImportRow `json:"rows"`
	// Considered is the number of data rows examined after the row cap
	Considered int `json:"considered"`
	// Truncated is true when the file held more rows than the cap
	Truncated bool       `json:"truncated"`
	Dropped   []RowIssue `json:"dropped,omitempty"`
}

// Parse reads CSV text with a header row and stages every valid row.
// Blank lines are skipped. Headers are matched case-insensitively after
// trimming, columns other than name and price are ignored, and only the
// first maxRows data rows are considered (maxRows <= 0 means DefaultMaxRows).
func Parse(r io.Reader, maxRows int) (*ParseResult, error) {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	// stray quotes such as 32" are kept as text
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &ParseResult{Rows: []domain.StagedImportRow{}}, nil
	}
	if err != nil {
		return nil, toParseError(err)
	}

	nameCol, priceCol := columnIndexes(header)

	result := &ParseResult{Rows: []domain.StagedImportRow{}}
	for {
		if result.Considered == maxRows {
			// rows past the cap are never parsed; whatever follows only
			// marks the result as truncated
			if _, err := reader.Read(); !errors.Is(err, io.EOF) {
				result.Truncated = true
			}
			break
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, toParseError(err)
		}
		index := result.Considered
		result.Considered++

		name := SanitizeName(field(record, nameCol))
		if name == "" {
			result.Dropped = append(result.Dropped, RowIssue{Index: index, Reason: ReasonEmptyName})
			continue
		}

		price, ok := ParsePrice(field(record, priceCol))
		if !ok {
			result.Dropped = append(result.Dropped, RowIssue{Index: index, Reason: ReasonInvalidPrice})
			continue
		}

		result.Rows = append(result.Rows, domain.StagedImportRow{
			TempID: TempID(index),
			Name:   name,
			Price:  price,
		})
	}

	return result, nil
}

// TempID is the batch-local identifier of the data row at index
func TempID(index int) string {
	return fmt.Sprintf("temp-%d", index)
}

func columnIndexes(header []string) (nameCol, priceCol int) {
	nameCol, priceCol = -1, -1
	for i, h := range header {
		switch normalizeHeader(h) {
		case nameHeader:
			if nameCol < 0 {
				nameCol = i
			}
		case priceHeader:
			if priceCol < 0 {
				priceCol = i
			}
		}
	}
	return nameCol, priceCol
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

func field(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return record[col]
}

func toParseError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}
	return &ParseError{Err: err}
}
