package plan

import (
	"fmt"

	"github.com/zapponejosh/reading-plan/internal/sheet"
)

// SourceColumns names the plan-source header cells.
type SourceColumns struct {
	Book     string
	Chapters string
}

// DefaultSourceColumns matches the chronological plan CSV.
var DefaultSourceColumns = SourceColumns{Book: "Book", Chapters: "Chapters"}

// ReadSource loads plan-source rows from a CSV or XLSX file. A missing file or
// a header without the required columns is an error; the caller treats it as
// fatal.
func ReadSource(path string, cols SourceColumns) ([]Row, error) {
	table, err := sheet.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read plan source: %w", err)
	}
	return RowsFromTable(table, cols)
}

// RowsFromTable maps a header-first table onto plan-source rows. Blank lines
// are dropped.
func RowsFromTable(table [][]string, cols SourceColumns) ([]Row, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("plan source is empty")
	}

	idx, err := sheet.HeaderIndex(table[0], cols.Book, cols.Chapters)
	if err != nil {
		return nil, fmt.Errorf("plan source header: %w", err)
	}

	rows := make([]Row, 0, len(table)-1)
	for i, record := range table[1:] {
		book := sheet.Cell(record, idx[cols.Book])
		chapters := sheet.Cell(record, idx[cols.Chapters])
		if book == "" && chapters == "" {
			continue
		}
		rows = append(rows, Row{Line: i + 1, Book: book, Chapters: chapters})
	}
	return rows, nil
}

// Build reads the plan source at path, parses it under popts and schedules
// it. The returned Source lists any rows skipped under PolicySkip.
func Build(path string, cols SourceColumns, popts ParseOptions, opts Options) (*Source, []DayAssignment, error) {
	rows, err := ReadSource(path, cols)
	if err != nil {
		return nil, nil, err
	}
	src, err := ParseRows(rows, popts)
	if err != nil {
		return nil, nil, fmt.Errorf("parse plan source: %w", err)
	}
	days, err := Generate(src.Entries, opts)
	if err != nil {
		return src, nil, fmt.Errorf("generate plan: %w", err)
	}
	return src, days, nil
}
