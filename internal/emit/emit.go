// Package emit writes a generated schedule as a tabular artifact and reads it
// back. The artifact columns (Date, Book, SC, EC, PS, PR by default) are the
// contract with the calendar-event tooling, with 0 meaning "no psalm" or
// "no proverb".
package emit

import (
	"fmt"
	"io"
	"strconv"

	"github.com/zapponejosh/reading-plan/internal/calendar"
	"github.com/zapponejosh/reading-plan/internal/plan"
	"github.com/zapponejosh/reading-plan/internal/sheet"
)

// Columns names the artifact header cells.
type Columns struct {
	Date    string
	Book    string
	Start   string
	End     string
	Psalm   string
	Proverb string
}

// DefaultColumns is the stable artifact header.
var DefaultColumns = Columns{
	Date:    "Date",
	Book:    "Book",
	Start:   "SC",
	End:     "EC",
	Psalm:   "PS",
	Proverb: "PR",
}

func (c Columns) names() []string {
	return []string{c.Date, c.Book, c.Start, c.End, c.Psalm, c.Proverb}
}

// Rows renders the header and one row per day.
func Rows(days []plan.DayAssignment, cols Columns) [][]any {
	header := make([]any, 0, 6)
	for _, n := range cols.names() {
		header = append(header, n)
	}

	rows := make([][]any, 0, len(days)+1)
	rows = append(rows, header)
	for _, d := range days {
		rows = append(rows, []any{
			calendar.FormatDate(d.Date),
			d.Book,
			d.StartChapter,
			d.EndChapter,
			d.Psalm,
			d.Proverb,
		})
	}
	return rows
}

// Write saves the schedule to path; the extension picks CSV or XLSX.
func Write(path string, days []plan.DayAssignment, cols Columns) error {
	if err := sheet.Write(path, Rows(days, cols)); err != nil {
		return fmt.Errorf("write schedule: %w", err)
	}
	return nil
}

// WriteTo streams the schedule to w in the given format.
func WriteTo(w io.Writer, format sheet.Format, days []plan.DayAssignment, cols Columns) error {
	return sheet.WriteTo(w, format, Rows(days, cols))
}

// Read loads a schedule artifact written by Write.
func Read(path string, cols Columns) ([]plan.DayAssignment, error) {
	table, err := sheet.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	return FromTable(table, cols)
}

// FromTable parses a header-first schedule table. Day indexes follow row
// order. Units are not recoverable from the row shape and are left nil.
func FromTable(table [][]string, cols Columns) ([]plan.DayAssignment, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("schedule is empty")
	}

	idx, err := sheet.HeaderIndex(table[0], cols.names()...)
	if err != nil {
		return nil, fmt.Errorf("schedule header: %w", err)
	}

	days := make([]plan.DayAssignment, 0, len(table)-1)
	for i, record := range table[1:] {
		line := i + 2 // 1-based, counting the header
		cell := func(name string) string { return sheet.Cell(record, idx[name]) }

		date, err := calendar.ParseDateString(cell(cols.Date))
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, cols.Date, err)
		}

		day := plan.DayAssignment{Index: len(days), Date: date, Book: cell(cols.Book)}
		ints := []struct {
			col string
			dst *int
		}{
			{cols.Start, &day.StartChapter},
			{cols.End, &day.EndChapter},
			{cols.Psalm, &day.Psalm},
			{cols.Proverb, &day.Proverb},
		}
		for _, f := range ints {
			if *f.dst, err = atoi(cell(f.col)); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, f.col, err)
			}
		}

		days = append(days, day)
	}
	return days, nil
}

// atoi treats an empty cell as 0, matching the 0 sentinel.
func atoi(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}
