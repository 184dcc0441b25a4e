// Package sheet reads and writes small header-first tables as CSV or XLSX,
// picking the format from the file extension.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is a supported table file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for file extensions other than .csv and .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// FormatOf picks the format from a path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Read loads every row of the file. For XLSX only the first sheet is read.
func Read(path string) ([][]string, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return ReadFrom(f, format)
}

// ReadFrom loads every row from r in the given format.
func ReadFrom(r io.Reader, format Format) ([][]string, error) {
	switch format {
	case FormatCSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		return rows, nil

	case FormatXLSX:
		wb, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer wb.Close()

		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		rows, err := wb.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
		}
		return rows, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Write creates or truncates path and writes rows to it.
func Write(path string, rows [][]any) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return WriteTo(f, format, rows)
}

// WriteTo writes rows to w in the given format.
func WriteTo(w io.Writer, format Format, rows [][]any) error {
	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		for _, row := range rows {
			record := make([]string, len(row))
			for i, v := range row {
				record[i] = fmt.Sprint(v)
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
		}
		cw.Flush()
		return cw.Error()

	case FormatXLSX:
		wb := excelize.NewFile()
		defer wb.Close()

		name := wb.GetSheetName(0)
		for i := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			if err := wb.SetSheetRow(name, cell, &rows[i]); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
		if err := wb.Write(w); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// HeaderIndex locates the named columns in a header row. Matching ignores
// case and surrounding whitespace. Every missing column is reported.
func HeaderIndex(header []string, names ...string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}

	idx := make(map[string]int, len(names))
	var missing []string
	for _, name := range names {
		i, ok := pos[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns %v (have %v)", missing, header)
	}
	return idx, nil
}

// Cell returns the trimmed cell at i, or "" for short rows.
func Cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
