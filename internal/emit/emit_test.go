package emit

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/reading-plan/internal/calendar"
	"github.com/zapponejosh/reading-plan/internal/plan"
	"github.com/zapponejosh/reading-plan/internal/sheet"
)

func sampleDays(t *testing.T) []plan.DayAssignment {
	t.Helper()
	src, err := plan.ParseRows([]plan.Row{
		{Line: 1, Book: "Genesis", Chapters: "1-3"},
		{Line: 2, Book: "Job", Chapters: "1-5"},
	}, plan.ParseOptions{})
	require.NoError(t, err)

	days, err := plan.Generate(src.Entries, plan.Options{
		Start:  calendar.StartOfYear(2026),
		Days:   6,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return days
}

func TestWriteTo_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, sheet.FormatCSV, sampleDays(t), DefaultColumns))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Date,Book,SC,EC,PS,PR", lines[0])
	assert.Equal(t, "2026-01-01,Genesis,1,3,1,0", lines[1])
	assert.Equal(t, "2026-01-02,Job,1,3,2,0", lines[2])
	assert.Equal(t, "2026-01-03,Job,4,5,3,0", lines[3])
	assert.Equal(t, "2026-01-04,,0,0,4,0", lines[4])
	assert.Equal(t, "2026-01-06,,0,0,0,1", lines[6])
}

func TestWriteRead_RoundTrip(t *testing.T) {
	days := sampleDays(t)

	for _, ext := range []string{".csv", ".xlsx"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "schedule"+ext)
			require.NoError(t, Write(path, days, DefaultColumns))

			got, err := Read(path, DefaultColumns)
			require.NoError(t, err)
			require.Len(t, got, len(days))

			for i := range days {
				assert.Equal(t, days[i].Index, got[i].Index)
				assert.True(t, days[i].Date.Equal(got[i].Date), "date of day %d", i)
				assert.Equal(t, days[i].Book, got[i].Book)
				assert.Equal(t, days[i].StartChapter, got[i].StartChapter)
				assert.Equal(t, days[i].EndChapter, got[i].EndChapter)
				assert.Equal(t, days[i].Psalm, got[i].Psalm)
				assert.Equal(t, days[i].Proverb, got[i].Proverb)
			}
		})
	}
}

func TestCustomColumns(t *testing.T) {
	cols := Columns{Date: "Day", Book: "Reading", Start: "From", End: "To", Psalm: "Psalm", Proverb: "Proverb"}

	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, sheet.FormatCSV, sampleDays(t)[:1], cols))
	assert.True(t, strings.HasPrefix(buf.String(), "Day,Reading,From,To,Psalm,Proverb\n"))

	table, err := sheet.ReadFrom(&buf, sheet.FormatCSV)
	require.NoError(t, err)

	days, err := FromTable(table, cols)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "Genesis", days[0].Book)

	_, err = FromTable(table, DefaultColumns)
	assert.Error(t, err)
}

func TestFromTable_Errors(t *testing.T) {
	header := []string{"Date", "Book", "SC", "EC", "PS", "PR"}

	tests := []struct {
		name string
		row  []string
	}{
		{"bad date", []string{"01/01/2026", "Genesis", "1", "3", "1", "0"}},
		{"bad chapter", []string{"2026-01-01", "Genesis", "one", "3", "1", "0"}},
		{"negative psalm", []string{"2026-01-01", "Genesis", "1", "3", "-1", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromTable([][]string{header, tt.row}, DefaultColumns)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 2")
		})
	}

	_, err := FromTable(nil, DefaultColumns)
	assert.Error(t, err)
}

func TestFromTable_BlankNumbersAreZero(t *testing.T) {
	table := [][]string{
		{"Date", "Book", "SC", "EC", "PS", "PR"},
		{"2026-12-31", "", "", "", "", ""},
	}
	days, err := FromTable(table, DefaultColumns)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.True(t, days[0].Empty())
	assert.Zero(t, days[0].Psalm)
}
