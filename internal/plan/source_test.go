package plan

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/reading-plan/internal/bible"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name string
		book string
		spec string
		want []int
	}{
		{"empty is whole book", "Ruth", "", []int{1, 2, 3, 4}},
		{"whitespace is whole book", "Ruth", "  ", []int{1, 2, 3, 4}},
		{"range", "Genesis", "1-3", []int{1, 2, 3}},
		{"range with spaces", "Genesis", " 4 - 6 ", []int{4, 5, 6}},
		{"single chapter range", "Genesis", "12-12", []int{12}},
		{"explicit order kept", "Psalms", "3,1,2", []int{3, 1, 2}},
		{"mixed list", "Job", "1-2,42", []int{1, 2, 42}},
		{"lone number below total", "Genesis", "7", []int{7}},
		{"lone total means whole book", "Ruth", "4", []int{1, 2, 3, 4}},
		{"one-chapter book", "Jude", "1", []int{1}},
		{"normalized book name", "song of solomon", "", []int{1, 2, 3, 4, 5, 6, 7, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ParseSpec(tt.book, tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entry.Chapters)
		})
	}
}

func TestParseSpec_WholeBookShorthand(t *testing.T) {
	entry, err := ParseSpec("Genesis", "50")
	require.NoError(t, err)
	require.Len(t, entry.Chapters, 50)
	assert.Equal(t, 1, entry.Chapters[0])
	assert.Equal(t, 50, entry.Chapters[49])
}

func TestParseSpec_Errors(t *testing.T) {
	tests := []struct {
		name    string
		book    string
		spec    string
		unknown bool
	}{
		{"unknown book empty spec", "Hezekiah", "", true},
		{"unknown book with spec", "Hezekiah", "1-3", true},
		{"start after end", "Genesis", "5-3", false},
		{"end past total", "Exodus", "38-41", false},
		{"zero chapter", "Exodus", "0", false},
		{"chapter past total", "Ruth", "5", false},
		{"not a number", "Ruth", "one", false},
		{"half range", "Ruth", "2-", false},
		{"duplicate in list", "Ruth", "1,2,1", false},
		{"only commas", "Ruth", ",,", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec(tt.book, tt.spec)
			require.Error(t, err)

			var ube *bible.UnknownBookError
			var ire *bible.InvalidRangeError
			if tt.unknown {
				assert.True(t, errors.As(err, &ube), "want UnknownBookError, got %v", err)
			} else {
				assert.True(t, errors.As(err, &ire), "want InvalidRangeError, got %v", err)
			}
		})
	}
}

func TestParseRows_GenesisExodus(t *testing.T) {
	rows := []Row{
		{Line: 1, Book: "Genesis", Chapters: "1-3"},
		{Line: 2, Book: "Exodus", Chapters: ""},
	}

	src, err := ParseRows(rows, ParseOptions{Logger: quietLogger()})
	require.NoError(t, err)
	require.Len(t, src.Entries, 2)
	assert.Equal(t, 43, src.ChapterCount())

	units := Flatten(src.Entries)
	require.Len(t, units, 43)
	assert.Equal(t, ChapterUnit{"Genesis", 1}, units[0])
	assert.Equal(t, ChapterUnit{"Genesis", 3}, units[2])
	assert.Equal(t, ChapterUnit{"Exodus", 1}, units[3])
	assert.Equal(t, ChapterUnit{"Exodus", 40}, units[42])
}

func TestParseRows_FailPolicy(t *testing.T) {
	rows := []Row{
		{Line: 1, Book: "Genesis", Chapters: "1-3"},
		{Line: 2, Book: "Hezekiah", Chapters: ""},
		{Line: 3, Book: "Exodus", Chapters: ""},
	}

	_, err := ParseRows(rows, ParseOptions{Policy: PolicyFail, Logger: quietLogger()})
	require.Error(t, err)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Line)

	var ube *bible.UnknownBookError
	assert.True(t, errors.As(err, &ube))
}

func TestParseRows_SkipPolicy(t *testing.T) {
	rows := []Row{
		{Line: 1, Book: "Genesis", Chapters: "1-3"},
		{Line: 2, Book: "Hezekiah", Chapters: ""},
		{Line: 3, Book: "Exodus", Chapters: "1-41"},
		{Line: 4, Book: "Exodus", Chapters: "1-2"},
	}

	src, err := ParseRows(rows, ParseOptions{Policy: PolicySkip, Logger: quietLogger()})
	require.NoError(t, err)
	require.Len(t, src.Entries, 2)
	require.Len(t, src.Skipped, 2)
	assert.Equal(t, 2, src.Skipped[0].Line)
	assert.Equal(t, 3, src.Skipped[1].Line)
	assert.Equal(t, 5, src.ChapterCount())
}

func TestParseRows_RejectsRepeatedChapters(t *testing.T) {
	rows := []Row{
		{Line: 1, Book: "Psalms", Chapters: "1-10"},
		{Line: 2, Book: "Genesis", Chapters: "1"},
		{Line: 3, Book: "Psalm", Chapters: "10-12"},
	}

	_, err := ParseRows(rows, ParseOptions{Logger: quietLogger()})
	require.Error(t, err)

	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 3, rowErr.Line)
	assert.Contains(t, err.Error(), "row 1")
}

func TestParseRows_UnknownPolicy(t *testing.T) {
	_, err := ParseRows(nil, ParseOptions{Policy: "retry"})
	assert.Error(t, err)
}

func TestParseRows_NoDuplicatesAndSourceOrder(t *testing.T) {
	rows := []Row{
		{Line: 1, Book: "Job", Chapters: ""},
		{Line: 2, Book: "Genesis", Chapters: "12-50"},
		{Line: 3, Book: "Genesis", Chapters: "1-11"},
		{Line: 4, Book: "Psalms", Chapters: "90,1,2"},
	}

	src, err := ParseRows(rows, ParseOptions{Logger: quietLogger()})
	require.NoError(t, err)

	units := Flatten(src.Entries)
	seen := make(map[ChapterUnit]bool)
	for _, u := range units {
		assert.False(t, seen[u], "duplicate %v", u)
		seen[u] = true
	}

	// Entries come out in row order, and each entry's chapters in spec order.
	assert.Equal(t, ChapterUnit{"Job", 1}, units[0])
	assert.Equal(t, ChapterUnit{"Genesis", 12}, units[42])
	assert.Equal(t, ChapterUnit{"Genesis", 1}, units[42+39])
	assert.Equal(t, []ChapterUnit{{"Psalms", 90}, {"Psalms", 1}, {"Psalms", 2}}, units[len(units)-3:])
}

func TestRowsFromTable(t *testing.T) {
	table := [][]string{
		{"Order", "Book", "Chapters"},
		{"1", "Genesis", "1-11"},
		{"", "", ""},
		{"2", "Job"},
	}

	rows, err := RowsFromTable(table, DefaultSourceColumns)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, Row{Line: 1, Book: "Genesis", Chapters: "1-11"}, rows[0])
	assert.Equal(t, Row{Line: 3, Book: "Job", Chapters: ""}, rows[1])

	_, err = RowsFromTable([][]string{{"Book"}}, DefaultSourceColumns)
	assert.Error(t, err)

	_, err = RowsFromTable(nil, DefaultSourceColumns)
	assert.Error(t, err)
}
