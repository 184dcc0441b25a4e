// Package plan turns a chronological book/chapter ordering into a fixed-length
// daily reading schedule.
//
// The pipeline is:
//
//	rows (Book, Chapters) -> ParseRows -> []Entry -> Flatten -> []ChapterUnit
//	    -> Distribute (3/3/3/2 cadence) -> Generate -> []DayAssignment
package plan

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/zapponejosh/reading-plan/internal/bible"
)

// Row is one raw line of a plan source, before parsing.
type Row struct {
	Line     int    // 1-based data row number, used in error messages
	Book     string // Book name as written
	Chapters string // Free-form chapter spec: "", "1-11", "1,3,5" or "50"
}

// Entry is one parsed plan-source row: a book and its chapters in reading order.
type Entry struct {
	Book     bible.Book
	Chapters []int
}

// RowPolicy decides what happens when a plan-source row fails to parse.
type RowPolicy string

const (
	// PolicyFail aborts the whole run on the first bad row.
	PolicyFail RowPolicy = "fail"
	// PolicySkip logs the bad row, records it and continues.
	PolicySkip RowPolicy = "skip"
)

// IsValid checks if a row policy is known.
func (p RowPolicy) IsValid() bool {
	return p == PolicyFail || p == PolicySkip
}

// RowError ties a parse failure to its source row.
type RowError struct {
	Line int
	Book string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Line, e.Book, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Source is the parsed plan source.
type Source struct {
	Entries []Entry
	Skipped []*RowError // Only populated under PolicySkip
}

// ChapterCount returns the number of chapters across all entries.
func (s *Source) ChapterCount() int {
	n := 0
	for _, e := range s.Entries {
		n += len(e.Chapters)
	}
	return n
}

// ParseOptions configures ParseRows.
type ParseOptions struct {
	Policy RowPolicy
	Logger *slog.Logger
}

// ParseRows parses every row in order. A (book, chapter) pair may appear only
// once across the whole source; a repeat is an *bible.InvalidRangeError on the
// row that repeats it.
func ParseRows(rows []Row, opts ParseOptions) (*Source, error) {
	if opts.Policy == "" {
		opts.Policy = PolicyFail
	}
	if !opts.Policy.IsValid() {
		return nil, fmt.Errorf("unknown row policy %q", opts.Policy)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	src := &Source{}
	seen := make(map[ChapterUnit]int)

	for _, row := range rows {
		entry, err := ParseSpec(row.Book, row.Chapters)
		if err == nil {
			err = checkUnseen(entry, seen, row.Line)
		}
		if err != nil {
			rowErr := &RowError{Line: row.Line, Book: row.Book, Err: err}
			if opts.Policy == PolicyFail {
				return nil, rowErr
			}
			logger.Warn("skipping plan source row",
				slog.Int("row", row.Line),
				slog.String("book", row.Book),
				slog.String("chapters", row.Chapters),
				slog.Any("error", err),
			)
			src.Skipped = append(src.Skipped, rowErr)
			continue
		}

		for _, ch := range entry.Chapters {
			seen[ChapterUnit{Book: entry.Book.Name, Chapter: ch}] = row.Line
		}
		src.Entries = append(src.Entries, entry)
	}

	return src, nil
}

func checkUnseen(e Entry, seen map[ChapterUnit]int, line int) error {
	for _, ch := range e.Chapters {
		if prev, ok := seen[ChapterUnit{Book: e.Book.Name, Chapter: ch}]; ok {
			return &bible.InvalidRangeError{
				Book:   e.Book.Name,
				Spec:   strconv.Itoa(ch),
				Reason: fmt.Sprintf("chapter already scheduled by row %d", prev),
			}
		}
	}
	return nil
}

// ParseSpec resolves one (book, chapter spec) pair into an explicit chapter list.
//
//   - ""          all chapters 1..total
//   - "3-7"       inclusive range
//   - "1,4,2"     explicit chapters, order kept; tokens may be ranges ("1-3,5")
//   - "50"        for a 50-chapter book: the whole book, not chapter 50
//
// The book is resolved before the chapter spec is read, so an unknown book always
// yields *bible.UnknownBookError.
func ParseSpec(bookName, spec string) (Entry, error) {
	book, err := bible.Lookup(bookName)
	if err != nil {
		return Entry{}, err
	}

	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Entry{Book: book, Chapters: span(1, book.Chapters)}, nil
	}

	// Whole-book shorthand: a lone number equal to the chapter total.
	if n, err := strconv.Atoi(spec); err == nil && n == book.Chapters {
		return Entry{Book: book, Chapters: span(1, book.Chapters)}, nil
	}

	var chapters []int
	inSpec := make(map[int]bool)
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		chs, err := parseToken(book, tok)
		if err != nil {
			return Entry{}, err
		}
		for _, ch := range chs {
			if inSpec[ch] {
				return Entry{}, &bible.InvalidRangeError{Book: book.Name, Spec: spec,
					Reason: fmt.Sprintf("chapter %d listed twice", ch)}
			}
			inSpec[ch] = true
		}
		chapters = append(chapters, chs...)
	}

	if len(chapters) == 0 {
		return Entry{}, &bible.InvalidRangeError{Book: book.Name, Spec: spec, Reason: "no chapters"}
	}

	return Entry{Book: book, Chapters: chapters}, nil
}

// parseToken parses "n" or "a-b".
func parseToken(book bible.Book, tok string) ([]int, error) {
	startStr, endStr, isRange := strings.Cut(tok, "-")
	start, err := atoi(book, tok, startStr)
	if err != nil {
		return nil, err
	}
	end := start
	if isRange {
		if end, err = atoi(book, tok, endStr); err != nil {
			return nil, err
		}
	}
	if err := bible.CheckRange(book, start, end); err != nil {
		var ire *bible.InvalidRangeError
		if errors.As(err, &ire) {
			ire.Spec = tok
		}
		return nil, err
	}
	return span(start, end), nil
}

func atoi(book bible.Book, tok, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &bible.InvalidRangeError{Book: book.Name, Spec: tok, Reason: "not a chapter number"}
	}
	return n, nil
}

func span(start, end int) []int {
	out := make([]int, 0, end-start+1)
	for ch := start; ch <= end; ch++ {
		out = append(out, ch)
	}
	return out
}
