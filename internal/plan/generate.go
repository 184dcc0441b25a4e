package plan

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zapponejosh/reading-plan/internal/calendar"
)

// DefaultDays is the plan length used when none is configured.
const DefaultDays = 365

// MaxDays caps plan length at ten years.
const MaxDays = 3660

var (
	// ErrNoDays is returned when a plan is requested with fewer than one day.
	ErrNoDays = errors.New("plan must have at least one day")

	// ErrTooManyDays is returned when a plan is requested with more than MaxDays.
	ErrTooManyDays = fmt.Errorf("plan may have at most %d days", MaxDays)
)

// ChapterUnit is one chapter of one book: the atomic unit of reading.
type ChapterUnit struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
}

func (u ChapterUnit) String() string {
	return fmt.Sprintf("%s %d", u.Book, u.Chapter)
}

// Flatten concatenates every entry's chapters, in source order, into the
// master reading sequence.
func Flatten(entries []Entry) []ChapterUnit {
	n := 0
	for _, e := range entries {
		n += len(e.Chapters)
	}
	units := make([]ChapterUnit, 0, n)
	for _, e := range entries {
		for _, ch := range e.Chapters {
			units = append(units, ChapterUnit{Book: e.Book.Name, Chapter: ch})
		}
	}
	return units
}

// ChaptersForDay is the cadence: three chapters on days 0, 1 and 2 of every
// four-day block and two on day 3, for an average of 2.75 a day.
func ChaptersForDay(day int) int {
	if day%4 == 3 {
		return 2
	}
	return 3
}

// Distribute splits the master sequence into exactly days groups.
//
// When the sequence runs out early the remaining groups are empty. When it is
// longer than the cadence allows, every leftover chapter goes, in order, onto
// the last non-empty day, which then holds more than three chapters.
func Distribute(units []ChapterUnit, days int) ([][]ChapterUnit, error) {
	if days < 1 {
		return nil, ErrNoDays
	}
	if days > MaxDays {
		return nil, ErrTooManyDays
	}

	groups := make([][]ChapterUnit, days)
	idx := 0
	for d := 0; d < days && idx < len(units); d++ {
		end := min(idx+ChaptersForDay(d), len(units))
		groups[d] = append([]ChapterUnit(nil), units[idx:end]...)
		idx = end
	}

	if idx < len(units) {
		last := lastNonEmpty(groups)
		groups[last] = append(groups[last], units[idx:]...)
	}

	return groups, nil
}

func lastNonEmpty(groups [][]ChapterUnit) int {
	for i := len(groups) - 1; i >= 0; i-- {
		if len(groups[i]) > 0 {
			return i
		}
	}
	return 0
}

// DayAssignment is one calendar day of the plan.
//
// Book, StartChapter and EndChapter are the row shape of the emitted
// schedule: the first unit's book and chapter, and the last unit's chapter.
// That shape cannot describe a day whose units span two books; see
// CrossesBook. Units keeps the real chapters.
type DayAssignment struct {
	Index        int           `json:"index"`
	Date         time.Time     `json:"date"`
	Book         string        `json:"book"`
	StartChapter int           `json:"start_chapter"`
	EndChapter   int           `json:"end_chapter"`
	Psalm        int           `json:"psalm"`   // 0 = none
	Proverb      int           `json:"proverb"` // 0 = none
	Units        []ChapterUnit `json:"units,omitempty"`
}

// NewDay builds a day from its index, date and units, filling in the
// row triple and the psalm/proverb rotation.
func NewDay(index int, date time.Time, units []ChapterUnit) DayAssignment {
	day := DayAssignment{Index: index, Date: date, Units: units}
	if len(units) > 0 {
		day.Book = units[0].Book
		day.StartChapter = units[0].Chapter
		day.EndChapter = units[len(units)-1].Chapter
	}
	day.Psalm, day.Proverb = Assign(index)
	return day
}

// Empty reports whether the day has no main reading.
func (d DayAssignment) Empty() bool {
	return d.Book == ""
}

// CrossesBook reports whether the day's chapters come from more than one book.
func (d DayAssignment) CrossesBook() bool {
	for _, u := range d.Units {
		if u.Book != d.Book {
			return true
		}
	}
	return false
}

// Books lists the distinct books of the day in reading order.
func (d DayAssignment) Books() []string {
	var books []string
	for _, u := range d.Units {
		if len(books) == 0 || books[len(books)-1] != u.Book {
			books = append(books, u.Book)
		}
	}
	return books
}

// Reading renders the row triple as a reference, e.g. "Genesis 1-3".
func (d DayAssignment) Reading() string {
	if d.Empty() {
		return ""
	}
	if d.StartChapter == d.EndChapter {
		return fmt.Sprintf("%s %d", d.Book, d.StartChapter)
	}
	return fmt.Sprintf("%s %d-%d", d.Book, d.StartChapter, d.EndChapter)
}

// Options configures Generate.
type Options struct {
	Start  time.Time // Date of day index 0
	Days   int       // Defaults to DefaultDays
	Logger *slog.Logger
}

// Generate builds the full schedule from parsed entries.
func Generate(entries []Entry, opts Options) ([]DayAssignment, error) {
	if opts.Days == 0 {
		opts.Days = DefaultDays
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	units := Flatten(entries)
	groups, err := Distribute(units, opts.Days)
	if err != nil {
		return nil, err
	}

	days := make([]DayAssignment, opts.Days)
	for i, g := range groups {
		days[i] = NewDay(i, calendar.DateForIndex(opts.Start, i), g)

		if days[i].CrossesBook() {
			logger.Warn("day spans more than one book; schedule row only names the first",
				slog.Int("day", i),
				slog.String("books", strings.Join(days[i].Books(), ", ")),
				slog.String("row", days[i].Reading()),
			)
		}
	}

	capacity := 0
	for d := 0; d < opts.Days; d++ {
		capacity += ChaptersForDay(d)
	}
	switch {
	case len(units) > capacity:
		logger.Warn("plan source overflows the cadence; extra chapters added to the last day",
			slog.Int("chapters", len(units)),
			slog.Int("capacity", capacity),
		)
	case len(units) < capacity:
		logger.Debug("plan source ends before the last day",
			slog.Int("chapters", len(units)),
			slog.Int("capacity", capacity),
		)
	}

	return days, nil
}
