// Package event builds the calendar event payload for each schedule day:
// the title, the body with reference and audio links, the all-day date and
// the reminder. Sending it to a calendar service is left to the caller.
package event

import (
	"fmt"
	"strings"
	"time"

	"github.com/zapponejosh/reading-plan/internal/calendar"
	"github.com/zapponejosh/reading-plan/internal/links"
	"github.com/zapponejosh/reading-plan/internal/plan"
)

// Reminder defaults.
const (
	ReminderMethod  = "popup"
	ReminderMinutes = 30
)

// Reminder is a single pre-event alert.
type Reminder struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// Draft is one all-day calendar event.
type Draft struct {
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Date        string   `json:"date"`     // YYYY-MM-DD, all-day
	EndDate     string   `json:"end_date"` // Exclusive end, the following day
	Reminder    Reminder `json:"reminder"`
}

// Devotional returns the psalm or proverb reference for a day, if any.
func Devotional(day plan.DayAssignment) (book string, chapter int, ok bool) {
	switch {
	case day.Psalm > 0:
		return "Psalms", day.Psalm, true
	case day.Proverb > 0:
		return "Proverbs", day.Proverb, true
	default:
		return "", 0, false
	}
}

// Title is "Day N: <reading>", N counted from 1.
func Title(day plan.DayAssignment) string {
	parts := []string{}
	if r := day.Reading(); r != "" {
		parts = append(parts, r)
	}
	if book, ch, ok := Devotional(day); ok {
		parts = append(parts, fmt.Sprintf("%s %d", book, ch))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Day %d", day.Index+1)
	}
	return fmt.Sprintf("Day %d: %s", day.Index+1, strings.Join(parts, "; "))
}

// Build renders the draft for day. Links that cannot be formatted are
// omitted; the formatter logs why.
func Build(day plan.DayAssignment, f *links.Formatter) Draft {
	var text, audio []string

	if !day.Empty() {
		c := f.Citations(day.Book, day.StartChapter, day.EndChapter)
		if c.Text != "" {
			text = append(text, c.Text)
		}
		audio = append(audio, c.Audio...)
	}
	if book, ch, ok := Devotional(day); ok {
		c := f.Chapter(book, ch)
		if c.Text != "" {
			text = append(text, c.Text)
		}
		audio = append(audio, c.Audio...)
	}

	var body strings.Builder
	if len(text) > 0 {
		body.WriteString("Read (" + f.Version() + "):\n")
		body.WriteString(strings.Join(text, "\n"))
	}
	if len(audio) > 0 {
		if body.Len() > 0 {
			body.WriteString("\n\n")
		}
		body.WriteString("Listen:\n")
		body.WriteString(strings.Join(audio, "\n"))
	}

	return Draft{
		Summary:     Title(day),
		Description: body.String(),
		Date:        calendar.FormatDate(day.Date),
		EndDate:     EndDate(day.Date),
		Reminder:    Reminder{Method: ReminderMethod, Minutes: ReminderMinutes},
	}
}

// BuildAll renders one draft per day, in order. A day with nothing to read
// still gets a "Day N" event with an empty description.
func BuildAll(days []plan.DayAssignment, f *links.Formatter) []Draft {
	drafts := make([]Draft, len(days))
	for i, d := range days {
		drafts[i] = Build(d, f)
	}
	return drafts
}

// EndDate is the exclusive end of an all-day event starting on date.
func EndDate(date time.Time) string {
	return calendar.FormatDate(calendar.Midnight(date).AddDate(0, 0, 1))
}
