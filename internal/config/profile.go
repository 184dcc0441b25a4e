package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/zapponejosh/reading-plan/internal/calendar"
	"github.com/zapponejosh/reading-plan/internal/emit"
	"github.com/zapponejosh/reading-plan/internal/links"
	"github.com/zapponejosh/reading-plan/internal/plan"
)

// Profile describes one reading plan variant: where its source lives, how
// long it runs, which translation the links point at and what the artifact
// columns are called.
type Profile struct {
	Name         string         `toml:"name"`
	Source       string         `toml:"source"`     // Plan-source CSV/XLSX
	StartDate    string         `toml:"start_date"` // YYYY-MM-DD; empty = Jan 1 of the current year
	Days         int            `toml:"days"`
	Translation  string         `toml:"translation"`
	TextURL      string         `toml:"text_url"`
	AudioURL     string         `toml:"audio_url"`
	OnInvalidRow string         `toml:"on_invalid_row"` // fail, skip
	Columns      ColumnsProfile `toml:"columns"`
}

// ColumnsProfile maps the source and schedule header names.
type ColumnsProfile struct {
	SourceBook     string `toml:"source_book"`
	SourceChapters string `toml:"source_chapters"`
	Date           string `toml:"date"`
	Book           string `toml:"book"`
	Start          string `toml:"start"`
	End            string `toml:"end"`
	Psalm          string `toml:"psalm"`
	Proverb        string `toml:"proverb"`
}

// DefaultProfile is the chronological BSB plan.
func DefaultProfile() Profile {
	return Profile{
		Name:         "Chronological Bible in a Year",
		Source:       "chrono.csv",
		Days:         plan.DefaultDays,
		Translation:  links.DefaultTemplates.Version,
		TextURL:      links.DefaultTemplates.TextURL,
		AudioURL:     links.DefaultTemplates.AudioURL,
		OnInvalidRow: string(plan.PolicyFail),
		Columns: ColumnsProfile{
			SourceBook:     plan.DefaultSourceColumns.Book,
			SourceChapters: plan.DefaultSourceColumns.Chapters,
			Date:           emit.DefaultColumns.Date,
			Book:           emit.DefaultColumns.Book,
			Start:          emit.DefaultColumns.Start,
			End:            emit.DefaultColumns.End,
			Psalm:          emit.DefaultColumns.Psalm,
			Proverb:        emit.DefaultColumns.Proverb,
		},
	}
}

// LoadProfile reads a TOML profile over DefaultProfile. An empty path or a
// missing file yields the defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return Profile{}, fmt.Errorf("stat profile: %w", err)
	}

	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Profile{}, fmt.Errorf("unknown profile keys: %v", undecoded)
	}

	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return p, nil
}

// Validate checks the profile values.
func (p Profile) Validate() error {
	var errs []error

	if p.Days < 1 || p.Days > plan.MaxDays {
		errs = append(errs, fmt.Errorf("days must be between 1 and %d, got %d", plan.MaxDays, p.Days))
	}
	if p.StartDate != "" {
		if _, err := calendar.ParseDateString(p.StartDate); err != nil {
			errs = append(errs, fmt.Errorf("start_date must be YYYY-MM-DD, got %q", p.StartDate))
		}
	}
	if p.Translation == "" {
		errs = append(errs, errors.New("translation is required"))
	}
	if !plan.RowPolicy(p.OnInvalidRow).IsValid() {
		errs = append(errs, fmt.Errorf("on_invalid_row must be one of: fail, skip; got %q", p.OnInvalidRow))
	}
	if err := p.Templates().Validate(); err != nil {
		errs = append(errs, err)
	}

	c := p.Columns
	for name, v := range map[string]string{
		"columns.source_book": c.SourceBook, "columns.source_chapters": c.SourceChapters,
		"columns.date": c.Date, "columns.book": c.Book, "columns.start": c.Start,
		"columns.end": c.End, "columns.psalm": c.Psalm, "columns.proverb": c.Proverb,
	} {
		if v == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
		}
	}

	return errors.Join(errs...)
}

// Start returns the plan start date, defaulting to January 1 of now's year.
func (p Profile) Start(now time.Time) (time.Time, error) {
	if p.StartDate == "" {
		return calendar.StartOfYear(now.Year()), nil
	}
	return calendar.ParseDateString(p.StartDate)
}

// Templates returns the link templates for the profile's translation.
func (p Profile) Templates() links.Templates {
	return links.Templates{Version: p.Translation, TextURL: p.TextURL, AudioURL: p.AudioURL}
}

// Policy returns the plan-source row policy.
func (p Profile) Policy() plan.RowPolicy {
	return plan.RowPolicy(p.OnInvalidRow)
}

// SourceColumns returns the plan-source header names.
func (p Profile) SourceColumns() plan.SourceColumns {
	return plan.SourceColumns{Book: p.Columns.SourceBook, Chapters: p.Columns.SourceChapters}
}

// ScheduleColumns returns the schedule artifact header names.
func (p Profile) ScheduleColumns() emit.Columns {
	c := p.Columns
	return emit.Columns{Date: c.Date, Book: c.Book, Start: c.Start, End: c.End, Psalm: c.Psalm, Proverb: c.Proverb}
}
