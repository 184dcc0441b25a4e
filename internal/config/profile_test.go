package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/reading-plan/internal/plan"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadProfile_Defaults(t *testing.T) {
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.toml")} {
		p, err := LoadProfile(path)
		require.NoError(t, err, "LoadProfile(%q)", path)

		assert.Equal(t, 365, p.Days)
		assert.Equal(t, "BSB", p.Translation)
		assert.Equal(t, plan.PolicyFail, p.Policy())
		assert.Equal(t, "SC", p.ScheduleColumns().Start)
	}
}

func TestLoadProfile_Overrides(t *testing.T) {
	path := writeProfile(t, `
name = "ESV Chronological"
source = "data/chrono-esv.xlsx"
start_date = "2027-01-01"
days = 366
translation = "ESV"
text_url = "https://www.stepbible.org/?q=version={version}|reference={abbr}.{chapters}"
on_invalid_row = "skip"

[columns]
start = "Start"
end = "End"
`)

	p, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "ESV Chronological", p.Name)
	assert.Equal(t, 366, p.Days)
	assert.Equal(t, "ESV", p.Translation)
	assert.Equal(t, plan.PolicySkip, p.Policy())

	cols := p.ScheduleColumns()
	assert.Equal(t, "Start", cols.Start)
	assert.Equal(t, "End", cols.End)
	assert.Equal(t, "Date", cols.Date)
	assert.Equal(t, "Book", p.SourceColumns().Book)

	// Unset keys keep their defaults.
	assert.NotEmpty(t, p.AudioURL)

	start, err := p.Start(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2027, start.Year())
	assert.Equal(t, 1, start.YearDay())
}

func TestLoadProfile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad days", "days = 0", "days"},
		{"days too large", fmt.Sprintf("days = %d", plan.MaxDays+1), "days must be between 1 and"},
		{"bad policy", `on_invalid_row = "ignore"`, "on_invalid_row"},
		{"bad date", `start_date = "Jan 1"`, "start_date"},
		{"unknown key", `colour = "blue"`, "unknown profile keys"},
		{"bad template", `text_url = "https://example.org/"`, "{abbr}"},
		{"empty column", "[columns]\ndate = \"\"", "columns.date"},
		{"not toml", "days = = 3", "decode profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProfile(writeProfile(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestProfile_ValidateDayBounds(t *testing.T) {
	p := DefaultProfile()

	p.Days = plan.MaxDays
	assert.NoError(t, p.Validate())

	p.Days = plan.MaxDays + 1
	assert.Error(t, p.Validate())
}

func TestProfile_StartDefaultsToNewYear(t *testing.T) {
	p := DefaultProfile()
	now := time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC)

	start, err := p.Start(now)
	require.NoError(t, err)
	want := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, start.Equal(want), "Start() = %v, want %v", start, want)
}
