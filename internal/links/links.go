// Package links formats chapter references as citation lines pointing at a
// web Bible-text viewer and at per-chapter audio files.
package links

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/zapponejosh/reading-plan/internal/bible"
)

// Templates configure the two link targets. Placeholders:
//
//	{version}  translation code, e.g. BSB
//	{abbr}     book abbreviation (text scheme in TextURL, audio scheme in AudioURL)
//	{chapters} "5" or "5-7" (TextURL only)
//	{ordinal}  two-digit book ordinal, e.g. 01 (AudioURL only)
//	{chapter}  three-digit chapter, e.g. 005 (AudioURL only)
type Templates struct {
	Version  string
	TextURL  string
	AudioURL string
}

// DefaultTemplates target StepBible for text and the BSB audio Bible.
var DefaultTemplates = Templates{
	Version:  "BSB",
	TextURL:  "https://www.stepbible.org/?q=version={version}|reference={abbr}.{chapters}",
	AudioURL: "https://openbible.com/audio/souer/{version}_{ordinal}_{abbr}_{chapter}.mp3",
}

// Validate reports missing templates or templates without a book placeholder.
func (t Templates) Validate() error {
	var errs []error
	if t.TextURL == "" {
		errs = append(errs, errors.New("text URL template is required"))
	} else if !strings.Contains(t.TextURL, "{abbr}") {
		errs = append(errs, errors.New("text URL template must contain {abbr}"))
	}
	if t.AudioURL == "" {
		errs = append(errs, errors.New("audio URL template is required"))
	} else if !strings.Contains(t.AudioURL, "{chapter}") {
		errs = append(errs, errors.New("audio URL template must contain {chapter}"))
	}
	return errors.Join(errs...)
}

// Citations is everything rendered for one chapter range.
type Citations struct {
	Text  string   `json:"text"`
	Audio []string `json:"audio"`
}

// Formatter renders citations. It is safe for concurrent use.
type Formatter struct {
	tmpl   Templates
	logger *slog.Logger
}

// New creates a Formatter. Empty template fields fall back to DefaultTemplates.
func New(tmpl Templates, logger *slog.Logger) *Formatter {
	if tmpl.Version == "" {
		tmpl.Version = DefaultTemplates.Version
	}
	if tmpl.TextURL == "" {
		tmpl.TextURL = DefaultTemplates.TextURL
	}
	if tmpl.AudioURL == "" {
		tmpl.AudioURL = DefaultTemplates.AudioURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{tmpl: tmpl, logger: logger}
}

// Version returns the translation code links are built for.
func (f *Formatter) Version() string {
	return f.tmpl.Version
}

// resolve looks the book up and checks the range.
func resolve(book string, start, end int) (bible.Book, error) {
	b, err := bible.Lookup(book)
	if err != nil {
		return bible.Book{}, err
	}
	if err := bible.CheckRange(b, start, end); err != nil {
		return bible.Book{}, err
	}
	return b, nil
}

// chapterLabel is "5" for a single chapter and "5-7" for a range.
func chapterLabel(start, end int) string {
	if start == end {
		return strconv.Itoa(start)
	}
	return fmt.Sprintf("%d-%d", start, end)
}

// TextURL builds the text-viewer URL for [start, end].
func (f *Formatter) TextURL(book string, start, end int) (string, error) {
	b, err := resolve(book, start, end)
	if err != nil {
		return "", err
	}
	return f.textURL(b, start, end), nil
}

func (f *Formatter) textURL(b bible.Book, start, end int) string {
	return strings.NewReplacer(
		"{version}", f.tmpl.Version,
		"{abbr}", b.TextAbbr,
		"{chapters}", chapterLabel(start, end),
	).Replace(f.tmpl.TextURL)
}

// AudioURL builds the audio-file URL for one chapter.
func (f *Formatter) AudioURL(book string, chapter int) (string, error) {
	b, err := resolve(book, chapter, chapter)
	if err != nil {
		return "", err
	}
	return f.audioURL(b, chapter), nil
}

func (f *Formatter) audioURL(b bible.Book, chapter int) string {
	return strings.NewReplacer(
		"{version}", f.tmpl.Version,
		"{abbr}", b.AudioAbbr,
		"{ordinal}", fmt.Sprintf("%02d", b.Ordinal),
		"{chapter}", fmt.Sprintf("%03d", chapter),
	).Replace(f.tmpl.AudioURL)
}

// TextCitation renders "Genesis 1-3: <url>". A single chapter and a range
// whose start equals its end render identically.
func (f *Formatter) TextCitation(book string, start, end int) (string, error) {
	b, err := resolve(book, start, end)
	if err != nil {
		return "", err
	}
	return f.textCitation(b, start, end), nil
}

func (f *Formatter) textCitation(b bible.Book, start, end int) string {
	return fmt.Sprintf("%s %s: %s", b.Name, chapterLabel(start, end), f.textURL(b, start, end))
}

// AudioCitations renders one "Genesis 1 (audio): <url>" line per chapter.
func (f *Formatter) AudioCitations(book string, start, end int) ([]string, error) {
	b, err := resolve(book, start, end)
	if err != nil {
		return nil, err
	}
	return f.audioCitations(b, start, end), nil
}

func (f *Formatter) audioCitations(b bible.Book, start, end int) []string {
	lines := make([]string, 0, end-start+1)
	for ch := start; ch <= end; ch++ {
		lines = append(lines, fmt.Sprintf("%s %d (audio): %s", b.Name, ch, f.audioURL(b, ch)))
	}
	return lines
}

// Citations renders both link kinds and never fails: an unknown book or bad
// range is logged and yields an empty text citation and no audio lines, which
// callers treat as "omit this link".
func (f *Formatter) Citations(book string, start, end int) Citations {
	b, err := resolve(book, start, end)
	if err != nil {
		f.warn(book, start, end, err)
		return Citations{}
	}
	return Citations{
		Text:  f.textCitation(b, start, end),
		Audio: f.audioCitations(b, start, end),
	}
}

// Chapter is Citations for a single chapter.
func (f *Formatter) Chapter(book string, chapter int) Citations {
	return f.Citations(book, chapter, chapter)
}

func (f *Formatter) warn(book string, start, end int, err error) {
	f.logger.Warn("cannot format reference link",
		slog.String("book", book),
		slog.Int("start", start),
		slog.Int("end", end),
		slog.Any("error", err),
	)
}
