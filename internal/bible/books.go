// Package bible holds the static book tables used by the reading plan:
// the 66-book Protestant canon with chapter counts, ordinals and the two
// abbreviation schemes used when building reference links.
package bible

import (
	"strings"
	"unicode"
)

// Book identifies a single book of the canon.
type Book struct {
	Name      string // Canonical display name, e.g. "1 Samuel"
	Ordinal   int    // Position in the canon, 1..66
	Chapters  int    // Total chapter count
	TextAbbr  string // OSIS-style abbreviation used by the text viewer, e.g. "1Sam"
	AudioAbbr string // Three-character abbreviation used by the audio files, e.g. "1Sa"
}

// Testament reports "OT" or "NT" for the book.
func (b Book) Testament() string {
	if b.Ordinal <= 39 {
		return "OT"
	}
	return "NT"
}

// canon is ordered by ordinal. Never mutated after init.
var canon = [...]Book{
	// Old Testament
	{"Genesis", 1, 50, "Gen", "Gen"},
	{"Exodus", 2, 40, "Exod", "Exo"},
	{"Leviticus", 3, 27, "Lev", "Lev"},
	{"Numbers", 4, 36, "Num", "Num"},
	{"Deuteronomy", 5, 34, "Deut", "Deu"},
	{"Joshua", 6, 24, "Josh", "Jos"},
	{"Judges", 7, 21, "Judg", "Jdg"},
	{"Ruth", 8, 4, "Ruth", "Rut"},
	{"1 Samuel", 9, 31, "1Sam", "1Sa"},
	{"2 Samuel", 10, 24, "2Sam", "2Sa"},
	{"1 Kings", 11, 22, "1Kgs", "1Ki"},
	{"2 Kings", 12, 25, "2Kgs", "2Ki"},
	{"1 Chronicles", 13, 29, "1Chr", "1Ch"},
	{"2 Chronicles", 14, 36, "2Chr", "2Ch"},
	{"Ezra", 15, 10, "Ezra", "Ezr"},
	{"Nehemiah", 16, 13, "Neh", "Neh"},
	{"Esther", 17, 10, "Esth", "Est"},
	{"Job", 18, 42, "Job", "Job"},
	{"Psalms", 19, 150, "Ps", "Psa"},
	{"Proverbs", 20, 31, "Prov", "Pro"},
	{"Ecclesiastes", 21, 12, "Eccl", "Ecc"},
	{"Song of Solomon", 22, 8, "Song", "Sng"},
	{"Isaiah", 23, 66, "Isa", "Isa"},
	{"Jeremiah", 24, 52, "Jer", "Jer"},
	{"Lamentations", 25, 5, "Lam", "Lam"},
	{"Ezekiel", 26, 48, "Ezek", "Ezk"},
	{"Daniel", 27, 12, "Dan", "Dan"},
	{"Hosea", 28, 14, "Hos", "Hos"},
	{"Joel", 29, 3, "Joel", "Jol"},
	{"Amos", 30, 9, "Amos", "Amo"},
	{"Obadiah", 31, 1, "Obad", "Oba"},
	{"Jonah", 32, 4, "Jonah", "Jon"},
	{"Micah", 33, 7, "Mic", "Mic"},
	{"Nahum", 34, 3, "Nah", "Nam"},
	{"Habakkuk", 35, 3, "Hab", "Hab"},
	{"Zephaniah", 36, 3, "Zeph", "Zep"},
	{"Haggai", 37, 2, "Hag", "Hag"},
	{"Zechariah", 38, 14, "Zech", "Zec"},
	{"Malachi", 39, 4, "Mal", "Mal"},
	// New Testament
	{"Matthew", 40, 28, "Matt", "Mat"},
	{"Mark", 41, 16, "Mark", "Mrk"},
	{"Luke", 42, 24, "Luke", "Luk"},
	{"John", 43, 21, "John", "Jhn"},
	{"Acts", 44, 28, "Acts", "Act"},
	{"Romans", 45, 16, "Rom", "Rom"},
	{"1 Corinthians", 46, 16, "1Cor", "1Co"},
	{"2 Corinthians", 47, 13, "2Cor", "2Co"},
	{"Galatians", 48, 6, "Gal", "Gal"},
	{"Ephesians", 49, 6, "Eph", "Eph"},
	{"Philippians", 50, 4, "Phil", "Php"},
	{"Colossians", 51, 4, "Col", "Col"},
	{"1 Thessalonians", 52, 5, "1Thess", "1Th"},
	{"2 Thessalonians", 53, 3, "2Thess", "2Th"},
	{"1 Timothy", 54, 6, "1Tim", "1Ti"},
	{"2 Timothy", 55, 4, "2Tim", "2Ti"},
	{"Titus", 56, 3, "Titus", "Tit"},
	{"Philemon", 57, 1, "Phlm", "Phm"},
	{"Hebrews", 58, 13, "Heb", "Heb"},
	{"James", 59, 5, "Jas", "Jas"},
	{"1 Peter", 60, 5, "1Pet", "1Pe"},
	{"2 Peter", 61, 3, "2Pet", "2Pe"},
	{"1 John", 62, 5, "1John", "1Jn"},
	{"2 John", 63, 1, "2John", "2Jn"},
	{"3 John", 64, 1, "3John", "3Jn"},
	{"Jude", 65, 1, "Jude", "Jud"},
	{"Revelation", 66, 22, "Rev", "Rev"},
}

// aliases maps alternative normalized names onto canonical normalized names.
var aliases = map[string]string{
	"psalm":       "psalms",
	"songofsongs": "songofsolomon",
	"canticles":   "songofsolomon",
	"revelations": "revelation",
}

var byKey map[string]int

func init() {
	byKey = make(map[string]int, len(canon)+len(aliases))
	for i, b := range canon {
		byKey[Normalize(b.Name)] = i
	}
	for alias, target := range aliases {
		if i, ok := byKey[target]; ok {
			byKey[alias] = i
		}
	}
}

// Normalize strips all whitespace and case-folds a book name.
// "1 Samuel", " 1samuel " and "1 SAMUEL" all normalize to "1samuel".
func Normalize(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// Lookup resolves a book by name. Returns *UnknownBookError if absent.
func Lookup(name string) (Book, error) {
	i, ok := byKey[Normalize(name)]
	if !ok {
		return Book{}, &UnknownBookError{Name: name}
	}
	return canon[i], nil
}

// ChapterCount returns the total chapter count for a book.
func ChapterCount(name string) (int, error) {
	b, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	return b.Chapters, nil
}

// ByOrdinal returns the book at canonical position n (1..66).
func ByOrdinal(n int) (Book, bool) {
	if n < 1 || n > len(canon) {
		return Book{}, false
	}
	return canon[n-1], true
}

// All returns a copy of the canon in canonical order.
func All() []Book {
	out := make([]Book, len(canon))
	copy(out, canon[:])
	return out
}

// TotalChapters is the chapter count of the whole canon (1189).
func TotalChapters() int {
	total := 0
	for _, b := range canon {
		total += b.Chapters
	}
	return total
}
