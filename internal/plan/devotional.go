package plan

// Psalm/Proverb rotation limits.
const (
	LastDevotionalDay = 361 // Days after this have neither a psalm nor a proverb
	ProverbEvery      = 6   // Every sixth day is a proverb day
	MaxPsalm          = 150
	MaxProverb        = 31
)

// Assign returns the psalm and proverb for a day index; 0 means none.
//
// Every sixth day (index 5, 11, 17, ...) is a proverb day, numbered by how
// many proverb days have passed. Every other day reads the next psalm, so
// the psalm counter skips the proverb slots. Numbers past the end of the
// book clamp to 0.
func Assign(day int) (psalm, proverb int) {
	if day < 0 || day > LastDevotionalDay {
		return 0, 0
	}

	if (day+1)%ProverbEvery == 0 {
		proverb = (day + 1) / ProverbEvery
		if proverb > MaxProverb {
			proverb = 0
		}
		return 0, proverb
	}

	psalm = day - day/ProverbEvery + 1
	if psalm > MaxPsalm {
		psalm = 0
	}
	return psalm, 0
}

// IsProverbDay reports whether day is a proverb slot, whether or not a
// proverb is still left to assign.
func IsProverbDay(day int) bool {
	return day >= 0 && day <= LastDevotionalDay && (day+1)%ProverbEvery == 0
}
