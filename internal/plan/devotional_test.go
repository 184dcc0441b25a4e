package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssign_Scenarios(t *testing.T) {
	tests := []struct {
		day     int
		psalm   int
		proverb int
	}{
		{0, 1, 0},
		{4, 5, 0},
		{5, 0, 1},
		{6, 6, 0},
		{11, 0, 2},
		{185, 0, 31},
		{191, 0, 0}, // 32nd proverb slot: no Proverbs 32
		{178, 150, 0},
		{179, 0, 30},
		{180, 0, 0}, // Psalm 151 clamps
		{361, 0, 0},
		{362, 0, 0},
		{364, 0, 0},
		{-1, 0, 0},
	}

	for _, tt := range tests {
		psalm, proverb := Assign(tt.day)
		assert.Equal(t, tt.psalm, psalm, "psalm for day %d", tt.day)
		assert.Equal(t, tt.proverb, proverb, "proverb for day %d", tt.day)
	}
}

func TestAssign_Coverage(t *testing.T) {
	psalms := make(map[int]int)
	proverbs := make(map[int]int)
	proverbSlots := 0

	for day := 0; day <= LastDevotionalDay; day++ {
		psalm, proverb := Assign(day)
		assert.False(t, psalm != 0 && proverb != 0, "day %d has both", day)

		if IsProverbDay(day) {
			proverbSlots++
			assert.Zero(t, psalm, "proverb day %d has a psalm", day)
		}
		if psalm != 0 {
			assert.Zero(t, psalms[psalm], "psalm %d repeated on day %d", psalm, day)
			psalms[psalm] = day + 1
		}
		if proverb != 0 {
			assert.Zero(t, proverbs[proverb], "proverb %d repeated on day %d", proverb, day)
			proverbs[proverb] = day + 1
		}
	}

	assert.Equal(t, 60, proverbSlots)
	assert.Len(t, psalms, MaxPsalm)
	assert.Len(t, proverbs, MaxProverb)
	for n := 1; n <= MaxPsalm; n++ {
		assert.NotZero(t, psalms[n], "psalm %d never assigned", n)
	}
	for n := 1; n <= MaxProverb; n++ {
		assert.NotZero(t, proverbs[n], "proverb %d never assigned", n)
	}
}

func TestAssign_AfterCutoff(t *testing.T) {
	for day := LastDevotionalDay + 1; day < 400; day++ {
		psalm, proverb := Assign(day)
		assert.Zero(t, psalm, "day %d", day)
		assert.Zero(t, proverb, "day %d", day)
		assert.False(t, IsProverbDay(day))
	}
}
