package game

import (
	"math/rand/v2"
	"slices"
	"unicode"
)

// MaxHints caps the hints for a word so the last unrevealed letter is
// never given away. Whitespace does not count as a letter.
func MaxHints(word string, numberOfHints int) int {
	letters := 0
	for _, r := range word {
		if !unicode.IsSpace(r) {
			letters++
		}
	}
	return max(min(numberOfHints, letters-1), 0)
}

// HintInterval is the spacing in seconds between two reveals. Zero means
// no hints are scheduled.
func HintInterval(turnTimeBudget, maxHints int) int {
	if maxHints <= 0 {
		return 0
	}
	return turnTimeBudget / (maxHints + 1)
}

// DueHint reports whether one more letter should be revealed at this
// elapsed second.
func DueHint(elapsed, turnTimeBudget int, word string, numberOfHints int, revealed []int) bool {
	limit := MaxHints(word, numberOfHints)
	interval := HintInterval(turnTimeBudget, limit)
	if interval <= 0 || elapsed <= 0 {
		return false
	}
	return elapsed%interval == 0 && len(revealed) < limit
}

// PickHint returns a uniformly random rune index of word that is neither
// whitespace nor already revealed.
func PickHint(word string, revealed []int, rng *rand.Rand) (int, bool) {
	var candidates []int
	for i, r := range []rune(word) {
		if unicode.IsSpace(r) || slices.Contains(revealed, i) {
			continue
		}
		candidates = append(candidates, i)
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[rng.IntN(len(candidates))], true
}
