package game

import (
	"slices"

	"github.com/scythe504/sketchroom/internal"
)

const (
	firstGuessPoints   = 250
	guessPointsDecay   = 30
	minimumPoints      = 50
	drawerPointsPerHit = 100
)

// TimeBonus rewards fast guesses: half of the seconds left in the turn.
func TimeBonus(turnTimeBudget, elapsed int) int {
	left := turnTimeBudget - elapsed
	// integer division truncates toward zero, the bonus floors
	if left < 0 {
		return (left - 1) / 2
	}
	return left / 2
}

// GuessPoints is what the k-th correct guesser of a turn earns (k = 0 for
// the first one).
func GuessPoints(k, turnTimeBudget, elapsed int) int {
	base := max(firstGuessPoints-guessPointsDecay*k, minimumPoints)
	return max(base+TimeBonus(turnTimeBudget, elapsed), minimumPoints)
}

// DrawerPoints is what the drawer earns for every correct guess received.
func DrawerPoints(turnTimeBudget, elapsed int) int {
	return max(drawerPointsPerHit+TimeBonus(turnTimeBudget, elapsed), minimumPoints)
}

// RankPlayers assigns dense ranks by descending score: equal scores share a
// rank and the next lower score gets the following rank number.
func RankPlayers(players []*internal.Player) {
	byScore := slices.Clone(players)
	SortByScore(byScore)

	rank := 0
	for i, p := range byScore {
		if i == 0 || p.Score != byScore[i-1].Score {
			rank++
		}
		p.Rank = rank
	}
}

// SortByScore orders players by descending score, keeping the current
// order between equal scores.
func SortByScore(players []*internal.Player) {
	slices.SortStableFunc(players, func(a, b *internal.Player) int {
		return b.Score - a.Score
	})
}
