// internal/game/score.go
//
// Guess scoring. Uses the standard two-pass algorithm: exact matches first,
// then a multiset intersection over the remaining symbols. A naive membership
// test overcounts cows when a symbol repeats in either code; counting
// leftovers per symbol handles both the unique and repeated-symbol modes with
// one code path.

package game

import "github.com/cowculator/cowculator/internal/code"

// Score computes bulls and cows for guess against secret.
// Both codes must have the same length; codes parsed under the same rules
// always do. Scoring is symmetric in its two arguments.
func Score(secret, guess code.Code) Feedback {
	s := []rune(string(secret))
	g := []rune(string(guess))

	var fb Feedback

	// First pass: mark bulls and count the remaining secret symbols.
	leftover := make(map[rune]int, len(s))
	for i := range g {
		if g[i] == s[i] {
			fb.Bulls++
		} else {
			leftover[s[i]]++
		}
	}

	// Second pass: each non-bull guess symbol consumes one leftover.
	for i := range g {
		if g[i] == s[i] {
			continue
		}
		if leftover[g[i]] > 0 {
			fb.Cows++
			leftover[g[i]]--
		}
	}
	return fb
}
