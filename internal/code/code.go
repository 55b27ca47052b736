// internal/code/code.go
//
// Code values and the rule set that constrains them.
// Defines:
//   - Rules: length, symbol alphabet, and uniqueness constraint for a game.
//   - Code: a fixed-length ordered sequence of symbols from the alphabet.
//   - Parse: validation of raw player input into a Code.
//
// Notes:
//   - The alphabet is an ordered string of distinct symbols (runes).
//   - Secrets and guesses are validated against the same Rules, so a Code
//     that parsed under a game's Rules is always scoreable.

package code

import (
	"strings"
	"unicode/utf8"
)

// Code is an ordered sequence of symbols drawn from a game's alphabet.
type Code string

// Rules describes the constraints a valid Code must satisfy.
type Rules struct {
	Length   int    // number of symbols per code
	Alphabet string // distinct symbols codes are drawn from
	Unique   bool   // no symbol repeats within a code
}

// DefaultRules is the classic game: four unique digits 0–9.
var DefaultRules = Rules{Length: 4, Alphabet: "0123456789", Unique: true}

// AlphabetSize returns the number of symbols in the alphabet.
func (r Rules) AlphabetSize() int {
	return utf8.RuneCountInString(r.Alphabet)
}

// Validate reports whether the rules describe a satisfiable game.
// Returns a *ConfigurationError describing the first problem found.
func (r Rules) Validate() error {
	if r.Length < 1 {
		return &ConfigurationError{Reason: "code length must be at least 1"}
	}
	if r.Alphabet == "" {
		return &ConfigurationError{Reason: "alphabet is empty"}
	}
	seen := make(map[rune]bool, r.AlphabetSize())
	for _, sym := range r.Alphabet {
		if seen[sym] {
			return &ConfigurationError{Reason: "alphabet contains repeated symbol " + string(sym)}
		}
		seen[sym] = true
	}
	if r.Unique && r.Length > r.AlphabetSize() {
		return &ConfigurationError{Reason: "code length exceeds alphabet size with unique symbols required"}
	}
	return nil
}

// Parse validates raw player input against the rules and returns it as a Code.
// Leading/trailing whitespace is ignored. On failure the returned error is a
// *InvalidGuessError carrying the rejection reason.
func Parse(raw string, r Rules) (Code, error) {
	s := strings.TrimSpace(raw)
	if utf8.RuneCountInString(s) != r.Length {
		return "", &InvalidGuessError{Reason: ReasonWrongLength}
	}
	seen := make(map[rune]bool, r.Length)
	for _, sym := range s {
		if !strings.ContainsRune(r.Alphabet, sym) {
			return "", &InvalidGuessError{Reason: ReasonBadSymbol}
		}
		if r.Unique && seen[sym] {
			return "", &InvalidGuessError{Reason: ReasonDuplicate}
		}
		seen[sym] = true
	}
	return Code(s), nil
}
