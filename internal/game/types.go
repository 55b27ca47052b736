// internal/game/types.go
//
// Core type definitions for the Bulls and Cows game engine.
// Defines:
//   - State: lifecycle of a single game session.
//   - Feedback: bulls/cows score for one guess.
//   - GuessRecord: one entry in the append-only guess log.

package game

import (
	"time"

	"github.com/cowculator/cowculator/internal/code"
)

// State represents the lifecycle of a game session.
// Possible values:
//   - "in_progress": guesses are still accepted.
//   - "won":  a guess matched the secret exactly (terminal).
//   - "lost": the attempt limit was exhausted without a win (terminal).
type State string

const (
	StateInProgress State = "in_progress"
	StateWon        State = "won"
	StateLost       State = "lost"
)

// Terminal reports whether the state accepts no further guesses.
func (s State) Terminal() bool { return s != StateInProgress }

// Feedback is the score for one guess against the secret.
// Invariant: Bulls+Cows never exceeds the code length, and Bulls equals the
// code length exactly when the guess equals the secret.
type Feedback struct {
	Bulls int `json:"bulls"` // correct symbol, correct position
	Cows  int `json:"cows"`  // correct symbol, wrong position
}

// GuessRecord is one entry in a session's guess history.
type GuessRecord struct {
	Attempt  int       `json:"attempt"` // 1-based attempt number
	Guess    code.Code `json:"guess"`
	Feedback Feedback  `json:"feedback"`
	At       time.Time `json:"at"`
}
