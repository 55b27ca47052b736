// internal/game/engine.go
//
// Core game engine for a single Bulls and Cows session.
// Responsibilities:
//   - Hold the secret for one session (supplied by the caller, see New).
//   - Validate and score guesses against the session's rules.
//   - Maintain the append-only guess history with timestamps.
//   - Track state transitions: in_progress → won/lost.
//
// Notes:
//   - The secret is produced externally (code.Generator); keeping randomness
//     out of the engine makes scoring fully deterministic under test.
//   - Timestamps come from an injected quartz.Clock (real clock by default).
//   - One engine instance is owned by exactly one logical caller; no locking.

package game

import (
	"fmt"

	"github.com/coder/quartz"

	"github.com/cowculator/cowculator/internal/code"
)

// Engine orchestrates one game session.
type Engine struct {
	secret      code.Code
	rules       code.Rules
	maxAttempts int // 0 = unlimited
	clock       quartz.Clock

	state   State
	history []GuessRecord
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithMaxAttempts bounds the number of guesses; reaching the bound without a
// win transitions the game to StateLost. Zero means unlimited.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) { e.maxAttempts = n }
}

// WithClock substitutes the clock used for guess timestamps.
func WithClock(c quartz.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New constructs an engine for one session. The secret must satisfy the
// rules; rules must themselves be valid.
func New(secret code.Code, rules code.Rules, opts ...Option) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if _, err := code.Parse(string(secret), rules); err != nil {
		return nil, fmt.Errorf("secret does not satisfy rules: %w", err)
	}
	e := &Engine{
		secret: secret,
		rules:  rules,
		clock:  quartz.NewReal(),
		state:  StateInProgress,
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// SubmitGuess validates and scores a guess, mutating the session state.
//
// Precondition checks, in order:
//   - The game must be in progress, else *GameOverError.
//   - The raw guess must parse under the session rules, else
//     *code.InvalidGuessError.
//
// A rejected guess leaves state and history untouched.
//
// State transitions:
//   - All bulls → StateWon.
//   - Attempt limit reached without a win → StateLost.
func (e *Engine) SubmitGuess(raw string) (Feedback, error) {
	if e.state.Terminal() {
		return Feedback{}, &GameOverError{State: e.state}
	}
	guess, err := code.Parse(raw, e.rules)
	if err != nil {
		return Feedback{}, err
	}

	fb := Score(e.secret, guess)
	e.history = append(e.history, GuessRecord{
		Attempt:  len(e.history) + 1,
		Guess:    guess,
		Feedback: fb,
		At:       e.clock.Now(),
	})

	switch {
	case fb.Bulls == e.rules.Length:
		e.state = StateWon
	case e.maxAttempts > 0 && len(e.history) >= e.maxAttempts:
		e.state = StateLost
	}
	return fb, nil
}

// State reports the current game state. Pure read.
func (e *Engine) State() State { return e.state }

// Attempts reports how many guesses have been accepted.
func (e *Engine) Attempts() int { return len(e.history) }

// MaxAttempts reports the configured attempt limit (0 = unlimited).
func (e *Engine) MaxAttempts() int { return e.maxAttempts }

// Rules returns the session's rule set.
func (e *Engine) Rules() code.Rules { return e.rules }

// History returns the guess log in attempt order. The returned slice is a
// copy; callers may re-read freely.
func (e *Engine) History() []GuessRecord {
	return append([]GuessRecord(nil), e.history...)
}

// RevealSecret returns the secret once the game has ended.
// Returns *GameInProgressError while guesses are still accepted.
func (e *Engine) RevealSecret() (code.Code, error) {
	if !e.state.Terminal() {
		return "", &GameInProgressError{}
	}
	return e.secret, nil
}
