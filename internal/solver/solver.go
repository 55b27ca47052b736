// internal/solver/solver.go
//
// Hint assistant for a single game session.
// Responsibilities:
//   - Enumerate every code the rules permit (the candidate set).
//   - Narrow the set as feedback is observed: a candidate survives only if it
//     would have produced the same feedback for the observed guess.
//   - Report remaining-candidate entropy and sample suggested next guesses.
//
// The candidate set carries a uniform prior, so its entropy is log2 of its
// size and the information gained by a guess is the entropy drop it caused.

package solver

import (
	"errors"
	"math"

	"github.com/cowculator/cowculator/internal/code"
	"github.com/cowculator/cowculator/internal/game"
)

// maxEnumeration bounds the candidate sets we are willing to materialize.
// Rule spaces beyond it play without hints.
const maxEnumeration = 1 << 20

// ErrSpaceTooLarge is returned by New when the rules permit more codes than
// maxEnumeration.
var ErrSpaceTooLarge = errors.New("solver: rule space too large to enumerate")

// Solver tracks the codes still consistent with all observed feedback.
type Solver struct {
	rules      code.Rules
	candidates []code.Code
}

// New enumerates the full candidate set for the rules.
func New(rules code.Rules) (*Solver, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if spaceSize(rules) > maxEnumeration {
		return nil, ErrSpaceTooLarge
	}
	return &Solver{rules: rules, candidates: enumerate(rules)}, nil
}

// Remaining reports how many candidates are still consistent.
func (s *Solver) Remaining() int { return len(s.candidates) }

// Entropy returns log2 of the remaining candidate count (uniform prior).
// Zero when no candidates remain.
func (s *Solver) Entropy() float64 {
	if len(s.candidates) == 0 {
		return 0
	}
	return math.Log2(float64(len(s.candidates)))
}

// InformationGain is the entropy drop between two observations, in bits.
func InformationGain(prev, cur float64) float64 { return prev - cur }

// Observe narrows the candidate set to codes that would have yielded fb for
// the given guess.
func (s *Solver) Observe(guess code.Code, fb game.Feedback) {
	kept := s.candidates[:0]
	for _, cand := range s.candidates {
		if game.Score(cand, guess) == fb {
			kept = append(kept, cand)
		}
	}
	s.candidates = kept
}

// Suggest samples up to n distinct candidates uniformly at random.
func (s *Solver) Suggest(n int, rnd code.RandSource) []code.Code {
	if n > len(s.candidates) {
		n = len(s.candidates)
	}
	if n <= 0 {
		return nil
	}
	pool := append([]code.Code(nil), s.candidates...)
	out := make([]code.Code, n)
	for i := 0; i < n; i++ {
		j := i + rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
		out[i] = pool[i]
	}
	return out
}

// spaceSize counts the codes the rules permit, capping early so the product
// cannot overflow.
func spaceSize(r code.Rules) int {
	n := r.AlphabetSize()
	size := 1
	for i := 0; i < r.Length; i++ {
		c := n
		if r.Unique {
			c = n - i
		}
		size *= c
		if size > maxEnumeration {
			return size
		}
	}
	return size
}

// enumerate materializes every code the rules permit, in lexical order of the
// alphabet.
func enumerate(r code.Rules) []code.Code {
	syms := []rune(r.Alphabet)
	used := make([]bool, len(syms))
	buf := make([]rune, r.Length)
	out := make([]code.Code, 0, spaceSize(r))

	var walk func(pos int)
	walk = func(pos int) {
		if pos == r.Length {
			out = append(out, code.Code(string(buf)))
			return
		}
		for i, sym := range syms {
			if r.Unique && used[i] {
				continue
			}
			buf[pos] = sym
			if r.Unique {
				used[i] = true
			}
			walk(pos + 1)
			if r.Unique {
				used[i] = false
			}
		}
	}
	walk(0)
	return out
}
