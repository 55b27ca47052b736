// internal/code/generator.go
//
// Secret generation. Randomness is an injected dependency (RandSource) so
// tests can substitute a seeded source; production callers use CryptoSource.

package code

import (
	"crypto/rand"
	"math/big"
)

// RandSource is the source of randomness for secret generation.
// *math/rand.Rand satisfies it, as does CryptoSource().
type RandSource interface {
	Intn(n int) int
}

// Generator produces secrets satisfying a fixed rule set.
type Generator struct {
	rules Rules
	rnd   RandSource
}

// NewGenerator validates the rules and returns a generator drawing from rnd.
// Returns a *ConfigurationError when the rules are unsatisfiable.
func NewGenerator(rules Rules, rnd RandSource) (*Generator, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Generator{rules: rules, rnd: rnd}, nil
}

// Generate returns a uniformly random Code.
// With unique symbols, a partial Fisher–Yates shuffle yields a uniform
// permutation-subset of the alphabet; otherwise each position is drawn
// independently.
func (g *Generator) Generate() Code {
	out := make([]rune, g.rules.Length)
	if g.rules.Unique {
		pool := []rune(g.rules.Alphabet)
		for i := 0; i < g.rules.Length; i++ {
			j := i + g.rnd.Intn(len(pool)-i)
			pool[i], pool[j] = pool[j], pool[i]
			out[i] = pool[i]
		}
		return Code(out)
	}
	syms := []rune(g.rules.Alphabet)
	for i := range out {
		out[i] = syms[g.rnd.Intn(len(syms))]
	}
	return Code(out)
}

// cryptoSource draws from crypto/rand. Safe for concurrent use.
type cryptoSource struct{}

// CryptoSource returns a RandSource backed by crypto/rand.
func CryptoSource() RandSource { return cryptoSource{} }

func (cryptoSource) Intn(n int) int {
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}
