package solver

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	codepkg "github.com/cowculator/cowculator/internal/code"
	"github.com/cowculator/cowculator/internal/game"
)

func TestNewEnumeratesClassicSpace(t *testing.T) {
	s, err := New(codepkg.DefaultRules)
	require.NoError(t, err)
	// 10*9*8*7 unique-digit codes of length 4.
	assert.Equal(t, 5040, s.Remaining())
	assert.InDelta(t, math.Log2(5040), s.Entropy(), 1e-9)
}

func TestNewEnumeratesRepeatSpace(t *testing.T) {
	s, err := New(codepkg.Rules{Length: 2, Alphabet: "012", Unique: false})
	require.NoError(t, err)
	assert.Equal(t, 9, s.Remaining())
}

func TestNewRejectsHugeSpace(t *testing.T) {
	_, err := New(codepkg.Rules{Length: 10, Alphabet: "0123456789", Unique: false})
	require.ErrorIs(t, err, ErrSpaceTooLarge)
}

func TestNewRejectsBadRules(t *testing.T) {
	_, err := New(codepkg.Rules{Length: 0, Alphabet: "01"})
	var cfg *codepkg.ConfigurationError
	require.ErrorAs(t, err, &cfg)
}

func TestObserveKeepsTheSecret(t *testing.T) {
	secret := codepkg.Code("1234")
	s, err := New(codepkg.DefaultRules)
	require.NoError(t, err)

	prev := s.Entropy()
	for _, guess := range []codepkg.Code{"5678", "1325", "1243"} {
		s.Observe(guess, game.Score(secret, guess))

		found := false
		for _, cand := range s.Suggest(s.Remaining(), rand.New(rand.NewSource(1))) {
			if cand == secret {
				found = true
				break
			}
		}
		assert.True(t, found, "secret filtered out after observing %q", guess)

		cur := s.Entropy()
		assert.LessOrEqual(t, cur, prev, "entropy grew after observing %q", guess)
		prev = cur
	}
}

func TestObserveExactFeedbackSolves(t *testing.T) {
	s, err := New(codepkg.DefaultRules)
	require.NoError(t, err)

	s.Observe("1234", game.Feedback{Bulls: 4, Cows: 0})
	assert.Equal(t, 1, s.Remaining())
	assert.Equal(t, 0.0, s.Entropy())
}

func TestSuggest(t *testing.T) {
	s, err := New(codepkg.DefaultRules)
	require.NoError(t, err)
	rnd := rand.New(rand.NewSource(42))

	got := s.Suggest(10, rnd)
	require.Len(t, got, 10)
	seen := map[codepkg.Code]bool{}
	for _, c := range got {
		_, err := codepkg.Parse(string(c), codepkg.DefaultRules)
		require.NoError(t, err)
		assert.False(t, seen[c], "duplicate suggestion %q", c)
		seen[c] = true
	}
}

func TestSuggestClampsToRemaining(t *testing.T) {
	s, err := New(codepkg.DefaultRules)
	require.NoError(t, err)
	s.Observe("1234", game.Feedback{Bulls: 4, Cows: 0})

	got := s.Suggest(10, rand.New(rand.NewSource(1)))
	assert.Equal(t, []codepkg.Code{"1234"}, got)
	assert.Nil(t, s.Suggest(0, rand.New(rand.NewSource(1))))
}

func TestInformationGain(t *testing.T) {
	assert.InDelta(t, 2.0, InformationGain(math.Log2(40), math.Log2(10)), 1e-9)
}
