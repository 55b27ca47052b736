package httpserver

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	codepkg "github.com/cowculator/cowculator/internal/code"
	"github.com/cowculator/cowculator/internal/game"
	"github.com/cowculator/cowculator/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(store.NewMemoryStore(), Config{
		Rules: codepkg.DefaultRules,
		Rand:  rand.New(rand.NewSource(1)),
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func newGame(t *testing.T, s *Server, body map[string]any) newGameRes {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/game/new", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[newGameRes](t, rec)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestNewGameDefaults(t *testing.T) {
	s := newTestServer(t)
	res := newGame(t, s, nil)

	assert.NotEmpty(t, res.GameID)
	assert.Equal(t, 4, res.Length)
	assert.Equal(t, 0, res.MaxAttempts)
	assert.True(t, res.HintsAvailable)
}

func TestNewGameRejectsBadRules(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/game/new", map[string]any{
		"length": 5, "alphabet": "123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_rules")
}

func TestNewGameRejectsBadFixedSecret(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/game/new", map[string]any{"secret": "1123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_secret")
}

func TestGuessFlow(t *testing.T) {
	s := newTestServer(t)
	created := newGame(t, s, map[string]any{"secret": "1234"})

	rec := doJSON(t, s, http.MethodPost, "/game/guess", map[string]any{
		"gameId": created.GameID, "guess": "1325",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[guessRes](t, rec)
	assert.Equal(t, 1, res.Bulls)
	assert.Equal(t, 2, res.Cows)
	assert.Equal(t, game.StateInProgress, res.State)
	assert.Equal(t, 1, res.Attempt)
	require.NotNil(t, res.Entropy)
	require.NotNil(t, res.InfoGain)
	require.NotNil(t, res.Remaining)
	assert.Greater(t, *res.InfoGain, 0.0)
	assert.Less(t, *res.Remaining, 5040)

	rec = doJSON(t, s, http.MethodPost, "/game/guess", map[string]any{
		"gameId": created.GameID, "guess": "1234",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	res = decodeBody[guessRes](t, rec)
	assert.Equal(t, 4, res.Bulls)
	assert.Equal(t, game.StateWon, res.State)
	assert.Equal(t, 2, res.Attempt)
	require.NotNil(t, res.Remaining)
	assert.Equal(t, 1, *res.Remaining)
}

func TestGuessAfterGameOver(t *testing.T) {
	s := newTestServer(t)
	created := newGame(t, s, map[string]any{"secret": "1234"})

	rec := doJSON(t, s, http.MethodPost, "/game/guess", map[string]any{
		"gameId": created.GameID, "guess": "1234",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/game/guess", map[string]any{
		"gameId": created.GameID, "guess": "5678",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "game_over")
	assert.Contains(t, rec.Body.String(), "won")
}

func TestInvalidGuessLeavesHistoryUntouched(t *testing.T) {
	s := newTestServer(t)
	created := newGame(t, s, map[string]any{"secret": "1234"})

	rec := doJSON(t, s, http.MethodPost, "/game/guess", map[string]any{
		"gameId": created.GameID, "guess": "123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "wrong_length")

	rec = doJSON(t, s, http.MethodGet, "/game/"+created.GameID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]game.GuessRecord](t, rec))
}

func TestGuessUnknownGame(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/game/guess", map[string]any{
		"gameId": "missing", "guess": "1234",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMaxAttemptsLoss(t *testing.T) {
	s := newTestServer(t)
	created := newGame(t, s, map[string]any{"secret": "1234", "maxAttempts": 1})
	assert.Equal(t, 1, created.MaxAttempts)

	rec := doJSON(t, s, http.MethodPost, "/game/guess", map[string]any{
		"gameId": created.GameID, "guess": "5678",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[guessRes](t, rec)
	assert.Equal(t, game.StateLost, res.State)

	rec = doJSON(t, s, http.MethodPost, "/game/guess", map[string]any{
		"gameId": created.GameID, "guess": "1234",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "lost")
}

func TestAllowRepeatsGame(t *testing.T) {
	s := newTestServer(t)
	created := newGame(t, s, map[string]any{"secret": "1122", "allowRepeats": true})

	rec := doJSON(t, s, http.MethodPost, "/game/guess", map[string]any{
		"gameId": created.GameID, "guess": "2211",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[guessRes](t, rec)
	assert.Equal(t, 0, res.Bulls)
	assert.Equal(t, 4, res.Cows)
}

func TestStateAndHistory(t *testing.T) {
	s := newTestServer(t)
	created := newGame(t, s, map[string]any{"secret": "1234"})

	for _, g := range []string{"5678", "1325"} {
		rec := doJSON(t, s, http.MethodPost, "/game/guess", map[string]any{
			"gameId": created.GameID, "guess": g,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, s, http.MethodGet, "/game/"+created.GameID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[stateRes](t, rec)
	assert.Equal(t, game.StateInProgress, st.State)
	assert.Equal(t, 2, st.Attempts)
	assert.Equal(t, 4, st.Length)

	rec = doJSON(t, s, http.MethodGet, "/game/"+created.GameID+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recs := decodeBody[[]game.GuessRecord](t, rec)
	require.Len(t, recs, 2)
	assert.Equal(t, codepkg.Code("5678"), recs[0].Guess)
	assert.Equal(t, codepkg.Code("1325"), recs[1].Guess)
	assert.Equal(t, 1, recs[0].Attempt)
	assert.Equal(t, 2, recs[1].Attempt)
}

func TestRevealSecret(t *testing.T) {
	s := newTestServer(t)
	created := newGame(t, s, map[string]any{"secret": "1234"})

	rec := doJSON(t, s, http.MethodGet, "/game/"+created.GameID+"/reveal", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "game_in_progress")

	rec = doJSON(t, s, http.MethodPost, "/game/guess", map[string]any{
		"gameId": created.GameID, "guess": "1234",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/game/"+created.GameID+"/reveal", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"secret":"1234"}`, rec.Body.String())
}

func TestHints(t *testing.T) {
	s := newTestServer(t)
	created := newGame(t, s, map[string]any{"secret": "1234"})

	rec := doJSON(t, s, http.MethodGet, "/game/"+created.GameID+"/hints?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[hintsRes](t, rec)
	assert.Equal(t, 5040, res.Remaining)
	assert.Len(t, res.Suggestions, 5)
	for _, c := range res.Suggestions {
		_, err := codepkg.Parse(string(c), codepkg.DefaultRules)
		require.NoError(t, err)
	}
}

func TestHintsUnavailableForHugeSpace(t *testing.T) {
	s := newTestServer(t)
	created := newGame(t, s, map[string]any{
		"length": 10, "allowRepeats": true,
	})
	assert.False(t, created.HintsAvailable)

	rec := doJSON(t, s, http.MethodGet, "/game/"+created.GameID+"/hints", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "hints_unavailable")
}

func TestDeleteGame(t *testing.T) {
	s := newTestServer(t)
	created := newGame(t, s, nil)

	rec := doJSON(t, s, http.MethodDelete, "/game/"+created.GameID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/game/"+created.GameID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotFoundIsJSON(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"path":"/nope"`)
}
