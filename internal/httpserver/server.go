// internal/httpserver/server.go
//
// HTTP server wiring for the Cowculator backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: create, guess, state, history, reveal, hints, delete.
//   - Live play channel over WebSocket (routes_ws.go).
//
// Notes:
//   - The engine is the source of truth; handlers translate its typed errors
//     into JSON error bodies and status codes, nothing more.
//   - Each session is driven by one logical caller at a time (one player per
//     game), so handlers never lock a session.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cowculator/cowculator/internal/code"
	"github.com/cowculator/cowculator/internal/game"
	"github.com/cowculator/cowculator/internal/solver"
	"github.com/cowculator/cowculator/internal/store"
)

// Config carries the server-wide game defaults.
type Config struct {
	Rules       code.Rules      // default rule set for new games
	MaxAttempts int             // default attempt limit (0 = unlimited)
	Rand        code.RandSource // nil → crypto-backed source
}

// Server bundles router, session store, and game defaults.
type Server struct {
	r     *chi.Mux
	store store.Store
	cfg   Config
	rnd   code.RandSource
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, cfg Config) *Server {
	rnd := cfg.Rand
	if rnd == nil {
		rnd = code.CryptoSource()
	}
	s := &Server{r: chi.NewRouter(), store: st, cfg: cfg, rnd: rnd}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"cowculator","endpoints":["/health","POST /game/new","POST /game/guess","GET /game/{id}","GET /game/{id}/ws"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// Game endpoints
	s.r.Post("/game/new", s.handleNewGame)
	s.r.Post("/game/guess", s.handleGuess)
	s.r.Get("/game/{id}", s.handleState)
	s.r.Get("/game/{id}/history", s.handleHistory)
	s.r.Get("/game/{id}/reveal", s.handleReveal)
	s.r.Get("/game/{id}/hints", s.handleHints)
	s.r.Delete("/game/{id}", s.handleDelete)
	s.r.Get("/game/{id}/ws", s.handleWS)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	// Debug: effective game defaults
	s.r.Get("/debug/rules", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"length":      s.cfg.Rules.Length,
			"alphabet":    s.cfg.Rules.Alphabet,
			"unique":      s.cfg.Rules.Unique,
			"maxAttempts": s.cfg.MaxAttempts,
		})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
// All fields are optional; unset fields fall back to the server defaults.
type newGameReq struct {
	Length       int    `json:"length"`
	Alphabet     string `json:"alphabet"`
	AllowRepeats *bool  `json:"allowRepeats"`
	MaxAttempts  *int   `json:"maxAttempts"`
	Secret       string `json:"secret"` // optional fixed secret (testing)
}
type newGameRes struct {
	GameID         string `json:"gameId"`
	Length         int    `json:"length"`
	MaxAttempts    int    `json:"maxAttempts"`
	HintsAvailable bool   `json:"hintsAvailable"`
}

// rulesFor merges request overrides onto the server defaults.
func (s *Server) rulesFor(req newGameReq) (code.Rules, int) {
	rules := s.cfg.Rules
	if req.Length > 0 {
		rules.Length = req.Length
	}
	if req.Alphabet != "" {
		rules.Alphabet = req.Alphabet
	}
	if req.AllowRepeats != nil {
		rules.Unique = !*req.AllowRepeats
	}
	maxAttempts := s.cfg.MaxAttempts
	if req.MaxAttempts != nil {
		maxAttempts = *req.MaxAttempts
	}
	return rules, maxAttempts
}

// handleNewGame creates a session: secret, engine, and (when the rule space
// is small enough) a hint solver.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	rules, maxAttempts := s.rulesFor(req)

	var secret code.Code
	if req.Secret != "" {
		var err error
		if secret, err = code.Parse(req.Secret, rules); err != nil {
			http.Error(w, `{"error":"invalid_secret","reason":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
	} else {
		gen, err := code.NewGenerator(rules, s.rnd)
		if err != nil {
			http.Error(w, `{"error":"invalid_rules","reason":"`+err.Error()+`"}`, http.StatusBadRequest)
			return
		}
		secret = gen.Generate()
	}

	eng, err := game.New(secret, rules, game.WithMaxAttempts(maxAttempts))
	if err != nil {
		http.Error(w, `{"error":"invalid_rules","reason":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	sess := &store.Session{
		ID:        uuid.NewString(),
		Engine:    eng,
		CreatedAt: time.Now().UTC(),
	}
	if sol, err := solver.New(rules); err == nil {
		sess.Solver = sol
		sess.Entropies = []float64{sol.Entropy()}
	} else if errors.Is(err, solver.ErrSpaceTooLarge) {
		log.Debug().Int("length", rules.Length).Str("alphabet", rules.Alphabet).Msg("hints disabled: rule space too large")
	}

	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	_ = json.NewEncoder(w).Encode(newGameRes{
		GameID:         sess.ID,
		Length:         rules.Length,
		MaxAttempts:    maxAttempts,
		HintsAvailable: sess.Solver != nil,
	})
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	Bulls     int        `json:"bulls"`
	Cows      int        `json:"cows"`
	State     game.State `json:"state"`
	Attempt   int        `json:"attempt"`
	Entropy   *float64   `json:"entropy,omitempty"`
	InfoGain  *float64   `json:"infoGain,omitempty"`
	Remaining *int       `json:"remaining,omitempty"`
}

// handleGuess applies a guess to a session and feeds the hint solver.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	fb, err := sess.Engine.SubmitGuess(req.Guess)
	if err != nil {
		writeGuessError(w, err)
		return
	}

	res := guessRes{
		Bulls:   fb.Bulls,
		Cows:    fb.Cows,
		State:   sess.Engine.State(),
		Attempt: sess.Engine.Attempts(),
	}
	if sess.Solver != nil {
		observeGuess(sess, fb)
		ent := sess.Solver.Entropy()
		gain := solver.InformationGain(sess.Entropies[len(sess.Entropies)-2], ent)
		remaining := sess.Solver.Remaining()
		res.Entropy, res.InfoGain, res.Remaining = &ent, &gain, &remaining
	}

	if err := s.store.Save(r.Context(), sess); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// observeGuess narrows the session's solver with the latest accepted guess
// and extends the entropy log.
func observeGuess(sess *store.Session, fb game.Feedback) {
	recs := sess.Engine.History()
	last := recs[len(recs)-1]
	sess.Solver.Observe(last.Guess, fb)
	sess.Entropies = append(sess.Entropies, sess.Solver.Entropy())
}

// writeGuessError maps engine errors to status codes:
// invalid guesses are 400 (re-prompt), guesses after the end are 409.
func writeGuessError(w http.ResponseWriter, err error) {
	var invalid *code.InvalidGuessError
	if errors.As(err, &invalid) {
		http.Error(w, `{"error":"invalid_guess","reason":"`+string(invalid.Reason)+`"}`, http.StatusBadRequest)
		return
	}
	var over *game.GameOverError
	if errors.As(err, &over) {
		http.Error(w, `{"error":"game_over","state":"`+string(over.State)+`"}`, http.StatusConflict)
		return
	}
	http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
}

// ------------------------------ READS --------------------------------------

type stateRes struct {
	GameID      string     `json:"gameId"`
	State       game.State `json:"state"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"maxAttempts"`
	Length      int        `json:"length"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(stateRes{
		GameID:      sess.ID,
		State:       sess.Engine.State(),
		Attempts:    sess.Engine.Attempts(),
		MaxAttempts: sess.Engine.MaxAttempts(),
		Length:      sess.Engine.Rules().Length,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}
	_ = json.NewEncoder(w).Encode(sess.Engine.History())
}

// handleReveal returns the secret once the game has ended; 409 before that.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}
	secret, err := sess.Engine.RevealSecret()
	if err != nil {
		http.Error(w, `{"error":"game_in_progress"}`, http.StatusConflict)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"secret": string(secret)})
}

// hintsRes payload for GET /game/{id}/hints.
type hintsRes struct {
	Remaining   int         `json:"remaining"`
	Entropy     float64     `json:"entropy"`
	Suggestions []code.Code `json:"suggestions"`
}

// handleHints samples suggested next guesses from the remaining candidates.
func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.getSession(w, r)
	if !ok {
		return
	}
	if sess.Solver == nil {
		http.Error(w, `{"error":"hints_unavailable"}`, http.StatusNotFound)
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	_ = json.NewEncoder(w).Encode(hintsRes{
		Remaining:   sess.Solver.Remaining(),
		Entropy:     sess.Solver.Entropy(),
		Suggestions: sess.Solver.Suggest(limit, s.rnd),
	})
}

// handleDelete tears a session down (player abandoned or asked for a new game).
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getSession loads the session named in the URL, writing a 404 on miss.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil, false
	}
	return sess, true
}
