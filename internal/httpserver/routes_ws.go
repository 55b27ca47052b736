// internal/httpserver/routes_ws.go
//
// Live play channel over WebSocket, mirroring the chat-style loop of the web
// client: the player sends guesses, the server answers with feedback and
// hint metrics, and pushes the final state (secret included) when the game
// ends.
//
// Protocol: JSON envelopes {"type": "...", "payload": {...}}.
//   client → server: "guess" {guess}
//   server → client: "state"    {gameId,state,attempts,maxAttempts,length,secret?}
//                    "feedback" {bulls,cows,state,attempt,entropy?,infoGain?,remaining?,suggestions?}
//                    "error"    {code,message}
//
// One connection drives one session; reads and replies are sequential, so no
// write locking is needed.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/cowculator/cowculator/internal/code"
	"github.com/cowculator/cowculator/internal/game"
	"github.com/cowculator/cowculator/internal/solver"
	"github.com/cowculator/cowculator/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is handled by the CORS middleware on the HTTP side.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsIn is a client→server envelope.
type wsIn struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// wsOut is a server→client envelope.
type wsOut struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type wsGuess struct {
	Guess string `json:"guess"`
}

type wsState struct {
	GameID      string     `json:"gameId"`
	State       game.State `json:"state"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"maxAttempts"`
	Length      int        `json:"length"`
	Secret      string     `json:"secret,omitempty"` // revealed only after the game ends
}

type wsFeedback struct {
	guessRes
	Suggestions []code.Code `json:"suggestions,omitempty"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleWS upgrades the connection and runs the guess/feedback loop until
// the client disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws upgrade")
		return
	}
	defer conn.Close()

	_ = conn.WriteJSON(wsOut{Type: "state", Payload: s.wsStateFor(sess)})

	for {
		var env wsIn
		if err := conn.ReadJSON(&env); err != nil {
			return // client gone or bad frame
		}
		switch env.Type {
		case "guess":
			var p wsGuess
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				_ = conn.WriteJSON(wsOut{Type: "error", Payload: wsError{Code: "bad_payload", Message: "guess payload must be {\"guess\":\"...\"}"}})
				continue
			}
			s.wsApplyGuess(conn, sess, p.Guess)
		default:
			_ = conn.WriteJSON(wsOut{Type: "error", Payload: wsError{Code: "unknown_type", Message: "unsupported envelope type " + env.Type}})
		}
	}
}

// wsApplyGuess scores one guess and writes feedback (and, on a terminal
// transition, the final state) back over the connection.
func (s *Server) wsApplyGuess(conn *websocket.Conn, sess *store.Session, raw string) {
	fb, err := sess.Engine.SubmitGuess(raw)
	if err != nil {
		_ = conn.WriteJSON(wsOut{Type: "error", Payload: wsGuessError(err)})
		return
	}

	out := wsFeedback{guessRes: guessRes{
		Bulls:   fb.Bulls,
		Cows:    fb.Cows,
		State:   sess.Engine.State(),
		Attempt: sess.Engine.Attempts(),
	}}
	if sess.Solver != nil {
		observeGuess(sess, fb)
		ent := sess.Solver.Entropy()
		gain := solver.InformationGain(sess.Entropies[len(sess.Entropies)-2], ent)
		remaining := sess.Solver.Remaining()
		out.Entropy, out.InfoGain, out.Remaining = &ent, &gain, &remaining
		if !sess.Engine.State().Terminal() {
			out.Suggestions = sess.Solver.Suggest(10, s.rnd)
		}
	}
	_ = conn.WriteJSON(wsOut{Type: "feedback", Payload: out})

	if sess.Engine.State().Terminal() {
		_ = conn.WriteJSON(wsOut{Type: "state", Payload: s.wsStateFor(sess)})
	}

	// The request context is bounded by the HTTP timeout middleware; the
	// connection outlives it.
	_ = s.store.Save(context.Background(), sess)
}

// wsStateFor builds the state payload, revealing the secret once terminal.
func (s *Server) wsStateFor(sess *store.Session) wsState {
	st := wsState{
		GameID:      sess.ID,
		State:       sess.Engine.State(),
		Attempts:    sess.Engine.Attempts(),
		MaxAttempts: sess.Engine.MaxAttempts(),
		Length:      sess.Engine.Rules().Length,
	}
	if secret, err := sess.Engine.RevealSecret(); err == nil {
		st.Secret = string(secret)
	}
	return st
}

// wsGuessError mirrors writeGuessError for the envelope protocol.
func wsGuessError(err error) wsError {
	var invalid *code.InvalidGuessError
	if errors.As(err, &invalid) {
		return wsError{Code: "invalid_guess", Message: string(invalid.Reason)}
	}
	var over *game.GameOverError
	if errors.As(err, &over) {
		return wsError{Code: "game_over", Message: string(over.State)}
	}
	return wsError{Code: "guess_failed", Message: err.Error()}
}
