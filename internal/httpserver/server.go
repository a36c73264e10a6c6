// internal/httpserver/server.go
//
// HTTP presentation layer for the game.
// Responsibilities:
//   - Router + middleware (request IDs, access log, panic recovery, CORS, timeouts).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints: POST /game/new, POST /game/guess, POST /game/reset, GET /game/state.
//   - Live play over WebSocket (ws.go) and a share QR code (routes_share.go).
//
// Notes:
//   - Every game is addressed by the signed session token handed out by
//     /game/new; the token's subject is the game ID.
//   - All game mutations go through store.Update, which serializes access
//     per game.
//   - The answer is only ever sent once the game is won or lost.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordly/internal/daily"
	"github.com/robalobadob/wordly/internal/game"
	"github.com/robalobadob/wordly/internal/store"
	"github.com/robalobadob/wordly/internal/token"
	"github.com/robalobadob/wordly/internal/words"
)

const sessionCookieName = "wordly_session"

// Options configures a Server.
type Options struct {
	Words        *words.List
	Store        store.Store
	Signer       *token.Signer
	DailyKey     []byte
	ClientOrigin string // CORS origin and allowed websocket origin
	PublicURL    string // base URL encoded into share QR codes
	SecureCookie bool
	Logger       zerolog.Logger
	Now          func() time.Time
}

// Server bundles router, word list, session store and token signer.
type Server struct {
	r      *chi.Mux
	words  *words.List
	store  store.Store
	signer *token.Signer

	dailyKey     []byte
	origin       string
	publicURL    string
	secureCookie bool
	now          func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	s := &Server{
		r:            chi.NewRouter(),
		words:        opts.Words,
		store:        opts.Store,
		signer:       opts.Signer,
		dailyKey:     opts.DailyKey,
		origin:       opts.ClientOrigin,
		publicURL:    opts.PublicURL,
		secureCookie: opts.SecureCookie,
		now:          opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.origin == "" {
		s.origin = "http://localhost:5173"
	}
	if s.publicURL == "" {
		s.publicURL = s.origin
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)            // add X-Request-ID
	s.r.Use(chimw.RealIP)               // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger(opts.Logger)) // per-request logger + access log
	s.r.Use(chimw.Recoverer)            // recover from panics
	s.r.Use(cors(s.origin))             // credentials-friendly CORS

	// Long-lived websocket connections must not sit behind the handler timeout.
	s.r.With(s.requireSession).Get("/game/ws", s.handleWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"service": "wordly",
				"endpoints": []string{
					"/health", "POST /game/new", "POST /game/guess", "POST /game/reset",
					"GET /game/state", "GET /game/ws", "GET /game/qr",
				},
			})
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			a, g := s.words.Stats()
			_ = json.NewEncoder(w).Encode(map[string]int{"answers": a, "allowed": g})
		})

		r.Post("/game/new", s.handleNewGame)
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Post("/game/guess", s.handleGuess)
			r.Post("/game/reset", s.handleReset)
			r.Get("/game/state", s.handleState)
			r.Get("/game/qr", s.handleQR)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// ServeHTTP lets the Server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ------------------------------ targets ------------------------------------

const (
	modeRandom = "random"
	modeDaily  = "daily"
)

var errBadMode = errors.New("bad_mode")

// pickTarget returns a target word for mode ("" means random).
func (s *Server) pickTarget(mode string) (string, string, error) {
	switch mode {
	case "", modeRandom:
		return s.words.Random(), modeRandom, nil
	case modeDaily:
		_, w := daily.Answer(s.now(), s.dailyKey, s.words)
		return w, modeDaily, nil
	}
	return "", "", errBadMode
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Mode string `json:"mode"` // "random" (default) | "daily"
}
type newGameRes struct {
	GameID     string    `json:"gameId"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Mode       string    `json:"mode"`
	Date       string    `json:"date,omitempty"`
	WordLength int       `json:"wordLength"`
	MaxGuesses int       `json:"maxGuesses"`
}

// handleNewGame creates a session, stores it and hands out its token, both in
// the body (API clients) and as a cookie (browsers).
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req) // empty body means defaults

	target, mode, err := s.pickTarget(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, err := game.New(target, s.words)
	if err != nil {
		s.fail(w, r, err, "new session")
		return
	}
	id, err := s.store.Create(r.Context(), sess)
	if err != nil {
		s.fail(w, r, err, "save session")
		return
	}
	tok, exp, err := s.signer.Sign(id)
	if err != nil {
		s.fail(w, r, err, "sign token")
		return
	}
	s.setSessionCookie(w, tok, exp)

	zerolog.Ctx(r.Context()).Info().Str("game_id", id).Str("mode", mode).Msg("game started")

	res := newGameRes{
		GameID:     id,
		Token:      tok,
		ExpiresAt:  exp.UTC(),
		Mode:       mode,
		WordLength: game.WordLength,
		MaxGuesses: game.MaxGuesses,
	}
	if mode == modeDaily {
		res.Date = daily.DateKey(s.now())
	}
	writeJSON(w, http.StatusOK, res)
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	Guess string `json:"guess"`
}
type guessRes struct {
	Guess     string                     `json:"guess"`
	Marks     [game.WordLength]game.Mark `json:"marks"`
	Outcome   game.Outcome               `json:"outcome"` // "playing" | "won" | "lost"
	Keyboard  game.Keyboard              `json:"keyboard"`
	Remaining int                        `json:"remaining"`
	Answer    string                     `json:"answer,omitempty"`
}

// submit applies a guess to the caller's game.
func (s *Server) submit(r *http.Request, id, raw string) (guessRes, error) {
	var out guessRes
	err := s.store.Update(r.Context(), id, func(g *game.Session) error {
		res, err := g.SubmitGuess(raw)
		if err != nil {
			return err
		}
		out = guessRes{
			Guess:     res.Guess.Word,
			Marks:     res.Guess.Marks,
			Outcome:   res.Outcome,
			Keyboard:  res.Keyboard,
			Remaining: res.Remaining,
		}
		if g.Finished() {
			out.Answer = g.Target()
		}
		return nil
	})
	if err == nil && out.Outcome != game.Playing {
		zerolog.Ctx(r.Context()).Info().Str("outcome", string(out.Outcome)).Msg("game finished")
	}
	return out, err
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	res, err := s.submit(r, gameID(r), req.Guess)
	if err != nil {
		s.fail(w, r, err, "guess")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// stateRes is returned by /game/state and /game/reset.
type stateRes struct {
	Guesses    []game.Guess  `json:"guesses"`
	Keyboard   game.Keyboard `json:"keyboard"`
	Outcome    game.Outcome  `json:"outcome"`
	Remaining  int           `json:"remaining"`
	WordLength int           `json:"wordLength"`
	MaxGuesses int           `json:"maxGuesses"`
	Answer     string        `json:"answer,omitempty"`
}

func snapshot(g *game.Session) stateRes {
	st := stateRes{
		Guesses:    g.Guesses(),
		Keyboard:   g.Keyboard(),
		Outcome:    g.Outcome(),
		Remaining:  g.Remaining(),
		WordLength: game.WordLength,
		MaxGuesses: game.MaxGuesses,
	}
	if g.Finished() {
		st.Answer = g.Target()
	}
	return st
}

func (s *Server) state(r *http.Request, id string) (stateRes, error) {
	var out stateRes
	err := s.store.View(r.Context(), id, func(g *game.Session) error {
		out = snapshot(g)
		return nil
	})
	return out, err
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.state(r, gameID(r))
	if err != nil {
		s.fail(w, r, err, "state")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// resetReq is the optional body for /game/reset.
type resetReq struct {
	Mode string `json:"mode"`
}

// reset starts a fresh game under the same ID and token.
func (s *Server) reset(r *http.Request, id, mode string) (stateRes, error) {
	target, _, err := s.pickTarget(mode)
	if err != nil {
		return stateRes{}, err
	}
	var out stateRes
	err = s.store.Update(r.Context(), id, func(g *game.Session) error {
		if err := g.Reset(target); err != nil {
			return err
		}
		out = snapshot(g)
		return nil
	})
	if err == nil {
		zerolog.Ctx(r.Context()).Info().Msg("game reset")
	}
	return out, err
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	st, err := s.reset(r, gameID(r), req.Mode)
	if err != nil {
		s.fail(w, r, err, "reset")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ------------------------------- errors ------------------------------------

// errorStatus maps an error to an HTTP status and wire code.
func errorStatus(err error) (int, string) {
	var ge *game.GuessError
	switch {
	case errors.As(err, &ge):
		if errors.Is(ge, game.ErrSessionFrozen) {
			return http.StatusConflict, ge.Code()
		}
		return http.StatusBadRequest, ge.Code()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, errBadMode):
		return http.StatusBadRequest, errBadMode.Error()
	}
	return http.StatusInternalServerError, "internal_error"
}

// fail writes err as a JSON error, logging anything unexpected.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, op string) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("op", op).Msg("request failed")
	}
	writeError(w, status, code)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// ------------------------------ cookies ------------------------------------

// setSessionCookie writes the session token cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, tok string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.secureCookie {
		sameSite = http.SameSiteNoneMode // required for cross-site use when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: sameSite,
		Expires:  exp,
	})
}
