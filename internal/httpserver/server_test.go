package httpserver

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordly/internal/store"
	"github.com/robalobadob/wordly/internal/token"
	"github.com/robalobadob/wordly/internal/words"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := store.NewMemoryStore()
	t.Cleanup(func() { _ = st.Close() })
	return New(Options{
		Words:     words.New([]string{"planet"}, []string{"placer", "garden", "mellow", "spells", "orange"}),
		Store:     st,
		Signer:    token.NewSigner([]byte("test-key"), time.Hour),
		DailyKey:  []byte("daily-key"),
		PublicURL: "http://play.example/",
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
}

// do sends a request with an optional JSON body and bearer token.
func do(t *testing.T, s *Server, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func newGame(t *testing.T, s *Server, mode string) newGameRes {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/game/new", "", map[string]string{"mode": mode})
	if rec.Code != http.StatusOK {
		t.Fatalf("new game status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decode[newGameRes](t, rec)
}

type errorBody struct {
	Error string `json:"error"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestDebugWords(t *testing.T) {
	s := newTestServer(t)
	got := decode[map[string]int](t, do(t, s, http.MethodGet, "/debug/words", "", nil))
	if got["answers"] != 1 || got["allowed"] != 6 {
		t.Fatalf("stats = %v", got)
	}
}

func TestNewGame(t *testing.T) {
	s := newTestServer(t)

	g := newGame(t, s, "")
	if g.GameID == "" || g.Token == "" || g.Mode != modeRandom {
		t.Fatalf("new game = %+v", g)
	}
	if g.WordLength != 6 || g.MaxGuesses != 5 {
		t.Fatalf("limits = %d/%d", g.WordLength, g.MaxGuesses)
	}

	d := newGame(t, s, "daily")
	if d.Mode != modeDaily || d.Date != "2024-03-01" {
		t.Fatalf("daily game = %+v", d)
	}

	rec := do(t, s, http.MethodPost, "/game/new", "", map[string]string{"mode": "weekly"})
	if rec.Code != http.StatusBadRequest || decode[errorBody](t, rec).Error != "bad_mode" {
		t.Fatalf("bad mode = %d %s", rec.Code, rec.Body.String())
	}
}

func TestNewGameSetsCookie(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/game/new", "", nil)
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatalf("session cookie missing or not HttpOnly: %+v", cookie)
	}

	// The cookie alone authenticates follow-up calls.
	req := httptest.NewRequest(http.MethodGet, "/game/state", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("state via cookie = %d %s", rr.Code, rr.Body.String())
	}
}

func TestGuess(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "")

	rec := do(t, s, http.MethodPost, "/game/guess", g.Token, guessReq{Guess: " PLACER "})
	if rec.Code != http.StatusOK {
		t.Fatalf("guess status = %d %s", rec.Code, rec.Body.String())
	}
	res := decode[struct {
		Guess     string            `json:"guess"`
		Marks     []string          `json:"marks"`
		Outcome   string            `json:"outcome"`
		Keyboard  map[string]string `json:"keyboard"`
		Remaining int               `json:"remaining"`
		Answer    string            `json:"answer"`
	}](t, rec)

	want := []string{"correct", "correct", "correct", "absent", "correct", "absent"}
	if res.Guess != "placer" || strings.Join(res.Marks, ",") != strings.Join(want, ",") {
		t.Fatalf("guess = %s %v", res.Guess, res.Marks)
	}
	if res.Outcome != "playing" || res.Remaining != 4 || res.Answer != "" {
		t.Fatalf("outcome=%s remaining=%d answer=%q", res.Outcome, res.Remaining, res.Answer)
	}
	if res.Keyboard["p"] != "correct" || res.Keyboard["c"] != "absent" || res.Keyboard["z"] != "unused" {
		t.Fatalf("keyboard = %v", res.Keyboard)
	}
}

func TestGuessRejected(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "")

	cases := []struct {
		name  string
		guess string
		code  string
	}{
		{"short", "plan", "invalid_length"},
		{"long", "planets", "invalid_length"},
		{"digits", "plan3t", "invalid_characters"},
		{"unknown", "zzzzzz", "not_in_dictionary"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/game/guess", g.Token, guessReq{Guess: tc.guess})
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decode[errorBody](t, rec).Error; got != tc.code {
				t.Fatalf("code = %q, want %q", got, tc.code)
			}
		})
	}

	st := decode[stateRes](t, do(t, s, http.MethodGet, "/game/state", g.Token, nil))
	if len(st.Guesses) != 0 || st.Remaining != 5 {
		t.Fatalf("rejected guesses were counted: %+v", st)
	}

	rec := do(t, s, http.MethodPost, "/game/guess", g.Token, strings.Repeat("x", 3))
	if rec.Code != http.StatusBadRequest || decode[errorBody](t, rec).Error != "bad_json" {
		t.Fatalf("bad json = %d %s", rec.Code, rec.Body.String())
	}
}

func TestLoseFreezeReset(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "")

	var last guessRes
	for _, w := range []string{"placer", "garden", "mellow", "spells", "orange"} {
		rec := do(t, s, http.MethodPost, "/game/guess", g.Token, guessReq{Guess: w})
		if rec.Code != http.StatusOK {
			t.Fatalf("guess %s = %d %s", w, rec.Code, rec.Body.String())
		}
		last = decode[guessRes](t, rec)
	}
	if last.Outcome != "lost" || last.Answer != "planet" || last.Remaining != 0 {
		t.Fatalf("last guess = %+v", last)
	}

	rec := do(t, s, http.MethodPost, "/game/guess", g.Token, guessReq{Guess: "planet"})
	if rec.Code != http.StatusConflict || decode[errorBody](t, rec).Error != "session_frozen" {
		t.Fatalf("frozen = %d %s", rec.Code, rec.Body.String())
	}

	st := decode[stateRes](t, do(t, s, http.MethodGet, "/game/state", g.Token, nil))
	if st.Outcome != "lost" || st.Answer != "planet" || len(st.Guesses) != 5 {
		t.Fatalf("state = %+v", st)
	}

	rec = do(t, s, http.MethodPost, "/game/reset", g.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset = %d %s", rec.Code, rec.Body.String())
	}
	st = decode[stateRes](t, rec)
	if st.Outcome != "playing" || st.Answer != "" || len(st.Guesses) != 0 || st.Remaining != 5 {
		t.Fatalf("after reset = %+v", st)
	}

	rec = do(t, s, http.MethodPost, "/game/reset", g.Token, resetReq{Mode: "hourly"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("reset bad mode = %d", rec.Code)
	}
}

func TestWin(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "daily")

	res := decode[guessRes](t, do(t, s, http.MethodPost, "/game/guess", g.Token, guessReq{Guess: "planet"}))
	if res.Outcome != "won" || res.Answer != "planet" || res.Remaining != 0 {
		t.Fatalf("win = %+v", res)
	}
}

func TestRequireSession(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/game/state", "", nil)
	if rec.Code != http.StatusUnauthorized || decode[errorBody](t, rec).Error != "unauthorized" {
		t.Fatalf("no token = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/game/state", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized || decode[errorBody](t, rec).Error != "invalid_token" {
		t.Fatalf("bad token = %d %s", rec.Code, rec.Body.String())
	}

	// A validly signed token for a game the store does not know.
	other := token.NewSigner([]byte("test-key"), time.Hour)
	tok, _, err := other.Sign("deadbeef")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	rec = do(t, s, http.MethodGet, "/game/state", tok, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown game = %d %s", rec.Code, rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodOptions, "/game/guess", "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("missing credentials header")
	}
}

func TestNotFoundJSON(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/nope", "", nil)
	if rec.Code != http.StatusNotFound || decode[errorBody](t, rec).Error != "not_found" {
		t.Fatalf("404 = %d %s", rec.Code, rec.Body.String())
	}
}

func TestQR(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "")

	rec := do(t, s, http.MethodGet, "/game/qr?size=256", g.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("qr = %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 256 {
		t.Fatalf("width = %d, want 256", b.Dx())
	}

	rec = do(t, s, http.MethodGet, "/game/qr?size=9000", g.Token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized qr = %d", rec.Code)
	}
}

func TestShareURL(t *testing.T) {
	s := newTestServer(t)
	got, err := s.shareURL("abc.def")
	if err != nil {
		t.Fatalf("shareURL: %v", err)
	}
	if got != "http://play.example/?token=abc.def" {
		t.Fatalf("shareURL = %q", got)
	}
}
