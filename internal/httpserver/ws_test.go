package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// frame is the union of every server → client message.
type frame struct {
	Type      string   `json:"type"`
	Error     string   `json:"error"`
	Guess     string   `json:"guess"`
	Marks     []string `json:"marks"`
	Outcome   string   `json:"outcome"`
	Remaining int      `json:"remaining"`
	Answer    string   `json:"answer"`
	Guesses   []struct {
		Word string `json:"word"`
	} `json:"guesses"`
}

func dialGame(t *testing.T, s *Server, tok string, hdr http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/ws"
	if tok != "" {
		u += "?token=" + tok
	}
	return websocket.DefaultDialer.Dial(u, hdr)
}

func roundTrip(t *testing.T, c *websocket.Conn, msg wsIn) frame {
	t.Helper()
	_ = c.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := c.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	return readFrame(t, c)
}

func readFrame(t *testing.T, c *websocket.Conn) frame {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f frame
	if err := c.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestWebSocketPlay(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "")

	c, _, err := dialGame(t, s, g.Token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()

	if f := readFrame(t, c); f.Type != "state" || f.Outcome != "playing" || f.Remaining != 5 {
		t.Fatalf("initial frame = %+v", f)
	}

	f := roundTrip(t, c, wsIn{Type: "guess", Guess: "placer"})
	if f.Type != "result" || f.Guess != "placer" || f.Remaining != 4 {
		t.Fatalf("result frame = %+v", f)
	}

	f = roundTrip(t, c, wsIn{Type: "guess", Guess: "qwerty"})
	if f.Type != "error" || f.Error != "not_in_dictionary" {
		t.Fatalf("error frame = %+v", f)
	}

	f = roundTrip(t, c, wsIn{Type: "dance"})
	if f.Type != "error" || f.Error != "unknown_type" {
		t.Fatalf("unknown frame = %+v", f)
	}

	f = roundTrip(t, c, wsIn{Type: "guess", Guess: "planet"})
	if f.Type != "result" || f.Outcome != "won" || f.Answer != "planet" {
		t.Fatalf("winning frame = %+v", f)
	}

	f = roundTrip(t, c, wsIn{Type: "guess", Guess: "garden"})
	if f.Type != "error" || f.Error != "session_frozen" {
		t.Fatalf("frozen frame = %+v", f)
	}

	f = roundTrip(t, c, wsIn{Type: "reset"})
	if f.Type != "state" || f.Outcome != "playing" || len(f.Guesses) != 0 {
		t.Fatalf("reset frame = %+v", f)
	}

	// Moves made over the socket are visible over HTTP.
	_ = roundTrip(t, c, wsIn{Type: "guess", Guess: "garden"})
	st := decode[stateRes](t, do(t, s, http.MethodGet, "/game/state", g.Token, nil))
	if len(st.Guesses) != 1 || st.Guesses[0].Word != "garden" {
		t.Fatalf("http state = %+v", st)
	}
}

func TestWebSocketRejectsBeforeUpgrade(t *testing.T) {
	s := newTestServer(t)

	_, resp, err := dialGame(t, s, "", nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("dial without token: err=%v resp=%v", err, resp)
	}
}

func TestCheckOrigin(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		origin string
		host   string
		ok     bool
	}{
		{"", "api.example", true},
		{"http://localhost:5173", "api.example", true},
		{"https://api.example", "api.example", true},
		{"https://evil.example", "api.example", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/game/ws", nil)
		r.Host = tc.host
		if tc.origin != "" {
			r.Header.Set("Origin", tc.origin)
		}
		if got := s.checkOrigin(r); got != tc.ok {
			t.Errorf("checkOrigin(%q on %q) = %v, want %v", tc.origin, tc.host, got, tc.ok)
		}
	}
}
