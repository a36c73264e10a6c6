// internal/httpserver/ws.go
//
// Live play over a WebSocket.
// The connection owns the caller's game for its lifetime: messages are read
// and answered one at a time, so there is never more than one mutation in
// flight from a connection (the store still serializes against HTTP calls).
//
// Client → server:
//   {"type":"guess","guess":"planet"}
//   {"type":"reset","mode":"daily"}
//   {"type":"state"}
//
// Server → client:
//   {"type":"state", ...stateRes}   on connect, and in reply to state/reset
//   {"type":"result", ...guessRes}  in reply to guess
//   {"type":"error","error":code}   for rejected messages

package httpserver

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsMaxMessage = 1024
)

type wsIn struct {
	Type  string `json:"type"`
	Guess string `json:"guess,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

type wsResult struct {
	Type string `json:"type"`
	guessRes
}

type wsState struct {
	Type string `json:"type"`
	stateRes
}

type wsError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin accepts non-browser clients (no Origin header), the configured
// client origin, and same-host pages.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == s.origin {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := gameID(r)
	log := zerolog.Ctx(r.Context())

	// Fail before upgrading so the client gets a normal HTTP error.
	st, err := s.state(r, id)
	if err != nil {
		s.fail(w, r, err, "ws state")
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Keepalive pings. WriteControl may run concurrently with WriteJSON.
	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(wsPingPeriod)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return
				}
			}
		}
	}()

	send := func(v any) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(v) == nil
	}

	log.Debug().Msg("websocket connected")
	if !send(wsState{Type: "state", stateRes: st}) {
		return
	}

	for {
		var msg wsIn
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("websocket closed")
			}
			return
		}

		var reply any
		switch msg.Type {
		case "guess":
			res, err := s.submit(r, id, msg.Guess)
			reply = wsReply(r, err, func() any { return wsResult{Type: "result", guessRes: res} })
		case "reset":
			st, err := s.reset(r, id, msg.Mode)
			reply = wsReply(r, err, func() any { return wsState{Type: "state", stateRes: st} })
		case "state":
			st, err := s.state(r, id)
			reply = wsReply(r, err, func() any { return wsState{Type: "state", stateRes: st} })
		default:
			reply = wsError{Type: "error", Error: "unknown_type"}
		}
		if !send(reply) {
			return
		}
	}
}

// wsReply turns an operation's error into an error frame, or builds the
// success frame with ok.
func wsReply(r *http.Request, err error, ok func() any) any {
	if err == nil {
		return ok()
	}
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("websocket op failed")
	}
	return wsError{Type: "error", Error: code}
}
