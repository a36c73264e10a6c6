// internal/httpserver/routes_share.go
//
// GET /game/qr returns a PNG QR code that opens the caller's current game on
// another device. The encoded URL is PublicURL with the session token as a
// ?token= query parameter, which bearerOrCookie accepts.

package httpserver

import (
	"net/http"
	"net/url"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	qrDefaultSize = 256
	qrMaxSize     = 1024
)

func (s *Server) shareURL(tok string) (string, error) {
	u, err := url.Parse(s.publicURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", tok)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	size := qrDefaultSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > qrMaxSize {
			writeError(w, http.StatusBadRequest, "bad_size")
			return
		}
		size = n
	}

	// Make sure the game still exists before handing out a link to it.
	if _, err := s.state(r, gameID(r)); err != nil {
		s.fail(w, r, err, "qr state")
		return
	}

	link, err := s.shareURL(bearerOrCookie(r))
	if err != nil {
		s.fail(w, r, err, "qr url")
		return
	}
	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		s.fail(w, r, err, "qr encode")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
