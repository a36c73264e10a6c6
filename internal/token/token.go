// internal/token/token.go
//
// Signed session tokens.
// A token binds a client (browser cookie, API bearer, websocket query) to the
// game ID it created, so nobody else can submit guesses into that game.
//
// Keys:
//   - DeriveKey expands one server secret into independent per-purpose keys
//     (HKDF-SHA256), e.g. "session" for tokens and "daily" for the daily word.
//
// Tokens are HS256 JWTs: sub = game ID, iss = "wordly", iat/exp set on Sign.
package token

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const issuer = "wordly"

// ErrInvalid is returned for tokens that fail verification for any reason.
var ErrInvalid = errors.New("invalid token")

// DeriveKey returns a 32-byte key for purpose derived from secret.
func DeriveKey(secret []byte, purpose string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: empty secret")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte("wordly/"+purpose)), key); err != nil {
		return nil, fmt.Errorf("token: derive %s key: %w", purpose, err)
	}
	return key, nil
}

// Signer issues and verifies session tokens.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSigner returns a Signer using key; tokens expire after ttl.
func NewSigner(key []byte, ttl time.Duration) *Signer {
	return &Signer{key: key, ttl: ttl, now: time.Now}
}

// Sign returns a token for gameID and its expiry.
func (s *Signer) Sign(gameID string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   gameID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token: sign: %w", err)
	}
	return ss, exp, nil
}

// Verify checks tok and returns the game ID it was issued for.
func (s *Signer) Verify(tok string) (string, error) {
	var claims jwt.RegisteredClaims
	t, err := jwt.ParseWithClaims(tok, &claims,
		func(t *jwt.Token) (interface{}, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !t.Valid || claims.Subject == "" {
		return "", ErrInvalid
	}
	return claims.Subject, nil
}
