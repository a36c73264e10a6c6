// Package store keeps game sessions between requests and serializes access
// to each one.
package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/robalobadob/wordly/internal/game"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Create saves a new session and returns its ID.
	Create(ctx context.Context, s *game.Session) (string, error)

	// Update runs fn with exclusive access to the session and persists the
	// result when fn returns nil. An error from fn is returned as is.
	Update(ctx context.Context, id string, fn func(*game.Session) error) error

	// View runs fn with exclusive access to the session without persisting.
	View(ctx context.Context, id string, fn func(*game.Session) error) error

	// Prune deletes sessions not updated since before and reports how many.
	Prune(ctx context.Context, before time.Time) (int64, error)

	Close() error
}

// NewID returns a compact 16-hex-char identifier.
func NewID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
