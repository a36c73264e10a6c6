// Package daily picks the same target word for every player on a given day.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// Pool is the answer source a daily word is drawn from.
type Pool interface {
	Stats() (answers int, allowed int)
	At(i int) string
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(key, YYYY-MM-DD) % n.
func WordIndex(date time.Time, key []byte, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, key)
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Answer returns the date key and the day's word from pool.
func Answer(date time.Time, key []byte, pool Pool) (string, string) {
	n, _ := pool.Stats()
	return DateKey(date), pool.At(WordIndex(date, key, n))
}
