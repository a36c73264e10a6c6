package daily

import (
	"testing"
	"time"

	"github.com/robalobadob/wordly/internal/words"
)

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	ts := time.Date(2026, 3, 2, 5, 0, 0, 0, loc) // 2026-03-01 19:00 UTC
	if got := DateKey(ts); got != "2026-03-01" {
		t.Fatalf("DateKey = %s, want 2026-03-01", got)
	}
}

func TestWordIndex(t *testing.T) {
	key := []byte("test-key")
	day := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	later := day.Add(10 * time.Hour)

	a := WordIndex(day, key, 97)
	if a < 0 || a >= 97 {
		t.Fatalf("index %d out of range", a)
	}
	if b := WordIndex(later, key, 97); b != a {
		t.Fatalf("same day gave %d and %d", a, b)
	}
	if WordIndex(day, key, 0) != 0 {
		t.Fatalf("empty pool should give 0")
	}

	// Different keys should not all agree across a month of days.
	same := 0
	for d := 0; d < 30; d++ {
		ts := day.AddDate(0, 0, d)
		if WordIndex(ts, key, 1000) == WordIndex(ts, []byte("other"), 1000) {
			same++
		}
	}
	if same == 30 {
		t.Fatalf("key has no effect on the index")
	}
}

func TestAnswer(t *testing.T) {
	pool := words.New([]string{"planet", "garden", "mellow"}, nil)
	day := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	date, w := Answer(day, []byte("k"), pool)
	if date != "2026-10-17" || !pool.IsAnswer(w) {
		t.Fatalf("Answer = %s, %s", date, w)
	}
	if _, again := Answer(day, []byte("k"), pool); again != w {
		t.Fatalf("Answer not deterministic: %s vs %s", w, again)
	}
}
