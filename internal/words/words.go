// internal/words/words.go
//
// Word list management for the game.
//
// Responsibilities:
//   - Load answer and allowed guess lists from files or fall back to embedded defaults.
//   - Provide dictionary lookups (answers ∪ allowed) for game.Session.
//   - Pick random answers.
//
// Word Lists:
//   - "answers": the pool targets are drawn from (exactly 6 lowercase letters).
//   - "allowed": valid guesses (always includes answers).
//
// Load behavior:
//  1. If both paths are set, answers come from the first and extra guesses from the second.
//  2. If only the allowed path is set, that file serves as both lists.
//  3. If only the answers path is set, the embedded allowed list adds extra guesses.
//  4. Otherwise the embedded default_answers.txt / default_allowed.txt are used.
//
// Constraints:
//   - Lines are trimmed and lowercased; blanks and "#" comments are skipped.
//   - Anything that is not 6 letters a–z is dropped.
package words

import (
	"bufio"
	"crypto/rand"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/robalobadob/wordly/internal/game"
)

//go:embed default_answers.txt
var embeddedAnswers string

//go:embed default_allowed.txt
var embeddedAllowed string

// ErrEmpty is returned when a load produces no answers.
var ErrEmpty = errors.New("words: answers list is empty")

// List is an immutable pair of answer pool and guess dictionary.
// It is safe for concurrent use.
type List struct {
	answers []string
	allowed map[string]struct{}
}

// New builds a List from in-memory words, applying the same filtering as Load.
// Every answer is added to the allowed set.
func New(answers, allowed []string) *List {
	l := &List{allowed: make(map[string]struct{}, len(answers)+len(allowed))}
	for _, w := range answers {
		w = clean(w)
		if !game.IsWord(w) {
			continue
		}
		if _, dup := l.allowed[w]; dup {
			continue
		}
		l.answers = append(l.answers, w)
		l.allowed[w] = struct{}{}
	}
	for _, w := range allowed {
		if w = clean(w); game.IsWord(w) {
			l.allowed[w] = struct{}{}
		}
	}
	return l
}

// Default returns the embedded word lists.
func Default() *List {
	return New(splitLines(embeddedAnswers), splitLines(embeddedAllowed))
}

// Load reads word lists from disk, see the package comment for the rules.
func Load(answersPath, allowedPath string) (*List, error) {
	var l *List
	switch {
	case answersPath != "" && allowedPath != "":
		ans, err := readWordFile(answersPath)
		if err != nil {
			return nil, err
		}
		all, err := readWordFile(allowedPath)
		if err != nil {
			return nil, err
		}
		l = New(ans, all)

	case answersPath == "" && allowedPath != "":
		all, err := readWordFile(allowedPath)
		if err != nil {
			return nil, err
		}
		l = New(all, nil)

	case answersPath != "":
		ans, err := readWordFile(answersPath)
		if err != nil {
			return nil, err
		}
		l = New(ans, splitLines(embeddedAllowed))

	default:
		l = Default()
	}

	if len(l.answers) == 0 {
		return nil, ErrEmpty
	}
	return l, nil
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("words: open %s: %w", path, err)
	}
	defer f.Close()

	out, err := readLines(f)
	if err != nil {
		return nil, fmt.Errorf("words: read %s: %w", path, err)
	}
	return out, nil
}

func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if s := clean(sc.Text()); s != "" && !strings.HasPrefix(s, "#") {
			out = append(out, s)
		}
	}
	return out, sc.Err()
}

func splitLines(s string) []string {
	out, _ := readLines(strings.NewReader(s))
	return out
}

func clean(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

// Contains reports whether w is a valid guess (answers ∪ allowed).
// w is expected to be normalized already.
func (l *List) Contains(w string) bool {
	_, ok := l.allowed[w]
	return ok
}

// IsAnswer reports whether w is in the answer pool.
func (l *List) IsAnswer(w string) bool {
	for _, a := range l.answers {
		if a == w {
			return true
		}
	}
	return false
}

// Answers returns a copy of the answer pool in load order.
func (l *List) Answers() []string {
	out := make([]string, len(l.answers))
	copy(out, l.answers)
	return out
}

// At returns the i-th answer, wrapping around the pool.
func (l *List) At(i int) string {
	if len(l.answers) == 0 {
		return ""
	}
	i %= len(l.answers)
	if i < 0 {
		i += len(l.answers)
	}
	return l.answers[i]
}

// Random returns a uniformly chosen answer using crypto/rand.
func (l *List) Random() string {
	if len(l.answers) == 0 {
		return ""
	}
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.answers))))
	if err != nil {
		return l.answers[0]
	}
	return l.answers[nBig.Int64()]
}

// Stats returns counts of loaded words: (answers, allowed).
func (l *List) Stats() (answersCount int, allowedCount int) {
	return len(l.answers), len(l.allowed)
}
