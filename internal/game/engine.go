// internal/game/engine.go
//
// Game engine for a single word-guessing session.
// Responsibilities:
//   - Create sessions for a given target word and dictionary.
//   - Validate and apply guesses (frozen check, length, alphabet, dictionary).
//   - Merge each guess into the keyboard, upgrade-only.
//   - Track state transitions: playing → won/lost, and reset back to playing.
//
// Notes:
//   - The engine performs no I/O and holds no package-level state.
//   - A Session is not safe for concurrent use; callers serialize access
//     (see internal/store).
package game

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Session holds the state of one game.
type Session struct {
	target   string
	dict     Dictionary
	guesses  []Guess
	keyboard Keyboard
	outcome  Outcome
}

// New constructs a session for target. The target is normalized the same
// way guesses are; it is not required to be in dict.
func New(target string, dict Dictionary) (*Session, error) {
	t, ok := normalizeTarget(target)
	if !ok {
		return nil, ErrInvalidTarget
	}
	return &Session{
		target:  t,
		dict:    dict,
		guesses: make([]Guess, 0, MaxGuesses),
		outcome: Playing,
	}, nil
}

// Restore rebuilds a session by replaying previously accepted guesses.
// Guesses are shape-checked but not looked up in dict, so a saved game
// survives a word list that no longer contains one of its guesses.
func Restore(target string, words []string, dict Dictionary) (*Session, error) {
	s, err := New(target, dict)
	if err != nil {
		return nil, err
	}
	for _, w := range words {
		if s.outcome != Playing {
			return nil, &GuessError{Err: ErrSessionFrozen}
		}
		g, err := normalizeGuess(w)
		if err != nil {
			return nil, err
		}
		s.apply(g)
	}
	return s, nil
}

// SubmitGuess validates raw, scores it against the target and records it.
//
// Validation order:
//   - A finished session rejects everything with ErrSessionFrozen.
//   - The guess is trimmed and lowercased, then must be WordLength characters,
//     all a–z, and present in the dictionary.
//
// Errors are *GuessError values; the session is untouched when one is returned.
func (s *Session) SubmitGuess(raw string) (Result, error) {
	if s.outcome != Playing {
		return Result{}, &GuessError{Err: ErrSessionFrozen}
	}
	g, err := normalizeGuess(raw)
	if err != nil {
		return Result{}, err
	}
	if s.dict == nil || !s.dict.Contains(g) {
		return Result{}, &GuessError{Guess: g, Err: ErrNotInDictionary}
	}

	guess := s.apply(g)
	return Result{
		Guess:     guess,
		Outcome:   s.outcome,
		Keyboard:  s.keyboard,
		Remaining: s.Remaining(),
	}, nil
}

// apply scores an already validated guess and advances the state machine.
func (s *Session) apply(word string) Guess {
	guess := Guess{Word: word, Marks: Score(word, s.target)}
	s.guesses = append(s.guesses, guess)
	s.keyboard.Record(guess)

	switch {
	case word == s.target:
		s.outcome = Won
	case len(s.guesses) >= MaxGuesses:
		s.outcome = Lost
	}
	return guess
}

// Reset starts a fresh game for target in the same session, from any outcome.
// Only a malformed target is rejected, in which case nothing changes.
func (s *Session) Reset(target string) error {
	t, ok := normalizeTarget(target)
	if !ok {
		return ErrInvalidTarget
	}
	s.target = t
	s.guesses = make([]Guess, 0, MaxGuesses)
	s.keyboard = Keyboard{}
	s.outcome = Playing
	return nil
}

// Target returns the secret word. Presentation layers should only reveal it
// once Finished reports true.
func (s *Session) Target() string { return s.target }

// Outcome returns the current state.
func (s *Session) Outcome() Outcome { return s.outcome }

// Finished reports whether the game is won or lost.
func (s *Session) Finished() bool { return s.outcome != Playing }

// Keyboard returns a snapshot of the keyboard.
func (s *Session) Keyboard() Keyboard { return s.keyboard }

// Guesses returns a copy of the guess history, oldest first.
func (s *Session) Guesses() []Guess {
	out := make([]Guess, len(s.guesses))
	copy(out, s.guesses)
	return out
}

// Words returns the guessed words, oldest first.
func (s *Session) Words() []string {
	out := make([]string, len(s.guesses))
	for i, g := range s.guesses {
		out[i] = g.Word
	}
	return out
}

// Remaining returns how many guesses are left.
func (s *Session) Remaining() int {
	if s.outcome != Playing {
		return 0
	}
	return MaxGuesses - len(s.guesses)
}

// normalize trims surrounding whitespace and lowercases.
func normalize(raw string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(raw))
}

// normalizeGuess returns the normalized guess or a *GuessError describing why
// it is malformed. Length is counted in characters, not bytes.
func normalizeGuess(raw string) (string, error) {
	g := normalize(raw)
	if utf8.RuneCountInString(g) != WordLength {
		return "", &GuessError{Guess: g, Err: ErrInvalidLength}
	}
	if !isAlpha(g) {
		return "", &GuessError{Guess: g, Err: ErrInvalidCharacters}
	}
	return g, nil
}

func normalizeTarget(raw string) (string, bool) {
	t := normalize(raw)
	return t, len(t) == WordLength && isAlpha(t)
}

// isAlpha checks that a string consists only of lowercase a–z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// IsWord reports whether w is already a normalized WordLength a–z word.
func IsWord(w string) bool {
	return len(w) == WordLength && isAlpha(w)
}
