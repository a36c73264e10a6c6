// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - Mark: per-letter result of a guess (correct/present/absent).
//   - Guess: a scored, immutable guess.
//   - Outcome: coarse session state (playing/won/lost).
//   - Dictionary: the membership check a session validates guesses against.

package game

const (
	// WordLength is the number of letters in every target and guess.
	WordLength = 6

	// MaxGuesses is the number of attempts a player gets before the game is lost.
	MaxGuesses = 5
)

// Mark represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is in the target at this position.
//   - "present": letter is in the target, but at a different position.
//   - "absent":  letter is not in the target (or all its occurrences are used up).
type Mark string

const (
	MarkCorrect Mark = "correct"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// Guess is a submitted word paired with its feedback.
type Guess struct {
	Word  string           `json:"word"`
	Marks [WordLength]Mark `json:"marks"`
}

// Solved reports whether every letter of the guess is correct.
func (g Guess) Solved() bool {
	for _, m := range g.Marks {
		if m != MarkCorrect {
			return false
		}
	}
	return true
}

// Outcome is the state of a session.
type Outcome string

const (
	Playing Outcome = "playing"
	Won     Outcome = "won"
	Lost    Outcome = "lost"
)

// Dictionary reports whether a normalized word is a legal guess.
type Dictionary interface {
	Contains(word string) bool
}

// Result is returned by a successful SubmitGuess.
type Result struct {
	Guess     Guess    `json:"guess"`
	Outcome   Outcome  `json:"outcome"`
	Keyboard  Keyboard `json:"keyboard"`
	Remaining int      `json:"remaining"`
}
