package game

import "errors"

var (
	ErrInvalidLength     = errors.New("guess must be exactly 6 letters")
	ErrInvalidCharacters = errors.New("guess must contain only letters a-z")
	ErrNotInDictionary   = errors.New("not in word list")
	ErrSessionFrozen     = errors.New("game finished")
	ErrInvalidTarget     = errors.New("target must be 6 letters a-z")
)

// GuessError is returned by SubmitGuess. It wraps one of the sentinel
// errors above, so callers match with errors.Is.
type GuessError struct {
	Guess string // normalized guess, empty for ErrSessionFrozen
	Err   error
}

func (e *GuessError) Error() string {
	if e.Guess == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Guess
}

func (e *GuessError) Unwrap() error { return e.Err }

// Code is a stable machine-readable identifier for the error kind.
func (e *GuessError) Code() string {
	switch {
	case errors.Is(e.Err, ErrInvalidLength):
		return "invalid_length"
	case errors.Is(e.Err, ErrInvalidCharacters):
		return "invalid_characters"
	case errors.Is(e.Err, ErrNotInDictionary):
		return "not_in_dictionary"
	case errors.Is(e.Err, ErrSessionFrozen):
		return "session_frozen"
	}
	return "invalid_guess"
}
