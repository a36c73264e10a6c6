// Package console plays the game in a terminal: one guess per input line,
// the board redrawn after every accepted guess.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/robalobadob/wordly/internal/game"
)

// QuitCommand ends the session at any prompt.
const QuitCommand = ":quit"

// Options configures Play.
type Options struct {
	In    io.Reader
	Out   io.Writer
	Dict  game.Dictionary
	Pick  func() string // target for each new game
	Color bool
}

// Play runs games until the player quits, declines a rematch, input ends or
// ctx is cancelled. Reaching the end of input is not an error.
func Play(ctx context.Context, opts Options) error {
	if opts.Pick == nil {
		return errors.New("console: no word picker")
	}
	sess, err := game.New(opts.Pick(), opts.Dict)
	if err != nil {
		return fmt.Errorf("console: start game: %w", err)
	}

	in := bufio.NewScanner(opts.In)
	out := opts.Out
	fmt.Fprintf(out, "Guess the %d-letter word in %d tries. Type %s to leave.\n",
		game.WordLength, game.MaxGuesses, QuitCommand)
	renderBoard(out, sess, opts.Color)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, "> ")
		line, ok := readLine(in)
		if !ok {
			fmt.Fprintln(out)
			return in.Err()
		}
		if line == QuitCommand {
			return nil
		}

		res, err := sess.SubmitGuess(line)
		if err != nil {
			fmt.Fprintln(out, message(err))
			continue
		}
		renderBoard(out, sess, opts.Color)

		switch res.Outcome {
		case game.Won:
			fmt.Fprintf(out, "Congratulations! You guessed the word: %s\n", strings.ToUpper(sess.Target()))
		case game.Lost:
			fmt.Fprintf(out, "Game over! The word was: %s\n", strings.ToUpper(sess.Target()))
		default:
			continue
		}

		fmt.Fprint(out, "Play again? [y/N] ")
		line, ok = readLine(in)
		if !ok {
			fmt.Fprintln(out)
			return in.Err()
		}
		if !strings.EqualFold(line, "y") && !strings.EqualFold(line, "yes") {
			return nil
		}
		if err := sess.Reset(opts.Pick()); err != nil {
			return fmt.Errorf("console: new game: %w", err)
		}
		renderBoard(out, sess, opts.Color)
	}
}

func readLine(s *bufio.Scanner) (string, bool) {
	if !s.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.Text()), true
}

// message is the player-facing text for a rejected guess.
func message(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidLength):
		return fmt.Sprintf("Please enter a %d-letter word.", game.WordLength)
	case errors.Is(err, game.ErrInvalidCharacters):
		return "Only the letters a-z are allowed."
	case errors.Is(err, game.ErrNotInDictionary):
		return "The word is not in the word list."
	case errors.Is(err, game.ErrSessionFrozen):
		return "The game is over."
	}
	return err.Error()
}
