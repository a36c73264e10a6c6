package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/robalobadob/wordly/internal/game"
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[1;37;42m"
	ansiYellow = "\x1b[1;37;43m"
	ansiGray   = "\x1b[1;37;100m"
	ansiEmpty  = "\x1b[2m"
)

// tile renders one letter with its key status.
// Without color, correct letters are bracketed, present letters are
// parenthesised and absent letters are shown lowercase.
func tile(c byte, st game.KeyStatus, color bool) string {
	up := strings.ToUpper(string(c))
	if color {
		switch st {
		case game.KeyCorrect:
			return ansiGreen + " " + up + " " + ansiReset
		case game.KeyPresent:
			return ansiYellow + " " + up + " " + ansiReset
		case game.KeyAbsent:
			return ansiGray + " " + up + " " + ansiReset
		}
		return " " + up + " "
	}
	switch st {
	case game.KeyCorrect:
		return "[" + up + "]"
	case game.KeyPresent:
		return "(" + up + ")"
	case game.KeyAbsent:
		return " " + string(c) + " "
	}
	return " " + up + " "
}

func emptyTile(color bool) string {
	if color {
		return ansiEmpty + " _ " + ansiReset
	}
	return " _ "
}

// renderBoard writes every row of the board, padding unused rows with
// empty tiles, followed by the keyboard and the remaining count.
func renderBoard(w io.Writer, s *game.Session, color bool) {
	guesses := s.Guesses()
	var b strings.Builder
	b.WriteByte('\n')
	for row := 0; row < game.MaxGuesses; row++ {
		b.WriteString("  ")
		for i := 0; i < game.WordLength; i++ {
			if row < len(guesses) {
				g := guesses[row]
				b.WriteString(tile(g.Word[i], g.Marks[i].Status(), color))
			} else {
				b.WriteString(emptyTile(color))
			}
		}
		b.WriteByte('\n')
	}

	b.WriteString("\n  ")
	kb := s.Keyboard()
	for c := byte('a'); c <= 'z'; c++ {
		st := kb.Status(c)
		switch {
		case st == game.KeyUnused:
			b.WriteString(" " + string(c) + " ")
		case st == game.KeyAbsent && !color:
			b.WriteString(" - ") // ruled out
		default:
			b.WriteString(tile(c, st, color))
		}
	}
	b.WriteByte('\n')
	if !s.Finished() {
		fmt.Fprintf(&b, "\n  %d guess(es) left\n", s.Remaining())
	}
	_, _ = io.WriteString(w, b.String())
}
