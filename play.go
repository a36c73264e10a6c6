package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/robalobadob/wordly/internal/console"
	"github.com/robalobadob/wordly/internal/daily"
	"github.com/robalobadob/wordly/internal/words"
)

// terminal returns w as a file when it is attached to a terminal.
func terminal(w io.Writer) (*os.File, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return nil, false
	}
	return f, isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runPlay(ctx context.Context, cfg *Config, in io.Reader, out io.Writer) error {
	list, err := words.Load(cfg.answersFile, cfg.allowedFile)
	if err != nil {
		return fmt.Errorf("load word lists: %w", err)
	}

	pick := list.Random
	if cfg.daily {
		key, err := dailyKey(cfg.secret)
		if err != nil {
			return fmt.Errorf("daily key: %w", err)
		}
		pick = func() string {
			_, w := daily.Answer(time.Now(), key, list)
			return w
		}
	}

	color := false
	if f, ok := terminal(out); ok && !cfg.noColor {
		out = colorable.NewColorable(f)
		color = true
	}

	return console.Play(ctx, console.Options{
		In:    in,
		Out:   out,
		Dict:  list,
		Pick:  pick,
		Color: color,
	})
}
