package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunJanitor prunes sessions idle for longer than maxAge every interval until
// ctx is done.
func RunJanitor(ctx context.Context, st Store, interval, maxAge time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := st.Prune(ctx, now.Add(-maxAge))
			if err != nil {
				log.Warn().Err(err).Msg("prune sessions")
				continue
			}
			if n > 0 {
				log.Info().Int64("pruned", n).Msg("pruned idle sessions")
			}
		}
	}
}
