package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordly/internal/httpserver"
	"github.com/robalobadob/wordly/internal/store"
	"github.com/robalobadob/wordly/internal/token"
	"github.com/robalobadob/wordly/internal/words"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 5 * time.Second

	defaultDailySecret = "wordly"
)

// setupLogging installs the global zerolog logger.
func setupLogging(cfg *Config, w io.Writer) {
	lvl, err := zerolog.ParseLevel(cfg.logLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if cfg.logFormat == "console" {
		cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
		if f, ok := terminal(w); ok {
			cw.Out = colorable.NewColorable(f)
			cw.NoColor = false
		}
		w = cw
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// sessionKey derives the token signing key. Without a secret a random key is
// used, so tokens only live as long as the process.
func sessionKey(secret string) ([]byte, error) {
	if secret == "" {
		log.Warn().Msg("no --secret set, session tokens will not survive a restart")
		k := make([]byte, 32)
		if _, err := rand.Read(k); err != nil {
			return nil, err
		}
		return k, nil
	}
	return token.DeriveKey([]byte(secret), "session")
}

// dailyKey derives the daily word key. Without a secret every install shares
// the same daily sequence.
func dailyKey(secret string) ([]byte, error) {
	if secret == "" {
		secret = defaultDailySecret
	}
	return token.DeriveKey([]byte(secret), "daily")
}

func openStore(cfg *Config, list *words.List) (store.Store, error) {
	if cfg.store == "sqlite" {
		return store.OpenSQLite(cfg.db, list)
	}
	return store.NewMemoryStore(), nil
}

func runServe(ctx context.Context, cfg *Config) error {
	log.Info().Str("version", releaseVersion).Msg("starting wordly")

	list, err := words.Load(cfg.answersFile, cfg.allowedFile)
	if err != nil {
		return fmt.Errorf("load word lists: %w", err)
	}
	answers, allowed := list.Stats()
	log.Info().Int("answers", answers).Int("allowed", allowed).Msg("word lists loaded")

	sessKey, err := sessionKey(cfg.secret)
	if err != nil {
		return fmt.Errorf("session key: %w", err)
	}
	dayKey, err := dailyKey(cfg.secret)
	if err != nil {
		return fmt.Errorf("daily key: %w", err)
	}

	st, err := openStore(cfg, list)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.store, err)
	}
	defer st.Close()

	go store.RunJanitor(ctx, st, janitorInterval, cfg.idleTimeout)

	handler := httpserver.New(httpserver.Options{
		Words:        list,
		Store:        st,
		Signer:       token.NewSigner(sessKey, cfg.tokenTTL),
		DailyKey:     dayKey,
		ClientOrigin: cfg.clientOrigin,
		PublicURL:    cfg.publicURL,
		SecureCookie: cfg.secureCookie,
		Logger:       log.Logger,
	})

	srv := &http.Server{
		Addr:              cfg.listenAddr(),
		Handler:           handler,
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.store).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
