package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	releaseVersion = "0.1.0"
)

func main() {
	_ = godotenv.Load() // optional .env for local development

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	if err := newCmd(cfg).ExecuteContext(ctx); err != nil {
		stop()
		log.Fatal().Err(err).Msg("wordly exited")
	}
}
