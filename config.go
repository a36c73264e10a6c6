package main

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	// shared
	allowedFile string
	answersFile string
	logFormat   string
	logLevel    string
	secret      string

	// serve
	bind         string
	clientOrigin string
	db           string
	idleTimeout  time.Duration
	port         int
	publicURL    string
	secureCookie bool
	store        string
	tokenTTL     time.Duration

	// play
	daily   bool
	noColor bool
}

func (c *Config) validate() error {
	if _, err := zerolog.ParseLevel(c.logLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.logLevel)
	}
	switch c.logFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format (must be console or json): %q", c.logFormat)
	}
	return nil
}

// validateServe checks the settings only serve reads.
func (c *Config) validateServe() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	switch c.store {
	case "memory":
	case "sqlite":
		if c.secret == "" {
			return errors.New("--secret is required with --store=sqlite, or stored games become unreachable after a restart")
		}
		if c.db == "" {
			return errors.New("--db must not be empty with --store=sqlite")
		}
	default:
		return fmt.Errorf("invalid store (must be memory or sqlite): %q", c.store)
	}
	if c.tokenTTL <= 0 {
		return fmt.Errorf("invalid token ttl: %s", c.tokenTTL)
	}
	if c.idleTimeout <= 0 {
		return fmt.Errorf("invalid idle timeout: %s", c.idleTimeout)
	}
	return nil
}

func (c *Config) listenAddr() string {
	return net.JoinHostPort(c.bind, strconv.Itoa(c.port))
}

// bindEnv lets WORDLY_* environment variables stand in for any flag in fs
// that was not given on the command line.
func bindEnv(v *viper.Viper, fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("WORDLY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "wordly",
		Short:         "A six-letter word guessing game, playable over HTTP or in the terminal.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			setupLogging(cfg, cmd.ErrOrStderr())
			return nil
		},
	}

	pfs := cmd.PersistentFlags()
	pfs.StringVar(&cfg.allowedFile, "allowed-file", "", "path to a list of accepted guesses (env: WORDLY_ALLOWED_FILE)")
	pfs.StringVar(&cfg.answersFile, "answers-file", "", "path to a list of target words (env: WORDLY_ANSWERS_FILE)")
	pfs.StringVar(&cfg.logFormat, "log-format", "console", "log output format, console or json (env: WORDLY_LOG_FORMAT)")
	pfs.StringVar(&cfg.logLevel, "log-level", "info", "minimum log level (env: WORDLY_LOG_LEVEL)")
	pfs.StringVar(&cfg.secret, "secret", "", "server secret for session tokens and the daily word (env: WORDLY_SECRET)")
	bindEnv(v, pfs)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the game over HTTP and WebSocket.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validateServe(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	sfs := serve.Flags()
	sfs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: WORDLY_BIND)")
	sfs.StringVar(&cfg.clientOrigin, "client-origin", "http://localhost:5173", "origin allowed for CORS and websockets (env: WORDLY_CLIENT_ORIGIN)")
	sfs.StringVar(&cfg.db, "db", "./data/wordly.db", "sqlite database path (env: WORDLY_DB)")
	sfs.DurationVar(&cfg.idleTimeout, "idle-timeout", 24*time.Hour, "time before idle games are discarded (env: WORDLY_IDLE_TIMEOUT)")
	sfs.IntVarP(&cfg.port, "port", "p", 5175, "port to listen on (env: WORDLY_PORT)")
	sfs.StringVar(&cfg.publicURL, "public-url", "", "base URL encoded into share QR codes, defaults to the client origin (env: WORDLY_PUBLIC_URL)")
	sfs.BoolVar(&cfg.secureCookie, "secure-cookie", false, "mark the session cookie Secure and SameSite=None (env: WORDLY_SECURE_COOKIE)")
	sfs.StringVar(&cfg.store, "store", "memory", "session store, memory or sqlite (env: WORDLY_STORE)")
	sfs.DurationVar(&cfg.tokenTTL, "token-ttl", 7*24*time.Hour, "lifetime of session tokens (env: WORDLY_TOKEN_TTL)")
	bindEnv(v, sfs)

	play := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	plfs := play.Flags()
	plfs.BoolVar(&cfg.daily, "daily", false, "play the word of the day (env: WORDLY_DAILY)")
	plfs.BoolVar(&cfg.noColor, "no-color", false, "disable colored tiles (env: WORDLY_NO_COLOR)")
	bindEnv(v, plfs)

	cmd.AddCommand(serve, play)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("wordly v{{.Version}}\n")

	return cmd
}
