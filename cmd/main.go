package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hitline/internal/services"
	"github.com/desertthunder/hitline/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	config := loadConfig(logger, configPath())
	config.ApplyEnv()
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Logging.Level))

	opts := buildServices(config, logger)
	opts.Config = config
	opts.Logger = logger
	opts.Interactive = term.IsTerminal(int(os.Stdout.Fd()))
	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "hitline",
		Usage:    "Generate music-quiz playlists with a language model and check them against Spotify",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("interrupted")
			os.Exit(130)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// configPath is HITLINE_CONFIG when set, else config.toml in the working directory.
func configPath() string {
	if p := os.Getenv("HITLINE_CONFIG"); p != "" {
		return p
	}
	return "config.toml"
}

// loadConfig reads path when it exists, falling back to the defaults on any error.
func loadConfig(logger *log.Logger, path string) *shared.Config {
	if _, err := os.Stat(path); err != nil {
		return shared.DefaultConfig()
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		logger.Warn("failed to load config, using defaults", "path", path, "error", err)
		return shared.DefaultConfig()
	}
	return config
}

// buildServices creates every client whose credentials are present.
//
// Missing or placeholder credentials leave the service nil; commands that need it fail with [shared.ErrServiceUnavailable].
func buildServices(config *shared.Config, logger *log.Logger) RunnerOpts {
	var opts RunnerOpts
	creds := config.Credentials

	if isSet(creds.Anthropic.APIKey) {
		claude, err := services.NewClaudeService(services.ClaudeOptions{
			APIKey:            creds.Anthropic.APIKey,
			BaseURL:           creds.Anthropic.BaseURL,
			Model:             config.Generation.Model,
			PlaylistMaxTokens: config.Generation.PlaylistMaxTokens,
			BatchMaxTokens:    config.Generation.BatchMaxTokens,
		})
		if err != nil {
			logger.Warn("generation service unavailable", "error", err)
		} else {
			opts.Generator = claude
			opts.Hints = claude
		}
	}

	if isSet(creds.Spotify.ClientID) && isSet(creds.Spotify.ClientSecret) {
		spotify, err := services.NewSpotifyService(services.SpotifyOptions{
			ClientID:     creds.Spotify.ClientID,
			ClientSecret: creds.Spotify.ClientSecret,
			Market:       creds.Spotify.Market,
			RPS:          config.Generation.CatalogRPS,
		})
		if err != nil {
			logger.Warn("catalog service unavailable", "error", err)
		} else {
			opts.Catalog = spotify
		}
	}

	if isSet(creds.LastFM.APIKey) {
		lastfm, err := services.NewLastFMService(creds.LastFM.APIKey, "", nil)
		if err != nil {
			logger.Warn("similar-artist service unavailable", "error", err)
		} else {
			opts.Similar = lastfm
		}
	}

	return opts
}

// isSet reports whether a credential holds a real value rather than a template placeholder.
func isSet(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.HasPrefix(v, "your_")
}
