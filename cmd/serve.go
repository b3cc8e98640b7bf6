package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/hitline/internal/server"
	"github.com/desertthunder/hitline/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until ctx is cancelled.
//
// History is enabled when the database can be opened; otherwise the server runs without it.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	logger := shared.WithLogger(r.logger, "component", "server")
	metrics := server.NewMetrics()
	opts := server.APIOpts{
		Engine:          r.engine,
		Similar:         r.similar,
		Metrics:         metrics,
		MinSongs:        r.config.Generation.MinSongs,
		MaxPromptLength: r.config.Generation.MaxPromptLength,
		Logger:          logger,
	}
	if !cmd.Bool("no-history") {
		store, closeStore, err := r.openStore()
		if err != nil {
			logger.Warn("history disabled", "error", err)
		} else {
			defer closeStore()
			opts.Store = store
		}
	}

	srv := server.NewServer(server.ServerOpts{
		Addr:           cfg.Addr(),
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
		Metrics:        metrics,
	}, server.NewPlaylistHandler(opts))

	logger.Info("starting server", "addr", cfg.Addr(), "history", opts.Store != nil)
	if err := server.ListenAndServe(ctx, srv, logger); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
