// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func playlistFlags(countName string, count int) []cli.Flag {
	return append(outputFlags(),
		&cli.IntFlag{
			Name:    countName,
			Aliases: []string{"n"},
			Usage:   "Number of entries to ask for",
			Value:   count,
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Save the playlist to history",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Export to this path prefix: <prefix>.json, <prefix>.txt, <prefix>_entries.csv + <prefix>_metadata.json, or <prefix>/README.md",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Export format for --output (json, csv, markdown, txt)",
			Value:   "json",
		},
	)
}

// generateCommand handles the playlist flows and the expand and hint extras.
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen", "g"},
		Usage:   "Generate playlists from a prompt",
		Commands: []*cli.Command{
			{
				Name:      "small",
				Usage:     "Generate one themed artist playlist with a single model call",
				ArgsUsage: "<prompt>",
				Flags:     playlistFlags("count", 20),
				Action:    r.GenerateSmall,
			},
			{
				Name:      "large",
				Usage:     "Accumulate a large artist playlist over paced batches",
				ArgsUsage: "<prompt>",
				Flags:     playlistFlags("total", 100),
				Action:    r.GenerateLarge,
			},
			{
				Name:      "mix",
				Usage:     "Generate songs and keep only those found in the catalog",
				ArgsUsage: "<prompt>",
				Flags:     playlistFlags("count", 20),
				Action:    r.GenerateMix,
			},
			{
				Name:  "expand",
				Usage: "Suggest artists that fit an existing list",
				Flags: append(outputFlags(),
					&cli.StringSliceFlag{
						Name:     "artist",
						Aliases:  []string{"a"},
						Usage:    "Existing artist (repeatable)",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of artists to suggest",
						Value:   10,
					},
				),
				Action: r.GenerateExpand,
			},
			{
				Name:  "hints",
				Usage: "Generate quiz hints for a song",
				Flags: append(outputFlags(),
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Song artist",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "track",
						Usage:    "Song title",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "year",
						Usage: "Release year",
					},
				),
				Action: r.GenerateHints,
			},
		},
	}
}

// similarCommand looks up similar artists on Last.fm.
func similarCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "similar",
		Usage:     "List artists similar to the given one (Last.fm)",
		ArgsUsage: "<artist>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the raw Last.fm response",
			},
		},
		Action: r.Similar,
	}
}

// serveCommand runs the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to bind (default from config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (default from config)",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not persist generated playlists",
			},
		},
		Action: r.Serve,
	}
}

// historyCommand manages saved playlists.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"hist"},
		Usage:   "Browse and export saved playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved playlists, newest first",
				Flags: append(outputFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to return",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Only playlists of this type (artists or songs)",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Only playlists from this flow (small, large, mix)",
					},
				),
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a saved playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  outputFlags(),
				Action: r.HistoryShow,
			},
			{
				Name:      "find",
				Usage:     "Fuzzy search saved playlists by name and prompt",
				ArgsUsage: "<query>",
				Flags: append(outputFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of matches",
						Value: 10,
					},
				),
				Action: r.HistoryFind,
			},
			{
				Name:      "export",
				Usage:     "Export saved playlists to files",
				ArgsUsage: "[id...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every saved playlist",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (json, csv, markdown, txt)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent exports",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "covers",
						Usage: "Download album art for markdown exports",
					},
				},
				Action: r.HistoryExport,
			},
			{
				Name:  "delete",
				Usage: "Delete a saved playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.HistoryDelete,
			},
		},
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a configuration file from the built-in template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive generation.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Launch interactive TUI for playlist generation",
		ArgsUsage: "[prompt]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Initial mode (small, large, mix)",
				Value: "small",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Disable saving playlists from the TUI",
			},
		},
		Action: r.TUI,
	}
}
