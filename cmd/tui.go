package main

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/hitline/internal/shared"
	"github.com/desertthunder/hitline/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist generation.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.generator == nil {
		return fmt.Errorf("%w: generation service not configured (set ANTHROPIC_API_KEY)", shared.ErrServiceUnavailable)
	}

	mode, err := parseMode(cmd.String("mode"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/hitline-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	opts := ui.ModelOpts{
		Engine:   r.engine,
		MinSongs: r.config.Generation.MinSongs,
		Mode:     mode,
		Prompt:   strings.Join(cmd.Args().Slice(), " "),
	}
	if !cmd.Bool("no-history") {
		store, closeStore, err := r.openStore()
		if err != nil {
			r.logger.Warn("history disabled", "error", err)
		} else {
			defer closeStore()
			opts.Store = store
		}
	}

	p := tea.NewProgram(ui.NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func parseMode(s string) (ui.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "small":
		return ui.ModeSmall, nil
	case "large":
		return ui.ModeLarge, nil
	case "mix":
		return ui.ModeMix, nil
	default:
		return ui.ModeSmall, fmt.Errorf("%w: unknown mode %q (small, large, mix)", shared.ErrInvalidArgument, s)
	}
}
