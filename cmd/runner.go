package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/hitline/internal/repositories"
	"github.com/desertthunder/hitline/internal/services"
	"github.com/desertthunder/hitline/internal/shared"
	"github.com/desertthunder/hitline/internal/tasks"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	generator   services.Generator
	catalog     services.Catalog
	hints       services.HintGenerator
	similar     services.SimilarArtists
	logger      *log.Logger
	output      io.Writer
	interactive bool
	engine      *tasks.PlaylistEngine
	green       *color.Color
	yellow      *color.Color
	red         *color.Color
	bold        *color.Color
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	Generator   services.Generator
	Catalog     services.Catalog
	Hints       services.HintGenerator
	Similar     services.SimilarArtists
	Logger      *log.Logger
	Output      io.Writer
	Interactive bool // Output is a terminal: enables spinners and colors
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:      opts.Config,
		generator:   opts.Generator,
		catalog:     opts.Catalog,
		hints:       opts.Hints,
		similar:     opts.Similar,
		output:      opts.Output,
		interactive: opts.Interactive,
		green:       color.New(color.FgGreen),
		yellow:      color.New(color.FgYellow),
		red:         color.New(color.FgRed),
		bold:        color.New(color.Bold),
	}
	if !opts.Interactive {
		for _, c := range []*color.Color{r.green, r.yellow, r.red, r.bold} {
			c.DisableColor()
		}
	}
	r.SetLogger(opts.Logger)
	return r
}

// SetLogger replaces the runner's logger and rebuilds the engine around it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	gen := r.config.Generation
	r.engine = tasks.NewPlaylistEngine(tasks.EngineOpts{
		Generator:     r.generator,
		Catalog:       r.catalog,
		Hints:         r.hints,
		BatchSize:     gen.BatchSize,
		Pacing:        gen.Pacing(),
		Workers:       gen.ValidateWorkers,
		StrictBatches: gen.StrictBatches,
		MaxCount:      gen.MaxTotal,
		Logger:        logger,
	})
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		generateCommand, similarCommand, serveCommand, historyCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openStore opens the history database and brings its schema up to date.
//
// The returned func closes the database.
func (r *Runner) openStore() (*repositories.PlaylistRepository, func() error, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return repositories.NewPlaylistRepository(db), db.Close, nil
}

// withProgress runs action with a progress channel.
//
// On a terminal the action runs behind a spinner and updates go to the debug log;
// otherwise updates are logged at info level on stderr so stdout stays parseable.
func (r *Runner) withProgress(ctx context.Context, title string, action func(ctx context.Context, progress chan<- tasks.ProgressUpdate)) error {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if r.interactive {
				r.logger.Debug(update.Message, "phase", update.Phase)
			} else {
				r.logger.Info(update.Message, "phase", update.Phase)
			}
		}
	}()

	run := func(ctx context.Context) error {
		action(ctx, progress)
		return nil
	}

	var err error
	if r.interactive {
		err = spinner.New().Title(title).Context(ctx).ActionWithErr(run).Run()
	} else {
		err = run(ctx)
	}

	close(progress)
	<-done
	return err
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", r.bold.Sprint(title))
	r.writePlain("═══════════════════════════════════════\n")
}
