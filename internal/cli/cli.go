// Package cli provides the command-line interface for agenttransfer.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/klauern/agenttransfer/internal/config"
	"github.com/klauern/agenttransfer/internal/discovery"
	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/resolve"
	"github.com/klauern/agenttransfer/internal/transfer"
	"github.com/klauern/agenttransfer/internal/ui"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// ExitCancelled is the exit status for an interrupted run.
const ExitCancelled = 130

// app holds the state shared by all commands of one run.
type app struct {
	cfg     *config.Config
	console *ui.Console
	stdin   *os.File
}

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	a := &app{
		cfg:     config.Default(),
		console: ui.NewConsole(os.Stdout),
		stdin:   os.Stdin,
	}
	root := &cli.Command{
		Name:    "agenttransfer",
		Usage:   "Back up, transfer and merge Claude agents and skills",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Write log records as JSON",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := config.Load()
			if err != nil {
				return ctx, fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			configureColors(cmd, cfg)
			logger, err := configureLogging(cmd, cfg)
			if err != nil {
				return ctx, err
			}
			return logging.NewContext(ctx, logger), nil
		},
		Commands: []*cli.Command{
			a.exportCommand(),
			a.importCommand(),
			a.previewCommand(),
			a.listCommand(),
			a.discoverCommand(),
			a.configCommand(),
			a.versionCommand(),
		},
	}
	return root.Run(ctx, args)
}

// ExitCode maps a run error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case transfer.IsCancellation(err):
		return ExitCancelled
	default:
		return 1
	}
}

// configureColors sets up color output based on CLI flags and config.
func configureColors(cmd *cli.Command, cfg *config.Config) {
	switch {
	case cmd.Bool("no-color"), cfg.Output.Color == "never":
		ui.DisableColors()
	case cfg.Output.Color == "always":
		ui.EnableColors()
	}
}

// configureLogging sets up the logging level based on CLI flags and config.
// Flags win over the configured level. The logger is also installed as
// the package default.
func configureLogging(cmd *cli.Command, cfg *config.Config) (*slog.Logger, error) {
	opts := logging.DefaultOptions()

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging level in config: %w", err)
	}
	opts.Level = level
	opts.JSON = cfg.Logging.JSON || cmd.Bool("log-json")

	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cmd.Bool("verbose") || cfg.Output.Verbose {
		opts.Level = min(opts.Level, slog.LevelInfo)
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logger.Debug("logging configured", slog.String("level", opts.Level.String()))

	return logger, nil
}

// roots returns the directory layout for this run, honoring path overrides
// from the config.
func (a *app) roots() *discovery.Default {
	return discovery.New("").WithOverrides(a.cfg.ClaudeHome(), a.cfg.ProjectRoot())
}

// interactive reports whether both ends of the session are terminals.
func (a *app) interactive() bool {
	return isTerminal(a.stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// conflictMode picks the mode from the flag, then the config, then the
// session: diff on a terminal and keep otherwise.
func (a *app) conflictMode(flag string, overwrite bool) (model.ConflictMode, error) {
	if overwrite {
		return model.ModeOverwrite, nil
	}
	if flag != "" {
		return model.ParseConflictMode(flag)
	}
	if m, ok := a.cfg.ConflictMode(); ok {
		return m, nil
	}
	if isTerminal(a.stdin) {
		return model.ModeDiff, nil
	}
	return model.ModeKeep, nil
}

// prompter returns a form prompter on a terminal and a line prompter
// reading stdin otherwise.
func (a *app) prompter() resolve.Prompter {
	if a.interactive() {
		return ui.NewFormPrompter()
	}
	return ui.NewLinePrompter(a.stdin, a.console.Writer())
}
