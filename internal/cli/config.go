package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/klauern/agenttransfer/internal/config"
	"github.com/klauern/agenttransfer/internal/ui"
	"github.com/klauern/agenttransfer/internal/util"
)

func (a *app) configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display or initialize the configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "toml",
				Usage: "Print the configuration as TOML",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return a.showConfig(cmd.Bool("toml"))
		},
		Commands: []*cli.Command{
			{
				Name:  "path",
				Usage: "Print the configuration file path",
				Action: func(_ context.Context, _ *cli.Command) error {
					a.console.Println(config.FilePath())
					return nil
				},
			},
			{
				Name:  "init",
				Usage: "Write a configuration file with the default settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "toml",
						Usage: "Write config.toml instead of config.yaml",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Replace an existing configuration file",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					return a.initConfig(cmd.Bool("toml"), cmd.Bool("force"))
				},
			},
		},
	}
}

func (a *app) showConfig(asTOML bool) error {
	source := config.FilePath()
	if !config.Exists() {
		source += " (not found, using defaults)"
	}
	a.console.Println(ui.Header("Configuration: ") + source)

	roots := a.roots()
	a.console.Printf("  %-16s %s\n", "User directory:", roots.UserDir)
	project := roots.ProjectDir
	if project == "" {
		project = ui.Dim("none")
	}
	a.console.Printf("  %-16s %s\n\n", "Project:", project)

	data, err := a.cfg.Encode(asTOML)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	a.console.Printf("%s", data)
	return nil
}

func (a *app) initConfig(asTOML, force bool) error {
	name := "config.yaml"
	if asTOML {
		name = "config.toml"
	}
	path := filepath.Join(util.ConfigDir(), name)
	if config.Exists() && !force {
		return fmt.Errorf("configuration already exists at %s (use --force to replace it)", config.FilePath())
	}
	if err := config.Default().SaveToPath(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	a.console.Success("Wrote " + path)
	return nil
}
