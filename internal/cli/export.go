package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/klauern/agenttransfer/internal/discovery"
	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/security"
	"github.com/klauern/agenttransfer/internal/transfer"
	"github.com/klauern/agenttransfer/internal/ui"
)

func (a *app) exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Pack local agents and skills into a backup archive",
		UsageText: "agenttransfer export [options]",
		Description: `Collect user and project agents and skills into a tar.gz archive.

   Examples:
     agenttransfer export
     agenttransfer export --scope user --output backup.tar.gz
     agenttransfer export --output-dir ~/backups`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Archive path (default: <prefix>_YYYYMMDD_HHMMSS.tar.gz)",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"d"},
				Usage:   "Directory for the generated archive name",
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "File name prefix for the generated archive name",
			},
			&cli.StringFlag{
				Name:    "scope",
				Aliases: []string{"s"},
				Usage:   "Only export one scope: user or project",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Hide the progress bar",
			},
			&cli.BoolFlag{
				Name:  "no-scan",
				Usage: "Skip the credential scan",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Refuse to export when the credential scan finds a high-severity match",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := transfer.ExportOptions{
				Output:    cmd.String("output"),
				OutputDir: a.cfg.OutputDir(),
				Prefix:    a.cfg.Export.Prefix,
				Quiet:     cmd.Bool("quiet"),
			}
			if v := cmd.String("output-dir"); v != "" {
				opts.OutputDir = v
			}
			if v := cmd.String("prefix"); v != "" {
				opts.Prefix = v
			}
			if v := cmd.String("scope"); v != "" {
				scope, err := model.ParseScope(v)
				if err != nil {
					return err
				}
				opts.Scope = scope
			}
			return a.runExport(ctx, opts, scanPolicy{skip: cmd.Bool("no-scan"), strict: cmd.Bool("strict")})
		},
	}
}

// scanPolicy controls the credential scan that runs before packing.
type scanPolicy struct {
	skip   bool
	strict bool
}

func (a *app) runExport(ctx context.Context, opts transfer.ExportOptions, policy scanPolicy) error {
	items, err := discovery.All(ctx, a.roots())
	if err != nil {
		return fmt.Errorf("failed to discover items: %w", err)
	}

	if !policy.skip {
		if err := a.scanForSecrets(items, opts.Scope, policy.strict); err != nil {
			return err
		}
	}

	res, err := transfer.Export(ctx, items, opts)
	if errors.Is(err, transfer.ErrNothingToExport) {
		a.console.Warn("No agents or skills found to export")
		return nil
	}
	if err != nil {
		return err
	}

	a.console.Success(fmt.Sprintf("Created backup %s (%s)", res.Path, res.HumanSize))
	a.console.Printf("  %-16s %d\n", "User agents:", res.Counts.UserAgents)
	a.console.Printf("  %-16s %d\n", "Project agents:", res.Counts.ProjectAgents)
	a.console.Printf("  %-16s %d\n", "User skills:", res.Counts.UserSkills)
	a.console.Printf("  %-16s %d\n", "Project skills:", res.Counts.ProjectSkills)
	a.console.Println(ui.Bold(fmt.Sprintf("  %-16s %d", "Total:", res.Counts.Total())))
	return nil
}

// scanForSecrets prints a warning per likely credential in the items that
// are about to be exported.
func (a *app) scanForSecrets(items []*model.Item, scope model.Scope, strict bool) error {
	var selected []*model.Item
	for _, it := range items {
		if scope == "" || it.Scope == scope {
			selected = append(selected, it)
		}
	}

	findings, err := security.NewScanner(nil).ScanItems(selected)
	if err != nil {
		return err
	}
	if len(findings) == 0 {
		return nil
	}

	a.console.Warn(fmt.Sprintf("Found %d possible credential(s); review before sharing the archive:", len(findings)))
	for _, f := range findings {
		line := "  " + f.String()
		if f.Severity == security.SeverityError {
			a.console.Println(ui.StatusError(line))
			continue
		}
		a.console.Println(ui.StatusWarning(line))
	}
	if strict && security.HasErrors(findings) {
		return errors.New("export refused: high-severity credentials found (rerun with --no-scan to skip the check)")
	}
	return nil
}
