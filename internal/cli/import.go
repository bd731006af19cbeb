package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/klauern/agenttransfer/internal/compare"
	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/transfer"
	"github.com/klauern/agenttransfer/internal/ui"
	"github.com/klauern/agenttransfer/internal/ui/tui"
)

func (a *app) importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import agents and skills from a backup archive",
		UsageText: "agenttransfer import [options] <archive>",
		Description: `Import every agent and skill of an archive into the local tree.

   Items without a local counterpart are copied, identical items are skipped
   and changed items are resolved with the conflict mode:
     overwrite  replace the local item
     keep       keep the local item
     duplicate  save the incoming item as name_N
     diff       decide per item with diff and merge views

   The default mode is diff when stdin is a terminal and keep otherwise.

   Examples:
     agenttransfer import backup.tar.gz
     agenttransfer import --mode duplicate backup.tar.gz
     agenttransfer import --select backup.tar.gz
     agenttransfer import --only reviewer --only pdf backup.tar.gz`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Conflict mode: overwrite, keep, duplicate, diff",
			},
			&cli.BoolFlag{
				Name:  "overwrite",
				Usage: "Replace conflicting local items (same as --mode overwrite)",
			},
			&cli.BoolFlag{
				Name:  "select",
				Usage: "Choose the items to import interactively",
			},
			&cli.StringSliceFlag{
				Name:  "only",
				Usage: "Import only items with this name (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "create-dirs",
				Usage: "Create a missing project directory without asking",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Hide the progress bar",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("import requires exactly 1 argument: <archive>")
			}
			path := cmd.Args().First()

			mode, err := a.conflictMode(cmd.String("mode"), cmd.Bool("overwrite"))
			if err != nil {
				return err
			}

			im := &transfer.Importer{
				Roots:             a.roots(),
				Prompter:          a.prompter(),
				Reporter:          a.console,
				CreateProjectDirs: a.cfg.Import.CreateProjectDirs || cmd.Bool("create-dirs"),
				Quiet:             cmd.Bool("quiet"),
			}

			a.console.Info(fmt.Sprintf("Importing %s (conflict mode: %s)", path, mode))

			var res *transfer.Result
			switch only := cmd.StringSlice("only"); {
			case len(only) > 0:
				res, err = a.importNamed(ctx, im, path, only, mode)
			case cmd.Bool("select"):
				res, err = a.importSelected(ctx, im, path, mode)
			default:
				res, err = im.Import(ctx, path, mode)
			}
			if res != nil {
				a.printResult(res)
			}
			return err
		},
	}
}

// importSelected lets the user pick items in the selection screen.
func (a *app) importSelected(ctx context.Context, im *transfer.Importer, path string, mode model.ConflictMode) (*transfer.Result, error) {
	if !a.interactive() {
		return nil, errors.New("--select needs a terminal; use --only NAME to pick items")
	}
	preview, err := compare.AnalyzeArchive(ctx, path, im.Roots)
	if err != nil {
		return nil, err
	}
	if preview.Total() == 0 {
		a.console.Warn("Archive contains no agents or skills")
		return nil, nil
	}

	choice, err := tui.RunPreviewSelect(preview)
	if err != nil {
		return nil, fmt.Errorf("selection failed: %w", err)
	}
	if choice.Action != tui.SelectActionImport {
		a.console.Dimmed("Import cancelled, nothing was changed")
		return nil, nil
	}
	return im.ImportSelected(ctx, preview, choice.Selected, mode)
}

// importNamed imports the items whose names are listed.
func (a *app) importNamed(ctx context.Context, im *transfer.Importer, path string, names []string, mode model.ConflictMode) (*transfer.Result, error) {
	preview, err := compare.AnalyzeArchive(ctx, path, im.Roots)
	if err != nil {
		return nil, err
	}

	var selected []*model.Comparison
	var missing []string
	for _, name := range names {
		found := preview.Find(name)
		if len(found) == 0 {
			missing = append(missing, name)
		}
		selected = append(selected, found...)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("not in archive: %s", strings.Join(missing, ", "))
	}
	return im.ImportSelected(ctx, preview, selected, mode)
}

func (a *app) printResult(res *transfer.Result) {
	for _, ir := range res.ByAction(transfer.ActionFailed) {
		a.console.Println(ui.StatusError(fmt.Sprintf("%s %s (%s): %v", ir.Kind, ir.Name, ir.Scope, ir.Err)))
	}

	a.console.Println()
	summary := res.Summary()
	switch {
	case !res.Success():
		a.console.Warn(summary)
	case res.Total() == 0:
		a.console.Warn("Archive contains no agents or skills")
	default:
		a.console.Success(summary)
	}
}
