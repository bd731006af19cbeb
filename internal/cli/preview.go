package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/klauern/agenttransfer/internal/compare"
	"github.com/klauern/agenttransfer/internal/diff"
	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/resolve"
	"github.com/klauern/agenttransfer/internal/ui"
)

func (a *app) previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Aliases:   []string{"inspect"},
		Usage:     "Show what importing an archive would change",
		UsageText: "agenttransfer preview [options] <archive>",
		Description: `Compare every item of an archive with the local tree without writing.

   Examples:
     agenttransfer preview backup.tar.gz
     agenttransfer preview --diff reviewer backup.tar.gz
     agenttransfer preview --format json backup.tar.gz`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "diff",
				Usage: "Show the differences of the named item",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format: table, json, yaml",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("preview requires exactly 1 argument: <archive>")
			}
			p, err := compare.AnalyzeArchive(ctx, cmd.Args().First(), a.roots())
			if err != nil {
				return err
			}
			if name := cmd.String("diff"); name != "" {
				return a.showItemDiff(p, name)
			}
			return a.outputPreview(p, cmd.String("format"))
		},
	}
}

func (a *app) outputPreview(p *compare.Preview, format string) error {
	switch format {
	case "table":
		a.printPreview(p)
		return nil
	case "json":
		encoder := json.NewEncoder(a.console.Writer())
		encoder.SetIndent("", "  ")
		return encoder.Encode(toPreviewOutput(p))
	case "yaml":
		data, err := yaml.Marshal(toPreviewOutput(p))
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		a.console.Printf("%s", data)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (a *app) printPreview(p *compare.Preview) {
	a.console.Println(ui.Header("Archive: ") + p.Archive)
	for _, k := range p.Manifest.Keys() {
		a.console.Printf("  %s %s\n", ui.Dim(k+":"), p.Manifest.Get(k))
	}

	if p.Total() == 0 {
		a.console.Println()
		a.console.Warn("Archive contains no agents or skills")
		return
	}

	rows := make([][]string, 0, p.Total())
	for _, c := range p.Comparisons {
		rows = append(rows, []string{
			ui.StatusSymbol(c.Status) + " " + ui.StatusLabel(c.Status),
			c.Item.Kind.String(),
			ui.ScopeLabel(c.Item.Scope),
			c.Item.Name,
			c.Summary,
		})
	}
	a.console.Println()
	a.console.Println(a.console.Table([]string{"Status", "Kind", "Scope", "Name", "Changes"}, rows, nil))

	a.console.Printf("%d item(s): %s, %s, %s (%d user, %d project)\n",
		p.Total(),
		ui.Success(fmt.Sprintf("%d new", p.New)),
		ui.Warning(fmt.Sprintf("%d changed", p.Changed)),
		ui.Dim(fmt.Sprintf("%d identical", p.Identical)),
		p.User, p.Project)
}

// showItemDiff prints the differences of every comparison named name.
func (a *app) showItemDiff(p *compare.Preview, name string) error {
	found := p.Find(name)
	if len(found) == 0 {
		return fmt.Errorf("%q is not in archive %s", name, p.Archive)
	}
	for _, c := range found {
		title := fmt.Sprintf("%s %s (%s): %s", c.Item.Kind, c.Item.Name, c.Item.Scope, c.Status.Label())
		switch {
		case !c.HasLocal():
			a.console.Heading(title)
			a.console.Dimmed("No local counterpart")
		case c.Item.IsDir():
			a.console.FileTable(title, dirRows(c))
		default:
			a.console.Unified(title, diff.Unified(c.LocalContent, c.Item.Content, c.LocalPath, "archive"))
		}
	}
	return nil
}

func dirRows(c *model.Comparison) []resolve.FileRow {
	rows := make([]resolve.FileRow, 0, len(c.Added)+len(c.Removed)+len(c.Modified))
	for _, p := range c.Added {
		rows = append(rows, resolve.FileRow{Path: p, Status: resolve.FileAdded})
	}
	for _, p := range c.Removed {
		rows = append(rows, resolve.FileRow{Path: p, Status: resolve.FileRemoved})
	}
	for _, p := range c.Modified {
		rows = append(rows, resolve.FileRow{Path: p, Status: resolve.FileModified})
	}
	return rows
}

// previewOutput is the JSON/YAML form of a preview.
type previewOutput struct {
	Archive   string            `json:"archive" yaml:"archive"`
	Manifest  map[string]string `json:"manifest" yaml:"manifest"`
	New       int               `json:"new" yaml:"new"`
	Changed   int               `json:"changed" yaml:"changed"`
	Identical int               `json:"identical" yaml:"identical"`
	User      int               `json:"user" yaml:"user"`
	Project   int               `json:"project" yaml:"project"`
	Items     []previewItem     `json:"items" yaml:"items"`
}

type previewItem struct {
	Name     string   `json:"name" yaml:"name"`
	Kind     string   `json:"kind" yaml:"kind"`
	Scope    string   `json:"scope" yaml:"scope"`
	Status   string   `json:"status" yaml:"status"`
	Summary  string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Added    []string `json:"added,omitempty" yaml:"added,omitempty"`
	Removed  []string `json:"removed,omitempty" yaml:"removed,omitempty"`
	Modified []string `json:"modified,omitempty" yaml:"modified,omitempty"`
}

func toPreviewOutput(p *compare.Preview) previewOutput {
	out := previewOutput{
		Archive:   p.Archive,
		Manifest:  make(map[string]string),
		New:       p.New,
		Changed:   p.Changed,
		Identical: p.Identical,
		User:      p.User,
		Project:   p.Project,
		Items:     make([]previewItem, 0, p.Total()),
	}
	for _, k := range p.Manifest.Keys() {
		out.Manifest[k] = p.Manifest.Get(k)
	}
	for _, c := range p.Comparisons {
		out.Items = append(out.Items, previewItem{
			Name:     c.Item.Name,
			Kind:     c.Item.Kind.String(),
			Scope:    c.Item.Scope.String(),
			Status:   c.Status.String(),
			Summary:  c.Summary,
			Added:    c.Added,
			Removed:  c.Removed,
			Modified: c.Modified,
		})
	}
	return out
}
