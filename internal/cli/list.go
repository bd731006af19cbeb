package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/klauern/agenttransfer/internal/discovery"
	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/ui"
)

// listToolCount is how many tools the table shows before "(+N)".
const listToolCount = 3

func (a *app) listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List installed agents or skills",
		UsageText: "agenttransfer list [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "skills",
				Usage: "List skills instead of agents",
			},
			&cli.StringFlag{
				Name:    "scope",
				Aliases: []string{"s"},
				Usage:   "Only list one scope: user or project",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format: table, json, yaml",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var scope model.Scope
			if v := cmd.String("scope"); v != "" {
				s, err := model.ParseScope(v)
				if err != nil {
					return err
				}
				scope = s
			}

			kind := model.KindAgent
			find := discovery.Agents
			if cmd.Bool("skills") {
				kind = model.KindSkill
				find = discovery.Skills
			}
			items, err := find(ctx, a.roots())
			if err != nil {
				return fmt.Errorf("failed to discover %s: %w", kind.Plural(), err)
			}
			return a.outputItems(kind, discovery.FilterScope(items, scope), cmd.String("format"))
		},
	}
}

func (a *app) outputItems(kind model.Kind, items []*model.Item, format string) error {
	switch format {
	case "table":
		a.printItems(kind, items)
		return nil
	case "json":
		encoder := json.NewEncoder(a.console.Writer())
		encoder.SetIndent("", "  ")
		return encoder.Encode(toItemOutputs(items))
	case "yaml":
		data, err := yaml.Marshal(toItemOutputs(items))
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		a.console.Printf("%s", data)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (a *app) printItems(kind model.Kind, items []*model.Item) {
	if len(items) == 0 {
		a.console.Dimmed(fmt.Sprintf("No %s found", kind.Plural()))
		return
	}

	a.console.Println(ui.Header(ui.KindLabel(kind)))
	var headers []string
	rows := make([][]string, 0, len(items))
	if kind == model.KindSkill {
		headers = []string{"Name", "Description", "Scope", "Files", "Size", "Dependencies"}
		for _, it := range items {
			rows = append(rows, []string{
				it.Name,
				truncateStr(it.Description, 50),
				ui.ScopeLabel(it.Scope),
				fmt.Sprint(it.FileCount),
				humanize.Bytes(uint64(max(it.TotalSize, 0))), // #nosec G115 -- clamped to non-negative
				strings.Join(it.Dependencies, ", "),
			})
		}
	} else {
		headers = []string{"Name", "Description", "Scope", "Tools"}
		for _, it := range items {
			rows = append(rows, []string{
				it.Name,
				truncateStr(it.Description, 50),
				ui.ScopeLabel(it.Scope),
				toolSummary(it.Metadata.ToolList(it.Kind), listToolCount),
			})
		}
	}

	a.console.Println(a.console.Table(headers, rows, nil))
	a.console.Printf("\nTotal: %d %s\n", len(items), kind.Plural())
}

// toolSummary shows the first n tools and the number of remaining ones.
func toolSummary(tools []string, n int) string {
	if len(tools) == 0 {
		return "-"
	}
	if len(tools) <= n {
		return strings.Join(tools, ", ")
	}
	return fmt.Sprintf("%s (+%d)", strings.Join(tools[:n], ", "), len(tools)-n)
}

// truncateStr truncates a string to the specified width.
func truncateStr(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width < 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// itemOutput represents the JSON/YAML output structure.
type itemOutput struct {
	Name         string   `json:"name" yaml:"name"`
	Kind         string   `json:"kind" yaml:"kind"`
	Scope        string   `json:"scope" yaml:"scope"`
	Description  string   `json:"description" yaml:"description"`
	Path         string   `json:"path" yaml:"path"`
	Tools        []string `json:"tools" yaml:"tools"`
	Model        string   `json:"model,omitempty" yaml:"model,omitempty"`
	FileCount    int      `json:"file_count,omitempty" yaml:"file_count,omitempty"`
	TotalSize    int64    `json:"total_size,omitempty" yaml:"total_size,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

func toItemOutputs(items []*model.Item) []itemOutput {
	outputs := make([]itemOutput, len(items))
	for i, it := range items {
		outputs[i] = itemOutput{
			Name:         it.Name,
			Kind:         it.Kind.String(),
			Scope:        it.Scope.String(),
			Description:  it.Description,
			Path:         it.SourcePath,
			Tools:        it.Metadata.ToolList(it.Kind),
			Model:        it.Metadata.Model,
			FileCount:    it.FileCount,
			TotalSize:    it.TotalSize,
			Dependencies: it.Dependencies,
		}
	}
	return outputs
}
