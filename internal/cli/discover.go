package cli

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/agenttransfer/internal/discovery"
	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/ui"
)

func (a *app) discoverCommand() *cli.Command {
	return &cli.Command{
		Name:    "discover",
		Aliases: []string{"discovery"},
		Usage:   "Show the agent and skill directories in use",
		Action: func(_ context.Context, _ *cli.Command) error {
			roots := a.roots()
			a.console.Println(ui.Header("Agent directories:"))
			a.printDirs(roots.AgentDirs())
			a.console.Println(ui.Header("Skill directories:"))
			a.printDirs(roots.SkillDirs())
			if !roots.HasProject() {
				a.console.Dimmed("No project .claude directory found; project items import into " + roots.AgentsDir(model.ScopeProject))
			}
			return nil
		},
	}
}

func (a *app) printDirs(dirs []discovery.Dir) {
	for _, d := range dirs {
		state := ui.StatusSuccess("")
		if _, err := os.Stat(d.Path); err != nil {
			state = ui.StatusSkipped("")
		}
		a.console.Printf("  %s %-8s %s\n", state, ui.ScopeLabel(d.Scope), d.Path)
	}
}
