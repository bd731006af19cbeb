package cli

import (
	"context"
	"encoding/json"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/klauern/agenttransfer/internal/archive"
	"github.com/klauern/agenttransfer/internal/ui"
)

type buildInfo struct {
	Version       string `json:"version"`
	ArchiveFormat string `json:"archive_format"`
	Commit        string `json:"commit"`
	Built         string `json:"built"`
	Go            string `json:"go"`
	Platform      string `json:"platform"`
}

func currentBuild() buildInfo {
	return buildInfo{
		Version:       Version,
		ArchiveFormat: archive.ExportVersion,
		Commit:        Commit,
		Built:         BuildDate,
		Go:            runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (a *app) versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Display version, build and archive format information",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the build information as JSON",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			info := currentBuild()
			if cmd.Bool("json") {
				encoder := json.NewEncoder(a.console.Writer())
				encoder.SetIndent("", "  ")
				return encoder.Encode(info)
			}
			a.console.Println(ui.Bold("agenttransfer " + info.Version))
			a.console.Printf("  %s %s\n", ui.Dim("archive format:"), info.ArchiveFormat)
			a.console.Printf("  %s %s\n", ui.Dim("commit:"), info.Commit)
			a.console.Printf("  %s %s\n", ui.Dim("built:"), info.Built)
			a.console.Printf("  %s %s (%s)\n", ui.Dim("go:"), info.Go, info.Platform)
			return nil
		},
	}
}
