package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/klauern/agenttransfer/internal/archive"
	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/progress"
	"github.com/klauern/agenttransfer/internal/resolve"
)

// DefaultPrefix starts the default archive file name.
const DefaultPrefix = "claude-agents-backup"

// ArchiveName returns "<prefix>_YYYYMMDD_HHMMSS.tar.gz" for now.
func ArchiveName(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "_" + now.Format("20060102_150405") + ".tar.gz"
}

// ExportOptions configures an export.
type ExportOptions struct {
	// Output is the archive path. When empty a timestamped name is created
	// in OutputDir.
	Output    string
	OutputDir string
	Prefix    string

	// Scope limits the export to one scope; empty exports both.
	Scope model.Scope

	// Now overrides the clock. Used by tests.
	Now func() time.Time

	// Quiet disables the progress bar.
	Quiet bool
}

// Counts tallies exported items by scope and kind.
type Counts struct {
	UserAgents    int
	ProjectAgents int
	UserSkills    int
	ProjectSkills int
}

// Total is the number of exported items.
func (c Counts) Total() int {
	return c.UserAgents + c.ProjectAgents + c.UserSkills + c.ProjectSkills
}

func (c *Counts) add(it *model.Item) {
	switch {
	case it.Kind == model.KindAgent && it.Scope == model.ScopeUser:
		c.UserAgents++
	case it.Kind == model.KindAgent:
		c.ProjectAgents++
	case it.Scope == model.ScopeUser:
		c.UserSkills++
	default:
		c.ProjectSkills++
	}
}

// ExportResult describes a written archive.
type ExportResult struct {
	Path      string
	Size      int64
	HumanSize string
	Counts    Counts
	Manifest  archive.Manifest
}

// Export stages items into the archive layout, writes the manifest and packs
// everything into a new archive.
func Export(ctx context.Context, items []*model.Item, opts ExportOptions) (*ExportResult, error) {
	now := time.Now()
	if opts.Now != nil {
		now = opts.Now()
	}

	output := opts.Output
	if output == "" {
		output = filepath.Join(opts.OutputDir, ArchiveName(opts.Prefix, now))
	}

	var selected []*model.Item
	for _, it := range items {
		if opts.Scope == "" || it.Scope == opts.Scope {
			selected = append(selected, it)
		}
	}
	if len(selected) == 0 {
		return nil, ErrNothingToExport
	}

	staging, err := os.MkdirTemp("", "agenttransfer-export-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	for _, dir := range []string{archive.UserAgentsDir, archive.ProjectAgentsDir, archive.UserSkillsDir, archive.ProjectSkillsDir} {
		if err := os.MkdirAll(filepath.Join(staging, dir), 0o750); err != nil {
			return nil, fmt.Errorf("failed to prepare staging directory: %w", err)
		}
	}

	bar := progress.New(progress.Options{Max: int64(len(selected)), Description: "Exporting", Quiet: opts.Quiet})
	var counts Counts
	for _, it := range selected {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}
		bar.Describe("Exporting " + it.Name)
		if err := stage(staging, it); err != nil {
			return nil, err
		}
		counts.add(it)
		bar.Add(1)
	}
	bar.Finish()

	manifest := archive.NewManifest(now)
	manifest.Set(archive.KeyUserAgents, strconv.Itoa(counts.UserAgents))
	manifest.Set(archive.KeyProjAgents, strconv.Itoa(counts.ProjectAgents))
	manifest.Set(archive.KeyUserSkills, strconv.Itoa(counts.UserSkills))
	manifest.Set(archive.KeyProjSkills, strconv.Itoa(counts.ProjectSkills))
	if err := writeManifest(filepath.Join(staging, archive.ManifestFile), manifest); err != nil {
		return nil, err
	}

	size, err := archive.Write(output, staging)
	if err != nil {
		return nil, err
	}

	logging.Info("archive written", logging.Archive(output), logging.Count(counts.Total()))
	return &ExportResult{
		Path:      output,
		Size:      size,
		HumanSize: humanize.Bytes(uint64(size)), // #nosec G115 -- file sizes are non-negative
		Counts:    counts,
		Manifest:  manifest,
	}, nil
}

// stage copies one item into its archive location below staging.
func stage(staging string, it *model.Item) error {
	rel := filepath.FromSlash(it.RelPath)
	if it.IsDir() {
		dst := filepath.Join(staging, archive.SkillsDir(it.Scope), rel)
		if err := resolve.CopyDir(it.SourcePath, dst); err != nil {
			return fmt.Errorf("failed to stage skill %s: %w", it.Name, err)
		}
		return nil
	}
	dst := filepath.Join(staging, archive.AgentsDir(it.Scope), rel)
	if err := resolve.CopyFile(it.SourcePath, dst); err != nil {
		return fmt.Errorf("failed to stage agent %s: %w", it.Name, err)
	}
	return nil
}

func writeManifest(path string, m archive.Manifest) error {
	f, err := os.Create(path) // #nosec G304 -- inside the staging directory
	if err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if _, err := m.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return f.Close()
}
