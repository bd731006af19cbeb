package transfer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauern/agenttransfer/internal/archive"
	"github.com/klauern/agenttransfer/internal/compare"
	"github.com/klauern/agenttransfer/internal/discovery"
	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/resolve"
	"github.com/klauern/agenttransfer/internal/util"
)

var fixedNow = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

// exportTree writes a source machine layout and exports it.
func exportTree(t *testing.T, user, project map[string]string) *ExportResult {
	t.Helper()
	root := util.CreateTempDir(t)
	src := &discovery.Default{
		UserDir:    filepath.Join(root, "src-home", ".claude"),
		ProjectDir: filepath.Join(root, "src-repo", ".claude"),
	}
	util.WriteTree(t, src.UserDir, user)
	util.WriteTree(t, src.ProjectDir, project)

	items, err := discovery.All(context.Background(), src)
	util.AssertNoError(t, err)

	res, err := Export(context.Background(), items, ExportOptions{OutputDir: root, Now: fixedNow, Quiet: true})
	util.AssertNoError(t, err)
	return res
}

func localRoots(t *testing.T) *discovery.Default {
	t.Helper()
	root := util.CreateTempDir(t)
	return &discovery.Default{
		UserDir:    filepath.Join(root, "home", ".claude"),
		ProjectDir: filepath.Join(root, "repo", ".claude"),
	}
}

func TestArchiveName(t *testing.T) {
	util.AssertEqual(t, ArchiveName("", fixedNow()), "claude-agents-backup_20250102_030405.tar.gz")
	util.AssertEqual(t, ArchiveName("laptop", fixedNow()), "laptop_20250102_030405.tar.gz")
}

func TestExportImportRoundTrip(t *testing.T) {
	exp := exportTree(t,
		map[string]string{
			"agents/reviewer.md":  "---\nname: reviewer\n---\nReviews code\n",
			"skills/pdf/SKILL.md": "---\nname: pdf\n---\nPDF tools\n",
			"skills/pdf/run.py":   "print('pdf')\n",
		},
		map[string]string{
			"agents/team/helper.md": "Helps\n",
		},
	)

	util.AssertEqual(t, filepath.Base(exp.Path), "claude-agents-backup_20250102_030405.tar.gz")
	util.AssertEqual(t, exp.Counts, Counts{UserAgents: 1, ProjectAgents: 1, UserSkills: 1})
	if exp.Size <= 0 || exp.HumanSize == "" {
		t.Errorf("ExportResult size = %d (%q)", exp.Size, exp.HumanSize)
	}
	util.AssertEqual(t, exp.Manifest.Get(archive.KeyProjAgents), "1")

	dst := localRoots(t)
	im := &Importer{Roots: dst, Quiet: true}
	res, err := im.Import(context.Background(), exp.Path, model.ModeKeep)
	util.AssertNoError(t, err)

	util.AssertEqual(t, res.Imported, 3)
	util.AssertEqual(t, res.Conflicts, 0)
	util.AssertEqual(t, util.ReadFile(t, filepath.Join(dst.UserDir, "agents", "reviewer.md")), "---\nname: reviewer\n---\nReviews code\n")
	util.AssertEqual(t, util.ReadFile(t, filepath.Join(dst.UserDir, "skills", "pdf", "run.py")), "print('pdf')\n")
	util.AssertEqual(t, util.ReadFile(t, filepath.Join(dst.ProjectDir, "agents", "team", "helper.md")), "Helps\n")
}

// scenario builds an archive with a new, an identical and a changed agent
// and a local tree holding the identical and changed counterparts.
func scenario(t *testing.T) (archivePath string, roots *discovery.Default) {
	t.Helper()
	exp := exportTree(t, map[string]string{
		"agents/fresh.md": "Fresh\n",
		"agents/same.md":  "Same\n",
		"agents/edit.md":  "Line 1\nModified Line 2\nLine 3\n",
	}, nil)

	roots = localRoots(t)
	util.WriteTree(t, roots.UserDir, map[string]string{
		"agents/same.md": "Same\n",
		"agents/edit.md": "Line 1\nLine 2\n",
	})
	return exp.Path, roots
}

func TestImport_Modes(t *testing.T) {
	tests := map[string]struct {
		mode         model.ConflictMode
		wantImported int
		wantSkipped  int
		wantEdit     string
	}{
		"overwrite": {
			mode:         model.ModeOverwrite,
			wantImported: 2,
			wantEdit:     "Line 1\nModified Line 2\nLine 3\n",
		},
		"keep": {
			mode:         model.ModeKeep,
			wantImported: 1,
			wantSkipped:  1,
			wantEdit:     "Line 1\nLine 2\n",
		},
		"duplicate": {
			mode:         model.ModeDuplicate,
			wantImported: 2,
			wantEdit:     "Line 1\nLine 2\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path, roots := scenario(t)
			im := &Importer{Roots: roots, Quiet: true}

			res, err := im.Import(context.Background(), path, tt.mode)
			util.AssertNoError(t, err)
			util.AssertEqual(t, res.Imported, tt.wantImported)
			util.AssertEqual(t, res.Skipped, tt.wantSkipped)
			util.AssertEqual(t, res.Conflicts, 1)
			util.AssertEqual(t, res.Identical, 1)
			util.AssertEqual(t, res.Total(), 3)

			agents := filepath.Join(roots.UserDir, "agents")
			util.AssertEqual(t, util.ReadFile(t, filepath.Join(agents, "edit.md")), tt.wantEdit)
			util.AssertEqual(t, util.ReadFile(t, filepath.Join(agents, "fresh.md")), "Fresh\n")
			if tt.mode == model.ModeDuplicate {
				util.AssertEqual(t, util.ReadFile(t, filepath.Join(agents, "edit_1.md")), "Line 1\nModified Line 2\nLine 3\n")
			}
		})
	}
}

func TestImportSelected(t *testing.T) {
	path, roots := scenario(t)
	preview, err := compare.AnalyzeArchive(context.Background(), path, roots)
	util.AssertNoError(t, err)
	util.AssertEqual(t, preview.New, 1)
	util.AssertEqual(t, preview.Changed, 1)
	util.AssertEqual(t, preview.Identical, 1)

	selected := preview.ByStatus(model.StatusChanged)
	im := &Importer{Roots: roots, Quiet: true}
	res, err := im.ImportSelected(context.Background(), preview, selected, model.ModeOverwrite)
	util.AssertNoError(t, err)

	util.AssertEqual(t, res.Imported, 1)
	util.AssertEqual(t, res.NotSelected, 1)
	util.AssertEqual(t, res.Identical, 1)
	util.AssertEqual(t, res.Skipped, 0)
	if _, err := os.Stat(filepath.Join(roots.UserDir, "agents", "fresh.md")); !os.IsNotExist(err) {
		t.Error("unselected item should not be imported")
	}
	util.AssertEqual(t, res.Summary(), "Imported: 1, Conflicts: 1, Skipped: 0, Identical: 1, Not selected: 1")
}

func TestImportSelected_SharedNames(t *testing.T) {
	exp := exportTree(t, map[string]string{
		"agents/one.md": "---\nname: helper\n---\nOne\n",
		"agents/two.md": "---\nname: helper\n---\nTwo\n",
	}, nil)
	roots := localRoots(t)
	preview, err := compare.AnalyzeArchive(context.Background(), exp.Path, roots)
	util.AssertNoError(t, err)
	util.AssertEqual(t, preview.New, 2)

	var selected []*model.Comparison
	for _, c := range preview.Comparisons {
		if c.Item.RelPath == "one.md" {
			selected = append(selected, c)
		}
	}
	if len(selected) != 1 {
		t.Fatalf("expected one comparison for one.md, got %d", len(selected))
	}

	im := &Importer{Roots: roots, Quiet: true}
	res, err := im.ImportSelected(context.Background(), preview, selected, model.ModeOverwrite)
	util.AssertNoError(t, err)

	util.AssertEqual(t, res.Imported, 1)
	util.AssertEqual(t, res.NotSelected, 1)
	util.AssertEqual(t, util.ReadFile(t, filepath.Join(roots.UserDir, "agents", "one.md")), "---\nname: helper\n---\nOne\n")
	if _, err := os.Stat(filepath.Join(roots.UserDir, "agents", "two.md")); !os.IsNotExist(err) {
		t.Error("two.md was not selected and should not be imported")
	}
}

func TestImport_DeclinedProjectDir(t *testing.T) {
	exp := exportTree(t, map[string]string{"agents/a.md": "A\n"}, map[string]string{"agents/p.md": "P\n", "agents/q.md": "Q\n"})

	root := util.CreateTempDir(t)
	roots := &discovery.Default{UserDir: filepath.Join(root, "home", ".claude"), WorkDir: filepath.Join(root, "work")}
	p := &resolve.ScriptedPrompter{Answers: []string{"n"}}
	im := &Importer{Roots: roots, Prompter: p, Quiet: true}

	res, err := im.Import(context.Background(), exp.Path, model.ModeDiff)
	util.AssertNoError(t, err)
	util.AssertEqual(t, res.Imported, 1)
	util.AssertEqual(t, res.Skipped, 2)
	util.AssertEqual(t, len(p.Asked), 1)
	if _, err := os.Stat(filepath.Join(root, "work", ".claude")); !os.IsNotExist(err) {
		t.Error("declined project directory should not be created")
	}
}

func TestImport_Cancelled(t *testing.T) {
	path, roots := scenario(t)
	im := &Importer{Roots: roots, Prompter: &resolve.ScriptedPrompter{}, Quiet: true}

	res, err := im.Import(context.Background(), path, model.ModeDiff)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Import() error = %v, want ErrCancelled", err)
	}
	if !IsCancellation(err) || res == nil {
		t.Fatalf("partial result missing: %v", res)
	}
	util.AssertEqual(t, util.ReadFile(t, filepath.Join(roots.UserDir, "agents", "edit.md")), "Line 1\nLine 2\n")
}

func TestImport_CorruptArchive(t *testing.T) {
	roots := localRoots(t)
	path := filepath.Join(util.CreateTempDir(t), "broken.tar.gz")
	util.WriteFile(t, path, "definitely not gzip")

	_, err := (&Importer{Roots: roots, Quiet: true}).Import(context.Background(), path, model.ModeOverwrite)
	if !errors.Is(err, archive.ErrCorrupt) {
		t.Fatalf("Import() error = %v, want ErrCorrupt", err)
	}
	if _, err := os.Stat(roots.UserDir); !os.IsNotExist(err) {
		t.Error("a corrupt archive must not touch the local tree")
	}
}

func TestImport_FailureIsCountedAsSkipped(t *testing.T) {
	path, roots := scenario(t)
	// A file where the agents directory belongs makes every write fail.
	if err := os.RemoveAll(filepath.Join(roots.UserDir, "agents")); err != nil {
		t.Fatal(err)
	}
	util.WriteFile(t, filepath.Join(roots.UserDir, "agents"), "not a directory")

	res, err := (&Importer{Roots: roots, Quiet: true}).Import(context.Background(), path, model.ModeOverwrite)
	util.AssertNoError(t, err)
	util.AssertEqual(t, res.Imported, 0)
	util.AssertEqual(t, res.Failed, 3)
	util.AssertEqual(t, res.Skipped, 3)
	if res.Success() {
		t.Error("Success() should be false when items failed")
	}
}

func TestExport_Filters(t *testing.T) {
	root := util.CreateTempDir(t)
	src := &discovery.Default{UserDir: filepath.Join(root, ".claude")}
	util.WriteTree(t, src.UserDir, map[string]string{"agents/a.md": "A\n"})
	items, err := discovery.All(context.Background(), src)
	util.AssertNoError(t, err)

	_, err = Export(context.Background(), items, ExportOptions{OutputDir: root, Scope: model.ScopeProject, Now: fixedNow, Quiet: true})
	if !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Export() error = %v, want ErrNothingToExport", err)
	}

	out := filepath.Join(root, "custom.tar.gz")
	res, err := Export(context.Background(), items, ExportOptions{Output: out, Scope: model.ScopeUser, Quiet: true})
	util.AssertNoError(t, err)
	util.AssertEqual(t, res.Path, out)
	util.AssertEqual(t, res.Counts.Total(), 1)
}
