package compare

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/klauern/agenttransfer/internal/archive"
	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/util"
)

// dirRoots lays out local items below a single base directory.
type dirRoots string

func (r dirRoots) AgentsDir(scope model.Scope) string {
	return filepath.Join(string(r), string(scope), "agents")
}

func (r dirRoots) SkillsDir(scope model.Scope) string {
	return filepath.Join(string(r), string(scope), "skills")
}

func buildArchive(t *testing.T, files map[string]string) string {
	t.Helper()
	staging := util.CreateTempDir(t)
	util.WriteTree(t, staging, files)
	out := filepath.Join(util.CreateTempDir(t), "backup.tar.gz")
	if _, err := archive.Write(out, staging); err != nil {
		t.Fatalf("archive.Write() error = %v", err)
	}
	return out
}

func TestAnalyzeArchive(t *testing.T) {
	archivePath := buildArchive(t, map[string]string{
		"user-agents/A.md":         "A\nB2\nC\n",
		"user-agents/B.md":         "same\n",
		"user-agents/C.md":         "brand new\n",
		"project-agents/team/D.md": "project agent\n",
		"user-skills/pdf/SKILL.md": "skill\n",
		"metadata.txt":             "Claude Code Agents Backup\nExport Version: 1.0\n",
	})

	local := dirRoots(util.CreateTempDir(t))
	util.WriteFile(t, filepath.Join(local.AgentsDir(model.ScopeUser), "A.md"), "A\nB\n")
	util.WriteFile(t, filepath.Join(local.AgentsDir(model.ScopeUser), "B.md"), "same\n")

	p, err := AnalyzeArchive(context.Background(), archivePath, local)
	util.AssertNoError(t, err)
	util.AssertNoError(t, p.Validate())

	util.AssertEqual(t, p.Total(), 5)
	util.AssertEqual(t, p.New, 3)
	util.AssertEqual(t, p.Changed, 1)
	util.AssertEqual(t, p.Identical, 1)
	util.AssertEqual(t, p.User, 4)
	util.AssertEqual(t, p.Project, 1)
	util.AssertEqual(t, p.Manifest.Get(archive.KeyVersion), "1.0")

	want := map[string]struct {
		status  model.Status
		summary string
	}{
		"A":   {model.StatusChanged, "+1 ~1"},
		"B":   {model.StatusIdentical, ""},
		"C":   {model.StatusNew, ""},
		"D":   {model.StatusNew, ""},
		"pdf": {model.StatusNew, ""},
	}
	for name, w := range want {
		found := p.Find(name)
		if len(found) != 1 {
			t.Errorf("Find(%q) returned %d comparisons", name, len(found))
			continue
		}
		util.AssertEqual(t, found[0].Status, w.status)
		util.AssertEqual(t, found[0].Summary, w.summary)
	}

	d := p.Find("D")[0]
	util.AssertEqual(t, d.Item.RelPath, "team/D.md")
	if len(p.ByStatus(model.StatusNew)) != 3 {
		t.Errorf("ByStatus(new) = %d", len(p.ByStatus(model.StatusNew)))
	}
}

func TestAnalyzeArchive_Empty(t *testing.T) {
	archivePath := buildArchive(t, map[string]string{"metadata.txt": "Export Version: 1.0\n"})

	p, err := AnalyzeArchive(context.Background(), archivePath, dirRoots(t.TempDir()))
	util.AssertNoError(t, err)
	util.AssertEqual(t, p.Total(), 0)
	util.AssertNoError(t, p.Validate())
}

func TestAnalyzeArchive_Corrupt(t *testing.T) {
	dir := util.CreateTempDir(t)
	bad := filepath.Join(dir, "bad.tar.gz")
	util.WriteFile(t, bad, "not an archive")

	local := dirRoots(filepath.Join(dir, "local"))
	_, err := AnalyzeArchive(context.Background(), bad, local)
	if !errors.Is(err, archive.ErrCorrupt) {
		t.Fatalf("error = %v, want ErrCorrupt", err)
	}
	if matches, _ := filepath.Glob(filepath.Join(string(local), "*")); len(matches) != 0 {
		t.Errorf("local tree was written: %v", matches)
	}
}

func TestNewPreview_Invariants(t *testing.T) {
	item := &model.Item{Name: "x", Kind: model.KindAgent, Scope: model.ScopeUser}
	comps := []*model.Comparison{
		{Item: item, Status: model.StatusNew},
		{Item: item, Status: model.StatusIdentical},
	}
	p, err := NewPreview("a.tar.gz", archive.Manifest{}, comps)
	util.AssertNoError(t, err)
	util.AssertEqual(t, p.New+p.Changed+p.Identical, p.Total())

	bad := []*model.Comparison{{Item: &model.Item{Name: "y", Scope: "team"}, Status: model.StatusNew}}
	if _, err := NewPreview("a.tar.gz", archive.Manifest{}, bad); err == nil {
		t.Error("expected error when scope counts do not sum to the total")
	}

	p.Changed = 5
	if err := p.Validate(); err == nil {
		t.Error("Validate() should reject tampered counts")
	}
}
