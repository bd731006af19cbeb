package parser

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/util"
)

func TestScanAgents(t *testing.T) {
	dir := util.CreateTempDir(t)
	util.WriteTree(t, dir, map[string]string{
		"b.md":         "---\nname: bee\n---\n",
		"a.md":         "alpha",
		"notes.txt":    "ignored",
		"team/lead.md": "lead",
	})

	tests := map[string]struct {
		scope    model.Scope
		wantRels []string
	}{
		"user scope is flat":         {scope: model.ScopeUser, wantRels: []string{"a.md", "b.md"}},
		"project scope is recursive": {scope: model.ScopeProject, wantRels: []string{"a.md", "b.md", "team/lead.md"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			items, err := ScanAgents(context.Background(), dir, tt.scope)
			util.AssertNoError(t, err)
			if len(items) != len(tt.wantRels) {
				t.Fatalf("got %d items, want %d", len(items), len(tt.wantRels))
			}
			for i, it := range items {
				util.AssertEqual(t, it.RelPath, tt.wantRels[i])
				util.AssertEqual(t, it.Scope, tt.scope)
			}
		})
	}
}

func TestScanAgents_MissingDir(t *testing.T) {
	items, err := ScanAgents(context.Background(), filepath.Join(t.TempDir(), "nope"), model.ScopeUser)
	util.AssertNoError(t, err)
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}

func TestScanSkills(t *testing.T) {
	dir := util.CreateTempDir(t)
	util.WriteTree(t, dir, map[string]string{
		"pdf/SKILL.md":     "---\nname: pdf\n---\nPDF\n",
		"xlsx/SKILL.md":    "Spreadsheets\n",
		"xlsx/helper.py":   "pass\n",
		"notaskill/README": "nothing",
		"loose.md":         "file, not dir",
	})

	items, err := ScanSkills(context.Background(), dir, model.ScopeProject)
	util.AssertNoError(t, err)
	if len(items) != 2 {
		t.Fatalf("got %d skills, want 2", len(items))
	}
	util.AssertEqual(t, items[0].Name, "pdf")
	util.AssertEqual(t, items[1].Name, "xlsx")
	util.AssertEqual(t, items[1].FileCount, 2)
	util.AssertEqual(t, items[1].Scope, model.ScopeProject)
}
