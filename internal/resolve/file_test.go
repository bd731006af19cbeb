package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/util"
)

// fileFixture creates an existing and an incoming agent file named agent.md.
func fileFixture(t *testing.T, existing, incoming string) (existingPath, incomingPath, targetDir string) {
	t.Helper()
	root := util.CreateTempDir(t)
	targetDir = filepath.Join(root, "local")
	existingPath = filepath.Join(targetDir, "agent.md")
	incomingPath = filepath.Join(root, "archive", "agent.md")
	util.WriteFile(t, existingPath, existing)
	util.WriteFile(t, incomingPath, incoming)
	return existingPath, incomingPath, targetDir
}

func TestFileResolver_NonInteractive(t *testing.T) {
	const existing = "Line 1\nLine 2\n"
	const incoming = "Line 1\nModified Line 2\nLine 3\n"

	tests := map[string]struct {
		mode        model.ConflictMode
		wantState   State
		wantAction  Action
		wantContent string
		wantDupPath string
	}{
		"overwrite": {
			mode:        model.ModeOverwrite,
			wantState:   StateResolved,
			wantAction:  ActionOverwritten,
			wantContent: incoming,
		},
		"keep": {
			mode:        model.ModeKeep,
			wantState:   StateSkipped,
			wantAction:  ActionKept,
			wantContent: existing,
		},
		"duplicate": {
			mode:        model.ModeDuplicate,
			wantState:   StateResolved,
			wantAction:  ActionDuplicated,
			wantContent: existing,
			wantDupPath: "agent_1.md",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			existingPath, incomingPath, targetDir := fileFixture(t, existing, incoming)
			r := NewFileResolver(nil, nil)

			out, err := r.Resolve(context.Background(), existingPath, incomingPath, targetDir, tt.mode)
			util.AssertNoError(t, err)
			util.AssertEqual(t, out.State, tt.wantState)
			util.AssertEqual(t, out.Action, tt.wantAction)
			util.AssertEqual(t, util.ReadFile(t, existingPath), tt.wantContent)
			if !slices.Equal(out.History, []State{tt.wantState}) {
				t.Errorf("History = %v, want a direct transition", out.History)
			}

			if tt.wantDupPath != "" {
				util.AssertEqual(t, filepath.Base(out.Path), tt.wantDupPath)
				util.AssertEqual(t, util.ReadFile(t, out.Path), incoming)
			}
		})
	}
}

func TestFileResolver_DuplicateSequence(t *testing.T) {
	existingPath, incomingPath, targetDir := fileFixture(t, "old\n", "new\n")
	r := NewFileResolver(nil, nil)

	for i, want := range []string{"agent_1.md", "agent_2.md", "agent_3.md"} {
		out, err := r.Resolve(context.Background(), existingPath, incomingPath, targetDir, model.ModeDuplicate)
		util.AssertNoError(t, err)
		if got := filepath.Base(out.Path); got != want {
			t.Errorf("duplicate %d = %s, want %s", i+1, got, want)
		}
	}
	util.AssertEqual(t, util.ReadFile(t, existingPath), "old\n")
}

func TestFileResolver_DiffViewsThenKeep(t *testing.T) {
	existingPath, incomingPath, targetDir := fileFixture(t, "a\nb\n", "a\nc\n")
	p := &ScriptedPrompter{Answers: []string{"v", "s", "k"}}
	rec := &Recorder{}

	out, err := NewFileResolver(p, rec).Resolve(context.Background(), existingPath, incomingPath, targetDir, model.ModeDiff)
	util.AssertNoError(t, err)

	want := []State{
		StateAwaitingChoice, StateViewingDiff,
		StateAwaitingChoice, StateViewingDiff,
		StateAwaitingChoice, StateSkipped,
	}
	if !slices.Equal(out.History, want) {
		t.Errorf("History = %v, want %v", out.History, want)
	}
	if out.Imported() {
		t.Error("keep should not import")
	}
	util.AssertEqual(t, util.ReadFile(t, existingPath), "a\nb\n")

	if !slices.Contains(rec.Lines, "unified: agent.md") || !slices.Contains(rec.Lines, "side-by-side: agent.md (2 rows)") {
		t.Errorf("reporter lines = %v", rec.Lines)
	}
}

func TestFileResolver_DiffDefaultIsView(t *testing.T) {
	existingPath, incomingPath, targetDir := fileFixture(t, "a\n", "b\n")
	p := &ScriptedPrompter{Answers: []string{""}}

	_, err := NewFileResolver(p, nil).Resolve(context.Background(), existingPath, incomingPath, targetDir, model.ModeDiff)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("Resolve() error = %v, want ErrAborted", err)
	}
	if len(p.Asked) != 2 {
		t.Errorf("default choice should view and ask again, asked %v", p.Asked)
	}
	util.AssertEqual(t, util.ReadFile(t, existingPath), "a\n")
}

func TestFileResolver_MergeDeclineThenKeepBoth(t *testing.T) {
	existingPath, incomingPath, targetDir := fileFixture(t, "Line 1\nLine 2\n", "Line 1\nModified Line 2\nLine 3\n")
	p := &ScriptedPrompter{Answers: []string{
		"m", "r", "n", // merge, replace the block, decline to save
		"m", "b", "", // merge again, keep both, accept default
	}}

	out, err := NewFileResolver(p, nil).Resolve(context.Background(), existingPath, incomingPath, targetDir, model.ModeDiff)
	util.AssertNoError(t, err)
	util.AssertEqual(t, out.Action, ActionMerged)

	want := []State{
		StateAwaitingChoice, StateMerging,
		StateAwaitingChoice, StateMerging,
		StateResolved,
	}
	if !slices.Equal(out.History, want) {
		t.Errorf("History = %v, want %v", out.History, want)
	}
	util.AssertEqual(t, util.ReadFile(t, existingPath),
		"Line 1\nLine 2\n# --- incoming ---\nModified Line 2\nLine 3\n")
	util.AssertEqual(t, p.Remaining(), 0)
}

func TestFileResolver_SectionMerge(t *testing.T) {
	const existing = "---\nname: a\ndescription: old\n---\nBody\n"
	const incoming = "---\nname: a\ndescription: new\n---\nBody\n"

	tests := map[string]struct {
		choice string
		want   string
	}{
		"replace frontmatter": {
			choice: "r",
			want:   incoming,
		},
		"keep frontmatter": {
			choice: "k",
			want:   existing,
		},
		"both frontmatters": {
			choice: "b",
			want:   "---\nname: a\ndescription: old\n\n# --- Merged from incoming ---\nname: a\ndescription: new\n---\nBody\n",
		},
		"line merge of frontmatter": {
			choice: "l",
			want:   "---\nname: a\ndescription: old\n---\nBody\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			existingPath, incomingPath, targetDir := fileFixture(t, existing, incoming)
			answers := []string{"m", tt.choice}
			if tt.choice == "l" {
				answers = append(answers, "k")
			}
			answers = append(answers, "y")
			p := &ScriptedPrompter{Answers: answers}

			_, err := NewFileResolver(p, nil).Resolve(context.Background(), existingPath, incomingPath, targetDir, model.ModeDiff)
			util.AssertNoError(t, err)
			util.AssertEqual(t, util.ReadFile(t, existingPath), tt.want)

			// The identical body is never asked about.
			if slices.Contains(p.Asked, "Resolve body") {
				t.Errorf("asked about identical body: %v", p.Asked)
			}
		})
	}
}

func TestFileResolver_OverwriteFailure(t *testing.T) {
	existingPath, _, targetDir := fileFixture(t, "a\n", "b\n")
	missing := filepath.Join(targetDir, "missing.md")

	_, err := NewFileResolver(nil, nil).Resolve(context.Background(), existingPath, missing, targetDir, model.ModeOverwrite)
	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("Resolve() error = %v, want *Error", err)
	}
	util.AssertEqual(t, re.Op, "overwrite")
	if _, statErr := os.Stat(existingPath); statErr != nil {
		t.Errorf("existing file should survive a failed overwrite: %v", statErr)
	}
}

func TestDuplicateName(t *testing.T) {
	dir := util.CreateTempDir(t)
	util.WriteFile(t, filepath.Join(dir, "agent.md"), "x")
	util.WriteFile(t, filepath.Join(dir, "agent_1.md"), "x")
	util.WriteFile(t, filepath.Join(dir, "agent_3.md"), "x")

	util.AssertEqual(t, filepath.Base(DuplicateName(dir, "agent.md")), "agent_2.md")
	util.AssertEqual(t, filepath.Base(DuplicateName(dir, "notes")), "notes_1")
	util.AssertEqual(t, filepath.Base(DuplicateDirName(dir, "agent.md")), "agent.md_1")
}
