package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauern/agenttransfer/internal/compare"
	"github.com/klauern/agenttransfer/internal/diff"
	"github.com/klauern/agenttransfer/internal/hash"
	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/model"
)

// DirResolver resolves conflicts between two directory items.
type DirResolver struct {
	Prompter Prompter
	Reporter Reporter
}

// NewDirResolver creates a resolver. A nil reporter discards output.
func NewDirResolver(p Prompter, r Reporter) *DirResolver {
	return &DirResolver{Prompter: p, Reporter: r}
}

func (r *DirResolver) reporter() Reporter {
	if r.Reporter == nil {
		return NopReporter{}
	}
	return r.Reporter
}

// dirChanges is the file-level difference between two directory trees.
type dirChanges struct {
	added, removed, modified []string
}

func (c dirChanges) summary() string {
	return diff.FormatCounts(len(c.added), len(c.removed), len(c.modified))
}

func (c dirChanges) rows() []FileRow {
	rows := make([]FileRow, 0, len(c.added)+len(c.modified)+len(c.removed))
	for _, p := range c.added {
		rows = append(rows, FileRow{Path: p, Status: FileAdded})
	}
	for _, p := range c.modified {
		rows = append(rows, FileRow{Path: p, Status: FileModified})
	}
	for _, p := range c.removed {
		rows = append(rows, FileRow{Path: p, Status: FileRemoved})
	}
	return rows
}

// Resolve reconciles existingDir with incomingDir according to mode.
// targetBase receives duplicates.
func (r *DirResolver) Resolve(ctx context.Context, existingDir, incomingDir, targetBase string, mode model.ConflictMode) (*Outcome, error) {
	name := filepath.Base(existingDir)
	m := newMachine(name)
	log := logging.WithContext(ctx).With(logging.Item(name), logging.Mode(mode.String()))

	switch mode {
	case model.ModeOverwrite:
		out, err := r.overwrite(m, existingDir, incomingDir)
		if err == nil {
			log.Debug("overwrote existing directory")
		}
		return out, err

	case model.ModeKeep:
		log.Debug("kept existing directory")
		return m.skipped(), nil

	case model.ModeDuplicate:
		return r.duplicate(m, existingDir, incomingDir, targetBase)

	case model.ModeDiff:
		if r.Prompter == nil {
			return nil, fmt.Errorf("diff mode for %s requires a prompter", name)
		}
		changes, err := r.changes(ctx, existingDir, incomingDir)
		if err != nil {
			return nil, newError(name, "compare", err)
		}
		return r.interactive(ctx, m, existingDir, incomingDir, targetBase, changes)

	default:
		return nil, fmt.Errorf("unknown conflict mode %q", mode)
	}
}

func (r *DirResolver) changes(ctx context.Context, existingDir, incomingDir string) (dirChanges, error) {
	local, err := hash.Dir(ctx, existingDir)
	if err != nil {
		return dirChanges{}, err
	}
	incoming, err := hash.Dir(ctx, incomingDir)
	if err != nil {
		return dirChanges{}, err
	}
	added, removed, modified := compare.DirDiff(local, incoming)
	return dirChanges{added: added, removed: removed, modified: modified}, nil
}

func (r *DirResolver) overwrite(m *machine, existingDir, incomingDir string) (*Outcome, error) {
	if err := ReplaceDir(incomingDir, existingDir); err != nil {
		return nil, newError(m.outcome.Item, "overwrite", err)
	}
	r.restore(m, incomingDir, existingDir)
	r.reporter().Success("Overwritten: " + m.outcome.Item)
	return m.resolved(ActionOverwritten, existingDir), nil
}

func (r *DirResolver) duplicate(m *machine, existingDir, incomingDir, targetBase string) (*Outcome, error) {
	dst := DuplicateDirName(targetBase, filepath.Base(existingDir))
	if err := CopyDir(incomingDir, dst); err != nil {
		return nil, newError(m.outcome.Item, "duplicate", err)
	}
	r.restore(m, incomingDir, dst)
	r.reporter().Success("Saved as duplicate: " + filepath.Base(dst))
	return m.resolved(ActionDuplicated, dst), nil
}

// restore reapplies incoming permissions; failures become warnings.
func (r *DirResolver) restore(m *machine, src, dst string) {
	for _, err := range RestorePermissions(src, dst) {
		msg := fmt.Sprintf("could not restore permissions in %s: %v", m.outcome.Item, err)
		logging.Warn("permission restore failed", logging.Item(m.outcome.Item), logging.Err(err))
		r.reporter().Warn(msg)
		m.warn(msg)
	}
}

var dirOptions = []Option{
	{Key: keyOverwrite, Label: "Overwrite with incoming"},
	{Key: keyKeep, Label: "Keep existing (skip)"},
	{Key: keyDuplicate, Label: "Duplicate (save as name_N)"},
	{Key: keyView, Label: "View detailed changes"},
	{Key: keyTable, Label: "View file table"},
	{Key: keyFileByFile, Label: "File-by-file merge"},
}

func (r *DirResolver) interactive(ctx context.Context, m *machine, existingDir, incomingDir, targetBase string, changes dirChanges) (*Outcome, error) {
	name := m.outcome.Item
	r.reporter().Warn(fmt.Sprintf("Skill conflict: %s (%s)", name, changes.summary()))

	for {
		m.enter(StateAwaitingChoice)
		key, err := r.Prompter.Choose(ctx, "Choice", dirOptions, keyView)
		if err != nil {
			return nil, err
		}

		switch key {
		case keyView:
			m.enter(StateViewingDiff)
			r.showChanges(changes)

		case keyTable:
			m.enter(StateViewingDiff)
			r.reporter().FileTable("File changes: "+name, changes.rows())

		case keyOverwrite:
			return r.overwrite(m, existingDir, incomingDir)

		case keyKeep:
			r.reporter().Dimmed("Kept existing: " + name)
			return m.skipped(), nil

		case keyDuplicate:
			return r.duplicate(m, existingDir, incomingDir, targetBase)

		case keyFileByFile:
			m.enter(StateMerging)
			return r.fileByFile(ctx, m, existingDir, incomingDir, changes)
		}
	}
}

func (r *DirResolver) showChanges(c dirChanges) {
	rep := r.reporter()
	rep.Info("Changes: " + c.summary())
	for _, p := range c.added {
		rep.Success("+ " + p)
	}
	for _, p := range c.modified {
		rep.Warn("~ " + p)
	}
	for _, p := range c.removed {
		rep.Dimmed("- " + p)
	}
}

var modifiedFileOptions = []Option{
	{Key: string(ChoiceKeep), Label: "Keep existing"},
	{Key: string(ChoiceReplace), Label: "Replace with incoming"},
	{Key: string(ChoiceSkip), Label: "Skip"},
}

// fileByFile asks about every added, modified and removed file. The item
// counts as resolved when at least one file changed on disk.
func (r *DirResolver) fileByFile(ctx context.Context, m *machine, existingDir, incomingDir string, c dirChanges) (*Outcome, error) {
	name := m.outcome.Item
	rep := r.reporter()
	changed := false

	for _, p := range c.added {
		rep.Success("+ New file: " + p)
		add, err := r.Prompter.Confirm(ctx, "Add this file?", true)
		if err != nil {
			return nil, err
		}
		if !add {
			continue
		}
		if err := CopyFile(filepath.Join(incomingDir, filepath.FromSlash(p)), filepath.Join(existingDir, filepath.FromSlash(p))); err != nil {
			return nil, newError(name, "add "+p, err)
		}
		rep.Success("Added: " + p)
		changed = true
	}

	for _, p := range c.modified {
		rep.Warn("~ Modified: " + p)
		key, err := r.Prompter.Choose(ctx, "Choice", modifiedFileOptions, string(ChoiceKeep))
		if err != nil {
			return nil, err
		}
		switch Choice(key) {
		case ChoiceReplace:
			if err := CopyFile(filepath.Join(incomingDir, filepath.FromSlash(p)), filepath.Join(existingDir, filepath.FromSlash(p))); err != nil {
				return nil, newError(name, "replace "+p, err)
			}
			rep.Success("Replaced: " + p)
			changed = true
		case ChoiceSkip:
			rep.Dimmed("Skipped: " + p)
		default:
			rep.Dimmed("Kept existing: " + p)
		}
	}

	for _, p := range c.removed {
		rep.Dimmed("- Removed in incoming: " + p)
		del, err := r.Prompter.Confirm(ctx, "Delete this file?", false)
		if err != nil {
			return nil, err
		}
		if !del {
			continue
		}
		if err := os.Remove(filepath.Join(existingDir, filepath.FromSlash(p))); err != nil {
			return nil, newError(name, "delete "+p, err)
		}
		rep.Dimmed("Deleted: " + p)
		changed = true
	}

	if !changed {
		rep.Dimmed("No changes made")
		return m.skipped(), nil
	}
	r.restore(m, incomingDir, existingDir)
	rep.Success("Merge completed for: " + name)
	return m.resolved(ActionMerged, existingDir), nil
}
