// Package resolve decides the final on-disk content of an incoming item
// that conflicts with an existing one.
//
// Non-interactive modes act immediately. The diff mode runs a small state
// machine driven by a Prompter, with all output routed through a Reporter.
package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauern/agenttransfer/internal/diff"
	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/model"
)

// Choices offered while awaiting a decision on a single-file item.
const (
	keyOverwrite  = "o"
	keyKeep       = "k"
	keyDuplicate  = "d"
	keyView       = "v"
	keySideBySide = "s"
	keyMerge      = "m"
	keyTable      = "t"
	keyFileByFile = "f"
)

// FileResolver resolves conflicts between two single-file items.
type FileResolver struct {
	Prompter Prompter
	Reporter Reporter
}

// NewFileResolver creates a resolver. A nil reporter discards output.
func NewFileResolver(p Prompter, r Reporter) *FileResolver {
	return &FileResolver{Prompter: p, Reporter: r}
}

func (r *FileResolver) reporter() Reporter {
	if r.Reporter == nil {
		return NopReporter{}
	}
	return r.Reporter
}

// Resolve reconciles the existing file with the incoming one according to
// mode. targetDir receives duplicates. The existing file is only replaced
// by ModeOverwrite or by an explicit interactive choice.
func (r *FileResolver) Resolve(ctx context.Context, existingPath, incomingPath, targetDir string, mode model.ConflictMode) (*Outcome, error) {
	name := filepath.Base(existingPath)
	m := newMachine(name)
	log := logging.WithContext(ctx).With(logging.Item(name), logging.Mode(mode.String()))

	switch mode {
	case model.ModeOverwrite:
		if err := CopyFile(incomingPath, existingPath); err != nil {
			return nil, newError(name, "overwrite", err)
		}
		log.Debug("overwrote existing file")
		return m.resolved(ActionOverwritten, existingPath), nil

	case model.ModeKeep:
		log.Debug("kept existing file")
		return m.skipped(), nil

	case model.ModeDuplicate:
		return r.duplicate(m, incomingPath, targetDir, name)

	case model.ModeDiff:
		if r.Prompter == nil {
			return nil, fmt.Errorf("diff mode for %s requires a prompter", name)
		}
		return r.interactive(ctx, m, existingPath, incomingPath, targetDir)

	default:
		return nil, fmt.Errorf("unknown conflict mode %q", mode)
	}
}

func (r *FileResolver) duplicate(m *machine, incomingPath, targetDir, name string) (*Outcome, error) {
	dst := DuplicateName(targetDir, filepath.Base(incomingPath))
	if err := CopyFile(incomingPath, dst); err != nil {
		return nil, newError(name, "duplicate", err)
	}
	r.reporter().Success("Saved as duplicate: " + filepath.Base(dst))
	return m.resolved(ActionDuplicated, dst), nil
}

var fileOptions = []Option{
	{Key: keyOverwrite, Label: "Overwrite with incoming"},
	{Key: keyKeep, Label: "Keep existing (skip)"},
	{Key: keyDuplicate, Label: "Duplicate (save as name_N)"},
	{Key: keyView, Label: "View unified diff"},
	{Key: keySideBySide, Label: "View side-by-side"},
	{Key: keyMerge, Label: "Merge interactively"},
}

func (r *FileResolver) interactive(ctx context.Context, m *machine, existingPath, incomingPath, targetDir string) (*Outcome, error) {
	name := m.outcome.Item
	existing, err := os.ReadFile(existingPath) // #nosec G304 -- resolved local item path
	if err != nil {
		return nil, newError(name, "read existing", err)
	}
	incoming, err := os.ReadFile(incomingPath) // #nosec G304 -- extracted archive path
	if err != nil {
		return nil, newError(name, "read incoming", err)
	}
	ex, in := string(existing), string(incoming)

	r.reporter().Warn(fmt.Sprintf("Conflict: %s (%s)", name, diff.Summary(ex, in)))

	for {
		m.enter(StateAwaitingChoice)
		key, err := r.Prompter.Choose(ctx, "Choice", fileOptions, keyView)
		if err != nil {
			return nil, err
		}

		switch key {
		case keyView:
			m.enter(StateViewingDiff)
			r.reporter().Unified(name, diff.Unified(ex, in, "existing/"+name, "incoming/"+name))

		case keySideBySide:
			m.enter(StateViewingDiff)
			r.reporter().SideBySide(name, diff.SideBySide(ex, in))

		case keyOverwrite:
			if err := CopyFile(incomingPath, existingPath); err != nil {
				return nil, newError(name, "overwrite", err)
			}
			r.reporter().Success("Overwritten: " + name)
			return m.resolved(ActionOverwritten, existingPath), nil

		case keyKeep:
			r.reporter().Dimmed("Kept existing: " + name)
			return m.skipped(), nil

		case keyDuplicate:
			return r.duplicate(m, incomingPath, targetDir, name)

		case keyMerge:
			m.enter(StateMerging)
			merged, err := r.merge(ctx, ex, in)
			if err != nil {
				return nil, err
			}
			r.reporter().Preview(previewText(merged))
			save, err := r.Prompter.Confirm(ctx, "Save merged result?", true)
			if err != nil {
				return nil, err
			}
			if !save {
				r.reporter().Dimmed("Merge discarded")
				continue
			}
			if err := WriteText(existingPath, merged); err != nil {
				return nil, newError(name, "merge", err)
			}
			r.reporter().Success("Merged: " + name)
			return m.resolved(ActionMerged, existingPath), nil
		}
	}
}
