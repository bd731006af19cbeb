package transfer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauern/agenttransfer/internal/archive"
	"github.com/klauern/agenttransfer/internal/compare"
	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/progress"
	"github.com/klauern/agenttransfer/internal/resolve"
)

// Importer applies archive items to the local tree under Roots.
type Importer struct {
	Roots    compare.Roots
	Prompter resolve.Prompter
	Reporter resolve.Reporter

	// CreateProjectDirs creates a missing project directory without asking.
	CreateProjectDirs bool

	// Quiet disables the progress bar of non-interactive imports.
	Quiet bool
}

func (im *Importer) reporter() resolve.Reporter {
	if im.Reporter == nil {
		return resolve.NopReporter{}
	}
	return im.Reporter
}

// Import applies every item of the archive at path. Items without a local
// counterpart are copied, identical items are skipped and changed items go
// through the resolver in mode.
func (im *Importer) Import(ctx context.Context, path string, mode model.ConflictMode) (*Result, error) {
	ws, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ws.Close() }()

	preview, err := compare.Analyze(ctx, ws, im.Roots)
	if err != nil {
		return nil, err
	}
	return im.apply(ctx, ws, preview.Comparisons, nil, mode)
}

// ImportSelected applies only the selected comparisons of a preview. The
// archive is extracted again; unselected items are counted as not selected.
func (im *Importer) ImportSelected(ctx context.Context, preview *compare.Preview, selected []*model.Comparison, mode model.ConflictMode) (*Result, error) {
	ws, err := archive.Open(preview.Archive)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ws.Close() }()

	keys := make(map[string]bool, len(selected))
	for _, c := range selected {
		keys[c.Item.ID()] = true
	}
	return im.apply(ctx, ws, preview.Comparisons, keys, mode)
}

func (im *Importer) apply(ctx context.Context, ws *archive.Workspace, comparisons []*model.Comparison, selected map[string]bool, mode model.ConflictMode) (*Result, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("unknown conflict mode %q", mode)
	}
	if mode.Interactive() && im.Prompter == nil {
		return nil, fmt.Errorf("conflict mode %s requires a prompter", mode)
	}

	res := &Result{Archive: ws.Path, Mode: mode}
	dirs := map[string]bool{}
	bar := progress.New(progress.Options{
		Max:         int64(len(comparisons)),
		Description: "Importing",
		Quiet:       im.Quiet || mode.Interactive(),
	})
	defer bar.Finish()

	for _, c := range comparisons {
		ir, err := im.applyOne(ctx, ws, c, selected, mode, dirs)
		if err != nil {
			return res, cancelled(err)
		}
		res.add(ir)
		bar.Add(1)
	}
	return res, nil
}

// applyOne imports a single comparison. Only cancellations are returned as
// errors; every other failure is recorded on the item result.
func (im *Importer) applyOne(ctx context.Context, ws *archive.Workspace, c *model.Comparison, selected map[string]bool, mode model.ConflictMode, dirs map[string]bool) (ItemResult, error) {
	it := c.Item
	ir := ItemResult{Name: it.Name, Kind: it.Kind, Scope: it.Scope}
	log := logging.WithContext(ctx).With(logging.Item(it.Name), logging.Kind(it.Kind.String()), logging.Scope(it.Scope.String()))

	if selected != nil && !selected[it.ID()] {
		ir.Action = ActionNotSelected
		return ir, nil
	}
	if c.Status == model.StatusIdentical {
		ir.Action = ActionIdentical
		return ir, nil
	}
	if err := ctx.Err(); err != nil {
		return ir, err
	}

	base := im.baseDir(it)
	if base == "" {
		return im.fail(ir, fmt.Errorf("no local %s directory for %s scope", it.Kind.Plural(), it.Scope))
	}
	ok, err := im.ensureDir(ctx, base, it.Scope, mode, dirs)
	if err != nil {
		if isCancel(err) {
			return ir, err
		}
		return im.fail(ir, err)
	}
	if !ok {
		ir.Action = ActionSkipped
		return ir, nil
	}

	incoming := incomingPath(ws, it)
	target := compare.LocalPath(im.Roots, it)

	// A NEW classification can stem from an unreadable local item. Route
	// it through the resolver instead of replacing it.
	_, statErr := os.Lstat(target)
	exists := statErr == nil
	if !c.HasLocal() && !exists {
		if err := copyItem(it, incoming, target); err != nil {
			return im.fail(ir, err)
		}
		log.Debug("imported new item", logging.Path(target))
		ir.Action = ActionCreated
		ir.Path = target
		im.reporter().Success(fmt.Sprintf("Imported %s %s", it.Kind, it.Name))
		return ir, nil
	}

	ir.Conflict = true
	outcome, err := im.resolve(ctx, it, target, incoming, mode)
	if err != nil {
		if isCancel(err) {
			return ir, err
		}
		return im.fail(ir, err)
	}
	ir.Action = fromOutcome(outcome)
	ir.Path = outcome.Path
	ir.Warnings = outcome.Warnings
	log.Debug("resolved conflict", logging.Operation(string(ir.Action)))
	return ir, nil
}

func (im *Importer) resolve(ctx context.Context, it *model.Item, target, incoming string, mode model.ConflictMode) (*resolve.Outcome, error) {
	if it.IsDir() {
		r := resolve.NewDirResolver(im.Prompter, im.Reporter)
		return r.Resolve(ctx, target, incoming, filepath.Dir(target), mode)
	}
	r := resolve.NewFileResolver(im.Prompter, im.Reporter)
	return r.Resolve(ctx, target, incoming, filepath.Dir(target), mode)
}

func (im *Importer) fail(ir ItemResult, err error) (ItemResult, error) {
	logging.Warn("import failed", logging.Item(ir.Name), logging.Err(err))
	im.reporter().Warn(fmt.Sprintf("Skipped %s: %v", ir.Name, err))
	ir.Action = ActionFailed
	ir.Err = err
	return ir, nil
}

func (im *Importer) baseDir(it *model.Item) string {
	if it.IsDir() {
		return im.Roots.SkillsDir(it.Scope)
	}
	return im.Roots.AgentsDir(it.Scope)
}

// ensureDir makes sure base exists. A missing project directory is only
// created after confirmation in interactive mode; the answer is reused for
// later items in the same directory.
func (im *Importer) ensureDir(ctx context.Context, base string, scope model.Scope, mode model.ConflictMode, decided map[string]bool) (bool, error) {
	if ok, seen := decided[base]; seen {
		return ok, nil
	}
	if info, err := os.Stat(base); err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s is not a directory", base)
		}
		decided[base] = true
		return true, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	if scope == model.ScopeProject && mode.Interactive() && !im.CreateProjectDirs {
		ok, err := im.Prompter.Confirm(ctx, fmt.Sprintf("Create %s?", base), true)
		if err != nil {
			return false, err
		}
		if !ok {
			im.reporter().Dimmed("Skipping project-level items for " + base)
			decided[base] = false
			return false, nil
		}
	}

	if err := os.MkdirAll(base, 0o750); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", base, err)
	}
	logging.Debug("created directory", logging.Path(base))
	decided[base] = true
	return true, nil
}

func incomingPath(ws *archive.Workspace, it *model.Item) string {
	if it.IsDir() {
		return filepath.Join(ws.SkillsDir(it.Scope), filepath.FromSlash(it.RelPath))
	}
	return filepath.Join(ws.AgentsDir(it.Scope), filepath.FromSlash(it.RelPath))
}

func copyItem(it *model.Item, src, dst string) error {
	var err error
	if it.IsDir() {
		err = resolve.CopyDir(src, dst)
		if err == nil {
			for _, perr := range resolve.RestorePermissions(src, dst) {
				logging.Warn("permission restore failed", logging.Item(it.Name), logging.Err(perr))
			}
		}
	} else {
		err = resolve.CopyFile(src, dst)
	}
	if err != nil {
		return &resolve.Error{Item: it.Name, Op: "copy", Err: err}
	}
	return nil
}

func fromOutcome(o *resolve.Outcome) Action {
	switch o.Action {
	case resolve.ActionOverwritten:
		return ActionOverwritten
	case resolve.ActionMerged:
		return ActionMerged
	case resolve.ActionDuplicated:
		return ActionDuplicated
	default:
		return ActionKept
	}
}

func isCancel(err error) bool {
	return IsCancellation(err) || errors.Is(err, context.DeadlineExceeded)
}
