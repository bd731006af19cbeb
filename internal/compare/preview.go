package compare

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/klauern/agenttransfer/internal/archive"
	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/parser"
)

// Roots resolves the directories items of each scope live in. Local
// discovery and extracted archives both provide it.
type Roots interface {
	AgentsDir(scope model.Scope) string
	SkillsDir(scope model.Scope) string
}

// Preview aggregates the comparisons of one archive against local state.
type Preview struct {
	Archive     string
	Manifest    archive.Manifest
	Comparisons []*model.Comparison

	New       int
	Changed   int
	Identical int
	User      int
	Project   int
}

// NewPreview counts comparisons by status and scope and checks that both
// breakdowns account for every comparison.
func NewPreview(archivePath string, manifest archive.Manifest, comparisons []*model.Comparison) (*Preview, error) {
	p := &Preview{Archive: archivePath, Manifest: manifest, Comparisons: comparisons}
	for _, c := range comparisons {
		switch c.Status {
		case model.StatusNew:
			p.New++
		case model.StatusChanged:
			p.Changed++
		case model.StatusIdentical:
			p.Identical++
		}
		switch c.Item.Scope {
		case model.ScopeUser:
			p.User++
		case model.ScopeProject:
			p.Project++
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Total is the number of incoming items.
func (p *Preview) Total() int {
	return len(p.Comparisons)
}

// Validate reports an error when the status or scope counts do not sum to
// the number of comparisons.
func (p *Preview) Validate() error {
	total := p.Total()
	if sum := p.New + p.Changed + p.Identical; sum != total {
		return fmt.Errorf("preview status counts sum to %d, want %d", sum, total)
	}
	if sum := p.User + p.Project; sum != total {
		return fmt.Errorf("preview scope counts sum to %d, want %d", sum, total)
	}
	return nil
}

// ByStatus returns the comparisons with the given status, in preview order.
func (p *Preview) ByStatus(s model.Status) []*model.Comparison {
	var out []*model.Comparison
	for _, c := range p.Comparisons {
		if c.Status == s {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the comparisons whose item has the given name.
func (p *Preview) Find(name string) []*model.Comparison {
	var out []*model.Comparison
	for _, c := range p.Comparisons {
		if c.Item.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// LocalPath returns where item lives locally under roots, or the empty
// string when the scope has no local directory.
func LocalPath(roots Roots, item *model.Item) string {
	var base string
	if item.IsDir() {
		base = roots.SkillsDir(item.Scope)
	} else {
		base = roots.AgentsDir(item.Scope)
	}
	if base == "" {
		return ""
	}
	return filepath.Join(base, filepath.FromSlash(item.RelPath))
}

// Incoming parses every agent and skill carried by an extracted archive.
func Incoming(ctx context.Context, ws *archive.Workspace) ([]*model.Item, error) {
	var items []*model.Item
	for _, scope := range model.AllScopes() {
		agents, err := parser.ScanAgents(ctx, ws.AgentsDir(scope), scope)
		if err != nil {
			return nil, err
		}
		items = append(items, agents...)
	}
	for _, scope := range model.AllScopes() {
		skills, err := parser.ScanSkills(ctx, ws.SkillsDir(scope), scope)
		if err != nil {
			return nil, err
		}
		items = append(items, skills...)
	}
	return items, nil
}

// Analyze pairs every item of an extracted archive with its local
// counterpart under roots.
func Analyze(ctx context.Context, ws *archive.Workspace, roots Roots) (*Preview, error) {
	items, err := Incoming(ctx, ws)
	if err != nil {
		return nil, err
	}

	comparisons := make([]*model.Comparison, 0, len(items))
	for _, item := range items {
		c, err := Item(ctx, item, roots)
		if err != nil {
			return nil, err
		}
		comparisons = append(comparisons, c)
	}

	if len(comparisons) == 0 {
		logging.Warn("archive contains no agents or skills", logging.Archive(ws.Path))
	}
	return NewPreview(ws.Path, ws.Manifest, comparisons)
}

// Item compares one incoming item with its local counterpart under roots.
func Item(ctx context.Context, item *model.Item, roots Roots) (*model.Comparison, error) {
	local := LocalPath(roots, item)
	if local == "" {
		return &model.Comparison{Item: item, Status: model.StatusNew}, nil
	}
	if item.IsDir() {
		return Dir(ctx, item, local)
	}
	return File(item, local), nil
}

// AnalyzeArchive extracts the archive at path, analyzes it and removes the
// extraction directory. Item contents stay available in memory; source
// paths of the returned items no longer exist.
func AnalyzeArchive(ctx context.Context, path string, roots Roots) (*Preview, error) {
	ws, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ws.Close() }()
	return Analyze(ctx, ws, roots)
}
