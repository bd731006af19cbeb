// Package discovery locates the agent and skill directories on this
// machine: the user directory under the home .claude directory and the
// nearest project .claude directory above the working directory.
package discovery

import (
	"context"
	"os"
	"path/filepath"

	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/parser"
	"github.com/klauern/agenttransfer/internal/util"
)

// MaxProjectLevels is how many directories, starting at the working
// directory, are searched for a project .claude directory.
const MaxProjectLevels = 5

// Dir is a directory holding items of one scope.
type Dir struct {
	Path  string
	Scope model.Scope
}

// Source lists the directories items are read from, user scope first.
type Source interface {
	AgentDirs() []Dir
	SkillDirs() []Dir
}

// Default is the standard layout: ~/.claude for user items and the nearest
// .claude directory above the working directory for project items.
type Default struct {
	// UserDir is the user .claude directory.
	UserDir string

	// ProjectDir is the discovered project .claude directory, or empty.
	ProjectDir string

	// WorkDir receives project items when no project directory was found.
	WorkDir string
}

// New discovers directories starting at workDir. An empty workDir uses the
// current working directory.
func New(workDir string) *Default {
	if workDir == "" {
		if wd, err := os.Getwd(); err == nil {
			workDir = wd
		}
	}
	d := &Default{UserDir: util.ClaudeDir(), WorkDir: workDir}
	d.ProjectDir = FindProjectDir(workDir, d.UserDir)
	return d
}

// WithOverrides replaces the user directory and the project root when the
// values are non-empty.
func (d *Default) WithOverrides(userDir, projectRoot string) *Default {
	out := *d
	if userDir != "" {
		out.UserDir = userDir
	}
	if projectRoot != "" {
		out.ProjectDir = filepath.Join(projectRoot, ".claude")
		out.WorkDir = projectRoot
	}
	return &out
}

// FindProjectDir walks up from start at most MaxProjectLevels directories
// looking for a .claude directory that is not userDir.
func FindProjectDir(start, userDir string) string {
	if start == "" {
		return ""
	}
	userResolved := resolve(userDir)
	dir := start
	for range MaxProjectLevels {
		candidate := filepath.Join(dir, ".claude")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() && resolve(candidate) != userResolved {
			logging.Debug("found project directory", logging.Path(candidate))
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func resolve(p string) string {
	if p == "" {
		return ""
	}
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	return filepath.Clean(p)
}

// HasProject reports whether a project directory was found.
func (d *Default) HasProject() bool {
	return d.ProjectDir != ""
}

func (d *Default) projectBase() string {
	if d.ProjectDir != "" {
		return d.ProjectDir
	}
	if d.WorkDir == "" {
		return ""
	}
	return filepath.Join(d.WorkDir, ".claude")
}

// AgentsDir returns the agents directory for scope. Project items go to
// the working directory when no project directory exists yet.
func (d *Default) AgentsDir(scope model.Scope) string {
	if scope == model.ScopeProject {
		base := d.projectBase()
		if base == "" {
			return ""
		}
		return filepath.Join(base, "agents")
	}
	return filepath.Join(d.UserDir, "agents")
}

// SkillsDir returns the skills directory for scope.
func (d *Default) SkillsDir(scope model.Scope) string {
	if scope == model.ScopeProject {
		base := d.projectBase()
		if base == "" {
			return ""
		}
		return filepath.Join(base, "skills")
	}
	return filepath.Join(d.UserDir, "skills")
}

// AgentDirs implements Source. The project entry is present only when a
// project directory was found.
func (d *Default) AgentDirs() []Dir {
	dirs := []Dir{{Path: d.AgentsDir(model.ScopeUser), Scope: model.ScopeUser}}
	if d.HasProject() {
		dirs = append(dirs, Dir{Path: filepath.Join(d.ProjectDir, "agents"), Scope: model.ScopeProject})
	}
	return dirs
}

// SkillDirs implements Source.
func (d *Default) SkillDirs() []Dir {
	dirs := []Dir{{Path: d.SkillsDir(model.ScopeUser), Scope: model.ScopeUser}}
	if d.HasProject() {
		dirs = append(dirs, Dir{Path: filepath.Join(d.ProjectDir, "skills"), Scope: model.ScopeProject})
	}
	return dirs
}

// Agents parses every agent below the source's agent directories.
func Agents(ctx context.Context, src Source) ([]*model.Item, error) {
	var items []*model.Item
	for _, d := range src.AgentDirs() {
		found, err := parser.ScanAgents(ctx, d.Path, d.Scope)
		if err != nil {
			return nil, err
		}
		items = append(items, found...)
	}
	return items, nil
}

// Skills parses every skill below the source's skill directories.
func Skills(ctx context.Context, src Source) ([]*model.Item, error) {
	var items []*model.Item
	for _, d := range src.SkillDirs() {
		found, err := parser.ScanSkills(ctx, d.Path, d.Scope)
		if err != nil {
			return nil, err
		}
		items = append(items, found...)
	}
	return items, nil
}

// All returns agents followed by skills.
func All(ctx context.Context, src Source) ([]*model.Item, error) {
	agents, err := Agents(ctx, src)
	if err != nil {
		return nil, err
	}
	skills, err := Skills(ctx, src)
	if err != nil {
		return nil, err
	}
	return append(agents, skills...), nil
}

// FilterScope keeps items of scope; the empty scope keeps everything.
func FilterScope(items []*model.Item, scope model.Scope) []*model.Item {
	if scope == "" {
		return items
	}
	var out []*model.Item
	for _, it := range items {
		if it.Scope == scope {
			out = append(out, it)
		}
	}
	return out
}
