package parser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauern/agenttransfer/internal/hash"
	"github.com/klauern/agenttransfer/internal/model"
)

// SkillFile is the file that marks a directory as a skill.
const SkillFile = "SKILL.md"

// ErrNotSkill is returned when a directory has no SKILL.md.
var ErrNotSkill = errors.New("directory has no " + SkillFile)

// dependencyMarkers are files that indicate a skill needs extra setup.
var dependencyMarkers = []string{"requirements.txt", "pyproject.toml", "uv.lock"}

// ParseSkillDir reads SKILL.md in dir and digests every file below it.
func ParseSkillDir(ctx context.Context, dir string) (*model.Item, error) {
	skillPath := filepath.Join(dir, SkillFile)
	data, err := os.ReadFile(skillPath) // #nosec G304 -- path comes from discovery or archive extraction
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotSkill)
		}
		return nil, fmt.Errorf("failed to read %q: %w", skillPath, err)
	}

	item := ParseAgentText(string(data), filepath.Base(dir))
	item.Kind = model.KindSkill
	item.SourcePath = dir
	item.RelPath = filepath.Base(dir)

	files, err := hash.Dir(ctx, dir)
	if err != nil {
		return nil, err
	}
	item.Files = files
	item.FileCount = len(files)
	item.TotalSize = dirSize(dir, files)
	item.Dependencies = DependencyMarkers(dir)
	return item, nil
}

func dirSize(dir string, files map[string]string) int64 {
	var total int64
	for rel := range files {
		if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err == nil {
			total += info.Size()
		}
	}
	return total
}

// DependencyMarkers lists top-level files in dir that indicate runtime
// dependencies: Python project files and *.py scripts.
func DependencyMarkers(dir string) []string {
	var found []string
	for _, name := range dependencyMarkers {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			found = append(found, name)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return found
	}
	var scripts []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".py") {
			scripts = append(scripts, e.Name())
		}
	}
	sort.Strings(scripts)
	return append(found, scripts...)
}
