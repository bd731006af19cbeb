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
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/model"
)

// ScanAgents parses every *.md file in dir. User-scope agents are read from
// dir itself; project-scope agents may live in sub-directories and keep
// their relative path. Files that cannot be read are skipped. A missing dir
// yields no items.
func ScanAgents(ctx context.Context, dir string, scope model.Scope) ([]*model.Item, error) {
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	var (
		mu    sync.Mutex
		items []*model.Item
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if d.IsDir() {
			if path != dir && scope == model.ScopeUser {
				return fastwalk.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		item, err := ParseAgent(path)
		if err != nil {
			logging.Debug("skipping unreadable agent", logging.Path(path), logging.Err(err))
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil //nolint:nilerr // unreachable for paths produced by the walk
		}
		item.Scope = scope
		item.RelPath = filepath.ToSlash(rel)

		mu.Lock()
		items = append(items, item)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan agents in %s: %w", dir, err)
	}

	sortItems(items)
	return items, nil
}

// ScanSkills parses every immediate sub-directory of dir that contains a
// SKILL.md. A missing dir yields no items.
func ScanSkills(ctx context.Context, dir string, scope model.Scope) ([]*model.Item, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read skills directory %s: %w", dir, err)
	}

	var items []*model.Item
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isDirEntry(dir, e) {
			continue
		}
		item, err := ParseSkillDir(ctx, filepath.Join(dir, e.Name()))
		if err != nil {
			if !errors.Is(err, ErrNotSkill) {
				logging.Debug("skipping unreadable skill", logging.Path(e.Name()), logging.Err(err))
			}
			continue
		}
		item.Scope = scope
		items = append(items, item)
	}

	sortItems(items)
	return items, nil
}

func isDirEntry(dir string, e fs.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.IsDir()
}

func sortItems(items []*model.Item) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].RelPath < items[j].RelPath
	})
}
