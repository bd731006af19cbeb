// Package compare classifies incoming items against local state.
package compare

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"

	"github.com/klauern/agenttransfer/internal/diff"
	"github.com/klauern/agenttransfer/internal/hash"
	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/model"
)

// File compares an incoming single-file item with the file at localPath.
// A missing or unreadable local file makes the item new.
func File(incoming *model.Item, localPath string) *model.Comparison {
	c := &model.Comparison{Item: incoming, Status: model.StatusNew}

	data, err := os.ReadFile(localPath) // #nosec G304 -- local counterpart path
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Debug("local item unreadable, treating as new",
				logging.Item(incoming.Name), logging.Path(localPath), logging.Err(err))
		}
		return c
	}

	local := string(data)
	c.LocalPath = localPath
	c.LocalContent = local
	if hash.Text(local) == hash.Text(incoming.Content) {
		c.Status = model.StatusIdentical
		return c
	}
	c.Status = model.StatusChanged
	c.Summary = diff.Summary(local, incoming.Content)
	return c
}

// Dir compares an incoming directory item with the directory at localDir.
// An absent, unreadable or empty local directory makes the item new.
func Dir(ctx context.Context, incoming *model.Item, localDir string) (*model.Comparison, error) {
	c := &model.Comparison{Item: incoming, Status: model.StatusNew}

	local, err := hash.Dir(ctx, localDir)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Debug("local item unreadable, treating as new",
				logging.Item(incoming.Name), logging.Path(localDir), logging.Err(err))
		}
		return c, nil
	}
	if len(local) == 0 {
		return c, nil
	}

	c.LocalPath = localDir
	if hash.Equal(local, incoming.Files) {
		c.Status = model.StatusIdentical
		return c, nil
	}
	c.Added, c.Removed, c.Modified = DirDiff(local, incoming.Files)
	c.Status = model.StatusChanged
	c.Summary = diff.FormatCounts(len(c.Added), len(c.Removed), len(c.Modified))
	return c, nil
}

// DirDiff returns the sorted paths present only in incoming, present only
// in local, and present in both with different digests.
func DirDiff(local, incoming map[string]string) (added, removed, modified []string) {
	for p, sum := range incoming {
		localSum, ok := local[p]
		switch {
		case !ok:
			added = append(added, p)
		case localSum != sum:
			modified = append(modified, p)
		}
	}
	for p := range local {
		if _, ok := incoming[p]; !ok {
			removed = append(removed, p)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	sort.Strings(modified)
	return added, removed, modified
}
