package parser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauern/agenttransfer/internal/model"
)

// ParseAgentText builds an agent item from file text. stem names the item
// when the frontmatter does not.
func ParseAgentText(text, stem string) *model.Item {
	res := SplitFrontmatter([]byte(text))

	meta := model.EmptyMetadata()
	desc := model.DefaultDescription
	if res.HasFrontmatter {
		meta = ParseMetadata(res.Frontmatter)
		desc = Describe(meta, res.Content)
	}

	return &model.Item{
		Name:        model.NormalizeName(meta.Name, stem),
		Kind:        model.KindAgent,
		Description: desc,
		Metadata:    meta,
		Content:     text,
	}
}

// ParseAgent reads and parses the agent file at path. Scope and RelPath are
// left for the caller to set.
func ParseAgent(path string) (*model.Item, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from discovery or archive extraction
	if err != nil {
		return nil, fmt.Errorf("failed to read agent %q: %w", path, err)
	}

	item := ParseAgentText(string(data), filepath.Base(path))
	item.SourcePath = path
	item.RelPath = filepath.Base(path)
	return item, nil
}
