package model

import (
	"path"
	"strings"
)

// DefaultDescription is shown when neither frontmatter nor body supplies one.
const DefaultDescription = "No description available"

// UnknownAgentType is the agent_type of items without a declared type.
const UnknownAgentType = "unknown"

// Metadata is the flat key-value record parsed from an item's frontmatter.
// Keys without a dedicated field are kept verbatim in Extra.
type Metadata struct {
	Name           string         `yaml:"name,omitempty"`
	Description    string         `yaml:"description,omitempty"`
	Tools          []string       `yaml:"tools,omitempty"`
	AllowedTools   []string       `yaml:"allowed-tools,omitempty"`
	PermissionMode string         `yaml:"permissionMode,omitempty"`
	Model          string         `yaml:"model,omitempty"`
	AgentType      string         `yaml:"agent_type,omitempty"`
	Context        string         `yaml:"context,omitempty"`
	Agent          string         `yaml:"agent,omitempty"`
	Version        string         `yaml:"version,omitempty"`
	Extra          map[string]any `yaml:"-"`
}

// EmptyMetadata returns the metadata used when frontmatter is missing or invalid.
func EmptyMetadata() Metadata {
	return Metadata{
		Tools:        []string{},
		AllowedTools: []string{},
		AgentType:    UnknownAgentType,
		Extra:        map[string]any{},
	}
}

// ToolList returns the tools for the item kind: tools for agents,
// allowed-tools for skills.
func (m Metadata) ToolList(k Kind) []string {
	if k == KindSkill {
		return m.AllowedTools
	}
	return m.Tools
}

// Item is an agent (single file) or skill (directory) known to the tool,
// either installed locally or carried by an archive.
type Item struct {
	Name  string
	Kind  Kind
	Scope Scope

	// SourcePath is the agent file or the skill directory.
	SourcePath string

	// RelPath is the slash-separated path below the scope root. For user
	// agents and all skills it is the base name; project agents keep their
	// sub-directory so the tree can be rebuilt on import.
	RelPath string

	Description string
	Metadata    Metadata

	// Content is the full agent text, or the SKILL.md text for skills.
	Content string

	// Files maps relative file paths to content digests. Skills only.
	Files        map[string]string
	FileCount    int
	TotalSize    int64
	Dependencies []string
}

// IsDir reports whether the item is stored as a directory.
func (i *Item) IsDir() bool {
	return i.Kind == KindSkill
}

// ID identifies the item within an archive or a local tree. It uses the
// relative path, since frontmatter names need not be unique.
func (i *Item) ID() string {
	rel := i.RelPath
	if rel == "" {
		rel = i.Name
	}
	return i.Kind.String() + "/" + i.Scope.String() + "/" + rel
}

// NormalizeName trims whitespace and strips a trailing .md extension.
// An empty result falls back to the provided stem.
func NormalizeName(name, stem string) string {
	n := strings.TrimSpace(name)
	n = strings.TrimSuffix(n, ".md")
	if n == "" {
		n = strings.TrimSuffix(path.Base(strings.ReplaceAll(stem, "\\", "/")), ".md")
	}
	return n
}
