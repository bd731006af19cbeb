package model

import (
	"fmt"
	"strings"
)

// Scope is the level an item is installed at.
type Scope string

const (
	// ScopeUser items live in the user's home configuration and apply everywhere.
	ScopeUser Scope = "user"

	// ScopeProject items live in a project's .claude directory.
	ScopeProject Scope = "project"
)

// IsValid returns true if the scope is recognized.
func (s Scope) IsValid() bool {
	return s == ScopeUser || s == ScopeProject
}

// AllScopes returns every scope in display order.
func AllScopes() []Scope {
	return []Scope{ScopeUser, ScopeProject}
}

// String returns the string representation of the scope.
func (s Scope) String() string {
	return string(s)
}

// Description returns a human-readable description of the scope.
func (s Scope) Description() string {
	switch s {
	case ScopeUser:
		return "User-level items in ~/.claude"
	case ScopeProject:
		return "Project-level items in the nearest .claude directory"
	default:
		return "Unknown scope"
	}
}

// ParseScope converts a string to a Scope. Common aliases are accepted.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "global", "home":
		return ScopeUser, nil
	case "project", "repo", "local":
		return ScopeProject, nil
	default:
		return "", fmt.Errorf("unknown scope %q (valid: user, project)", s)
	}
}

// Kind distinguishes single-file agents from directory skills.
type Kind string

const (
	// KindAgent is a single Markdown file with optional frontmatter.
	KindAgent Kind = "agent"

	// KindSkill is a directory containing a SKILL.md and supporting files.
	KindSkill Kind = "skill"
)

// IsValid returns true if the kind is recognized.
func (k Kind) IsValid() bool {
	return k == KindAgent || k == KindSkill
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Plural returns the plural noun used in reports.
func (k Kind) Plural() string {
	switch k {
	case KindAgent:
		return "agents"
	case KindSkill:
		return "skills"
	default:
		return string(k) + "s"
	}
}
