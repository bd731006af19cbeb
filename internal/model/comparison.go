package model

// Status classifies an incoming item against local state.
type Status string

const (
	// StatusNew means no local counterpart exists.
	StatusNew Status = "new"

	// StatusChanged means a local counterpart exists with different content.
	StatusChanged Status = "changed"

	// StatusIdentical means the local counterpart has the same content.
	StatusIdentical Status = "identical"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Label returns the upper-case label used in reports.
func (s Status) Label() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusChanged:
		return "CHANGED"
	case StatusIdentical:
		return "IDENTICAL"
	default:
		return "UNKNOWN"
	}
}

// Comparison is the result of pairing one incoming item with local state.
// It is created once per analysis pass and not modified afterwards.
type Comparison struct {
	Item   *Item
	Status Status

	// LocalPath is the counterpart file or directory; empty when Status is new.
	LocalPath string

	// LocalContent is the counterpart text for single-file items.
	LocalContent string

	// Summary is "+P -Q ~R" for changed files and "+a -r ~m" for changed
	// directories; empty otherwise.
	Summary string

	// Directory items only. Disjoint, sorted relative paths.
	Added    []string
	Removed  []string
	Modified []string
}

// HasLocal reports whether a local counterpart was found.
func (c *Comparison) HasLocal() bool {
	return c.Status != StatusNew
}

// Conflicting reports whether importing the item requires a conflict decision.
func (c *Comparison) Conflicting() bool {
	return c.Status == StatusChanged
}
