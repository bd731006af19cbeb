package model

import (
	"fmt"
	"strings"
)

// ConflictMode selects how an incoming item replaces an existing one.
type ConflictMode string

const (
	// ModeOverwrite replaces the existing item with the incoming one.
	ModeOverwrite ConflictMode = "overwrite"

	// ModeKeep leaves the existing item untouched.
	ModeKeep ConflictMode = "keep"

	// ModeDuplicate writes the incoming item under a fresh name_N name.
	ModeDuplicate ConflictMode = "duplicate"

	// ModeDiff asks the user for every conflict, with diff and merge views.
	ModeDiff ConflictMode = "diff"
)

// IsValid returns true if the mode is recognized.
func (m ConflictMode) IsValid() bool {
	switch m {
	case ModeOverwrite, ModeKeep, ModeDuplicate, ModeDiff:
		return true
	default:
		return false
	}
}

// Interactive reports whether the mode prompts the user.
func (m ConflictMode) Interactive() bool {
	return m == ModeDiff
}

// AllConflictModes returns all supported conflict modes.
func AllConflictModes() []ConflictMode {
	return []ConflictMode{ModeOverwrite, ModeKeep, ModeDuplicate, ModeDiff}
}

// String returns the string representation of the mode.
func (m ConflictMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m ConflictMode) Description() string {
	switch m {
	case ModeOverwrite:
		return "Replace existing items with incoming ones"
	case ModeKeep:
		return "Keep existing items and skip incoming ones"
	case ModeDuplicate:
		return "Save incoming items under a new name_N name"
	case ModeDiff:
		return "Show differences and decide per item, with merge"
	default:
		return "Unknown conflict mode"
	}
}

// ParseConflictMode converts a string to a ConflictMode.
func ParseConflictMode(s string) (ConflictMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	switch normalized {
	case "skip":
		return ModeKeep, nil
	case "interactive", "merge":
		return ModeDiff, nil
	case "dup", "copy":
		return ModeDuplicate, nil
	}
	m := ConflictMode(normalized)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown conflict mode %q (valid: overwrite, keep, duplicate, diff)", s)
	}
	return m, nil
}
