// Package ui renders agenttransfer output on the terminal and reads
// answers to interactive prompts.
package ui

import (
	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/klauern/agenttransfer/internal/model"
)

// Color function types for styled output.
var (
	// Success is used for successful operations (green).
	Success = color.New(color.FgGreen).SprintFunc()
	// Error is used for errors and failures (red).
	Error = color.New(color.FgRed).SprintFunc()
	// Warning is used for warnings and cautions (yellow).
	Warning = color.New(color.FgYellow).SprintFunc()
	// Info is used for informational messages (cyan).
	Info = color.New(color.FgCyan).SprintFunc()
	// Bold is used for emphasis (bold white).
	Bold = color.New(color.Bold).SprintFunc()
	// Dim is used for secondary information (faint).
	Dim = color.New(color.Faint).SprintFunc()
	// Header is used for table headers (bold cyan).
	Header = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Status symbols with colors.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolSkipped = "-"
	SymbolPending = "○"
)

// StatusSuccess returns a green checkmark with optional message.
func StatusSuccess(msg string) string {
	if msg == "" {
		return Success(SymbolSuccess)
	}
	return Success(SymbolSuccess) + " " + msg
}

// StatusError returns a red X with optional message.
func StatusError(msg string) string {
	if msg == "" {
		return Error(SymbolError)
	}
	return Error(SymbolError) + " " + msg
}

// StatusWarning returns a yellow warning with optional message.
func StatusWarning(msg string) string {
	if msg == "" {
		return Warning(SymbolWarning)
	}
	return Warning(SymbolWarning) + " " + msg
}

// StatusSkipped returns a dimmed skip symbol with optional message.
func StatusSkipped(msg string) string {
	if msg == "" {
		return Dim(SymbolSkipped)
	}
	return Dim(SymbolSkipped) + " " + msg
}

// DisableColors disables all color output.
// This is useful for piping output or for users who prefer no colors.
func DisableColors() {
	color.NoColor = true
}

// EnableColors enables color output.
func EnableColors() {
	color.NoColor = false
}

// IsColorEnabled returns whether colors are currently enabled.
func IsColorEnabled() bool {
	return !color.NoColor
}

// Status symbols for comparison states.
const (
	SymbolNew       = "+"
	SymbolChanged   = "~"
	SymbolIdentical = "="
)

// StatusLabel renders a comparison status with its color.
func StatusLabel(s model.Status) string {
	switch s {
	case model.StatusNew:
		return Success(s.Label())
	case model.StatusChanged:
		return Warning(s.Label())
	case model.StatusIdentical:
		return Dim(s.Label())
	default:
		return s.Label()
	}
}

// StatusSymbol returns the one-character marker for a comparison status.
func StatusSymbol(s model.Status) string {
	switch s {
	case model.StatusNew:
		return Success(SymbolNew)
	case model.StatusChanged:
		return Warning(SymbolChanged)
	default:
		return Dim(SymbolIdentical)
	}
}

// ScopeLabel returns the title-cased scope name, e.g. "User".
func ScopeLabel(s model.Scope) string {
	return cases.Title(language.English).String(s.String())
}

// KindLabel returns the title-cased plural kind name, e.g. "Agents".
func KindLabel(k model.Kind) string {
	return cases.Title(language.English).String(k.Plural())
}
