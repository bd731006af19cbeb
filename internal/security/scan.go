// Package security scans agents and skills for credentials before they are
// packed into an archive that leaves the machine.
package security

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/klauern/agenttransfer/internal/model"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// maxScanSize bounds the skill files read for scanning.
const maxScanSize = 1 << 20

// Pattern is a named regular expression for one kind of secret.
type Pattern struct {
	Name        string
	Regexp      *regexp.Regexp
	Description string
	Severity    Severity
}

// DefaultPatterns returns the built-in credential patterns.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:        "api-key",
			Regexp:      regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[:=]\s*['"]?[a-zA-Z0-9_\-]{16,}['"]?`),
			Description: "API key",
			Severity:    SeverityWarning,
		},
		{
			Name:        "token",
			Regexp:      regexp.MustCompile(`(?i)(token|access[_-]?token|auth[_-]?token)\s*[:=]\s*['"]?[a-zA-Z0-9_\-\.]{16,}['"]?`),
			Description: "authentication token",
			Severity:    SeverityWarning,
		},
		{
			Name:        "password",
			Regexp:      regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*['"]?[a-zA-Z0-9_\-@!#$%^&*()]{8,}['"]?`),
			Description: "password",
			Severity:    SeverityWarning,
		},
		{
			Name:        "aws-access-key",
			Regexp:      regexp.MustCompile(`AKIA[A-Z0-9]{16}`),
			Description: "AWS access key",
			Severity:    SeverityError,
		},
		{
			Name:        "aws-secret-key",
			Regexp:      regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key|aws[_-]?secret)\s*[:=]\s*['"]?[a-zA-Z0-9/+]{40}['"]?`),
			Description: "AWS secret key",
			Severity:    SeverityError,
		},
		{
			Name:        "github-token",
			Regexp:      regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{36,}`),
			Description: "GitHub token",
			Severity:    SeverityError,
		},
		{
			Name:        "private-key",
			Regexp:      regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE\s+KEY-----`),
			Description: "private key",
			Severity:    SeverityError,
		},
		{
			Name:        "bearer-token",
			Regexp:      regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_\-\.]{20,}`),
			Description: "bearer token",
			Severity:    SeverityWarning,
		},
		{
			Name:        "connection-string",
			Regexp:      regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb|redis)://[^:\s]+:[^@\s]+@`),
			Description: "connection string with credentials",
			Severity:    SeverityError,
		},
	}
}

// Match is a pattern hit inside one text.
type Match struct {
	Pattern     string
	Description string
	Severity    Severity
	Line        int
	Excerpt     string
}

// Finding is a Match located in an item.
type Finding struct {
	Match
	Item  string
	Kind  model.Kind
	Scope model.Scope

	// File is the skill-relative path, empty for agents.
	File string
}

// String formats the finding for display.
func (f Finding) String() string {
	where := fmt.Sprintf("line %d", f.Line)
	if f.File != "" {
		where = f.File + ":" + fmt.Sprint(f.Line)
	}
	return fmt.Sprintf("%s %s (%s): possible %s at %s", f.Kind, f.Item, f.Scope, f.Description, where)
}

// Scanner matches text against a set of patterns.
type Scanner struct {
	patterns []Pattern
}

// NewScanner creates a scanner. Nil or empty patterns select DefaultPatterns.
func NewScanner(patterns []Pattern) *Scanner {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return &Scanner{patterns: patterns}
}

// ScanText returns every match in text, one per pattern and line.
func (s *Scanner) ScanText(text string) []Match {
	if text == "" {
		return nil
	}
	var matches []Match
	for i, line := range strings.Split(text, "\n") {
		if isPlaceholder(line) {
			continue
		}
		for _, p := range s.patterns {
			if !p.Regexp.MatchString(line) {
				continue
			}
			matches = append(matches, Match{
				Pattern:     p.Name,
				Description: p.Description,
				Severity:    p.Severity,
				Line:        i + 1,
				Excerpt:     excerpt(line, 80),
			})
		}
	}
	return matches
}

// ScanItem scans an agent's text or every file of a skill. Skill files
// larger than 1 MiB or containing NUL bytes are skipped.
func (s *Scanner) ScanItem(it *model.Item) ([]Finding, error) {
	if !it.IsDir() {
		return s.findings(it, "", it.Content), nil
	}

	files := make([]string, 0, len(it.Files))
	for rel := range it.Files {
		files = append(files, rel)
	}
	sort.Strings(files)

	var out []Finding
	for _, rel := range files {
		path := filepath.Join(it.SourcePath, filepath.FromSlash(rel))
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", path, err)
		}
		if info.Size() > maxScanSize {
			continue
		}
		data, err := os.ReadFile(path) // #nosec G304 -- file inside a discovered skill
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", path, err)
		}
		if bytes.IndexByte(data, 0) >= 0 {
			continue
		}
		out = append(out, s.findings(it, rel, string(data))...)
	}
	return out, nil
}

// ScanItems scans items in order and concatenates their findings.
func (s *Scanner) ScanItems(items []*model.Item) ([]Finding, error) {
	var out []Finding
	for _, it := range items {
		f, err := s.ScanItem(it)
		if err != nil {
			return nil, err
		}
		out = append(out, f...)
	}
	return out, nil
}

func (s *Scanner) findings(it *model.Item, file, text string) []Finding {
	var out []Finding
	for _, m := range s.ScanText(text) {
		out = append(out, Finding{Match: m, Item: it.Name, Kind: it.Kind, Scope: it.Scope, File: file})
	}
	return out
}

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// isPlaceholder reports whether the value side of a key/value line looks
// like documentation rather than a real secret.
func isPlaceholder(line string) bool {
	trimmed := strings.TrimSpace(line)
	idx := strings.IndexAny(trimmed, ":=")
	if idx < 0 {
		return false
	}
	value := strings.ToLower(strings.TrimSpace(trimmed[idx+1:]))
	value = strings.Trim(value, `"'`)
	for _, marker := range []string{"your_", "<your", "placeholder", "example_", "xxxx", "${", "$("} {
		if strings.Contains(value, marker) {
			return true
		}
	}
	return false
}

func excerpt(line string, maxLen int) string {
	r := []rune(strings.TrimSpace(line))
	if len(r) <= maxLen {
		return string(r)
	}
	return string(r[:maxLen-3]) + "..."
}
