package e2e

import (
	"os"
	"path/filepath"
	"testing"
)

// Fixture provides helpers for creating test fixtures in E2E tests.
type Fixture struct {
	t       *testing.T
	baseDir string
}

// NewFixture creates a new fixture helper rooted at the given directory.
func NewFixture(t *testing.T, baseDir string) *Fixture {
	t.Helper()
	return &Fixture{
		t:       t,
		baseDir: baseDir,
	}
}

// WriteFile writes content to a file relative to the fixture base directory.
// It creates parent directories as needed.
func (f *Fixture) WriteFile(relPath, content string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		f.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}

	return fullPath
}

// WriteAgent writes an agent definition with frontmatter to
// agents/<relPath>.md.
func (f *Fixture) WriteAgent(relPath, name, description, body string) string {
	f.t.Helper()

	content := "---\n"
	content += "name: " + name + "\n"
	if description != "" {
		content += "description: " + description + "\n"
	}
	content += "---\n"
	content += body

	return f.WriteFile(filepath.Join("agents", relPath+".md"), content)
}

// WriteSkill writes skills/<name>/SKILL.md plus any extra files, keyed by
// their path relative to the skill directory.
func (f *Fixture) WriteSkill(name, description string, extra map[string]string) string {
	f.t.Helper()

	content := "---\n"
	content += "name: " + name + "\n"
	if description != "" {
		content += "description: " + description + "\n"
	}
	content += "---\n\n# " + name + "\n"

	dir := filepath.Join("skills", name)
	f.WriteFile(filepath.Join(dir, "SKILL.md"), content)
	for rel, data := range extra {
		f.WriteFile(filepath.Join(dir, rel), data)
	}
	return f.Path(dir)
}

// MkdirAll creates a directory and all parent directories relative to the base.
func (f *Fixture) MkdirAll(relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	if err := os.MkdirAll(fullPath, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// Path returns the full path for a relative path.
func (f *Fixture) Path(relPath string) string {
	return filepath.Join(f.baseDir, relPath)
}

// Exists returns true if the file or directory exists.
func (f *Fixture) Exists(relPath string) bool {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)
	_, err := os.Stat(fullPath)
	return err == nil
}

// ReadFile reads and returns the content of a file.
func (f *Fixture) ReadFile(relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	// #nosec G304 - fullPath is constructed from trusted test fixture base and test-provided path
	data, err := os.ReadFile(fullPath)
	if err != nil {
		f.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}

	return string(data)
}

// UserFixture returns a fixture rooted at the user-level .claude
// directory, creating it if needed.
func (h *Harness) UserFixture() *Fixture {
	h.t.Helper()
	return h.fixtureAt(h.UserDir())
}

// ProjectFixture returns a fixture rooted at the project-level .claude
// directory, creating it if needed.
func (h *Harness) ProjectFixture() *Fixture {
	h.t.Helper()
	return h.fixtureAt(h.ProjectDir())
}

func (h *Harness) fixtureAt(dir string) *Fixture {
	h.t.Helper()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		h.t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return NewFixture(h.t, dir)
}

// TempFixture creates a fixture helper for a new temporary directory.
func (h *Harness) TempFixture() *Fixture {
	h.t.Helper()

	tempDir := h.t.TempDir()
	return NewFixture(h.t, tempDir)
}
