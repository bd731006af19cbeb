package e2e

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/klauern/agenttransfer/internal/archive"
	"github.com/klauern/agenttransfer/internal/model"
)

// AssertSuccess stops the test unless the command returned without error.
func AssertSuccess(t *testing.T, r *Result) {
	t.Helper()
	if !r.Success() {
		t.Fatalf("command failed: %v\noutput:\n%s", r.Err, r.Stdout)
	}
}

// AssertError stops the test if the command succeeded.
func AssertError(t *testing.T, r *Result) {
	t.Helper()
	if r.Success() {
		t.Fatalf("command succeeded, want an error\noutput:\n%s", r.Stdout)
	}
}

// AssertErrorContains checks that the command failed with a message
// mentioning substr.
func AssertErrorContains(t *testing.T, r *Result, substr string) {
	t.Helper()
	AssertError(t, r)
	if !strings.Contains(r.Err.Error(), substr) {
		t.Errorf("error %q does not mention %q", r.Err, substr)
	}
}

// AssertExitCode checks the process exit code the command maps to.
func AssertExitCode(t *testing.T, r *Result, want int) {
	t.Helper()
	if r.ExitCode != want {
		t.Errorf("exit code = %d, want %d (err: %v)", r.ExitCode, want, r.Err)
	}
}

// AssertOutputContains checks that stdout contains every substring.
func AssertOutputContains(t *testing.T, r *Result, substrs ...string) {
	t.Helper()
	for _, s := range substrs {
		if !strings.Contains(r.Stdout, s) {
			t.Errorf("output is missing %q:\n%s", s, r.Stdout)
		}
	}
}

// AssertOutputNotContains checks that stdout contains none of the substrings.
func AssertOutputNotContains(t *testing.T, r *Result, substrs ...string) {
	t.Helper()
	for _, s := range substrs {
		if strings.Contains(r.Stdout, s) {
			t.Errorf("output should not contain %q:\n%s", s, r.Stdout)
		}
	}
}

// AssertOutputLine checks that one line of stdout, trimmed, equals want.
func AssertOutputLine(t *testing.T, r *Result, want string) {
	t.Helper()
	for _, line := range strings.Split(r.Stdout, "\n") {
		if strings.TrimSpace(line) == want {
			return
		}
	}
	t.Errorf("no output line equals %q:\n%s", want, r.Stdout)
}

// Summary holds the counters of an import summary line.
type Summary struct {
	Imported    int
	Conflicts   int
	Skipped     int
	Identical   int
	NotSelected int
}

var summaryPattern = regexp.MustCompile(`Imported: (\d+), Conflicts: (\d+), Skipped: (\d+)(?:, Identical: (\d+))?(?:, Not selected: (\d+))?`)

// AssertSummary parses the last import summary printed by the command and
// compares every counter with want.
func AssertSummary(t *testing.T, r *Result, want Summary) {
	t.Helper()
	matches := summaryPattern.FindAllStringSubmatch(r.Stdout, -1)
	if len(matches) == 0 {
		t.Fatalf("no import summary in output:\n%s", r.Stdout)
	}
	m := matches[len(matches)-1]
	n := func(s string) int {
		if s == "" {
			return 0
		}
		v, _ := strconv.Atoi(s)
		return v
	}
	got := Summary{Imported: n(m[1]), Conflicts: n(m[2]), Skipped: n(m[3]), Identical: n(m[4]), NotSelected: n(m[5])}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("import summary mismatch (-want +got):\n%s\noutput:\n%s", diff, r.Stdout)
	}
}

// AssertPreviewRow checks that the preview table lists name with status.
func AssertPreviewRow(t *testing.T, r *Result, status model.Status, name string) {
	t.Helper()
	for _, line := range strings.Split(r.Stdout, "\n") {
		if strings.Contains(line, status.Label()) && strings.Contains(line, " "+name+" ") {
			return
		}
	}
	t.Errorf("preview has no %s row for %q:\n%s", status.Label(), name, r.Stdout)
}

// AssertArchiveEntries extracts the archive at path and checks that each
// slash-separated entry exists in it.
func AssertArchiveEntries(t *testing.T, path string, entries ...string) {
	t.Helper()
	ws := openArchive(t, path)
	for _, e := range entries {
		if _, err := os.Lstat(filepath.Join(ws.Dir, filepath.FromSlash(e))); err != nil {
			t.Errorf("archive %s has no entry %s", filepath.Base(path), e)
		}
	}
}

// AssertArchiveLacks checks that none of the entries are in the archive.
func AssertArchiveLacks(t *testing.T, path string, entries ...string) {
	t.Helper()
	ws := openArchive(t, path)
	for _, e := range entries {
		if _, err := os.Lstat(filepath.Join(ws.Dir, filepath.FromSlash(e))); err == nil {
			t.Errorf("archive %s should not contain %s", filepath.Base(path), e)
		}
	}
}

// AssertManifest checks a metadata.txt value of the archive at path.
func AssertManifest(t *testing.T, path, key, want string) {
	t.Helper()
	ws := openArchive(t, path)
	if got := ws.Manifest.Get(key); got != want {
		t.Errorf("manifest %s = %q, want %q", key, got, want)
	}
}

func openArchive(t *testing.T, path string) *archive.Workspace {
	t.Helper()
	ws, err := archive.Open(path)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

// AssertFileExists checks that path exists.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err != nil {
		t.Errorf("%s: %v", path, err)
	}
}

// AssertFileNotExists checks that nothing exists at path.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err == nil {
		t.Errorf("%s exists, want it absent", path)
	}
}

// AssertFileEquals compares the whole content of path with want.
func AssertFileEquals(t *testing.T, path, want string) {
	t.Helper()
	if got := readFile(t, path); got != want {
		t.Errorf("%s = %q, want %q", path, got, want)
	}
}

// AssertFileContains checks that path contains every substring.
func AssertFileContains(t *testing.T, path string, substrs ...string) {
	t.Helper()
	got := readFile(t, path)
	for _, s := range substrs {
		if !strings.Contains(got, s) {
			t.Errorf("%s is missing %q:\n%s", path, s, got)
		}
	}
}

// AssertFileNotContains checks that path contains none of the substrings.
func AssertFileNotContains(t *testing.T, path string, substrs ...string) {
	t.Helper()
	got := readFile(t, path)
	for _, s := range substrs {
		if strings.Contains(got, s) {
			t.Errorf("%s should not contain %q:\n%s", path, s, got)
		}
	}
}

// AssertExecutable checks that the owner may execute path. Permission
// bits are not tracked on Windows, so the check is skipped there.
func AssertExecutable(t *testing.T, path string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("%s is not executable, mode %v", path, info.Mode())
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304 -- test paths
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
