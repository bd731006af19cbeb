package hash

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	// sha256("abc")
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := Text("abc"); got != want {
		t.Errorf("Text(abc) = %s, want %s", got, want)
	}
	if Text("a") == Text("a\n") {
		t.Error("trailing newline must change the digest")
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	content := strings.Repeat("0123456789", 1000) // spans several chunks
	path := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if got, want := File(path), Text(content); got != want {
		t.Errorf("File() = %s, want %s", got, want)
	}
	if got := File(filepath.Join(dir, "missing")); got != Unhashable {
		t.Errorf("File(missing) = %s, want %s", got, Unhashable)
	}
}

func TestDir(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"SKILL.md":           "---\nname: pdf\n---\nbody\n",
		"scripts/extract.py": "print('x')\n",
		"ref/a/b.txt":        "deep",
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	got, err := Dir(context.Background(), root)
	if err != nil {
		t.Fatalf("Dir() error = %v", err)
	}
	if len(got) != len(files) {
		t.Fatalf("Dir() returned %d entries, want %d: %v", len(got), len(files), got)
	}
	for rel, content := range files {
		if got[rel] != Text(content) {
			t.Errorf("digest for %s = %s, want %s", rel, got[rel], Text(content))
		}
	}

	again, err := Dir(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(got, again) {
		t.Error("hashing the same tree twice must be deterministic")
	}
}

func TestDir_UnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := t.TempDir()
	p := filepath.Join(root, "secret.txt")
	if err := os.WriteFile(p, []byte("x"), 0o000); err != nil {
		t.Fatal(err)
	}

	got, err := Dir(context.Background(), root)
	if err != nil {
		t.Fatalf("Dir() error = %v", err)
	}
	if got["secret.txt"] != Unhashable {
		t.Errorf("digest = %q, want %q", got["secret.txt"], Unhashable)
	}
}

func TestDir_Errors(t *testing.T) {
	root := t.TempDir()
	if _, err := Dir(context.Background(), filepath.Join(root, "missing")); err == nil {
		t.Error("expected error for missing root")
	}

	file := filepath.Join(root, "f")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Dir(context.Background(), file); err == nil {
		t.Error("expected error for non-directory root")
	}
}

func TestEqual(t *testing.T) {
	tests := map[string]struct {
		a, b map[string]string
		want bool
	}{
		"both empty":  {a: map[string]string{}, b: nil, want: true},
		"same":        {a: map[string]string{"x": "1"}, b: map[string]string{"x": "1"}, want: true},
		"digest diff": {a: map[string]string{"x": "1"}, b: map[string]string{"x": "2"}, want: false},
		"key diff":    {a: map[string]string{"x": "1"}, b: map[string]string{"y": "1"}, want: false},
		"length diff": {a: map[string]string{"x": "1"}, b: map[string]string{}, want: false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}
