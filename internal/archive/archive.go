// Package archive reads and writes the gzip-compressed tar archives that
// carry agents and skills between machines.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/model"
)

// Archive layout.
const (
	UserAgentsDir    = "user-agents"
	ProjectAgentsDir = "project-agents"
	UserSkillsDir    = "user-skills"
	ProjectSkillsDir = "project-skills"
	ManifestFile     = "metadata.txt"
)

var (
	// ErrCorrupt is returned when an archive cannot be decoded.
	ErrCorrupt = errors.New("archive is corrupt or not a gzip-compressed tar file")

	// ErrNotFound is returned when the archive file does not exist.
	ErrNotFound = errors.New("archive not found")

	// ErrUnsafePath is returned for entries that would escape the extraction root.
	ErrUnsafePath = errors.New("archive entry escapes extraction directory")
)

// AgentsDir returns the archive directory holding agents of the given scope.
func AgentsDir(scope model.Scope) string {
	if scope == model.ScopeProject {
		return ProjectAgentsDir
	}
	return UserAgentsDir
}

// SkillsDir returns the archive directory holding skills of the given scope.
func SkillsDir(scope model.Scope) string {
	if scope == model.ScopeProject {
		return ProjectSkillsDir
	}
	return UserSkillsDir
}

// Pack writes every directory and regular file below root to w as a
// gzip-compressed tar. Entry names are slash-separated and relative to
// root; file modes are preserved.
func Pack(root string, w io.Writer) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.IsDir() && !info.Mode().IsRegular() {
			logging.Debug("skipping non-regular file", logging.Path(p))
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("failed to build header for %s: %w", name, err)
		}
		header.Name = name
		if info.IsDir() {
			header.Name += "/"
		}
		header.Uname, header.Gname = "", ""
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write tar header for %s: %w", name, err)
		}
		if info.IsDir() {
			return nil
		}
		return copyFileInto(tw, p)
	})
	if walkErr != nil {
		return fmt.Errorf("failed to pack %s: %w", root, walkErr)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}

func copyFileInto(w io.Writer, p string) error {
	f, err := os.Open(p) // #nosec G304 -- path comes from walking the staging tree
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}

// Unpack extracts a gzip-compressed tar from r into dest. Decoding
// failures wrap ErrCorrupt; entries with absolute or parent-relative paths
// wrap ErrUnsafePath. Links and special files are skipped.
func Unpack(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, tar.ErrInsecurePath) && header != nil {
			return fmt.Errorf("%w: %s", ErrUnsafePath, header.Name)
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}

		target, err := entryPath(dest, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, dirMode(header)); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeEntry(tr, target, header); err != nil {
				return err
			}
		default:
			logging.Warn("skipping unsupported archive entry", logging.Path(header.Name))
		}
	}

	// Drain to the gzip trailer so checksum errors surface.
	if _, err := io.Copy(io.Discard, gz); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nil
}

// entryPath maps an entry name to a path below dest.
func entryPath(dest, name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") || filepath.IsAbs(filepath.FromSlash(clean)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.Join(dest, filepath.FromSlash(clean)), nil
}

func dirMode(h *tar.Header) fs.FileMode {
	return fs.FileMode(h.Mode).Perm() | 0o700
}

func writeEntry(tr io.Reader, target string, h *tar.Header) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	mode := fs.FileMode(h.Mode).Perm() | 0o600
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode) // #nosec G304 -- target validated by entryPath
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	src := &readTracker{r: tr}
	_, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if copyErr != nil {
		if src.err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorrupt, h.Name, copyErr)
		}
		return fmt.Errorf("failed to write %s: %w", target, copyErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write %s: %w", target, closeErr)
	}
	return os.Chmod(target, fs.FileMode(h.Mode).Perm())
}

// readTracker records read-side failures so decode errors can be told
// apart from disk errors.
type readTracker struct {
	r   io.Reader
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		t.err = err
	}
	return n, err
}
