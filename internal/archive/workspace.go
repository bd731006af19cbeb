package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/model"
)

// Workspace is an archive extracted into a private temporary directory.
// Close removes the directory.
type Workspace struct {
	Path     string
	Dir      string
	Manifest Manifest
}

// Open extracts the archive at path into a fresh temporary directory.
// Nothing outside that directory is written. On failure the directory is
// removed before returning.
func Open(path string) (*Workspace, error) {
	f, err := os.Open(path) // #nosec G304 -- archive path supplied by the user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	dir, err := os.MkdirTemp("", "agenttransfer-import-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}

	if err := Unpack(f, dir); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("archive %s: %w", path, err)
	}

	ws := &Workspace{Path: path, Dir: dir, Manifest: Manifest{}}
	if mf, err := os.Open(filepath.Join(dir, ManifestFile)); err == nil { // #nosec G304 -- inside extraction dir
		ws.Manifest = ParseManifest(mf)
		_ = mf.Close()
	}

	logging.Debug("archive extracted", logging.Archive(path), logging.Path(dir))
	return ws, nil
}

// Close removes the extraction directory.
func (w *Workspace) Close() error {
	if w == nil || w.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		return fmt.Errorf("failed to remove extraction directory %s: %w", w.Dir, err)
	}
	return nil
}

// AgentsDir returns the extracted agents directory for scope.
func (w *Workspace) AgentsDir(scope model.Scope) string {
	return filepath.Join(w.Dir, AgentsDir(scope))
}

// SkillsDir returns the extracted skills directory for scope.
func (w *Workspace) SkillsDir(scope model.Scope) string {
	return filepath.Join(w.Dir, SkillsDir(scope))
}

// Write packs root into a new archive file at path and returns its size.
// A partially written file is removed on failure.
func Write(path, root string) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644) // #nosec G302 G304 -- archives are meant to be shared
	if err != nil {
		return 0, fmt.Errorf("failed to create archive %s: %w", path, err)
	}

	if err := Pack(root, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return 0, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("failed to write archive %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat archive %s: %w", path, err)
	}
	return info.Size(), nil
}
