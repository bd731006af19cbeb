package resolve

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauern/agenttransfer/internal/logging"
)

// RemoveExisting removes a file, symlink, or directory at path. Symlinks
// are removed as entries, not followed. A missing path is not an error.
func RemoveExisting(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove directory %q: %w", path, err)
		}
		logging.Debug("removed existing directory", logging.Path(path))
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %q: %w", path, err)
	}
	logging.Debug("removed existing file", logging.Path(path))
	return nil
}

// CopyFile copies src to dst, preserving the source permissions. Parent
// directories of dst are created as needed.
func CopyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source %q: %w", src, err)
	}

	// #nosec G304 - src comes from an extracted archive or a local item tree
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source %q: %w", src, err)
	}
	defer func() { _ = srcFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", dst, err)
	}

	// #nosec G302 G304 - preserving source permissions, dst is a resolved target path
	dstFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination %q: %w", dst, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("failed to copy content to %q: %w", dst, err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("failed to write %q: %w", dst, err)
	}

	logging.Debug("copied file", logging.Path(dst))
	return nil
}

// CopyDir recursively copies the directory src to dst. Symlinks are
// recreated, not followed.
func CopyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat source %q: %w", src, err)
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("source %q is not a directory", src)
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()|0o700); err != nil {
		return fmt.Errorf("failed to create destination directory %q: %w", dst, err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("failed to read source directory %q: %w", src, err)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.IsDir():
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
		case entry.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(srcPath)
			if err != nil {
				return fmt.Errorf("failed to read symlink %q: %w", srcPath, err)
			}
			if err := os.Symlink(target, dstPath); err != nil {
				return fmt.Errorf("failed to create symlink %q: %w", dstPath, err)
			}
		default:
			if err := CopyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	logging.Debug("copied directory", logging.Path(dst))
	return nil
}

// ReplaceDir removes dst and copies src in its place.
func ReplaceDir(src, dst string) error {
	if err := RemoveExisting(dst); err != nil {
		return err
	}
	return CopyDir(src, dst)
}

// WriteText writes text to path, keeping the permissions of an existing
// file.
func WriteText(path, text string) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", path, err)
	}
	// #nosec G306 - mode mirrors the file being replaced
	if err := os.WriteFile(path, []byte(text), mode); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

// DuplicateName returns the path of the first free "stem_N.ext" sibling for
// base inside dir, starting at N=1.
func DuplicateName(dir, base string) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return freeName(dir, func(n int) string {
		return stem + "_" + strconv.Itoa(n) + ext
	})
}

// DuplicateDirName returns the path of the first free "name_N" directory
// inside dir, starting at N=1.
func DuplicateDirName(dir, name string) string {
	return freeName(dir, func(n int) string {
		return name + "_" + strconv.Itoa(n)
	})
}

func freeName(dir string, candidate func(int) string) string {
	for n := 1; ; n++ {
		p := filepath.Join(dir, candidate(n))
		if _, err := os.Lstat(p); os.IsNotExist(err) {
			return p
		}
	}
}

// RestorePermissions copies the permission bits of every regular file below
// src onto the file with the same relative path below dst. Files missing in
// dst are ignored. Each failure is returned and the walk continues.
func RestorePermissions(src, dst string) []error {
	var errs []error
	walkErr := filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		info, err := d.Info()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rel, err))
			return nil
		}
		target := filepath.Join(dst, rel)
		if _, err := os.Lstat(target); os.IsNotExist(err) {
			return nil
		}
		if err := os.Chmod(target, info.Mode().Perm()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rel, err))
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}
	return errs
}
