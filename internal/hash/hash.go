// Package hash computes content digests used to detect identical items.
package hash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/klauern/agenttransfer/internal/logging"
)

// Unhashable is the digest recorded for files that could not be read.
// Two unreadable files therefore compare equal to each other.
const Unhashable = "unhashable"

// ChunkSize is the read size used when hashing files.
const ChunkSize = 4096

// Text returns the hex SHA-256 digest of s.
func Text(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// File returns the hex SHA-256 digest of the file at path, reading it in
// ChunkSize pieces. Unreadable files yield Unhashable.
func File(path string) string {
	f, err := os.Open(path) // #nosec G304 -- path comes from a directory walk
	if err != nil {
		logging.Debug("file not hashable", logging.Path(path), logging.Err(err))
		return Unhashable
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(h, onlyReader{f}, buf); err != nil {
		logging.Debug("file not hashable", logging.Path(path), logging.Err(err))
		return Unhashable
	}
	return hex.EncodeToString(h.Sum(nil))
}

// onlyReader hides WriterTo/ReaderFrom so CopyBuffer honours the chunk size.
type onlyReader struct{ io.Reader }

// Dir maps every regular file below root to its digest, keyed by
// slash-separated path relative to root. Individual unreadable files are
// recorded as Unhashable; only a missing or unreadable root is an error.
func Dir(ctx context.Context, root string) (map[string]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat directory %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q is not a directory", root)
	}

	var mu sync.Mutex
	digests := make(map[string]string)

	conf := fastwalk.Config{Follow: false}
	walkErr := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			logging.Debug("skipping unreadable entry", logging.Path(path), logging.Err(err))
			return nil
		}
		if d.IsDir() || !isFile(path, d) {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil //nolint:nilerr // unreachable for paths produced by the walk
		}
		sum := File(path)

		mu.Lock()
		digests[filepath.ToSlash(rel)] = sum
		mu.Unlock()
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, fmt.Errorf("failed to walk %q: %w", root, walkErr)
	}
	return digests, nil
}

// isFile reports whether the entry is a regular file, following symlinks.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Equal reports whether two directory digest maps describe the same tree.
func Equal(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
