package archive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/util"
)

// maxManifestLine bounds a single manifest line. Parsing stops at a longer
// line and keeps the entries read so far.
const maxManifestLine = 1 << 20

// Manifest keys written by this tool.
const (
	ManifestTitle = "Claude Code Agents Backup"
	KeyCreated    = "Created"
	KeyVersion    = "Export Version"
	KeyExportID   = "Export ID"
	KeySystem     = "System"
	KeyUser       = "User"
	KeyHome       = "Home Directory"
	KeyUserAgents = "User Agents"
	KeyProjAgents = "Project Agents"
	KeyUserSkills = "User Skills"
	KeyProjSkills = "Project Skills"
	ExportVersion = "1.0"
	createdLayout = time.RFC1123
)

// Manifest is the ordered key-value content of metadata.txt.
type Manifest struct {
	keys   []string
	values map[string]string
}

// Set adds or replaces a key, keeping first-insertion order.
func (m *Manifest) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key, or the empty string.
func (m Manifest) Get(key string) string {
	return m.values[key]
}

// Keys returns the keys in file order.
func (m Manifest) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of entries.
func (m Manifest) Len() int {
	return len(m.keys)
}

// NewManifest describes an export created now on this machine.
func NewManifest(now time.Time) Manifest {
	var m Manifest
	m.Set(KeyCreated, now.Format(createdLayout))
	m.Set(KeyVersion, ExportVersion)
	m.Set(KeyExportID, uuid.NewString())
	m.Set(KeySystem, runtime.GOOS+"/"+runtime.GOARCH)
	m.Set(KeyUser, currentUser())
	m.Set(KeyHome, util.HomeDir())
	return m
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

// ParseManifest reads Key: Value lines. Lines without a colon or with an
// empty key are ignored, so any text yields a manifest.
func ParseManifest(r io.Reader) Manifest {
	var m Manifest
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxManifestLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		m.Set(key, strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		logging.Debug("manifest truncated", logging.Count(m.Len()), logging.Err(err))
	}
	return m
}

// WriteTo writes the title line followed by one Key: Value line per entry.
func (m Manifest) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := fmt.Fprintln(w, ManifestTitle)
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, k := range m.keys {
		n, err := fmt.Fprintf(w, "%s: %s\n", k, m.values[k])
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
