// Package config provides configuration management for agenttransfer.
// It supports YAML or TOML configuration files, environment variables, and
// sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/klauern/agenttransfer/internal/model"
	"github.com/klauern/agenttransfer/internal/util"
)

// Config represents the complete agenttransfer configuration.
type Config struct {
	// Paths overrides where agents and skills are discovered
	Paths PathsConfig `yaml:"paths" toml:"paths"`

	// Import configures default import behavior
	Import ImportConfig `yaml:"import" toml:"import"`

	// Export configures where archives are written
	Export ExportConfig `yaml:"export" toml:"export"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output" toml:"output"`

	// Logging configures diagnostic output
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// PathsConfig holds directory overrides. Empty values use discovery.
type PathsConfig struct {
	// ClaudeHome is the user .claude directory
	ClaudeHome string `yaml:"claude_home,omitempty" toml:"claude_home,omitempty"`
	// ProjectRoot is the directory whose .claude holds project items
	ProjectRoot string `yaml:"project_root,omitempty" toml:"project_root,omitempty"`
}

// ImportConfig holds import settings.
type ImportConfig struct {
	// ConflictMode is overwrite, keep, duplicate, diff, or empty for the
	// terminal-dependent default
	ConflictMode string `yaml:"conflict_mode,omitempty" toml:"conflict_mode,omitempty"`
	// CreateProjectDirs creates a missing project .claude directory without asking
	CreateProjectDirs bool `yaml:"create_project_dirs" toml:"create_project_dirs"`
}

// ExportConfig holds export settings.
type ExportConfig struct {
	// OutputDir is where timestamped archives are created
	OutputDir string `yaml:"output_dir,omitempty" toml:"output_dir,omitempty"`
	// Prefix starts the archive file name
	Prefix string `yaml:"prefix" toml:"prefix"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color" toml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose" toml:"verbose"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is debug, info, warn or error
	Level string `yaml:"level" toml:"level"`
	// JSON switches to JSON log lines
	JSON bool `yaml:"json" toml:"json"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Prefix: "claude-agents-backup",
		},
		Output: OutputConfig{
			Color: "auto",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Config file names, in lookup order.
const (
	yamlFileName = "config.yaml"
	tomlFileName = "config.toml"
)

// FilePath returns the config file in use: config.yaml, else config.toml
// if it exists, else the config.yaml location.
func FilePath() string {
	dir := util.ConfigDir()
	yamlPath := filepath.Join(dir, yamlFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}
	tomlPath := filepath.Join(dir, tomlFileName)
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath
	}
	return yamlPath
}

// Load loads the configuration file, merging with defaults. A missing file
// yields the defaults with environment overrides.
func Load() (*Config, error) {
	cfg, err := LoadFromPath(FilePath())
	if err != nil && os.IsNotExist(err) {
		cfg = Default()
		cfg.applyEnvironment()
		return cfg, nil
	}
	return cfg, err
}

// LoadFromPath loads configuration from a specific path. Files ending in
// .toml are decoded as TOML, everything else as YAML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is the config file location or provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path, as TOML when the
// path ends in .toml.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := c.Encode(isTOML(path))
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// Encode renders the configuration as YAML, or TOML when asTOML is set.
func (c *Config) Encode(asTOML bool) ([]byte, error) {
	if asTOML {
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(c); err != nil {
			return nil, err
		}
		return []byte(sb.String()), nil
	}
	return yaml.Marshal(c)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern AGENTTRANSFER_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	// Paths
	if v := os.Getenv("AGENTTRANSFER_PATHS_CLAUDE_HOME"); v != "" {
		c.Paths.ClaudeHome = v
	}
	if v := os.Getenv("AGENTTRANSFER_PATHS_PROJECT_ROOT"); v != "" {
		c.Paths.ProjectRoot = v
	}

	// Import settings
	if v := os.Getenv("AGENTTRANSFER_IMPORT_CONFLICT_MODE"); v != "" {
		c.Import.ConflictMode = v
	}
	if v := os.Getenv("AGENTTRANSFER_IMPORT_CREATE_PROJECT_DIRS"); v != "" {
		c.Import.CreateProjectDirs = parseBool(v)
	}

	// Export settings
	if v := os.Getenv("AGENTTRANSFER_EXPORT_OUTPUT_DIR"); v != "" {
		c.Export.OutputDir = v
	}
	if v := os.Getenv("AGENTTRANSFER_EXPORT_PREFIX"); v != "" {
		c.Export.Prefix = v
	}

	// Output settings
	if v := os.Getenv("AGENTTRANSFER_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("AGENTTRANSFER_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}

	// Logging settings
	if v := os.Getenv("AGENTTRANSFER_LOGGING_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("AGENTTRANSFER_LOGGING_JSON"); v != "" {
		c.Logging.JSON = parseBool(v)
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// ConflictMode returns the configured conflict mode. ok is false when none
// is configured or the value is invalid.
func (c *Config) ConflictMode() (mode model.ConflictMode, ok bool) {
	if c.Import.ConflictMode == "" {
		return "", false
	}
	m, err := model.ParseConflictMode(c.Import.ConflictMode)
	if err != nil {
		return "", false
	}
	return m, true
}

// ClaudeHome returns the expanded user .claude override, or empty.
func (c *Config) ClaudeHome() string {
	return ExpandPath(c.Paths.ClaudeHome)
}

// ProjectRoot returns the expanded project root override, or empty.
func (c *Config) ProjectRoot() string {
	return ExpandPath(c.Paths.ProjectRoot)
}

// OutputDir returns the expanded export directory, or empty for the
// working directory.
func (c *Config) OutputDir() string {
	return ExpandPath(c.Export.OutputDir)
}

// ExpandPath replaces a leading ~ with the home directory.
func ExpandPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" {
		return util.HomeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(util.HomeDir(), p[2:])
	}
	return p
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
