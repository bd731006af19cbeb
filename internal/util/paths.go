package util

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the per-user configuration directory.
const AppName = "agenttransfer"

// HomeDir returns the user's home directory.
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// ClaudeDir returns the user-level .claude directory.
func ClaudeDir() string {
	return filepath.Join(HomeDir(), ".claude")
}

// ConfigDir returns the agenttransfer configuration directory.
// AGENTTRANSFER_HOME overrides the XDG location.
func ConfigDir() string {
	if dir := os.Getenv("AGENTTRANSFER_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}
