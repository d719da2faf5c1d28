// Package config locates the agileai global configuration directory and the
// project workspace rooted at a .agileai/ directory.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the agileai global configuration directory.
//
// Resolution:
//   - $AGILEAI_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/agileai if set (respects XDG on any platform)
//   - %AppData%/agileai on Windows
//   - ~/.config/agileai on macOS and Linux
func Dir() string {
	// Explicit override
	if dir := os.Getenv("AGILEAI_CONFIG_HOME"); dir != "" {
		return dir
	}

	// XDG override (works on any platform)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "agileai")
	}

	// Windows: use AppData
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "agileai")
		}
	}

	// macOS and Linux: ~/.config/agileai
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "agileai")
}
