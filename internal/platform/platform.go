// Package platform provides OS detection and path resolution helpers.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Current returns the runtime.GOOS value ("darwin", "windows", "linux", …).
func Current() string {
	return runtime.GOOS
}

// ExpandPath expands a leading "~/" and environment variables in path.
func ExpandPath(path string) string {
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// ResolveDestination resolves a declared destination path. Absolute
// destinations (flagged or already rooted) are used as-is; everything else is
// joined under homeRoot. Pure function, no filesystem access.
func ResolveDestination(path string, absolute bool, homeRoot string) string {
	path = ExpandPath(path)
	if absolute || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(homeRoot, path)
}

// HomeDir returns the current user's home directory, falling back to the HOME
// environment variable.
func HomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}
