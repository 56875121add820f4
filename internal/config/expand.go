package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax - just ~ for the current user.
func ExpandTilde(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}

	return path
}

// ExpandPath expands ${VAR}/$VAR references and a leading ~ in a local path,
// e.g. "~/.cache/sensormon/${USER}.log".
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	return ExpandTilde(os.ExpandEnv(path))
}
