package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDBPath returns the default database location, honoring
// CHARTAUDIT_DB_PATH when set.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("CHARTAUDIT_DB_PATH"); p != "" {
		return p, nil
	}

	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "chartaudit", "chartaudit.db"), nil
}

// EnsureDir creates the parent directory of path if it does not exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
