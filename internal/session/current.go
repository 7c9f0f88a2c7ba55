package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CurrentFile returns the path of the file holding the current session id
// for the database at dbPath.
func CurrentFile(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "session")
}

// SaveCurrent writes the session id to path.
func SaveCurrent(path, id string) error {
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadCurrent reads the session id from path. A missing file yields "".
func LoadCurrent(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ClearCurrent removes the session file.
func ClearCurrent(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
