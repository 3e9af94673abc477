// Package device persists the per-user device identity a homeserver issues
// on first login. Reusing the identity across restarts keeps the server from
// treating every start as a brand new device.
package device

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ext is the fixed extension for device identity files.
	ext = ".device_id"

	// dirPerm is the permission mode for the server storage directory.
	dirPerm = fs.FileMode(0o700)

	// filePerm is the permission mode for identity files.
	filePerm = fs.FileMode(0o600)
)

// Store reads and writes device identities under one server's storage
// directory. One file per username.
type Store struct {
	dir string
}

// NewStore creates a store rooted at the given server storage directory.
// The directory is created lazily on the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the identity file path for a username.
func (s *Store) Path(username string) string {
	return filepath.Join(s.dir, username+ext)
}

// Load returns the stored device identity for a username, or "" when none
// has been stored yet. A missing file and an empty file both mean "no
// identity"; any other read failure is propagated.
func (s *Store) Load(username string) (string, error) {
	data, err := os.ReadFile(s.Path(username))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading device identity for %s: %w", username, err)
	}

	return strings.TrimSpace(string(data)), nil
}

// Save writes the device identity for a username, overwriting any previous
// content. The file holds the bare identifier as plain text.
func (s *Store) Save(username, deviceID string) error {
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	if err := os.WriteFile(s.Path(username), []byte(deviceID), filePerm); err != nil {
		return fmt.Errorf("writing device identity for %s: %w", username, err)
	}

	return nil
}
