package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSStore implements Store on the local filesystem, rooted at a base
// directory. All paths are interpreted relative to the root; paths escaping
// the root are rejected.
type FSStore struct {
	root string
}

var _ Store = (*FSStore)(nil)

// NewFSStore creates a filesystem store rooted at root.
// The root directory is created if it doesn't exist.
func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		return nil, fmt.Errorf("store root required")
	}

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(root, 0755); err != nil {
				return nil, err
			}
			info, err = os.Stat(root)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &FSStore{root: root}, nil
}

// Read returns the full contents of the file at path.
func (s *FSStore) Read(path string) ([]byte, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Write stores data at path, creating parent directories as needed.
func (s *FSStore) Write(path string, data []byte) (string, error) {
	full, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Delete removes the file at path. Returns false if no file existed.
func (s *FSStore) Delete(path string) (bool, error) {
	full, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// resolve joins path to the root and rejects escapes.
func (s *FSStore) resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path required")
	}
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes store root", path)
	}
	return filepath.Join(s.root, cleaned), nil
}
