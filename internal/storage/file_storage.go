package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage keeps downloaded payloads in a single directory.
type FileStorage struct {
	dir string
}

// NewFileStorage creates a new FileStorage instance with the given directory.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

// Dir returns the storage directory.
func (s *FileStorage) Dir() string { return s.dir }

// Path resolves filename inside the storage directory.
func (s *FileStorage) Path(filename string) (string, error) {
	clean := filepath.Clean(filename)
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") || strings.ContainsRune(clean, filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", filename)
	}
	return filepath.Join(s.dir, clean), nil
}

// CreateFile creates (or truncates) a file in the storage directory.
func (s *FileStorage) CreateFile(filename string) (*os.File, error) {
	path, err := s.Path(filename)
	if err != nil {
		return nil, err
	}
	return os.Create(path)
}

// Remove deletes a file; a missing file is not an error.
func (s *FileStorage) Remove(filename string) error {
	path, err := s.Path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// FileExists checks whether a file exists in the storage directory.
func (s *FileStorage) FileExists(filename string) bool {
	path, err := s.Path(filename)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// GetFileSize returns the size of the file in bytes.
func (s *FileStorage) GetFileSize(filename string) (int64, error) {
	path, err := s.Path(filename)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
