// Package storage manages the directory downloaded videos live in
// while they await processing.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type MediaStore struct {
	baseDir string
}

func NewMediaStore(baseDir string) (*MediaStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &MediaStore{baseDir: baseDir}, nil
}

func (s *MediaStore) Dir() string {
	return s.baseDir
}

// Path resolves a file name inside the media directory, rejecting
// anything that would escape it.
func (s *MediaStore) Path(name string) (string, error) {
	clean := filepath.Clean(name)
	if clean != filepath.Base(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid media file name %q", name)
	}
	return filepath.Join(s.baseDir, clean), nil
}

// Remove deletes a processed video file. A file that is already gone is
// not an error.
func (s *MediaStore) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}
